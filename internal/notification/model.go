package notification

import (
	"time"

	"github.com/uptrace/bun"
)

// Notification represents a notification in the system
type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID                int64     `bun:"id,pk,autoincrement"`
	RecipientID       int64     `bun:"recipient_id,notnull"`
	Type              Type      `bun:"type,notnull"`
	Message           string    `bun:"message,notnull"`
	IsRead            bool      `bun:"is_read,notnull"`
	RelatedEntityType *string   `bun:"related_entity_type"` // "CLUB" or "EVENT"
	RelatedEntityID   *int64    `bun:"related_entity_id"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Type represents the type of notification
type Type string

const (
	TypeClubJoinRequested Type = "CLUB_JOIN_REQUESTED"
	TypeClubJoinApproved  Type = "CLUB_JOIN_APPROVED"
	TypeClubJoinRejected  Type = "CLUB_JOIN_REJECTED"
	TypeClubLeadChanged   Type = "CLUB_LEAD_CHANGED"
	TypeClubDeleted       Type = "CLUB_DELETED"
)

// Related entity kinds
const (
	EntityClub  = "CLUB"
	EntityEvent = "EVENT"
)

// Message is a notification to be written alongside a state change
type Message struct {
	RecipientID int64
	Type        Type
	Text        string
	EntityType  string
	EntityID    int64
}

func (m Message) toModel() *Notification {
	n := &Notification{
		RecipientID: m.RecipientID,
		Type:        m.Type,
		Message:     m.Text,
	}
	if m.EntityType != "" {
		entityType, entityID := m.EntityType, m.EntityID
		n.RelatedEntityType = &entityType
		n.RelatedEntityID = &entityID
	}
	return n
}
