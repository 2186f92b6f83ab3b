package club

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/internal/authz"
)

// Club is a persistent group with exactly one lead. Deleted clubs keep their row with DeletedAt set.
type Club struct {
	bun.BaseModel `bun:"table:clubs,alias:club"`

	ID          int64      `bun:"id,pk,autoincrement"`
	LeadID      int64      `bun:"lead_id,notnull"`
	Name        string     `bun:"name,notnull"`
	Description string     `bun:"description,notnull"`
	MaxPeople   int        `bun:"max_people,notnull"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DeletedAt   *time.Time `bun:"deleted_at"`

	MemberCount int `bun:"member_count,scanonly"`
}

// Holder implements authz.Resource
func (c *Club) Holder(role authz.Role) (int64, bool) {
	if role == authz.ClubLead {
		return c.LeadID, true
	}
	return 0, false
}

// IsDeleted reports whether the club was soft-deleted
func (c *Club) IsDeleted() bool {
	return c.DeletedAt != nil
}

// ClubJoin is a confirmed membership
type ClubJoin struct {
	bun.BaseModel `bun:"table:club_joins,alias:cj"`

	ClubID    int64     `bun:"club_id,pk"`
	UserID    int64     `bun:"user_id,pk"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// WaitingStatus is the stage of a join request
type WaitingStatus string

const (
	WaitingPending  WaitingStatus = "PENDING"
	WaitingApproved WaitingStatus = "APPROVED"
	WaitingRejected WaitingStatus = "REJECTED"
)

// ClubWaiting is a join request. REJECTED is terminal.
type ClubWaiting struct {
	bun.BaseModel `bun:"table:club_waitings,alias:cw"`

	ClubID    int64         `bun:"club_id,pk"`
	UserID    int64         `bun:"user_id,pk"`
	Status    WaitingStatus `bun:"status,notnull"`
	CreatedAt time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// MembershipState is a user's single relationship to a club
type MembershipState string

const (
	StateNone     MembershipState = "NONE"
	StatePending  MembershipState = "PENDING"
	StateMember   MembershipState = "MEMBER"
	StateRejected MembershipState = "REJECTED"
)

// Member is a confirmed member with profile details
type Member struct {
	UserID   int64     `bun:"user_id"`
	Name     string    `bun:"name"`
	JoinedAt time.Time `bun:"joined_at"`
}

// WaitingEntry is a pending join request with profile details
type WaitingEntry struct {
	UserID      int64     `bun:"user_id"`
	Name        string    `bun:"name"`
	RequestedAt time.Time `bun:"requested_at"`
}

// Decision is the lead's answer to a join request
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ListFilter narrows club listings
type ListFilter struct {
	LeadID *int64
}
