package club

import (
	"time"

	"github.com/oapi-codegen/nullable"
)

// CreateClubRequest represents the request body for creating a club
type CreateClubRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	MaxPeople   int    `json:"max_people" validate:"required,min=2"`
}

// PatchClubRequest represents a partial update. Omitted fields are unchanged, null is rejected.
type PatchClubRequest struct {
	Name        nullable.Nullable[string] `json:"name" swaggertype:"string"`
	Description nullable.Nullable[string] `json:"description" swaggertype:"string"`
	MaxPeople   nullable.Nullable[int]    `json:"max_people" swaggertype:"integer"`
}

// DecideJoinRequest represents the lead's decision on a pending join request
type DecideJoinRequest struct {
	UserID   int64    `json:"user_id" validate:"required,gt=0"`
	Decision Decision `json:"decision" validate:"required"`
}

// ChangeLeadRequest names the member who becomes lead
type ChangeLeadRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// ClubResponse represents a club in API responses
type ClubResponse struct {
	ID          int64  `json:"id"`
	LeadID      int64  `json:"lead_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxPeople   int    `json:"max_people"`
	MemberCount int    `json:"member_count"`
	CreatedAt   string `json:"created_at"`
}

// MemberResponse represents a confirmed club member
type MemberResponse struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	JoinedAt string `json:"joined_at"`
}

// WaitingResponse represents a pending join request
type WaitingResponse struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	RequestedAt string `json:"requested_at"`
}

// MembershipResponse represents the caller's relationship to a club
type MembershipResponse struct {
	ClubID int64           `json:"club_id"`
	UserID int64           `json:"user_id"`
	State  MembershipState `json:"state"`
}

// ToResponse converts a Club model to a ClubResponse DTO
func (c *Club) ToResponse() *ClubResponse {
	return &ClubResponse{
		ID:          c.ID,
		LeadID:      c.LeadID,
		Name:        c.Name,
		Description: c.Description,
		MaxPeople:   c.MaxPeople,
		MemberCount: c.MemberCount,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		JoinedAt: m.JoinedAt.UTC().Format(time.RFC3339),
	}
}

func (w *WaitingEntry) ToResponse() *WaitingResponse {
	return &WaitingResponse{
		UserID:      w.UserID,
		Name:        w.Name,
		RequestedAt: w.RequestedAt.UTC().Format(time.RFC3339),
	}
}
