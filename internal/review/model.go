package review

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/internal/authz"
)

// Review is a participant's score for an ended event. One per (event, user).
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:review"`

	ID          int64     `bun:"id,pk,autoincrement"`
	EventID     int64     `bun:"event_id,notnull"`
	UserID      int64     `bun:"user_id,notnull"`
	Score       int       `bun:"score,notnull"`
	Title       string    `bun:"title,notnull"`
	Description *string   `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Holder implements authz.Resource
func (r *Review) Holder(role authz.Role) (int64, bool) {
	if role == authz.ReviewAuthor {
		return r.UserID, true
	}
	return 0, false
}

// Audience is how a viewer relates to the event a review belongs to
type Audience struct {
	ClubEvent   bool
	ClubDeleted bool
	Joined      bool
	Member      bool
}

// CanSee applies the review visibility rule.
// Independent events are public. Club events are visible to their participants,
// and to current members while the club is active.
func (a Audience) CanSee() bool {
	switch {
	case !a.ClubEvent:
		return true
	case a.Joined:
		return true
	case a.ClubDeleted:
		return false
	default:
		return a.Member
	}
}

// ListFilter narrows review listings
type ListFilter struct {
	EventID *int64
	UserID  *int64
}
