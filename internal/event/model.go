package event

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/internal/authz"
)

// Status is derived from the event window at read time
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
)

// Event is a time-boxed gathering. ClubID is nil for independent events.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:event"`

	ID          int64     `bun:"id,pk,autoincrement"`
	HostID      int64     `bun:"host_id,notnull"`
	ClubID      *int64    `bun:"club_id"`
	CategoryID  int64     `bun:"category_id,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull"`
	StartTime   time.Time `bun:"start_time,notnull"`
	EndTime     time.Time `bun:"end_time,notnull"`
	MaxPeople   int       `bun:"max_people,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	CityIDs      []int64        `bun:"-"`
	Participants []*Participant `bun:"-"`
}

// Holder implements authz.Resource
func (e *Event) Holder(role authz.Role) (int64, bool) {
	if role == authz.EventHost {
		return e.HostID, true
	}
	return 0, false
}

// Started reports whether the event start time has been reached at now
func (e *Event) Started(now time.Time) bool {
	return !now.Before(e.StartTime)
}

// Ended reports whether the event end time has been reached at now
func (e *Event) Ended(now time.Time) bool {
	return !now.Before(e.EndTime)
}

// StatusAt derives the event status at now
func (e *Event) StatusAt(now time.Time) Status {
	switch {
	case !e.Started(now):
		return StatusPending
	case !e.Ended(now):
		return StatusOngoing
	default:
		return StatusCompleted
	}
}

// EventJoin is a participation row. The host holds one from creation.
type EventJoin struct {
	bun.BaseModel `bun:"table:event_joins,alias:ej"`

	EventID   int64     `bun:"event_id,pk"`
	UserID    int64     `bun:"user_id,pk"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type EventCity struct {
	bun.BaseModel `bun:"table:event_cities,alias:ec"`

	EventID int64 `bun:"event_id,pk"`
	CityID  int64 `bun:"city_id,pk"`
}

// Participant is a joined user with profile details
type Participant struct {
	UserID int64  `bun:"user_id"`
	Name   string `bun:"name"`
}

// ListFilter narrows event listings. Nil fields are ignored.
type ListFilter struct {
	HostID     *int64
	CategoryID *int64
	CityID     *int64
	ClubID     *int64
}
