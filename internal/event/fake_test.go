package event

import (
	"context"
	"sort"
	"time"

	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/internal/club"
)

type join struct {
	eventID int64
	userID  int64
}

// FakeRepo is an in-memory Repository. Func fields override single steps.
type FakeRepo struct {
	trace []string

	events map[int64]*Event
	joins  map[join]bool
	nextID int64

	AddParticipantFunc func(ctx context.Context, eventID, userID int64) error
	ReplaceCitiesFunc  func(ctx context.Context, eventID int64, cityIDs []int64) error
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		events: make(map[int64]*Event),
		joins:  make(map[join]bool),
	}
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepo) Trace() []string {
	return append([]string(nil), f.trace...)
}

// seed stores an event with its host joined, without tracing
func (f *FakeRepo) seed(e *Event) *Event {
	f.nextID++
	e.ID = f.nextID
	f.events[e.ID] = e
	f.joins[join{e.ID, e.HostID}] = true
	return e
}

func (f *FakeRepo) participantsOf(eventID int64) []int64 {
	var ids []int64
	for k := range f.joins {
		if k.eventID == eventID {
			ids = append(ids, k.userID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *FakeRepo) copyOf(id int64) *Event {
	e, ok := f.events[id]
	if !ok {
		return nil
	}
	out := *e
	out.CityIDs = append([]int64(nil), e.CityIDs...)
	return &out
}

func (f *FakeRepo) Create(ctx context.Context, db bun.IDB, e *Event) error {
	f.record("Create")
	f.nextID++
	e.ID = f.nextID
	stored := *e
	stored.CityIDs = nil
	f.events[e.ID] = &stored
	return nil
}

func (f *FakeRepo) GetByID(ctx context.Context, id int64) (*Event, error) {
	f.record("GetByID")
	return f.copyOf(id), nil
}

func (f *FakeRepo) GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*Event, error) {
	f.record("GetForUpdate")
	return f.copyOf(id), nil
}

func (f *FakeRepo) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Event, int, error) {
	f.record("List")
	var out []*Event
	for id, e := range f.events {
		if filter.ClubID != nil && (e.ClubID == nil || *e.ClubID != *filter.ClubID) {
			continue
		}
		if filter.HostID != nil && e.HostID != *filter.HostID {
			continue
		}
		out = append(out, f.copyOf(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *FakeRepo) ListJoinedBy(ctx context.Context, userID int64) ([]*Event, error) {
	f.record("ListJoinedBy")
	var out []*Event
	for k := range f.joins {
		if k.userID == userID {
			out = append(out, f.copyOf(k.eventID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeRepo) Update(ctx context.Context, db bun.IDB, e *Event) error {
	f.record("Update")
	stored := *e
	stored.CityIDs = f.events[e.ID].CityIDs
	f.events[e.ID] = &stored
	return nil
}

func (f *FakeRepo) Delete(ctx context.Context, db bun.IDB, ids ...int64) error {
	f.record("Delete")
	for _, id := range ids {
		delete(f.events, id)
		for k := range f.joins {
			if k.eventID == id {
				delete(f.joins, k)
			}
		}
	}
	return nil
}

func (f *FakeRepo) ReplaceCities(ctx context.Context, db bun.IDB, eventID int64, cityIDs []int64) error {
	f.record("ReplaceCities")
	if f.ReplaceCitiesFunc != nil {
		return f.ReplaceCitiesFunc(ctx, eventID, cityIDs)
	}
	f.events[eventID].CityIDs = append([]int64(nil), cityIDs...)
	return nil
}

func (f *FakeRepo) AddParticipant(ctx context.Context, db bun.IDB, eventID, userID int64) error {
	f.record("AddParticipant")
	if f.AddParticipantFunc != nil {
		return f.AddParticipantFunc(ctx, eventID, userID)
	}
	f.joins[join{eventID, userID}] = true
	return nil
}

func (f *FakeRepo) RemoveParticipant(ctx context.Context, db bun.IDB, eventID, userID int64) error {
	f.record("RemoveParticipant")
	delete(f.joins, join{eventID, userID})
	return nil
}

func (f *FakeRepo) IsParticipant(ctx context.Context, db bun.IDB, eventID, userID int64) (bool, error) {
	f.record("IsParticipant")
	return f.joins[join{eventID, userID}], nil
}

func (f *FakeRepo) CountParticipants(ctx context.Context, db bun.IDB, eventID int64) (int, error) {
	f.record("CountParticipants")
	return len(f.participantsOf(eventID)), nil
}

func (f *FakeRepo) ListParticipants(ctx context.Context, eventID int64) ([]*Participant, error) {
	f.record("ListParticipants")
	var out []*Participant
	for _, id := range f.participantsOf(eventID) {
		out = append(out, &Participant{UserID: id})
	}
	return out, nil
}

func (f *FakeRepo) LeaveClubEvents(ctx context.Context, db bun.IDB, clubID, userID int64, startedBefore *time.Time) (int, int, error) {
	f.record("LeaveClubEvents")
	return 0, 0, nil
}

func (f *FakeRepo) DeleteUpcomingClubEvents(ctx context.Context, db bun.IDB, clubID int64, now time.Time) (int, error) {
	f.record("DeleteUpcomingClubEvents")
	return 0, nil
}

var _ Repository = (*FakeRepo)(nil)

// FakeClubs answers club lookups from fixed sets
type FakeClubs struct {
	Active  map[int64]bool
	Members map[int64][]int64
}

func (f *FakeClubs) GetClub(ctx context.Context, id int64) (*club.Club, error) {
	if !f.Active[id] {
		return nil, club.ErrClubNotFound
	}
	return &club.Club{ID: id}, nil
}

func (f *FakeClubs) IsMember(ctx context.Context, clubID, userID int64) (bool, error) {
	for _, id := range f.Members[clubID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

var _ ClubReader = (*FakeClubs)(nil)

// FakeRegions accepts every id unless a func is set
type FakeRegions struct {
	EnsureCategoryFunc func(ctx context.Context, id int64) error
	EnsureCitiesFunc   func(ctx context.Context, ids []int64) error
}

func (f *FakeRegions) EnsureCategory(ctx context.Context, id int64) error {
	if f.EnsureCategoryFunc != nil {
		return f.EnsureCategoryFunc(ctx, id)
	}
	return nil
}

func (f *FakeRegions) EnsureCities(ctx context.Context, ids []int64) error {
	if f.EnsureCitiesFunc != nil {
		return f.EnsureCitiesFunc(ctx, ids)
	}
	return nil
}

var _ RegionChecker = (*FakeRegions)(nil)
