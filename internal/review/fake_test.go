package review

import (
	"context"
	"sort"

	"github.com/fkhayef/meetup/internal/club"
	"github.com/fkhayef/meetup/internal/event"
)

type FakeRepo struct {
	trace []string

	reviews map[int64]*Review
	nextID  int64

	CreateFunc      func(ctx context.Context, r *Review) error
	ListVisibleFunc func(ctx context.Context, viewerID int64, filter ListFilter, limit, offset int) ([]*Review, int, error)
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{reviews: make(map[int64]*Review)}
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepo) Trace() []string {
	return append([]string(nil), f.trace...)
}

func (f *FakeRepo) seed(r *Review) *Review {
	f.nextID++
	r.ID = f.nextID
	f.reviews[r.ID] = r
	return r
}

func (f *FakeRepo) Create(ctx context.Context, r *Review) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, r)
	}
	stored := *r
	f.seed(&stored)
	r.ID = stored.ID
	return nil
}

func (f *FakeRepo) GetByID(ctx context.Context, id int64) (*Review, error) {
	f.record("GetByID")
	r, ok := f.reviews[id]
	if !ok {
		return nil, nil
	}
	out := *r
	return &out, nil
}

func (f *FakeRepo) Exists(ctx context.Context, eventID, userID int64) (bool, error) {
	f.record("Exists")
	for _, r := range f.reviews {
		if r.EventID == eventID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeRepo) ListVisible(ctx context.Context, viewerID int64, filter ListFilter, limit, offset int) ([]*Review, int, error) {
	f.record("ListVisible")
	if f.ListVisibleFunc != nil {
		return f.ListVisibleFunc(ctx, viewerID, filter, limit, offset)
	}
	var out []*Review
	for _, r := range f.reviews {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *FakeRepo) Update(ctx context.Context, r *Review) error {
	f.record("Update")
	stored := *r
	f.reviews[r.ID] = &stored
	return nil
}

func (f *FakeRepo) Delete(ctx context.Context, id int64) error {
	f.record("Delete")
	delete(f.reviews, id)
	return nil
}

var _ Repository = (*FakeRepo)(nil)

type FakeEvents struct {
	Events map[int64]*event.Event
	Joined map[int64][]int64
}

func (f *FakeEvents) Lookup(ctx context.Context, id int64) (*event.Event, error) {
	return f.Events[id], nil
}

func (f *FakeEvents) HasJoined(ctx context.Context, eventID, userID int64) (bool, error) {
	for _, id := range f.Joined[eventID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

var _ EventReader = (*FakeEvents)(nil)

type FakeClubs struct {
	Clubs   map[int64]*club.Club
	Members map[int64][]int64
}

func (f *FakeClubs) Lookup(ctx context.Context, id int64) (*club.Club, error) {
	return f.Clubs[id], nil
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
