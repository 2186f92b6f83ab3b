package club

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/internal/notification"
)

type pair struct {
	clubID int64
	userID int64
}

// FakeRepo is an in-memory Repository. Func fields override single steps.
type FakeRepo struct {
	trace []string

	clubs    map[int64]*Club
	members  map[pair]time.Time
	waitings map[pair]WaitingStatus
	nextID   int64

	AddMemberFunc        func(ctx context.Context, clubID, userID int64) error
	SetWaitingStatusFunc func(ctx context.Context, clubID, userID int64, from, to WaitingStatus) (bool, error)
	SoftDeleteFunc       func(ctx context.Context, clubID int64) error
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		clubs:    make(map[int64]*Club),
		members:  make(map[pair]time.Time),
		waitings: make(map[pair]WaitingStatus),
	}
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepo) Trace() []string {
	return append([]string(nil), f.trace...)
}

// seed stores a club and its lead membership without tracing
func (f *FakeRepo) seed(c *Club) *Club {
	f.nextID++
	c.ID = f.nextID
	f.clubs[c.ID] = c
	f.members[pair{c.ID, c.LeadID}] = time.Now()
	return c
}

func (f *FakeRepo) Create(ctx context.Context, db bun.IDB, c *Club) error {
	f.record("Create")
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	stored := *c
	f.clubs[c.ID] = &stored
	return nil
}

func (f *FakeRepo) GetByID(ctx context.Context, id int64) (*Club, error) {
	f.record("GetByID")
	c, ok := f.clubs[id]
	if !ok || c.IsDeleted() {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (f *FakeRepo) GetByIDIncludingDeleted(ctx context.Context, id int64) (*Club, error) {
	f.record("GetByIDIncludingDeleted")
	c, ok := f.clubs[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (f *FakeRepo) GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*Club, error) {
	f.record("GetForUpdate")
	c, ok := f.clubs[id]
	if !ok || c.IsDeleted() {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (f *FakeRepo) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Club, int, error) {
	f.record("List")
	var out []*Club
	for _, c := range f.clubs {
		if c.IsDeleted() {
			continue
		}
		if filter.LeadID != nil && c.LeadID != *filter.LeadID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *FakeRepo) Update(ctx context.Context, db bun.IDB, c *Club) error {
	f.record("Update")
	stored := *c
	f.clubs[c.ID] = &stored
	return nil
}

func (f *FakeRepo) UpdateLead(ctx context.Context, db bun.IDB, clubID, leadID int64) error {
	f.record("UpdateLead")
	f.clubs[clubID].LeadID = leadID
	return nil
}

func (f *FakeRepo) SoftDelete(ctx context.Context, db bun.IDB, clubID int64) error {
	f.record("SoftDelete")
	if f.SoftDeleteFunc != nil {
		return f.SoftDeleteFunc(ctx, clubID)
	}
	now := time.Now()
	f.clubs[clubID].DeletedAt = &now
	return nil
}

func (f *FakeRepo) AddMember(ctx context.Context, db bun.IDB, clubID, userID int64) error {
	f.record("AddMember")
	if f.AddMemberFunc != nil {
		return f.AddMemberFunc(ctx, clubID, userID)
	}
	f.members[pair{clubID, userID}] = time.Now()
	return nil
}

func (f *FakeRepo) RemoveMember(ctx context.Context, db bun.IDB, clubID, userID int64) error {
	f.record("RemoveMember")
	delete(f.members, pair{clubID, userID})
	return nil
}

func (f *FakeRepo) RemoveAllMembers(ctx context.Context, db bun.IDB, clubID int64) error {
	f.record("RemoveAllMembers")
	for k := range f.members {
		if k.clubID == clubID {
			delete(f.members, k)
		}
	}
	return nil
}

func (f *FakeRepo) CountMembers(ctx context.Context, db bun.IDB, clubID int64) (int, error) {
	f.record("CountMembers")
	return len(f.MemberIDsOf(clubID)), nil
}

func (f *FakeRepo) ListMembers(ctx context.Context, clubID int64) ([]*Member, error) {
	f.record("ListMembers")
	var out []*Member
	for _, id := range f.MemberIDsOf(clubID) {
		out = append(out, &Member{UserID: id, JoinedAt: f.members[pair{clubID, id}]})
	}
	return out, nil
}

func (f *FakeRepo) MemberIDs(ctx context.Context, db bun.IDB, clubID int64) ([]int64, error) {
	f.record("MemberIDs")
	return f.MemberIDsOf(clubID), nil
}

// MemberIDsOf reads membership without tracing
func (f *FakeRepo) MemberIDsOf(clubID int64) []int64 {
	var ids []int64
	for k := range f.members {
		if k.clubID == clubID {
			ids = append(ids, k.userID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *FakeRepo) MembershipState(ctx context.Context, db bun.IDB, clubID, userID int64) (MembershipState, error) {
	f.record("MembershipState")
	return f.stateOf(clubID, userID), nil
}

func (f *FakeRepo) stateOf(clubID, userID int64) MembershipState {
	_, member := f.members[pair{clubID, userID}]
	status, ok := f.waitings[pair{clubID, userID}]
	return resolveState(member, sql.NullString{String: string(status), Valid: ok})
}

func (f *FakeRepo) RequestJoin(ctx context.Context, db bun.IDB, clubID, userID int64) (bool, error) {
	f.record("RequestJoin")
	status, ok := f.waitings[pair{clubID, userID}]
	if ok && status != WaitingApproved {
		return false, nil
	}
	f.waitings[pair{clubID, userID}] = WaitingPending
	return true, nil
}

func (f *FakeRepo) SetWaitingStatus(ctx context.Context, db bun.IDB, clubID, userID int64, from, to WaitingStatus) (bool, error) {
	f.record("SetWaitingStatus")
	if f.SetWaitingStatusFunc != nil {
		return f.SetWaitingStatusFunc(ctx, clubID, userID, from, to)
	}
	if f.waitings[pair{clubID, userID}] != from {
		return false, nil
	}
	f.waitings[pair{clubID, userID}] = to
	return true, nil
}

func (f *FakeRepo) RemoveAllWaitings(ctx context.Context, db bun.IDB, clubID int64) error {
	f.record("RemoveAllWaitings")
	for k := range f.waitings {
		if k.clubID == clubID {
			delete(f.waitings, k)
		}
	}
	return nil
}

func (f *FakeRepo) ListWaiting(ctx context.Context, clubID int64) ([]*WaitingEntry, error) {
	f.record("ListWaiting")
	var out []*WaitingEntry
	for k, status := range f.waitings {
		if k.clubID == clubID && status == WaitingPending {
			out = append(out, &WaitingEntry{UserID: k.userID})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

var _ Repository = (*FakeRepo)(nil)

// FakeEvents records the cascade calls made by the club service
type FakeEvents struct {
	LeaveCalls    []*time.Time
	DeleteCalls   []time.Time
	LeaveClubFunc func(ctx context.Context, clubID, userID int64, startedBefore *time.Time) (int, int, error)
}

func (f *FakeEvents) LeaveClubEvents(ctx context.Context, db bun.IDB, clubID, userID int64, startedBefore *time.Time) (int, int, error) {
	f.LeaveCalls = append(f.LeaveCalls, startedBefore)
	if f.LeaveClubFunc != nil {
		return f.LeaveClubFunc(ctx, clubID, userID, startedBefore)
	}
	return 0, 0, nil
}

func (f *FakeEvents) DeleteUpcomingClubEvents(ctx context.Context, db bun.IDB, clubID int64, now time.Time) (int, error) {
	f.DeleteCalls = append(f.DeleteCalls, now)
	return 0, nil
}

var _ EventCleaner = (*FakeEvents)(nil)

// FakeNotifier collects messages instead of storing them
type FakeNotifier struct {
	Sent []notification.Message
}

func (f *FakeNotifier) Notify(ctx context.Context, db bun.IDB, msgs ...notification.Message) error {
	f.Sent = append(f.Sent, msgs...)
	return nil
}

func (f *FakeNotifier) Types() []notification.Type {
	var out []notification.Type
	for _, m := range f.Sent {
		out = append(out, m.Type)
	}
	return out
}

var _ Notifier = (*FakeNotifier)(nil)
