package notification

import (
	"context"

	"github.com/uptrace/bun"
)

type FakeRepo struct {
	trace []string

	CreateFunc            func(ctx context.Context, db bun.IDB, notifications []*Notification) error
	GetByIDFunc           func(ctx context.Context, id int64) (*Notification, error)
	ListByRecipientIDFunc func(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsReadFunc        func(ctx context.Context, id int64) error
	MarkAllAsReadFunc     func(ctx context.Context, recipientID int64) error
	GetUnreadCountFunc    func(ctx context.Context, recipientID int64) (int, error)
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepo) Trace() []string {
	return append([]string(nil), f.trace...)
}

func (f *FakeRepo) Create(ctx context.Context, db bun.IDB, notifications []*Notification) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, notifications)
	}
	return nil
}

func (f *FakeRepo) GetByID(ctx context.Context, id int64) (*Notification, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (f *FakeRepo) ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	f.record("ListByRecipientID")
	if f.ListByRecipientIDFunc != nil {
		return f.ListByRecipientIDFunc(ctx, recipientID, limit, offset, unreadOnly)
	}
	return nil, 0, nil
}

func (f *FakeRepo) MarkAsRead(ctx context.Context, id int64) error {
	f.record("MarkAsRead")
	if f.MarkAsReadFunc != nil {
		return f.MarkAsReadFunc(ctx, id)
	}
	return nil
}

func (f *FakeRepo) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	f.record("MarkAllAsRead")
	if f.MarkAllAsReadFunc != nil {
		return f.MarkAllAsReadFunc(ctx, recipientID)
	}
	return nil
}

func (f *FakeRepo) GetUnreadCount(ctx context.Context, recipientID int64) (int, error) {
	f.record("GetUnreadCount")
	if f.GetUnreadCountFunc != nil {
		return f.GetUnreadCountFunc(ctx, recipientID)
	}
	return 0, nil
}

var _ Repository = (*FakeRepo)(nil)
