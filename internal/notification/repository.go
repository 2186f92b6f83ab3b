package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// Repository handles notification data persistence
type Repository interface {
	Create(ctx context.Context, db bun.IDB, notifications []*Notification) error
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, recipientID int64) error
	GetUnreadCount(ctx context.Context, recipientID int64) (int, error)
}

type repository struct {
	db bun.IDB
}

// NewRepository creates a new notification repository
func NewRepository(db bun.IDB) Repository {
	return &repository{db: db}
}

func (r *repository) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Create inserts notifications, inside tx when one is given
func (r *repository) Create(ctx context.Context, db bun.IDB, notifications []*Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if _, err := r.resolveDB(db).NewInsert().Model(&notifications).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// GetByID retrieves a notification by its ID
func (r *repository) GetByID(ctx context.Context, id int64) (*Notification, error) {
	n := new(Notification)
	if err := r.db.NewSelect().Model(n).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListByRecipientID retrieves a page of notifications for a user, newest first
func (r *repository) ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	var notifications []*Notification
	q := r.db.NewSelect().
		Model(&notifications).
		Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = false")
	}

	total, err := q.Order("created_at DESC", "id DESC").Limit(limit).Offset(offset).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkAsRead marks a notification as read
func (r *repository) MarkAsRead(ctx context.Context, id int64) error {
	_, err := r.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("is_read = true").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *repository) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	_, err := r.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("is_read = true").
		Where("recipient_id = ?", recipientID).
		Where("is_read = false").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *repository) GetUnreadCount(ctx context.Context, recipientID int64) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Notification)(nil)).
		Where("recipient_id = ?", recipientID).
		Where("is_read = false").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
