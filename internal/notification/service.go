package notification

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/pkg/apperror"
)

// Common errors
var (
	ErrNotificationNotFound = apperror.NotFound("notification not found")
	ErrNotRecipient         = apperror.Forbidden("not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	repo Repository
}

// NewService creates a new notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Notify writes messages using db, so callers can include them in their unit of work
func (s *Service) Notify(ctx context.Context, db bun.IDB, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	rows := make([]*Notification, len(msgs))
	for i, m := range msgs {
		rows[i] = m.toModel()
	}
	return s.repo.Create(ctx, db, rows)
}

// ListByRecipientID retrieves a page of notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}
