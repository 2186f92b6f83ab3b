package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Repository handles review persistence
type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	Exists(ctx context.Context, eventID, userID int64) (bool, error)
	ListVisible(ctx context.Context, viewerID int64, filter ListFilter, limit, offset int) ([]*Review, int, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db bun.IDB
}

// NewRepository creates a new review repository
func NewRepository(db bun.IDB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rv *Review) error {
	_, err := r.db.NewInsert().
		Model(rv).
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetByID retrieves a review. A missing review is (nil, nil).
func (r *repository) GetByID(ctx context.Context, id int64) (*Review, error) {
	rv := new(Review)
	err := r.db.NewSelect().Model(rv).Where("review.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return rv, nil
}

func (r *repository) Exists(ctx context.Context, eventID, userID int64) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Review)(nil)).
		Where("event_id = ?", eventID).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return exists, nil
}

// ListVisible lists the reviews viewerID may see, evaluating Audience.CanSee in SQL
// so pagination counts only visible rows.
func (r *repository) ListVisible(ctx context.Context, viewerID int64, filter ListFilter, limit, offset int) ([]*Review, int, error) {
	var reviews []*Review
	q := r.db.NewSelect().
		Model(&reviews).
		Join("JOIN events AS e ON e.id = review.event_id").
		Join("LEFT JOIN clubs AS c ON c.id = e.club_id").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("e.club_id IS NULL").
				WhereOr("EXISTS (SELECT 1 FROM event_joins AS ej WHERE ej.event_id = e.id AND ej.user_id = ?)", viewerID).
				WhereOr(`c.deleted_at IS NULL AND EXISTS (
					SELECT 1 FROM club_joins AS cj
					JOIN users AS u ON u.id = cj.user_id
					WHERE cj.club_id = c.id AND cj.user_id = ? AND u.deleted_at IS NULL)`, viewerID)
		})
	if filter.EventID != nil {
		q = q.Where("review.event_id = ?", *filter.EventID)
	}
	if filter.UserID != nil {
		q = q.Where("review.user_id = ?", *filter.UserID)
	}

	total, err := q.Order("review.id DESC").Limit(limit).Offset(offset).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *repository) Update(ctx context.Context, rv *Review) error {
	rv.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(rv).
		Column("score", "title", "description", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().Model((*Review)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}
