package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Repository handles user data persistence. Reads only see users that are not deleted.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	db bun.IDB
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db bun.IDB) Repository {
	return &repository{db: db}
}

// Create inserts a new user into the database
func (r *repository) Create(ctx context.Context, u *User) error {
	if _, err := r.db.NewInsert().Model(u).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves an active user by their ID
func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	u := new(User)
	err := r.db.NewSelect().
		Model(u).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// ExistsByEmail reports whether any user row, deleted or not, holds the email
func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*User)(nil)).
		Where("email = ?", email).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check user email: %w", err)
	}
	return exists, nil
}

// List retrieves active users with pagination
func (r *repository) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var users []*User
	total, err := r.db.NewSelect().
		Model(&users).
		Where("deleted_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Update writes the mutable profile columns
func (r *repository) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(u).
		Column("name", "email", "birthday", "city_id", "category_id", "updated_at").
		WherePK().
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SoftDelete marks a user deleted
func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("deleted_at = ?", time.Now()).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
