package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Repository handles club, membership and join request persistence.
// Mutations take the db handle to run on so callers can group them in one unit of work;
// a nil handle falls back to the repository's connection.
type Repository interface {
	Create(ctx context.Context, db bun.IDB, c *Club) error
	GetByID(ctx context.Context, id int64) (*Club, error)
	GetByIDIncludingDeleted(ctx context.Context, id int64) (*Club, error)
	GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*Club, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Club, int, error)
	Update(ctx context.Context, db bun.IDB, c *Club) error
	UpdateLead(ctx context.Context, db bun.IDB, clubID, leadID int64) error
	SoftDelete(ctx context.Context, db bun.IDB, clubID int64) error

	AddMember(ctx context.Context, db bun.IDB, clubID, userID int64) error
	RemoveMember(ctx context.Context, db bun.IDB, clubID, userID int64) error
	RemoveAllMembers(ctx context.Context, db bun.IDB, clubID int64) error
	CountMembers(ctx context.Context, db bun.IDB, clubID int64) (int, error)
	ListMembers(ctx context.Context, clubID int64) ([]*Member, error)
	MemberIDs(ctx context.Context, db bun.IDB, clubID int64) ([]int64, error)

	MembershipState(ctx context.Context, db bun.IDB, clubID, userID int64) (MembershipState, error)
	RequestJoin(ctx context.Context, db bun.IDB, clubID, userID int64) (bool, error)
	SetWaitingStatus(ctx context.Context, db bun.IDB, clubID, userID int64, from, to WaitingStatus) (bool, error)
	RemoveAllWaitings(ctx context.Context, db bun.IDB, clubID int64) error
	ListWaiting(ctx context.Context, clubID int64) ([]*WaitingEntry, error)
}

type repository struct {
	db bun.IDB
}

// NewRepository creates a new club repository
func NewRepository(db bun.IDB) Repository {
	return &repository{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *repository) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Create inserts a club and fills in its generated columns
func (r *repository) Create(ctx context.Context, db bun.IDB, c *Club) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(c).
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create club: %w", err)
	}
	return nil
}

// GetByID retrieves an active club. A missing or deleted club is (nil, nil).
func (r *repository) GetByID(ctx context.Context, id int64) (*Club, error) {
	c := new(Club)
	err := r.db.NewSelect().
		Model(c).
		Where("club.id = ?", id).
		Where("club.deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	return c, nil
}

// GetByIDIncludingDeleted retrieves a club whether or not it was deleted
func (r *repository) GetByIDIncludingDeleted(ctx context.Context, id int64) (*Club, error) {
	c := new(Club)
	err := r.db.NewSelect().
		Model(c).
		Where("club.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	return c, nil
}

// GetForUpdate reads an active club and locks its row until the transaction ends.
// Capacity checks run under this lock so concurrent approvals for one club serialize.
func (r *repository) GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*Club, error) {
	c := new(Club)
	err := r.resolveDB(db).NewSelect().
		Model(c).
		Where("club.id = ?", id).
		Where("club.deleted_at IS NULL").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock club: %w", err)
	}
	return c, nil
}

// List retrieves active clubs with their member counts
func (r *repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Club, int, error) {
	var clubs []*Club
	q := r.db.NewSelect().
		Model(&clubs).
		ColumnExpr("club.*").
		ColumnExpr(`(SELECT count(*) FROM club_joins AS cj
			JOIN users AS u ON u.id = cj.user_id
			WHERE cj.club_id = club.id AND u.deleted_at IS NULL) AS member_count`).
		Where("club.deleted_at IS NULL")
	if filter.LeadID != nil {
		q = q.Where("club.lead_id = ?", *filter.LeadID)
	}

	total, err := q.Order("club.id ASC").Limit(limit).Offset(offset).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clubs: %w", err)
	}
	return clubs, total, nil
}

// Update writes the editable club columns
func (r *repository) Update(ctx context.Context, db bun.IDB, c *Club) error {
	c.UpdatedAt = time.Now()
	_, err := r.resolveDB(db).NewUpdate().
		Model(c).
		Column("name", "description", "max_people", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update club: %w", err)
	}
	return nil
}

func (r *repository) UpdateLead(ctx context.Context, db bun.IDB, clubID, leadID int64) error {
	_, err := r.resolveDB(db).NewUpdate().
		Model((*Club)(nil)).
		Set("lead_id = ?", leadID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", clubID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to change club lead: %w", err)
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, db bun.IDB, clubID int64) error {
	_, err := r.resolveDB(db).NewUpdate().
		Model((*Club)(nil)).
		Set("deleted_at = ?", time.Now()).
		Where("id = ?", clubID).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete club: %w", err)
	}
	return nil
}

// AddMember inserts a ClubJoin row
func (r *repository) AddMember(ctx context.Context, db bun.IDB, clubID, userID int64) error {
	_, err := r.resolveDB(db).ExecContext(ctx,
		"INSERT INTO club_joins (club_id, user_id) VALUES (?, ?)", clubID, userID)
	if err != nil {
		return fmt.Errorf("failed to add club member: %w", err)
	}
	return nil
}

func (r *repository) RemoveMember(ctx context.Context, db bun.IDB, clubID, userID int64) error {
	_, err := r.resolveDB(db).NewDelete().
		Model((*ClubJoin)(nil)).
		Where("club_id = ?", clubID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove club member: %w", err)
	}
	return nil
}

func (r *repository) RemoveAllMembers(ctx context.Context, db bun.IDB, clubID int64) error {
	_, err := r.resolveDB(db).NewDelete().
		Model((*ClubJoin)(nil)).
		Where("club_id = ?", clubID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove club members: %w", err)
	}
	return nil
}

// CountMembers counts ClubJoin rows of users that are not deleted
func (r *repository) CountMembers(ctx context.Context, db bun.IDB, clubID int64) (int, error) {
	count, err := r.resolveDB(db).NewSelect().
		TableExpr("club_joins AS cj").
		Join("JOIN users AS u ON u.id = cj.user_id").
		Where("cj.club_id = ?", clubID).
		Where("u.deleted_at IS NULL").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count club members: %w", err)
	}
	return count, nil
}

func (r *repository) ListMembers(ctx context.Context, clubID int64) ([]*Member, error) {
	var members []*Member
	err := r.db.NewSelect().
		TableExpr("club_joins AS cj").
		ColumnExpr("cj.user_id, u.name, cj.created_at AS joined_at").
		Join("JOIN users AS u ON u.id = cj.user_id").
		Where("cj.club_id = ?", clubID).
		Where("u.deleted_at IS NULL").
		OrderExpr("cj.created_at ASC, cj.user_id ASC").
		Scan(ctx, &members)
	if err != nil {
		return nil, fmt.Errorf("failed to list club members: %w", err)
	}
	return members, nil
}

func (r *repository) MemberIDs(ctx context.Context, db bun.IDB, clubID int64) ([]int64, error) {
	var ids []int64
	err := r.resolveDB(db).NewSelect().
		TableExpr("club_joins AS cj").
		Column("cj.user_id").
		Join("JOIN users AS u ON u.id = cj.user_id").
		Where("cj.club_id = ?", clubID).
		Where("u.deleted_at IS NULL").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list club member ids: %w", err)
	}
	return ids, nil
}

// MembershipState reads both membership tables in one round trip.
// A ClubJoin row of an active user wins; otherwise the request status decides,
// and an APPROVED request without a ClubJoin (the user left) reads as NONE.
// Rows of deleted users are ignored in both tables.
func (r *repository) MembershipState(ctx context.Context, db bun.IDB, clubID, userID int64) (MembershipState, error) {
	var (
		member bool
		status sql.NullString
	)
	err := r.resolveDB(db).QueryRowContext(ctx, `
		SELECT
			EXISTS (
				SELECT 1 FROM club_joins AS cj
				JOIN users AS u ON u.id = cj.user_id
				WHERE cj.club_id = ? AND cj.user_id = ? AND u.deleted_at IS NULL
			),
			(
				SELECT cw.status FROM club_waitings AS cw
				JOIN users AS u ON u.id = cw.user_id
				WHERE cw.club_id = ? AND cw.user_id = ? AND u.deleted_at IS NULL
			)`,
		clubID, userID, clubID, userID,
	).Scan(&member, &status)
	if err != nil {
		return "", fmt.Errorf("failed to read membership state: %w", err)
	}
	return resolveState(member, status), nil
}

func resolveState(member bool, status sql.NullString) MembershipState {
	if member {
		return StateMember
	}
	if !status.Valid {
		return StateNone
	}
	switch WaitingStatus(status.String) {
	case WaitingPending:
		return StatePending
	case WaitingRejected:
		return StateRejected
	default:
		return StateNone
	}
}

// RequestJoin creates a PENDING request, or reopens an APPROVED one left behind by an exit.
// It reports false when a PENDING or REJECTED request already holds the slot.
func (r *repository) RequestJoin(ctx context.Context, db bun.IDB, clubID, userID int64) (bool, error) {
	res, err := r.resolveDB(db).ExecContext(ctx, `
		INSERT INTO club_waitings (club_id, user_id, status)
		VALUES (?, ?, 'PENDING')
		ON CONFLICT (club_id, user_id) DO UPDATE
			SET status = 'PENDING', updated_at = NOW()
			WHERE club_waitings.status = 'APPROVED'`,
		clubID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to request club join: %w", err)
	}
	return affected(res)
}

// SetWaitingStatus moves a request from one status to another.
// It reports false when the request was not in the from status.
func (r *repository) SetWaitingStatus(ctx context.Context, db bun.IDB, clubID, userID int64, from, to WaitingStatus) (bool, error) {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*ClubWaiting)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", time.Now()).
		Where("club_id = ?", clubID).
		Where("user_id = ?", userID).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to update club waiting: %w", err)
	}
	return affected(res)
}

func (r *repository) RemoveAllWaitings(ctx context.Context, db bun.IDB, clubID int64) error {
	_, err := r.resolveDB(db).NewDelete().
		Model((*ClubWaiting)(nil)).
		Where("club_id = ?", clubID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove club waitings: %w", err)
	}
	return nil
}

// ListWaiting lists PENDING requests of users that are not deleted, oldest first
func (r *repository) ListWaiting(ctx context.Context, clubID int64) ([]*WaitingEntry, error) {
	var entries []*WaitingEntry
	err := r.db.NewSelect().
		TableExpr("club_waitings AS cw").
		ColumnExpr("cw.user_id, u.name, cw.updated_at AS requested_at").
		Join("JOIN users AS u ON u.id = cw.user_id").
		Where("cw.club_id = ?", clubID).
		Where("cw.status = ?", WaitingPending).
		Where("u.deleted_at IS NULL").
		OrderExpr("cw.updated_at ASC, cw.user_id ASC").
		Scan(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to list club waitings: %w", err)
	}
	return entries, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
