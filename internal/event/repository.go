package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Repository handles event, participation and city persistence.
// Mutations take the db handle to run on; a nil handle falls back to the repository's connection.
type Repository interface {
	Create(ctx context.Context, db bun.IDB, e *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*Event, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Event, int, error)
	ListJoinedBy(ctx context.Context, userID int64) ([]*Event, error)
	Update(ctx context.Context, db bun.IDB, e *Event) error
	Delete(ctx context.Context, db bun.IDB, ids ...int64) error
	ReplaceCities(ctx context.Context, db bun.IDB, eventID int64, cityIDs []int64) error

	AddParticipant(ctx context.Context, db bun.IDB, eventID, userID int64) error
	RemoveParticipant(ctx context.Context, db bun.IDB, eventID, userID int64) error
	IsParticipant(ctx context.Context, db bun.IDB, eventID, userID int64) (bool, error)
	CountParticipants(ctx context.Context, db bun.IDB, eventID int64) (int, error)
	ListParticipants(ctx context.Context, eventID int64) ([]*Participant, error)

	LeaveClubEvents(ctx context.Context, db bun.IDB, clubID, userID int64, startedBefore *time.Time) (deleted, left int, err error)
	DeleteUpcomingClubEvents(ctx context.Context, db bun.IDB, clubID int64, now time.Time) (int, error)
}

type repository struct {
	db bun.IDB
}

// NewRepository creates a new event repository
func NewRepository(db bun.IDB) Repository {
	return &repository{db: db}
}

func (r *repository) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *repository) Create(ctx context.Context, db bun.IDB, e *Event) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(e).
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event with its city ids. A missing event is (nil, nil).
func (r *repository) GetByID(ctx context.Context, id int64) (*Event, error) {
	e := new(Event)
	err := r.db.NewSelect().Model(e).Where("event.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if err := r.loadCities(ctx, r.db, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetForUpdate reads an event and locks its row until the transaction ends
func (r *repository) GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*Event, error) {
	e := new(Event)
	err := r.resolveDB(db).NewSelect().Model(e).Where("event.id = ?", id).For("UPDATE").Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}
	return e, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Event, int, error) {
	var events []*Event
	q := r.db.NewSelect().Model(&events)
	if filter.HostID != nil {
		q = q.Where("event.host_id = ?", *filter.HostID)
	}
	if filter.CategoryID != nil {
		q = q.Where("event.category_id = ?", *filter.CategoryID)
	}
	if filter.ClubID != nil {
		q = q.Where("event.club_id = ?", *filter.ClubID)
	}
	if filter.CityID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM event_cities AS ec WHERE ec.event_id = event.id AND ec.city_id = ?)", *filter.CityID)
	}

	total, err := q.Order("event.start_time ASC", "event.id ASC").Limit(limit).Offset(offset).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	if err := r.loadCities(ctx, r.db, events...); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListJoinedBy returns the events userID participates in, hosted ones included
func (r *repository) ListJoinedBy(ctx context.Context, userID int64) ([]*Event, error) {
	var events []*Event
	err := r.db.NewSelect().
		Model(&events).
		Join("JOIN event_joins AS ej ON ej.event_id = event.id").
		Where("ej.user_id = ?", userID).
		Order("event.start_time ASC", "event.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined events: %w", err)
	}
	if err := r.loadCities(ctx, r.db, events...); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) Update(ctx context.Context, db bun.IDB, e *Event) error {
	e.UpdatedAt = time.Now()
	_, err := r.resolveDB(db).NewUpdate().
		Model(e).
		Column("category_id", "title", "description", "start_time", "end_time", "max_people", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// Delete removes events with their joins and cities. Reviews go with the event row.
func (r *repository) Delete(ctx context.Context, db bun.IDB, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	idb := r.resolveDB(db)

	if _, err := idb.NewDelete().Model((*EventJoin)(nil)).Where("event_id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete event joins: %w", err)
	}
	if _, err := idb.NewDelete().Model((*EventCity)(nil)).Where("event_id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete event cities: %w", err)
	}
	if _, err := idb.NewDelete().Model((*Event)(nil)).Where("id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}

// ReplaceCities swaps the event's city set for cityIDs
func (r *repository) ReplaceCities(ctx context.Context, db bun.IDB, eventID int64, cityIDs []int64) error {
	idb := r.resolveDB(db)
	if _, err := idb.NewDelete().Model((*EventCity)(nil)).Where("event_id = ?", eventID).Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear event cities: %w", err)
	}
	if len(cityIDs) == 0 {
		return nil
	}

	rows := make([]*EventCity, len(cityIDs))
	for i, id := range cityIDs {
		rows[i] = &EventCity{EventID: eventID, CityID: id}
	}
	if _, err := idb.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert event cities: %w", err)
	}
	return nil
}

func (r *repository) loadCities(ctx context.Context, db bun.IDB, events ...*Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[int64]*Event, len(events))
	ids := make([]int64, len(events))
	for i, e := range events {
		byID[e.ID] = e
		ids[i] = e.ID
		e.CityIDs = []int64{}
	}

	var rows []*EventCity
	err := db.NewSelect().
		Model(&rows).
		Where("ec.event_id IN (?)", bun.In(ids)).
		Order("ec.city_id ASC").
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to load event cities: %w", err)
	}
	for _, row := range rows {
		if e, ok := byID[row.EventID]; ok {
			e.CityIDs = append(e.CityIDs, row.CityID)
		}
	}
	return nil
}

func (r *repository) AddParticipant(ctx context.Context, db bun.IDB, eventID, userID int64) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(&EventJoin{EventID: eventID, UserID: userID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to join event: %w", err)
	}
	return nil
}

func (r *repository) RemoveParticipant(ctx context.Context, db bun.IDB, eventID, userID int64) error {
	_, err := r.resolveDB(db).NewDelete().
		Model((*EventJoin)(nil)).
		Where("event_id = ?", eventID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to leave event: %w", err)
	}
	return nil
}

func (r *repository) IsParticipant(ctx context.Context, db bun.IDB, eventID, userID int64) (bool, error) {
	exists, err := r.resolveDB(db).NewSelect().
		Model((*EventJoin)(nil)).
		Where("event_id = ?", eventID).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check event participation: %w", err)
	}
	return exists, nil
}

func (r *repository) CountParticipants(ctx context.Context, db bun.IDB, eventID int64) (int, error) {
	count, err := r.resolveDB(db).NewSelect().
		Model((*EventJoin)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count event participants: %w", err)
	}
	return count, nil
}

func (r *repository) ListParticipants(ctx context.Context, eventID int64) ([]*Participant, error) {
	var out []*Participant
	err := r.db.NewSelect().
		TableExpr("event_joins AS ej").
		ColumnExpr("ej.user_id, u.name").
		Join("JOIN users AS u ON u.id = ej.user_id").
		Where("ej.event_id = ?", eventID).
		OrderExpr("ej.created_at ASC, ej.user_id ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list event participants: %w", err)
	}
	return out, nil
}

// LeaveClubEvents deletes the club events userID hosts and drops userID from the ones it only joined.
// A non-nil startedBefore restricts both to events that started at or before it.
func (r *repository) LeaveClubEvents(ctx context.Context, db bun.IDB, clubID, userID int64, startedBefore *time.Time) (int, int, error) {
	idb := r.resolveDB(db)

	var events []*Event
	q := idb.NewSelect().
		Model(&events).
		Column("event.id", "event.host_id").
		Join("JOIN event_joins AS ej ON ej.event_id = event.id").
		Where("ej.user_id = ?", userID).
		Where("event.club_id = ?", clubID)
	if startedBefore != nil {
		q = q.Where("event.start_time <= ?", *startedBefore)
	}
	if err := q.Scan(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to find club events of user: %w", err)
	}

	var hosted, joined []int64
	for _, e := range events {
		if e.HostID == userID {
			hosted = append(hosted, e.ID)
		} else {
			joined = append(joined, e.ID)
		}
	}

	if err := r.Delete(ctx, idb, hosted...); err != nil {
		return 0, 0, err
	}
	if len(joined) > 0 {
		_, err := idb.NewDelete().
			Model((*EventJoin)(nil)).
			Where("user_id = ?", userID).
			Where("event_id IN (?)", bun.In(joined)).
			Exec(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to leave club events: %w", err)
		}
	}
	return len(hosted), len(joined), nil
}

// DeleteUpcomingClubEvents deletes the club's events that have not started at now
func (r *repository) DeleteUpcomingClubEvents(ctx context.Context, db bun.IDB, clubID int64, now time.Time) (int, error) {
	idb := r.resolveDB(db)

	var ids []int64
	err := idb.NewSelect().
		Model((*Event)(nil)).
		Column("id").
		Where("club_id = ?", clubID).
		Where("start_time > ?", now).
		Scan(ctx, &ids)
	if err != nil {
		return 0, fmt.Errorf("failed to find upcoming club events: %w", err)
	}
	if err := r.Delete(ctx, idb, ids...); err != nil {
		return 0, err
	}
	return len(ids), nil
}
