package region

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Repository reads the category and city catalogs
type Repository interface {
	ListCategories(ctx context.Context) ([]*Category, error)
	ListCities(ctx context.Context) ([]*City, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	CityExists(ctx context.Context, id int64) (bool, error)
	ExistingCityIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type repository struct {
	db bun.IDB
}

// NewRepository creates a new region repository
func NewRepository(db bun.IDB) Repository {
	return &repository{db: db}
}

func (r *repository) ListCategories(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	if err := r.db.NewSelect().Model(&categories).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *repository) ListCities(ctx context.Context) ([]*City, error) {
	var cities []*City
	if err := r.db.NewSelect().Model(&cities).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

func (r *repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	exists, err := r.db.NewSelect().Model((*Category)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return exists, nil
}

func (r *repository) CityExists(ctx context.Context, id int64) (bool, error) {
	exists, err := r.db.NewSelect().Model((*City)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check city: %w", err)
	}
	return exists, nil
}

// ExistingCityIDs returns the subset of ids that exist
func (r *repository) ExistingCityIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	err := r.db.NewSelect().
		Model((*City)(nil)).
		Column("id").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx, &found)
	if err != nil {
		return nil, fmt.Errorf("failed to check cities: %w", err)
	}
	return found, nil
}
