package region

import (
	"context"

	"github.com/fkhayef/meetup/pkg/apperror"
)

// Common errors
var (
	ErrCategoryNotFound = apperror.NotFound("category not found")
	ErrCityNotFound     = apperror.NotFound("city not found")
)

// Service serves the category and city catalogs and answers existence checks for other features
type Service struct {
	repo Repository
}

// NewService creates a new region service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) ListCities(ctx context.Context) ([]*City, error) {
	return s.repo.ListCities(ctx)
}

// EnsureCategory returns ErrCategoryNotFound when id is unknown
func (s *Service) EnsureCategory(ctx context.Context, id int64) error {
	exists, err := s.repo.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCategoryNotFound
	}
	return nil
}

// EnsureCity returns ErrCityNotFound when id is unknown
func (s *Service) EnsureCity(ctx context.Context, id int64) error {
	exists, err := s.repo.CityExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCityNotFound
	}
	return nil
}

// EnsureCities returns ErrCityNotFound when any of ids is unknown
func (s *Service) EnsureCities(ctx context.Context, ids []int64) error {
	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if len(unique) == 0 {
		return nil
	}

	deduped := make([]int64, 0, len(unique))
	for id := range unique {
		deduped = append(deduped, id)
	}

	found, err := s.repo.ExistingCityIDs(ctx, deduped)
	if err != nil {
		return err
	}
	if len(found) != len(deduped) {
		return ErrCityNotFound
	}
	return nil
}
