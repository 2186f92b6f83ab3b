package user

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/meetup/internal/authz"
	"github.com/fkhayef/meetup/internal/database"
	"github.com/fkhayef/meetup/pkg/apperror"
	"github.com/fkhayef/meetup/pkg/request"
)

// Common errors
var (
	ErrUserNotFound      = apperror.NotFound("user not found")
	ErrEmailAlreadyInUse = apperror.Conflict("email already in use")
	ErrNameNull          = apperror.BadRequest("name cannot be null")
	ErrEmailNull         = apperror.BadRequest("email cannot be null")
	ErrCategoryNull      = apperror.BadRequest("category_id cannot be null")
	ErrInvalidBirthday   = apperror.BadRequest("birthday must be formatted as YYYY-MM-DD")
)

// RegionChecker validates category and city references
type RegionChecker interface {
	EnsureCategory(ctx context.Context, id int64) error
	EnsureCity(ctx context.Context, id int64) error
}

// Service handles user business logic
type Service struct {
	repo    Repository
	regions RegionChecker
}

// NewService creates a new user service with repository dependency injected
func NewService(repo Repository, regions RegionChecker) *Service {
	return &Service{repo: repo, regions: regions}
}

// Create registers a new user profile
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	u := &User{
		Name:       req.Name,
		Email:      req.Email,
		CityID:     req.CityID,
		CategoryID: req.CategoryID,
	}
	if req.Birthday != nil {
		birthday, err := parseBirthday(*req.Birthday)
		if err != nil {
			return nil, err
		}
		u.Birthday = &birthday
	}

	if err := s.regions.EnsureCategory(ctx, u.CategoryID); err != nil {
		return nil, err
	}
	if u.CityID != nil {
		if err := s.regions.EnsureCity(ctx, *u.CityID); err != nil {
			return nil, err
		}
	}

	// Check if email is already in use
	exists, err := s.repo.ExistsByEmail(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyInUse
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, err
	}

	logrus.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// GetByID retrieves an active user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// IsActive reports whether id belongs to a user that exists and is not deleted
func (s *Service) IsActive(ctx context.Context, id int64) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// List retrieves active users with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// PatchUpdate applies a partial profile update. Only the account owner may call it.
func (s *Service) PatchUpdate(ctx context.Context, id, callerID int64, req *PatchUserRequest) (*User, error) {
	if req.Name.IsNull() {
		return nil, ErrNameNull
	}
	if req.Email.IsNull() {
		return nil, ErrEmailNull
	}
	if req.CategoryID.IsNull() {
		return nil, ErrCategoryNull
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(u, authz.AccountOwner, callerID); err != nil {
		return nil, err
	}

	if req.Name.IsSpecified() {
		name := req.Name.MustGet()
		if err := request.ValidateVar("name", name, "min=1,max=50"); err != nil {
			return nil, err
		}
		u.Name = name
	}

	if req.Email.IsSpecified() {
		email := req.Email.MustGet()
		if err := request.ValidateVar("email", email, "email,max=255"); err != nil {
			return nil, err
		}
		if email != u.Email {
			exists, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrEmailAlreadyInUse
			}
		}
		u.Email = email
	}

	if req.Birthday.IsSpecified() {
		if req.Birthday.IsNull() {
			u.Birthday = nil
		} else {
			birthday, err := parseBirthday(req.Birthday.MustGet())
			if err != nil {
				return nil, err
			}
			u.Birthday = &birthday
		}
	}

	if req.CityID.IsSpecified() {
		if req.CityID.IsNull() {
			u.CityID = nil
		} else {
			cityID := req.CityID.MustGet()
			if err := s.regions.EnsureCity(ctx, cityID); err != nil {
				return nil, err
			}
			u.CityID = &cityID
		}
	}

	if req.CategoryID.IsSpecified() {
		categoryID := req.CategoryID.MustGet()
		if err := s.regions.EnsureCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		u.CategoryID = categoryID
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, err
	}
	return u, nil
}

// Delete soft-deletes the caller's own account
func (s *Service) Delete(ctx context.Context, id, callerID int64) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Require(u, authz.AccountOwner, callerID); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	logrus.WithField("user_id", id).Info("user deleted")
	return nil
}

func parseBirthday(raw string) (time.Time, error) {
	birthday, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidBirthday
	}
	return birthday, nil
}
