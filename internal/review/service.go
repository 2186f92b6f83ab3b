package review

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/meetup/internal/authz"
	"github.com/fkhayef/meetup/internal/club"
	"github.com/fkhayef/meetup/internal/database"
	"github.com/fkhayef/meetup/internal/event"
	"github.com/fkhayef/meetup/pkg/apperror"
	"github.com/fkhayef/meetup/pkg/request"
)

// Common errors
var (
	ErrReviewNotFound   = apperror.NotFound("review not found")
	ErrEventNotFound    = apperror.NotFound("event not found")
	ErrUserNotFound     = apperror.NotFound("user not found")
	ErrReviewExists     = apperror.Conflict("user has already reviewed this event")
	ErrNotParticipant   = apperror.Conflict("only participants can review an event")
	ErrEventNotEnded    = apperror.Conflict("event has not ended yet")
	ErrHostCannotReview = apperror.Conflict("the host cannot review their own event")
	ErrNoLongerMember   = apperror.Conflict("user is no longer a member of the event's club")
	ErrReviewHidden     = apperror.Forbidden("review is not visible to this user")
	ErrScoreNull        = apperror.BadRequest("score cannot be null")
	ErrTitleNull        = apperror.BadRequest("title cannot be null")
)

// EventReader is what reviews need to know about events
type EventReader interface {
	Lookup(ctx context.Context, id int64) (*event.Event, error)
	HasJoined(ctx context.Context, eventID, userID int64) (bool, error)
}

// ClubReader is what reviews need to know about clubs
type ClubReader interface {
	Lookup(ctx context.Context, id int64) (*club.Club, error)
	IsMember(ctx context.Context, clubID, userID int64) (bool, error)
}

// Service handles review business logic
type Service struct {
	repo   Repository
	events EventReader
	clubs  ClubReader
	now    func() time.Time
}

// NewService creates a new review service
func NewService(repo Repository, events EventReader, clubs ClubReader) *Service {
	return &Service{
		repo:   repo,
		events: events,
		clubs:  clubs,
		now:    time.Now,
	}
}

// CreateReview records userID's review of an ended event they took part in
func (s *Service) CreateReview(ctx context.Context, userID int64, req *CreateReviewRequest) (*Review, error) {
	e, err := s.events.Lookup(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}

	exists, err := s.repo.Exists(ctx, req.EventID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	joined, err := s.events.HasJoined(ctx, req.EventID, userID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, ErrNotParticipant
	}
	if !e.Ended(s.now()) {
		return nil, ErrEventNotEnded
	}
	if authz.Holds(e, authz.EventHost, userID) {
		return nil, ErrHostCannotReview
	}

	if e.ClubID != nil {
		c, err := s.clubs.Lookup(ctx, *e.ClubID)
		if err != nil {
			return nil, err
		}
		if c != nil && !c.IsDeleted() {
			member, err := s.clubs.IsMember(ctx, c.ID, userID)
			if err != nil {
				return nil, err
			}
			if !member {
				return nil, ErrNoLongerMember
			}
		}
	}

	rv := &Review{
		EventID:     req.EventID,
		UserID:      userID,
		Score:       req.Score,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrReviewExists
		}
		if database.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"review_id": rv.ID, "event_id": rv.EventID, "user_id": userID}).Info("review created")
	return rv, nil
}

// GetReview returns a review the viewer is allowed to see
func (s *Service) GetReview(ctx context.Context, viewerID, id int64) (*Review, error) {
	rv, err := s.getReview(ctx, id)
	if err != nil {
		return nil, err
	}

	audience, err := s.audience(ctx, viewerID, rv.EventID)
	if err != nil {
		return nil, err
	}
	if !audience.CanSee() {
		return nil, ErrReviewHidden
	}
	return rv, nil
}

// GetReviews lists the reviews visible to the viewer
func (s *Service) GetReviews(ctx context.Context, viewerID int64, filter ListFilter, page, perPage int) ([]*Review, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.repo.ListVisible(ctx, viewerID, filter, perPage, (page-1)*perPage)
}

func (s *Service) audience(ctx context.Context, viewerID, eventID int64) (Audience, error) {
	e, err := s.events.Lookup(ctx, eventID)
	if err != nil {
		return Audience{}, err
	}
	if e == nil || e.ClubID == nil {
		return Audience{}, nil
	}

	a := Audience{ClubEvent: true}
	if a.Joined, err = s.events.HasJoined(ctx, eventID, viewerID); err != nil {
		return Audience{}, err
	}

	c, err := s.clubs.Lookup(ctx, *e.ClubID)
	if err != nil {
		return Audience{}, err
	}
	a.ClubDeleted = c == nil || c.IsDeleted()
	if !a.ClubDeleted {
		if a.Member, err = s.clubs.IsMember(ctx, c.ID, viewerID); err != nil {
			return Audience{}, err
		}
	}
	return a, nil
}

// PutUpdateReview replaces a review. Author only.
func (s *Service) PutUpdateReview(ctx context.Context, id, userID int64, req *PutReviewRequest) (*Review, error) {
	rv, err := s.authoredReview(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	rv.Score = req.Score
	rv.Title = req.Title
	rv.Description = req.Description

	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// PatchUpdateReview applies a partial update. Author only.
func (s *Service) PatchUpdateReview(ctx context.Context, id, userID int64, req *PatchReviewRequest) (*Review, error) {
	if req.Score.IsNull() {
		return nil, ErrScoreNull
	}
	if req.Title.IsNull() {
		return nil, ErrTitleNull
	}

	rv, err := s.authoredReview(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Score.IsSpecified() {
		score := req.Score.MustGet()
		if err := request.ValidateVar("score", score, "min=1,max=5"); err != nil {
			return nil, err
		}
		rv.Score = score
	}
	if req.Title.IsSpecified() {
		title := req.Title.MustGet()
		if err := request.ValidateVar("title", title, "required,max=100"); err != nil {
			return nil, err
		}
		rv.Title = title
	}
	if req.Description.IsSpecified() {
		if req.Description.IsNull() {
			rv.Description = nil
		} else {
			description := req.Description.MustGet()
			rv.Description = &description
		}
	}

	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// DeleteReview removes a review. Author only.
func (s *Service) DeleteReview(ctx context.Context, id, userID int64) error {
	if _, err := s.authoredReview(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"review_id": id, "user_id": userID}).Info("review deleted")
	return nil
}

func (s *Service) authoredReview(ctx context.Context, id, userID int64) (*Review, error) {
	rv, err := s.getReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(rv, authz.ReviewAuthor, userID); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) getReview(ctx context.Context, id int64) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	return rv, nil
}
