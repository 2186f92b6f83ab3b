package event

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/internal/authz"
	"github.com/fkhayef/meetup/internal/club"
	"github.com/fkhayef/meetup/internal/database"
	"github.com/fkhayef/meetup/pkg/apperror"
	"github.com/fkhayef/meetup/pkg/metrics"
	"github.com/fkhayef/meetup/pkg/request"
)

// Common errors
var (
	ErrEventNotFound       = apperror.NotFound("event not found")
	ErrUserNotFound        = apperror.NotFound("user not found")
	ErrStartInPast         = apperror.Conflict("start_time cannot be in the past")
	ErrInvalidWindow       = apperror.Conflict("start_time must be before end_time")
	ErrEventStarted        = apperror.Conflict("event has already started")
	ErrEventEnded          = apperror.Conflict("event has already ended")
	ErrEventFull           = apperror.Conflict("event is full")
	ErrAlreadyJoined       = apperror.Conflict("user has already joined this event")
	ErrNotJoined           = apperror.Conflict("user has not joined this event")
	ErrHostCannotLeave     = apperror.Conflict("the host cannot leave the event")
	ErrCapacityBelowJoins  = apperror.Conflict("max_people cannot be lower than the current participant count")
	ErrNotClubMember       = apperror.Forbidden("only club members can take part in club events")
	ErrTitleNull           = apperror.BadRequest("title cannot be null")
	ErrDescriptionNull     = apperror.BadRequest("description cannot be null")
	ErrCategoryNull        = apperror.BadRequest("category_id cannot be null")
	ErrCityIDsNull         = apperror.BadRequest("city_ids cannot be null")
	ErrStartTimeNull       = apperror.BadRequest("start_time cannot be null")
	ErrEndTimeNull         = apperror.BadRequest("end_time cannot be null")
	ErrMaxPeopleNull       = apperror.BadRequest("max_people cannot be null")
	ErrInvalidEventMaxSize = apperror.BadRequest("max_people must be at least 2")
)

// ClubReader is what events need to know about clubs
type ClubReader interface {
	GetClub(ctx context.Context, id int64) (*club.Club, error)
	IsMember(ctx context.Context, clubID, userID int64) (bool, error)
}

// RegionChecker validates category and city references
type RegionChecker interface {
	EnsureCategory(ctx context.Context, id int64) error
	EnsureCities(ctx context.Context, ids []int64) error
}

// Service handles event business logic
type Service struct {
	repo    Repository
	clubs   ClubReader
	regions RegionChecker
	uow     *database.UnitOfWork
	now     func() time.Time
}

// NewService creates a new event service
func NewService(repo Repository, clubs ClubReader, regions RegionChecker, uow *database.UnitOfWork) *Service {
	return &Service{
		repo:    repo,
		clubs:   clubs,
		regions: regions,
		uow:     uow,
		now:     time.Now,
	}
}

// Now is the clock the service judges event windows by
func (s *Service) Now() time.Time {
	return s.now()
}

// CreateEvent creates an event hosted by hostID. The host joins it, and a club event
// requires the host to be a member of that club.
func (s *Service) CreateEvent(ctx context.Context, hostID int64, req *CreateEventRequest) (*Event, error) {
	if err := s.regions.EnsureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.regions.EnsureCities(ctx, req.CityIDs); err != nil {
		return nil, err
	}
	if err := s.checkWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	if req.ClubID != nil {
		if _, err := s.clubs.GetClub(ctx, *req.ClubID); err != nil {
			return nil, err
		}
		member, err := s.clubs.IsMember(ctx, *req.ClubID, hostID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrNotClubMember
		}
	}

	e := &Event{
		HostID:      hostID,
		ClubID:      req.ClubID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxPeople:   req.MaxPeople,
		CityIDs:     dedupe(req.CityIDs),
	}

	err := s.uow.Run(ctx,
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.Create(ctx, tx, e)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.ReplaceCities(ctx, tx, e.ID, e.CityIDs)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.AddParticipant(ctx, tx, e.ID, hostID)
		},
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"event_id": e.ID, "host_id": hostID, "club_id": req.ClubID}).Info("event created")
	return e, nil
}

// GetEvent returns an event with its participants
func (s *Service) GetEvent(ctx context.Context, id int64) (*Event, error) {
	e, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Participants = participants
	return e, nil
}

// Lookup returns an event or nil when it does not exist
func (s *Service) Lookup(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// HasJoined reports whether userID participates in the event
func (s *Service) HasJoined(ctx context.Context, eventID, userID int64) (bool, error) {
	return s.repo.IsParticipant(ctx, nil, eventID, userID)
}

// ListEvents retrieves events with pagination
func (s *Service) ListEvents(ctx context.Context, filter ListFilter, page, perPage int) ([]*Event, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.repo.List(ctx, filter, perPage, (page-1)*perPage)
}

// ListMyEvents returns the events userID hosts or joined
func (s *Service) ListMyEvents(ctx context.Context, userID int64) ([]*Event, error) {
	return s.repo.ListJoinedBy(ctx, userID)
}

// JoinEvent adds userID to the event. Capacity is checked under the event row lock.
func (s *Service) JoinEvent(ctx context.Context, eventID, userID int64) error {
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return err
	}

	joined, err := s.repo.IsParticipant(ctx, nil, eventID, userID)
	if err != nil {
		return err
	}
	if joined {
		return ErrAlreadyJoined
	}
	if e.Ended(s.now()) {
		return ErrEventEnded
	}

	if e.ClubID != nil {
		member, err := s.clubs.IsMember(ctx, *e.ClubID, userID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotClubMember
		}
	}

	err = s.uow.Run(ctx,
		func(ctx context.Context, tx bun.IDB) error {
			locked, err := s.repo.GetForUpdate(ctx, tx, eventID)
			if err != nil {
				return err
			}
			if locked == nil {
				return ErrEventNotFound
			}
			count, err := s.repo.CountParticipants(ctx, tx, eventID)
			if err != nil {
				return err
			}
			if count >= locked.MaxPeople {
				return ErrEventFull
			}
			return nil
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.AddParticipant(ctx, tx, eventID, userID)
		},
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyJoined
		}
		if database.IsForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return err
	}

	metrics.RecordEventParticipation("joined")
	logrus.WithFields(logrus.Fields{"event_id": eventID, "user_id": userID}).Info("event joined")
	return nil
}

// OutEvent removes userID from an event that has not started. The host cannot leave.
func (s *Service) OutEvent(ctx context.Context, eventID, userID int64) error {
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return err
	}

	joined, err := s.repo.IsParticipant(ctx, nil, eventID, userID)
	if err != nil {
		return err
	}
	if !joined {
		return ErrNotJoined
	}
	if authz.Holds(e, authz.EventHost, userID) {
		return ErrHostCannotLeave
	}
	if e.Started(s.now()) {
		return ErrEventStarted
	}

	if err := s.repo.RemoveParticipant(ctx, nil, eventID, userID); err != nil {
		return err
	}

	metrics.RecordEventParticipation("left")
	logrus.WithFields(logrus.Fields{"event_id": eventID, "user_id": userID}).Info("event left")
	return nil
}

// PutUpdateEvent replaces every editable field. Host only, and only before the event starts.
func (s *Service) PutUpdateEvent(ctx context.Context, eventID, hostID int64, req *PutEventRequest) (*Event, error) {
	e, err := s.editableEvent(ctx, eventID, hostID)
	if err != nil {
		return nil, err
	}

	if err := s.regions.EnsureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.regions.EnsureCities(ctx, req.CityIDs); err != nil {
		return nil, err
	}
	if err := s.checkWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := s.checkCapacity(ctx, eventID, req.MaxPeople); err != nil {
		return nil, err
	}

	e.Title = req.Title
	e.Description = req.Description
	e.CategoryID = req.CategoryID
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	e.MaxPeople = req.MaxPeople
	e.CityIDs = dedupe(req.CityIDs)

	if err := s.save(ctx, e, true); err != nil {
		return nil, err
	}
	return e, nil
}

// PatchUpdateEvent applies a partial update. Host only, and only before the event starts.
func (s *Service) PatchUpdateEvent(ctx context.Context, eventID, hostID int64, req *PatchEventRequest) (*Event, error) {
	if err := rejectNulls(req); err != nil {
		return nil, err
	}

	e, err := s.editableEvent(ctx, eventID, hostID)
	if err != nil {
		return nil, err
	}

	if req.Title.IsSpecified() {
		title := req.Title.MustGet()
		if err := request.ValidateVar("title", title, "required,max=100"); err != nil {
			return nil, err
		}
		e.Title = title
	}
	if req.Description.IsSpecified() {
		description := req.Description.MustGet()
		if err := request.ValidateVar("description", description, "required"); err != nil {
			return nil, err
		}
		e.Description = description
	}
	if req.CategoryID.IsSpecified() {
		categoryID := req.CategoryID.MustGet()
		if err := s.regions.EnsureCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		e.CategoryID = categoryID
	}
	citiesChanged := req.CityIDs.IsSpecified()
	if citiesChanged {
		cityIDs := req.CityIDs.MustGet()
		if err := request.ValidateVar("city_ids", cityIDs, "min=1,dive,gt=0"); err != nil {
			return nil, err
		}
		if err := s.regions.EnsureCities(ctx, cityIDs); err != nil {
			return nil, err
		}
		e.CityIDs = dedupe(cityIDs)
	}

	if req.StartTime.IsSpecified() || req.EndTime.IsSpecified() {
		start, end := e.StartTime, e.EndTime
		if req.StartTime.IsSpecified() {
			start = req.StartTime.MustGet()
		}
		if req.EndTime.IsSpecified() {
			end = req.EndTime.MustGet()
		}
		if err := s.checkWindow(start, end); err != nil {
			return nil, err
		}
		e.StartTime, e.EndTime = start, end
	}

	if req.MaxPeople.IsSpecified() {
		maxPeople := req.MaxPeople.MustGet()
		if maxPeople < 2 {
			return nil, ErrInvalidEventMaxSize
		}
		if err := s.checkCapacity(ctx, eventID, maxPeople); err != nil {
			return nil, err
		}
		e.MaxPeople = maxPeople
	}

	if err := s.save(ctx, e, citiesChanged); err != nil {
		return nil, err
	}
	return e, nil
}

func rejectNulls(req *PatchEventRequest) error {
	switch {
	case req.Title.IsNull():
		return ErrTitleNull
	case req.Description.IsNull():
		return ErrDescriptionNull
	case req.CategoryID.IsNull():
		return ErrCategoryNull
	case req.CityIDs.IsNull():
		return ErrCityIDsNull
	case req.StartTime.IsNull():
		return ErrStartTimeNull
	case req.EndTime.IsNull():
		return ErrEndTimeNull
	case req.MaxPeople.IsNull():
		return ErrMaxPeopleNull
	}
	return nil
}

// DeleteEvent removes an event that has not started along with its joins and cities. Host only.
func (s *Service) DeleteEvent(ctx context.Context, eventID, hostID int64) error {
	if _, err := s.editableEvent(ctx, eventID, hostID); err != nil {
		return err
	}

	err := s.uow.Run(ctx, func(ctx context.Context, tx bun.IDB) error {
		return s.repo.Delete(ctx, tx, eventID)
	})
	if err != nil {
		return err
	}

	metrics.RecordEventParticipation("deleted")
	logrus.WithFields(logrus.Fields{"event_id": eventID, "host_id": hostID}).Info("event deleted")
	return nil
}

func (s *Service) save(ctx context.Context, e *Event, replaceCities bool) error {
	steps := []database.Step{
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.Update(ctx, tx, e)
		},
	}
	if replaceCities {
		steps = append(steps, func(ctx context.Context, tx bun.IDB) error {
			return s.repo.ReplaceCities(ctx, tx, e.ID, e.CityIDs)
		})
	}
	return s.uow.Run(ctx, steps...)
}

// editableEvent loads an event the host may still change
func (s *Service) editableEvent(ctx context.Context, eventID, hostID int64) (*Event, error) {
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(e, authz.EventHost, hostID); err != nil {
		return nil, err
	}
	if e.Started(s.now()) {
		return nil, ErrEventStarted
	}
	return e, nil
}

func (s *Service) checkWindow(start, end time.Time) error {
	if start.Before(s.now()) {
		return ErrStartInPast
	}
	if !start.Before(end) {
		return ErrInvalidWindow
	}
	return nil
}

func (s *Service) checkCapacity(ctx context.Context, eventID int64, maxPeople int) error {
	count, err := s.repo.CountParticipants(ctx, nil, eventID)
	if err != nil {
		return err
	}
	if maxPeople < count {
		return ErrCapacityBelowJoins
	}
	return nil
}

func (s *Service) getEvent(ctx context.Context, id int64) (*Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
