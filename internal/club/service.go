package club

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/internal/authz"
	"github.com/fkhayef/meetup/internal/config"
	"github.com/fkhayef/meetup/internal/database"
	"github.com/fkhayef/meetup/internal/notification"
	"github.com/fkhayef/meetup/pkg/apperror"
	"github.com/fkhayef/meetup/pkg/metrics"
	"github.com/fkhayef/meetup/pkg/request"
)

// Common errors
var (
	ErrClubNotFound         = apperror.NotFound("club not found")
	ErrUserNotFound         = apperror.NotFound("user not found")
	ErrInvalidDecision      = apperror.BadRequest("decision must be approve or reject")
	ErrNameNull             = apperror.BadRequest("name cannot be null")
	ErrDescriptionNull      = apperror.BadRequest("description cannot be null")
	ErrMaxPeopleNull        = apperror.BadRequest("max_people cannot be null")
	ErrInvalidMaxPeople     = apperror.BadRequest("max_people must be at least 2")
	ErrAlreadyMember        = apperror.Conflict("user is already a member of this club")
	ErrJoinPending          = apperror.Conflict("a join request for this club is already pending")
	ErrJoinRejected         = apperror.Conflict("join request was rejected, this club cannot be joined again")
	ErrClubFull             = apperror.Conflict("club is full")
	ErrNotPending           = apperror.Conflict("user has no pending join request")
	ErrNotMember            = apperror.Conflict("user is not a member of this club")
	ErrLeadCannotLeave      = apperror.Conflict("the club lead cannot leave the club")
	ErrNewLeadNotMember     = apperror.Conflict("the new lead must be a member of the club")
	ErrCapacityBelowMembers = apperror.Conflict("max_people cannot be lower than the current member count")
)

const minMaxPeople = 2

// EventCleaner removes a user's or a club's events as part of a club unit of work
type EventCleaner interface {
	// LeaveClubEvents deletes the club events userID hosts and removes userID from the others.
	// A non-nil startedBefore limits both to events that started at or before it.
	LeaveClubEvents(ctx context.Context, db bun.IDB, clubID, userID int64, startedBefore *time.Time) (deleted, left int, err error)
	// DeleteUpcomingClubEvents deletes the club's events that have not started at now.
	DeleteUpcomingClubEvents(ctx context.Context, db bun.IDB, clubID int64, now time.Time) (int, error)
}

// Notifier writes notifications inside a unit of work
type Notifier interface {
	Notify(ctx context.Context, db bun.IDB, msgs ...notification.Message) error
}

// Service handles club business logic
type Service struct {
	repo        Repository
	events      EventCleaner
	notifier    Notifier
	uow         *database.UnitOfWork
	exitCascade string
	now         func() time.Time
}

// NewService creates a new club service. exitCascade is config.ExitCascadeStarted or config.ExitCascadeAll.
func NewService(repo Repository, events EventCleaner, notifier Notifier, uow *database.UnitOfWork, exitCascade string) *Service {
	return &Service{
		repo:        repo,
		events:      events,
		notifier:    notifier,
		uow:         uow,
		exitCascade: exitCascade,
		now:         time.Now,
	}
}

// CreateClub creates a club led by leadID and makes the lead its first member
func (s *Service) CreateClub(ctx context.Context, leadID int64, req *CreateClubRequest) (*Club, error) {
	c := &Club{
		LeadID:      leadID,
		Name:        req.Name,
		Description: req.Description,
		MaxPeople:   req.MaxPeople,
	}

	err := s.uow.Run(ctx,
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.Create(ctx, tx, c)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.AddMember(ctx, tx, c.ID, leadID)
		},
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	c.MemberCount = 1
	logrus.WithFields(logrus.Fields{"club_id": c.ID, "lead_id": leadID}).Info("club created")
	return c, nil
}

// GetClub returns an active club with its member count
func (s *Service) GetClub(ctx context.Context, id int64) (*Club, error) {
	c, err := s.activeClub(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountMembers(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	c.MemberCount = count
	return c, nil
}

// Lookup returns a club whether or not it was deleted, or nil when it never existed
func (s *Service) Lookup(ctx context.Context, id int64) (*Club, error) {
	return s.repo.GetByIDIncludingDeleted(ctx, id)
}

// ListClubs retrieves active clubs with pagination
func (s *Service) ListClubs(ctx context.Context, filter ListFilter, page, perPage int) ([]*Club, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.repo.List(ctx, filter, perPage, (page-1)*perPage)
}

// ListMembers lists the confirmed members of an active club
func (s *Service) ListMembers(ctx context.Context, clubID int64) ([]*Member, error) {
	if _, err := s.activeClub(ctx, clubID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, clubID)
}

// MembershipState returns userID's relationship to the club
func (s *Service) MembershipState(ctx context.Context, clubID, userID int64) (MembershipState, error) {
	return s.repo.MembershipState(ctx, nil, clubID, userID)
}

// IsMember reports whether userID currently holds a membership in the club
func (s *Service) IsMember(ctx context.Context, clubID, userID int64) (bool, error) {
	state, err := s.repo.MembershipState(ctx, nil, clubID, userID)
	if err != nil {
		return false, err
	}
	return state == StateMember, nil
}

// JoinClub files a PENDING join request. Membership is granted only when the lead approves.
func (s *Service) JoinClub(ctx context.Context, clubID, userID int64) error {
	c, err := s.activeClub(ctx, clubID)
	if err != nil {
		return err
	}

	state, err := s.repo.MembershipState(ctx, nil, clubID, userID)
	if err != nil {
		return err
	}
	if err := joinableFrom(state); err != nil {
		return err
	}

	err = s.uow.Run(ctx,
		func(ctx context.Context, tx bun.IDB) error {
			created, err := s.repo.RequestJoin(ctx, tx, clubID, userID)
			if err != nil {
				return err
			}
			if !created {
				// lost a race against another request or decision for the same pair
				return ErrJoinPending
			}
			return nil
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.notifier.Notify(ctx, tx, notification.Message{
				RecipientID: c.LeadID,
				Type:        notification.TypeClubJoinRequested,
				Text:        fmt.Sprintf("A user asked to join %s", c.Name),
				EntityType:  notification.EntityClub,
				EntityID:    clubID,
			})
		},
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return err
	}

	metrics.RecordMembershipTransition("requested")
	logrus.WithFields(logrus.Fields{"club_id": clubID, "user_id": userID}).Info("club join requested")
	return nil
}

func joinableFrom(state MembershipState) error {
	switch state {
	case StateMember:
		return ErrAlreadyMember
	case StatePending:
		return ErrJoinPending
	case StateRejected:
		return ErrJoinRejected
	default:
		return nil
	}
}

// DecideClubJoin approves or rejects a PENDING join request. Only the lead may decide.
// Approval re-checks capacity under the club row lock and creates the membership atomically.
func (s *Service) DecideClubJoin(ctx context.Context, clubID, leadID, targetID int64, decision Decision) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return ErrInvalidDecision
	}

	c, err := s.activeClub(ctx, clubID)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.ClubLead, leadID); err != nil {
		return err
	}

	state, err := s.repo.MembershipState(ctx, nil, clubID, targetID)
	if err != nil {
		return err
	}
	if state != StatePending {
		return ErrNotPending
	}

	if decision == DecisionReject {
		err = s.reject(ctx, c, targetID)
	} else {
		err = s.approve(ctx, c, targetID)
	}
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"club_id":  clubID,
		"user_id":  targetID,
		"decision": decision,
	}).Info("club join decided")
	return nil
}

func (s *Service) approve(ctx context.Context, c *Club, targetID int64) error {
	err := s.uow.Run(ctx,
		func(ctx context.Context, tx bun.IDB) error {
			locked, err := s.repo.GetForUpdate(ctx, tx, c.ID)
			if err != nil {
				return err
			}
			if locked == nil {
				return ErrClubNotFound
			}
			count, err := s.repo.CountMembers(ctx, tx, c.ID)
			if err != nil {
				return err
			}
			if count >= locked.MaxPeople {
				return ErrClubFull
			}
			return nil
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.AddMember(ctx, tx, c.ID, targetID)
		},
		func(ctx context.Context, tx bun.IDB) error {
			moved, err := s.repo.SetWaitingStatus(ctx, tx, c.ID, targetID, WaitingPending, WaitingApproved)
			if err != nil {
				return err
			}
			if !moved {
				return ErrNotPending
			}
			return nil
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.notifier.Notify(ctx, tx, notification.Message{
				RecipientID: targetID,
				Type:        notification.TypeClubJoinApproved,
				Text:        fmt.Sprintf("Your request to join %s was approved", c.Name),
				EntityType:  notification.EntityClub,
				EntityID:    c.ID,
			})
		},
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyMember
		}
		if database.IsForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return err
	}

	metrics.RecordMembershipTransition("approved")
	return nil
}

func (s *Service) reject(ctx context.Context, c *Club, targetID int64) error {
	err := s.uow.Run(ctx,
		func(ctx context.Context, tx bun.IDB) error {
			moved, err := s.repo.SetWaitingStatus(ctx, tx, c.ID, targetID, WaitingPending, WaitingRejected)
			if err != nil {
				return err
			}
			if !moved {
				return ErrNotPending
			}
			return nil
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.notifier.Notify(ctx, tx, notification.Message{
				RecipientID: targetID,
				Type:        notification.TypeClubJoinRejected,
				Text:        fmt.Sprintf("Your request to join %s was rejected", c.Name),
				EntityType:  notification.EntityClub,
				EntityID:    c.ID,
			})
		},
	)
	if err != nil {
		return err
	}

	metrics.RecordMembershipTransition("rejected")
	return nil
}

// GetWaitingList lists PENDING requests. Only the lead may read it.
func (s *Service) GetWaitingList(ctx context.Context, clubID, leadID int64) ([]*WaitingEntry, error) {
	c, err := s.activeClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(c, authz.ClubLead, leadID); err != nil {
		return nil, err
	}
	return s.repo.ListWaiting(ctx, clubID)
}

// OutClub removes userID from the club. The user's events in this club are cleaned up in the
// same unit of work: hosted ones are deleted, joined ones are left.
func (s *Service) OutClub(ctx context.Context, clubID, userID int64) error {
	c, err := s.activeClub(ctx, clubID)
	if err != nil {
		return err
	}

	state, err := s.repo.MembershipState(ctx, nil, clubID, userID)
	if err != nil {
		return err
	}
	if state != StateMember {
		return ErrNotMember
	}
	if authz.Holds(c, authz.ClubLead, userID) {
		return ErrLeadCannotLeave
	}

	var startedBefore *time.Time
	if s.exitCascade != config.ExitCascadeAll {
		now := s.now()
		startedBefore = &now
	}

	var deleted, left int
	err = s.uow.Run(ctx,
		func(ctx context.Context, tx bun.IDB) error {
			var err error
			deleted, left, err = s.events.LeaveClubEvents(ctx, tx, clubID, userID, startedBefore)
			return err
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.RemoveMember(ctx, tx, clubID, userID)
		},
	)
	if err != nil {
		return err
	}

	metrics.RecordMembershipTransition("left")
	logrus.WithFields(logrus.Fields{
		"club_id":        clubID,
		"user_id":        userID,
		"events_deleted": deleted,
		"events_left":    left,
	}).Info("user left club")
	return nil
}

// ChangeClubLead hands the club to another member. Only the current lead may call it.
func (s *Service) ChangeClubLead(ctx context.Context, clubID, leadID, newLeadID int64) (*Club, error) {
	c, err := s.activeClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(c, authz.ClubLead, leadID); err != nil {
		return nil, err
	}
	if newLeadID == c.LeadID {
		return c, nil
	}

	state, err := s.repo.MembershipState(ctx, nil, clubID, newLeadID)
	if err != nil {
		return nil, err
	}
	if state != StateMember {
		return nil, ErrNewLeadNotMember
	}

	err = s.uow.Run(ctx,
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.UpdateLead(ctx, tx, clubID, newLeadID)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.notifier.Notify(ctx, tx, notification.Message{
				RecipientID: newLeadID,
				Type:        notification.TypeClubLeadChanged,
				Text:        fmt.Sprintf("You are now the lead of %s", c.Name),
				EntityType:  notification.EntityClub,
				EntityID:    clubID,
			})
		},
	)
	if err != nil {
		return nil, err
	}

	c.LeadID = newLeadID
	logrus.WithFields(logrus.Fields{"club_id": clubID, "lead_id": newLeadID}).Info("club lead changed")
	return c, nil
}

// PatchUpdateClub applies a partial update. Only the lead may call it.
func (s *Service) PatchUpdateClub(ctx context.Context, clubID, leadID int64, req *PatchClubRequest) (*Club, error) {
	if req.Name.IsNull() {
		return nil, ErrNameNull
	}
	if req.Description.IsNull() {
		return nil, ErrDescriptionNull
	}
	if req.MaxPeople.IsNull() {
		return nil, ErrMaxPeopleNull
	}

	c, err := s.activeClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(c, authz.ClubLead, leadID); err != nil {
		return nil, err
	}

	if req.Name.IsSpecified() {
		name := req.Name.MustGet()
		if err := request.ValidateVar("name", name, "required,max=100"); err != nil {
			return nil, err
		}
		c.Name = name
	}
	if req.Description.IsSpecified() {
		description := req.Description.MustGet()
		if err := request.ValidateVar("description", description, "required"); err != nil {
			return nil, err
		}
		c.Description = description
	}

	count, err := s.repo.CountMembers(ctx, nil, clubID)
	if err != nil {
		return nil, err
	}
	if req.MaxPeople.IsSpecified() {
		maxPeople := req.MaxPeople.MustGet()
		if maxPeople < minMaxPeople {
			return nil, ErrInvalidMaxPeople
		}
		if maxPeople < count {
			return nil, ErrCapacityBelowMembers
		}
		c.MaxPeople = maxPeople
	}

	if err := s.repo.Update(ctx, nil, c); err != nil {
		return nil, err
	}
	c.MemberCount = count
	return c, nil
}

// DeleteClub soft-deletes the club. Memberships and requests are removed and events that
// have not started are deleted; started events stay and keep pointing at the deleted club.
func (s *Service) DeleteClub(ctx context.Context, clubID, leadID int64) error {
	c, err := s.activeClub(ctx, clubID)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.ClubLead, leadID); err != nil {
		return err
	}

	now := s.now()
	var deletedEvents int
	err = s.uow.Run(ctx,
		func(ctx context.Context, tx bun.IDB) error {
			memberIDs, err := s.repo.MemberIDs(ctx, tx, clubID)
			if err != nil {
				return err
			}
			msgs := make([]notification.Message, 0, len(memberIDs))
			for _, id := range memberIDs {
				if id == c.LeadID {
					continue
				}
				msgs = append(msgs, notification.Message{
					RecipientID: id,
					Type:        notification.TypeClubDeleted,
					Text:        fmt.Sprintf("%s was deleted by its lead", c.Name),
					EntityType:  notification.EntityClub,
					EntityID:    clubID,
				})
			}
			return s.notifier.Notify(ctx, tx, msgs...)
		},
		func(ctx context.Context, tx bun.IDB) error {
			var err error
			deletedEvents, err = s.events.DeleteUpcomingClubEvents(ctx, tx, clubID, now)
			return err
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.RemoveAllMembers(ctx, tx, clubID)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.RemoveAllWaitings(ctx, tx, clubID)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.SoftDelete(ctx, tx, clubID)
		},
	)
	if err != nil {
		return err
	}

	metrics.RecordMembershipTransition("removed")
	logrus.WithFields(logrus.Fields{"club_id": clubID, "events_deleted": deletedEvents}).Info("club deleted")
	return nil
}

func (s *Service) activeClub(ctx context.Context, id int64) (*Club, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrClubNotFound
	}
	return c, nil
}
