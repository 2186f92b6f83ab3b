//go:build integration

package club_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/meetup/internal/club"
	"github.com/fkhayef/meetup/internal/config"
	"github.com/fkhayef/meetup/internal/database"
	"github.com/fkhayef/meetup/internal/event"
	"github.com/fkhayef/meetup/internal/notification"
	"github.com/fkhayef/meetup/internal/region"
	"github.com/fkhayef/meetup/internal/testutil"
	"github.com/fkhayef/meetup/internal/user"
)

func TestIntegration_ConcurrentApprovalsRespectCapacity(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	gen := testutil.NewGenerator(42)

	users := user.NewService(user.NewRepository(env.DB), region.NewService(region.NewRepository(env.DB)))
	svc := club.NewService(
		club.NewRepository(env.DB),
		event.NewRepository(env.DB),
		notification.NewService(notification.NewRepository(env.DB)),
		database.NewUnitOfWork(env.DB),
		config.ExitCascadeStarted,
	)

	lead, err := users.Create(ctx, gen.User())
	require.NoError(t, err)
	c, err := svc.CreateClub(ctx, lead.ID, gen.Club(3))
	require.NoError(t, err)

	const applicants = 6
	ids := make([]int64, applicants)
	for i := range ids {
		u, err := users.Create(ctx, gen.User())
		require.NoError(t, err)
		require.NoError(t, svc.JoinClub(ctx, c.ID, u.ID))
		ids[i] = u.ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
		full     int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			err := svc.DecideClubJoin(ctx, c.ID, lead.ID, id, club.DecisionApprove)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				approved++
			case errors.Is(err, club.ErrClubFull):
				full++
			default:
				t.Errorf("unexpected error approving %d: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 2, approved)
	assert.Equal(t, applicants-2, full)

	got, err := svc.GetClub(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.MemberCount)
}

func TestIntegration_DeleteClubCascades(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	gen := testutil.NewGenerator(7)

	regions := region.NewService(region.NewRepository(env.DB))
	users := user.NewService(user.NewRepository(env.DB), regions)
	uow := database.NewUnitOfWork(env.DB)
	eventRepo := event.NewRepository(env.DB)
	clubs := club.NewService(club.NewRepository(env.DB), eventRepo,
		notification.NewService(notification.NewRepository(env.DB)), uow, config.ExitCascadeStarted)
	events := event.NewService(eventRepo, clubs, regions, uow)

	lead, err := users.Create(ctx, gen.User())
	require.NoError(t, err)
	member, err := users.Create(ctx, gen.User())
	require.NoError(t, err)
	pending, err := users.Create(ctx, gen.User())
	require.NoError(t, err)

	c, err := clubs.CreateClub(ctx, lead.ID, gen.Club(5))
	require.NoError(t, err)
	require.NoError(t, clubs.JoinClub(ctx, c.ID, member.ID))
	require.NoError(t, clubs.DecideClubJoin(ctx, c.ID, lead.ID, member.ID, club.DecisionApprove))
	require.NoError(t, clubs.JoinClub(ctx, c.ID, pending.ID))

	e, err := events.CreateEvent(ctx, member.ID, gen.Event(4, &c.ID))
	require.NoError(t, err)

	require.NoError(t, clubs.DeleteClub(ctx, c.ID, lead.ID))

	_, err = clubs.GetClub(ctx, c.ID)
	assert.ErrorIs(t, err, club.ErrClubNotFound)

	gone, err := events.Lookup(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "upcoming club events are deleted with the club")

	for _, table := range []string{"club_joins", "club_waitings"} {
		n, err := env.DB.NewSelect().Table(table).Where("club_id = ?", c.ID).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n, table)
	}

	state, err := clubs.MembershipState(ctx, c.ID, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, club.StateNone, state)
}
