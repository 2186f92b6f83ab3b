//go:build integration

package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/meetup/internal/config"
	"github.com/fkhayef/meetup/internal/server"
	"github.com/fkhayef/meetup/internal/testutil"
	"github.com/fkhayef/meetup/pkg/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	t *testing.T
	h http.Handler
}

func newClient(t *testing.T, env *testutil.Env) *client {
	cfg := config.Default()
	cfg.DatabaseURL = env.DSN
	cfg.Auth.DevHeader = true
	cfg.RateLimit.RPS = 0
	return &client{t: t, h: server.New(env.DB, cfg)}
}

// call sends body as JSON on behalf of caller (0 for anonymous) and decodes data into out when non-nil
func (c *client) call(method, path string, caller int64, body, out interface{}) (int, *envelope) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != 0 {
		req.Header.Set(middleware.DevUserHeader, fmt.Sprint(caller))
	}

	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	if rec.Code == http.StatusNoContent {
		return rec.Code, nil
	}

	var env envelope
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if out != nil && env.Data != nil {
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
	return rec.Code, &env
}

type idResponse struct {
	ID int64 `json:"id"`
}

func (c *client) create(path string, caller int64, body interface{}) int64 {
	c.t.Helper()
	var out idResponse
	status, env := c.call(http.MethodPost, path, caller, body, &out)
	require.Equal(c.t, http.StatusCreated, status, "%+v", env)
	return out.ID
}

func (c *client) users(gen *testutil.Generator, n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = c.create("/users", 0, gen.User())
	}
	return ids
}

func (c *client) membership(clubID, userID int64) string {
	c.t.Helper()
	var out struct {
		State string `json:"state"`
	}
	status, _ := c.call(http.MethodGet, fmt.Sprintf("/clubs/%d/membership", clubID), userID, nil, &out)
	require.Equal(c.t, http.StatusOK, status)
	return out.State
}

func TestIntegration_ClubWaitingList(t *testing.T) {
	env := testutil.NewEnv(t)
	c := newClient(t, env)
	gen := testutil.NewGenerator(1)

	ids := c.users(gen, 3)
	lead, u2, u3 := ids[0], ids[1], ids[2]
	clubID := c.create("/clubs", lead, gen.Club(2))
	clubPath := fmt.Sprintf("/clubs/%d", clubID)
	decide := func(userID int64, decision string) (int, *envelope) {
		return c.call(http.MethodPost, clubPath+"/approve", lead, map[string]interface{}{
			"user_id": userID, "decision": decision,
		}, nil)
	}

	status, _ := c.call(http.MethodPost, clubPath+"/join", u2, nil, nil)
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, "PENDING", c.membership(clubID, u2))

	status, _ = decide(u2, "approve")
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, "MEMBER", c.membership(clubID, u2))

	// the club is full now but requests still queue
	status, _ = c.call(http.MethodPost, clubPath+"/join", u3, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, body := decide(u3, "approve")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body.Error.Code)
	assert.Equal(t, "PENDING", c.membership(clubID, u3))

	status, _ = decide(u3, "reject")
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, "REJECTED", c.membership(clubID, u3))

	status, _ = c.call(http.MethodPost, clubPath+"/join", u3, nil, nil)
	assert.Equal(t, http.StatusConflict, status)

	// leaving frees the slot and lets the member ask again
	status, _ = c.call(http.MethodPost, clubPath+"/out", u2, nil, nil)
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, "NONE", c.membership(clubID, u2))

	status, _ = c.call(http.MethodPost, clubPath+"/join", u2, nil, nil)
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, "PENDING", c.membership(clubID, u2))

	var waiting []struct {
		UserID int64 `json:"user_id"`
	}
	status, _ = c.call(http.MethodGet, clubPath+"/waiting", lead, nil, &waiting)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, waiting, 1)
	assert.Equal(t, u2, waiting[0].UserID)

	var notes []struct {
		Type string `json:"type"`
	}
	status, _ = c.call(http.MethodGet, "/notifications", u3, nil, &notes)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, notes)
}

func TestIntegration_ExitCascade(t *testing.T) {
	env := testutil.NewEnv(t)
	c := newClient(t, env)
	gen := testutil.NewGenerator(2)

	ids := c.users(gen, 2)
	lead, member := ids[0], ids[1]
	clubID := c.create("/clubs", lead, gen.Club(10))
	c.call(http.MethodPost, fmt.Sprintf("/clubs/%d/join", clubID), member, nil, nil)
	status, _ := c.call(http.MethodPost, fmt.Sprintf("/clubs/%d/approve", clubID), lead, map[string]interface{}{
		"user_id": member, "decision": "approve",
	}, nil)
	require.Equal(t, http.StatusNoContent, status)

	hosted := c.create("/events", member, gen.Event(5, &clubID))
	joined := c.create("/events", lead, gen.Event(5, &clubID))
	upcoming := c.create("/events", lead, gen.Event(5, &clubID))
	independent := c.create("/events", lead, gen.Event(5, nil))
	for _, id := range []int64{joined, upcoming, independent} {
		status, _ := c.call(http.MethodPost, fmt.Sprintf("/events/%d/join", id), member, nil, nil)
		require.Equal(t, http.StatusNoContent, status)
	}
	env.Backdate(t, hosted, time.Hour)
	env.Backdate(t, joined, time.Hour)
	env.Backdate(t, independent, time.Hour)

	status, _ = c.call(http.MethodPost, fmt.Sprintf("/clubs/%d/out", clubID), member, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = c.call(http.MethodGet, fmt.Sprintf("/events/%d", hosted), 0, nil, nil)
	assert.Equal(t, http.StatusNotFound, status, "started events the member hosted are deleted")

	participants := func(eventID int64) []int64 {
		var detail struct {
			Participants []struct {
				ID int64 `json:"id"`
			} `json:"participants"`
		}
		status, _ := c.call(http.MethodGet, fmt.Sprintf("/events/%d", eventID), 0, nil, &detail)
		require.Equal(t, http.StatusOK, status)
		out := make([]int64, len(detail.Participants))
		for i, p := range detail.Participants {
			out[i] = p.ID
		}
		return out
	}
	assert.NotContains(t, participants(joined), member)
	assert.Contains(t, participants(upcoming), member, "future events are left alone")
	assert.Contains(t, participants(independent), member, "events outside the club are left alone")
}

func TestIntegration_ReviewVisibility(t *testing.T) {
	env := testutil.NewEnv(t)
	c := newClient(t, env)
	gen := testutil.NewGenerator(3)

	ids := c.users(gen, 4)
	lead, reviewer, bystander, outsider := ids[0], ids[1], ids[2], ids[3]
	clubID := c.create("/clubs", lead, gen.Club(10))
	for _, id := range []int64{reviewer, bystander} {
		c.call(http.MethodPost, fmt.Sprintf("/clubs/%d/join", clubID), id, nil, nil)
		status, _ := c.call(http.MethodPost, fmt.Sprintf("/clubs/%d/approve", clubID), lead, map[string]interface{}{
			"user_id": id, "decision": "approve",
		}, nil)
		require.Equal(t, http.StatusNoContent, status)
	}

	eventID := c.create("/events", lead, gen.Event(5, &clubID))
	status, _ := c.call(http.MethodPost, fmt.Sprintf("/events/%d/join", eventID), reviewer, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	review := map[string]interface{}{"event_id": eventID, "score": 5, "title": "Great night"}
	status, _ = c.call(http.MethodPost, "/reviews", reviewer, review, nil)
	assert.Equal(t, http.StatusConflict, status, "event has not ended")

	env.Backdate(t, eventID, 3*time.Hour)
	reviewID := c.create("/reviews", reviewer, review)

	status, _ = c.call(http.MethodPost, "/reviews", reviewer, review, nil)
	assert.Equal(t, http.StatusConflict, status, "one review per event")

	visibleTo := func(viewer int64) (single int, listed int) {
		single, _ = c.call(http.MethodGet, fmt.Sprintf("/reviews/%d", reviewID), viewer, nil, nil)
		var list []idResponse
		status, _ := c.call(http.MethodGet, fmt.Sprintf("/reviews?event_id=%d", eventID), viewer, nil, &list)
		require.Equal(t, http.StatusOK, status)
		return single, len(list)
	}

	single, listed := visibleTo(bystander)
	assert.Equal(t, http.StatusOK, single)
	assert.Equal(t, 1, listed)

	single, listed = visibleTo(outsider)
	assert.Equal(t, http.StatusForbidden, single)
	assert.Equal(t, 0, listed)

	status, _ = c.call(http.MethodDelete, fmt.Sprintf("/clubs/%d", clubID), lead, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	single, listed = visibleTo(bystander)
	assert.Equal(t, http.StatusForbidden, single, "former members lose sight once the club is gone")
	assert.Equal(t, 0, listed)

	single, listed = visibleTo(reviewer)
	assert.Equal(t, http.StatusOK, single, "participants keep sight")
	assert.Equal(t, 1, listed)
}

func TestIntegration_DeletedUserIsLockedOut(t *testing.T) {
	env := testutil.NewEnv(t)
	c := newClient(t, env)
	gen := testutil.NewGenerator(3)

	ids := c.users(gen, 2)
	host, leaver := ids[0], ids[1]
	eventID := c.create("/events", host, gen.Event(5, nil))

	status, _ := c.call(http.MethodDelete, fmt.Sprintf("/users/%d", leaver), leaver, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, body := c.call(http.MethodPost, fmt.Sprintf("/events/%d/join", eventID), leaver, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)

	status, _ = c.call(http.MethodGet, "/notifications", leaver, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.call(http.MethodPost, fmt.Sprintf("/events/%d/join", eventID), host, nil, nil)
	assert.Equal(t, http.StatusConflict, status, "live callers still reach the service")
}
