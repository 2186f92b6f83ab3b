package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/pkg/middleware"
)

func TestNotify(t *testing.T) {
	var written []*Notification
	repo := &FakeRepo{CreateFunc: func(ctx context.Context, db bun.IDB, notifications []*Notification) error {
		written = notifications
		return nil
	}}

	err := NewService(repo).Notify(context.Background(), nil,
		Message{RecipientID: 3, Type: TypeClubJoinRequested, Text: "someone wants in", EntityType: EntityClub, EntityID: 9},
		Message{RecipientID: 4, Type: TypeClubDeleted, Text: "gone"},
	)
	require.NoError(t, err)
	require.Len(t, written, 2)

	assert.Equal(t, int64(3), written[0].RecipientID)
	require.NotNil(t, written[0].RelatedEntityType)
	assert.Equal(t, EntityClub, *written[0].RelatedEntityType)
	assert.Equal(t, int64(9), *written[0].RelatedEntityID)
	assert.Nil(t, written[1].RelatedEntityType)
}

func TestNotify_NothingToWrite(t *testing.T) {
	repo := &FakeRepo{}
	require.NoError(t, NewService(repo).Notify(context.Background(), nil))
	assert.Empty(t, repo.Trace())
}

func TestMarkAsRead(t *testing.T) {
	owned := &Notification{ID: 1, RecipientID: 5}

	tests := []struct {
		name    string
		found   *Notification
		userID  int64
		wantErr error
		trace   []string
	}{
		{name: "recipient", found: owned, userID: 5, trace: []string{"GetByID", "MarkAsRead"}},
		{name: "someone else", found: owned, userID: 6, wantErr: ErrNotRecipient, trace: []string{"GetByID"}},
		{name: "missing", found: nil, userID: 5, wantErr: ErrNotificationNotFound, trace: []string{"GetByID"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &FakeRepo{GetByIDFunc: func(ctx context.Context, id int64) (*Notification, error) {
				return tt.found, nil
			}}

			err := NewService(repo).MarkAsRead(context.Background(), 1, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.trace, repo.Trace())
		})
	}
}

func TestHandler_UnreadCount(t *testing.T) {
	repo := &FakeRepo{GetUnreadCountFunc: func(ctx context.Context, recipientID int64) (int, error) {
		assert.Equal(t, int64(8), recipientID)
		return 4, nil
	}}
	passThrough := func(next http.Handler) http.Handler { return next }
	router := NewHandler(NewService(repo)).Routes(passThrough)

	req := httptest.NewRequest(http.MethodGet, "/unread-count", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), 8))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data UnreadCountResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Data.UnreadCount)
}

func TestHandler_RequiresCaller(t *testing.T) {
	passThrough := func(next http.Handler) http.Handler { return next }
	router := NewHandler(NewService(&FakeRepo{})).Routes(passThrough)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/read-all", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
