package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/meetup/pkg/middleware"
	"github.com/fkhayef/meetup/pkg/response"
)

// asUser stands in for RequireAuth by trusting X-Test-User-ID
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(middleware.DevUserHeader); id != "" {
			var userID int64
			for _, c := range id {
				userID = userID*10 + int64(c-'0')
			}
			r = r.WithContext(middleware.WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestRouter(repo *FakeRepo) chi.Router {
	return NewHandler(NewService(repo, &FakeRegions{})).Routes(asUser)
}

func TestHandler_Patch(t *testing.T) {
	repo := &FakeRepo{GetByIDFunc: func(ctx context.Context, id int64) (*User, error) {
		return activeUser(id), nil
	}}

	tests := []struct {
		name       string
		caller     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "null name", caller: "1", body: `{"name":null}`, wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST"},
		{name: "other user", caller: "2", body: `{"name":"Hana"}`, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "no caller", caller: "", body: `{"name":"Hana"}`, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "clears city", caller: "1", body: `{"city_id":null}`, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/1", strings.NewReader(tt.body))
			if tt.caller != "" {
				req.Header.Set(middleware.DevUserHeader, tt.caller)
			}
			rec := httptest.NewRecorder()
			newTestRouter(repo).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			var body response.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantCode != "" {
				require.NotNil(t, body.Error)
				assert.Equal(t, tt.wantCode, body.Error.Code)
				return
			}
			data := body.Data.(map[string]interface{})
			assert.Nil(t, data["city_id"])
		})
	}
}

func TestHandler_GetByID_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&FakeRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/77", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Create_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"name":"","email":"x@y.z","category_id":1}`
	newTestRouter(&FakeRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
