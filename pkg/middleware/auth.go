package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/meetup/pkg/jwt"
	"github.com/fkhayef/meetup/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"

	// DevUserHeader carries the caller id when dev header auth is enabled
	DevUserHeader = "X-Test-User-ID"
)

// ActiveUsers reports whether a caller id still belongs to a live account
type ActiveUsers interface {
	IsActive(ctx context.Context, userID int64) (bool, error)
}

// Authenticator resolves the caller from a bearer token
type Authenticator struct {
	tokens    jwt.Provider
	devHeader bool
	users     ActiveUsers
}

// NewAuthenticator creates an authenticator. When devHeader is set, X-Test-User-ID is
// accepted in place of a bearer token (DEV ONLY). Callers whose account is missing or
// deleted are rejected.
func NewAuthenticator(tokens jwt.Provider, devHeader bool, users ActiveUsers) *Authenticator {
	return &Authenticator{tokens: tokens, devHeader: devHeader, users: users}
}

// RequireAuth rejects requests without a valid caller identity
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.resolve(r)
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		active, err := a.users.IsActive(r.Context(), userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("failed to check caller account")
			response.InternalError(w, "Failed to authenticate")
			return
		}
		if !active {
			response.Unauthorized(w, "User not found or deleted")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) resolve(r *http.Request) (int64, error) {
	if a.devHeader {
		if userIDStr := r.Header.Get(DevUserHeader); userIDStr != "" {
			userID, err := strconv.ParseInt(userIDStr, 10, 64)
			if err != nil || userID <= 0 {
				return 0, errors.New("Invalid " + DevUserHeader + " header")
			}
			return userID, nil
		}
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, errors.New("Authorization header required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, errors.New("Invalid authorization header format")
	}

	claims, err := a.tokens.ValidateToken(parts[1])
	if err != nil {
		logrus.WithError(err).Debug("rejected bearer token")
		if errors.Is(err, jwt.ErrExpiredToken) {
			return 0, errors.New("Token has expired")
		}
		return 0, errors.New("Invalid or expired token")
	}
	return claims.UserID, nil
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// WithUserID returns a context carrying the given caller id
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// CallerID returns the authenticated caller, writing a 401 when the route was not behind RequireAuth
func CallerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return 0, false
	}
	return userID, true
}
