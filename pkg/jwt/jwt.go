package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the token is malformed or invalid.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")

	// ErrInvalidSignature is returned when the token signature is invalid.
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID    int64
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Provider signs and validates access tokens.
type Provider interface {
	GenerateToken(userID int64, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type provider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewProvider creates an HS256 token provider.
func NewProvider(secret, issuer string) Provider {
	return &provider{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// GenerateToken creates a signed token whose subject is the user id.
func (p *provider) GenerateToken(userID int64, ttl time.Duration) (string, error) {
	now := p.now()
	claims := gojwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    p.issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a token and returns its claims.
func (p *provider) ValidateToken(tokenString string) (*Claims, error) {
	opts := []gojwt.ParserOption{gojwt.WithTimeFunc(p.now)}
	if p.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(p.issuer))
	}

	token, err := gojwt.ParseWithClaims(tokenString, &gojwt.RegisteredClaims{}, func(token *gojwt.Token) (any, error) {
		if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, gojwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	registered, ok := token.Claims.(*gojwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(registered.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		UserID:  userID,
		TokenID: registered.ID,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
