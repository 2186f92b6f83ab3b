package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	p := NewProvider("test-secret", "meetup")

	token, err := p.GenerateToken(42, time.Hour)
	require.NoError(t, err)

	claims, err := p.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestValidateToken_Failures(t *testing.T) {
	p := NewProvider("test-secret", "meetup")

	expired := &provider{
		secret: []byte("test-secret"),
		issuer: "meetup",
		now:    func() time.Time { return time.Now().Add(-2 * time.Hour) },
	}
	expiredToken, err := expired.GenerateToken(1, time.Hour)
	require.NoError(t, err)

	otherSecret, err := NewProvider("other-secret", "meetup").GenerateToken(1, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewProvider("test-secret", "someone-else").GenerateToken(1, time.Hour)
	require.NoError(t, err)

	noSubject, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		Issuer:    "meetup",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expiredToken, wantErr: ErrExpiredToken},
		{name: "wrong secret", token: otherSecret, wantErr: ErrInvalidSignature},
		{name: "wrong issuer", token: otherIssuer, wantErr: ErrInvalidToken},
		{name: "missing subject", token: noSubject, wantErr: ErrInvalidToken},
		{name: "garbage", token: "not-a-token", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := p.ValidateToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
