package auth

import (
	"testing"
	"time"

	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator_RoundTrip(t *testing.T) {
	v := NewTokenValidator("s3cret")

	token, err := v.GenerateToken("usr_42", time.Hour)
	require.NoError(t, err)

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_42", claims.UserID)
}

func TestTokenValidator_Rejects(t *testing.T) {
	v := NewTokenValidator("s3cret")

	expired, err := v.GenerateToken("usr_42", -time.Minute)
	require.NoError(t, err)

	otherSecret, err := NewTokenValidator("other").GenerateToken("usr_42", time.Hour)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "expired", token: expired},
		{name: "wrong secret", token: otherSecret},
		{name: "no user", token: noUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			require.Error(t, err)
			assert.True(t, ierr.Is(err, ierr.ErrPermissionDenied))
		})
	}
}

func TestTokenValidator_AcceptsSubject(t *testing.T) {
	v := NewTokenValidator("s3cret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "usr_7",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_7", claims.UserID)
}
