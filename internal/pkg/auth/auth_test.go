package auth

import (
	"context"
	"testing"
	"time"

	kratosjwt "github.com/go-kratos/kratos/v2/middleware/auth/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviereview/internal/conf"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hashed, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hashed)
	assert.True(t, CheckPasswordHash("secret1", hashed))
	assert.False(t, CheckPasswordHash("secret2", hashed))
}

func TestTokenManager(t *testing.T) {
	t.Parallel()

	m, err := NewTokenManager(&conf.Auth{JwtSecret: "test-secret", TokenTTL: &conf.Duration{Duration: time.Hour}})
	require.NoError(t, err)

	token, err := m.Issue("65f1c0ffee0000000000abcd", RoleUser)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "65f1c0ffee0000000000abcd", claims.Subject)
	assert.Equal(t, RoleUser, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	other, err := NewTokenManager(&conf.Auth{JwtSecret: "other-secret"})
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager(&conf.Auth{})
	assert.Error(t, err)
	_, err = NewTokenManager(nil)
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := kratosjwt.NewContext(context.Background(), &Claims{Role: RoleAdmin})
	claims, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, claims.Role)
}
