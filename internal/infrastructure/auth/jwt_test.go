package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "docserial/internal/core/context"
)

func newService(t *testing.T, secret string) *JWTService {
	t.Helper()
	s, err := NewJWTService(DefaultJWTConfig(secret))
	require.NoError(t, err)
	return s
}

func TestJWTService_RoundTrip(t *testing.T) {
	s := newService(t, "s3cret")

	token, expiresAt, err := s.Issue("ops", []string{appctx.PermPrefixWrite}, false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	p, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", p.Subject)
	assert.True(t, p.HasPermission(appctx.PermPrefixWrite))
	assert.False(t, p.HasPermission(appctx.PermPrefixRead))
}

func TestJWTService_AdminHasEveryPermission(t *testing.T) {
	s := newService(t, "s3cret")

	token, _, err := s.Issue("root", nil, true)
	require.NoError(t, err)

	p, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, p.HasPermission(appctx.PermPrefixRead))
	assert.True(t, p.HasPermission(appctx.PermPrefixWrite))
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	token, _, err := newService(t, "one").Issue("ops", nil, false)
	require.NoError(t, err)

	_, err = newService(t, "two").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	s := newService(t, "s3cret")
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := s.Issue("ops", nil, false)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService(DefaultJWTConfig(""))
	assert.Error(t, err)
}
