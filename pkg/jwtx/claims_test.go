package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/iam/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := jwtx.NewClaims("ops", "iam", []string{"admin"}, []string{"iam:read"}, time.Hour, now)

	require.Equal(t, "ops", c.Subject)
	require.Equal(t, "iam", c.Issuer)
	require.Equal(t, []string{"admin"}, []string(c.Audience))
	require.Equal(t, now, c.IssuedAt.Time)
	require.Equal(t, now.Add(time.Hour), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)

	other := jwtx.NewClaims("ops", "iam", nil, nil, time.Hour, now)
	require.NotEqual(t, c.ID, other.ID)
}

func TestHasScope(t *testing.T) {
	t.Parallel()

	c := jwtx.NewClaims("ops", "iam", nil, []string{"iam:read", "iam:write"}, time.Hour, time.Now())
	require.True(t, c.HasScope("iam:read"))
	require.True(t, c.HasScope("iam:write"))
	require.False(t, c.HasScope("iam:authenticate"))
}

func TestValidateExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := jwtx.NewClaims("ops", "iam", nil, nil, time.Hour, now)

	t.Run("within lifetime", func(t *testing.T) {
		require.NoError(t, c.ValidateExpiry(now.Add(30*time.Minute)))
	})

	t.Run("expired", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateExpiry(now.Add(2*time.Hour)), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateExpiry(now.Add(-time.Minute)), jwtx.ErrNotYetValid)
	})
}
