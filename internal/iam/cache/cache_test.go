package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/iam/internal/iam/cache"
	"github.com/aussiebroadwan/iam/internal/iam/domain"
)

func TestTenants(t *testing.T) {
	t.Parallel()

	c, err := cache.NewTenants(100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	tn, err := domain.NewTenant("Acme", "", true)
	require.NoError(t, err)

	_, ok := c.Get(tn.ID)
	require.False(t, ok)

	c.Put(tn)

	for _, ref := range []string{tn.ID, tn.UUID, "Acme"} {
		got, ok := c.Get(ref)
		require.True(t, ok, ref)
		require.Equal(t, tn.ID, got.ID)
	}

	c.Invalidate(tn)
	for _, ref := range []string{tn.ID, tn.UUID, "Acme"} {
		_, ok := c.Get(ref)
		require.False(t, ok, ref)
	}

	c.Put(tn)
	c.Clear()
	_, ok = c.Get(tn.ID)
	require.False(t, ok)
}

func TestTenants_PutIfCurrent(t *testing.T) {
	t.Parallel()

	c, err := cache.NewTenants(100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	tn, err := domain.NewTenant("Acme", "", true)
	require.NoError(t, err)

	gen := c.Generation()
	require.True(t, c.PutIfCurrent(tn, gen))
	_, ok := c.Get(tn.ID)
	require.True(t, ok)

	t.Run("invalidated while loading", func(t *testing.T) {
		gen := c.Generation()
		c.Invalidate(tn)

		require.False(t, c.PutIfCurrent(tn, gen))
		_, ok := c.Get(tn.ID)
		require.False(t, ok)
	})

	t.Run("cleared while loading", func(t *testing.T) {
		gen := c.Generation()
		c.Clear()

		require.False(t, c.PutIfCurrent(tn, gen))
		_, ok := c.Get("Acme")
		require.False(t, ok)
	})
}
