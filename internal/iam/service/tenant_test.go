package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/pkg/validx"
)

func TestTenantService_ProvisionAndGet(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tn, err := f.tenants.Provision(ctx, "acme", "Acme Corp", true)
	require.NoError(t, err)
	require.Equal(t, int64(0), tn.Version)
	require.Equal(t, epoch, tn.CreatedAt)

	for _, ref := range []string{tn.ID, tn.UUID, tn.Name} {
		got, err := f.tenants.Get(ctx, ref)
		require.NoError(t, err, ref)
		require.Equal(t, tn.ID, got.ID)
		require.Equal(t, "Acme Corp", got.Description)
	}

	_, err = f.tenants.Provision(ctx, "acme", "", true)
	require.ErrorIs(t, err, service.ErrTenantExists)

	_, err = f.tenants.Get(ctx, "nobody")
	require.ErrorIs(t, err, service.ErrTenantNotFound)

	_, err = f.tenants.Provision(ctx, "", "", true)
	var ve validx.ValidationErrors
	require.ErrorAs(t, err, &ve)

	list, err := f.tenants.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestTenantService_Update(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tn, err := f.tenants.Provision(ctx, "acme", "Acme Corp", true)
	require.NoError(t, err)

	// Warm the cache so the update has something to invalidate.
	_, err = f.tenants.Get(ctx, "acme")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	updated, err := f.tenants.Update(ctx, "acme", service.TenantUpdate{Name: ptr("acme-2"), Description: ptr("Renamed")})
	require.NoError(t, err)
	require.Equal(t, int64(1), updated.Version)
	require.Equal(t, epoch.Add(time.Minute), updated.UpdatedAt)

	_, err = f.tenants.Get(ctx, "acme")
	require.ErrorIs(t, err, service.ErrTenantNotFound)

	got, err := f.tenants.Get(ctx, tn.UUID)
	require.NoError(t, err)
	require.Equal(t, "acme-2", got.Name)
	require.Equal(t, "Renamed", got.Description)

	t.Run("stale expected version", func(t *testing.T) {
		_, err := f.tenants.Update(service.WithExpectedVersion(ctx, 0), "acme-2", service.TenantUpdate{Description: ptr("x")})
		require.ErrorIs(t, err, store.ErrVersionConflict)
	})

	t.Run("matching expected version", func(t *testing.T) {
		got, err := f.tenants.Update(service.WithExpectedVersion(ctx, 1), "acme-2", service.TenantUpdate{Description: ptr("y")})
		require.NoError(t, err)
		require.Equal(t, int64(2), got.Version)
	})

	t.Run("rename onto existing name", func(t *testing.T) {
		_, err := f.tenants.Provision(ctx, "other", "", true)
		require.NoError(t, err)
		_, err = f.tenants.Update(ctx, "other", service.TenantUpdate{Name: ptr("acme-2")})
		require.ErrorIs(t, err, service.ErrTenantExists)
	})
}

func TestTenantService_ActivateDeactivate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tenants.Provision(ctx, "acme", "", false)
	require.NoError(t, err)

	_, err = f.tenants.OfferInvitation(ctx, "acme", "Open Enrollment")
	require.ErrorIs(t, err, domain.ErrTenantNotActive)

	tn, err := f.tenants.Activate(ctx, "acme")
	require.NoError(t, err)
	require.True(t, tn.Enabled)

	_, err = f.tenants.OfferInvitation(ctx, "acme", "Open Enrollment")
	require.NoError(t, err)

	tn, err = f.tenants.Deactivate(ctx, "acme")
	require.NoError(t, err)
	require.False(t, tn.Enabled)

	_, err = f.tenants.ListInvitations(ctx, "acme", true)
	require.ErrorIs(t, err, domain.ErrTenantNotActive)
}

func TestTenantService_Invitations(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tn, err := f.tenants.Provision(ctx, "acme", "", true)
	require.NoError(t, err)

	inv, err := f.tenants.OfferInvitation(ctx, "acme", "Open Enrollment")
	require.NoError(t, err)
	require.Equal(t, tn.UUID, inv.TenantID)
	require.Len(t, inv.Identifier, 36)
	require.Nil(t, inv.From)
	require.Nil(t, inv.Until)

	_, err = f.tenants.OfferInvitation(ctx, "acme", "Open Enrollment")
	require.ErrorIs(t, err, domain.ErrInvitationExists)

	available, err := f.tenants.ListInvitations(ctx, "acme", true)
	require.NoError(t, err)
	require.Len(t, available, 1)

	ok, err := f.tenants.IsRegistrationAvailable(ctx, "acme", "Open Enrollment")
	require.NoError(t, err)
	require.True(t, ok)

	// Push the window an hour into the future.
	from := epoch.Add(time.Hour)
	until := epoch.Add(2 * time.Hour)
	redefined, err := f.tenants.RedefineInvitation(ctx, "acme", inv.Identifier, domain.Validity{From: &from, Until: &until})
	require.NoError(t, err)
	require.Equal(t, from, *redefined.From)

	ok, err = f.tenants.IsRegistrationAvailable(ctx, "acme", inv.Identifier)
	require.NoError(t, err)
	require.False(t, ok)

	unavailable, err := f.tenants.ListInvitations(ctx, "acme", false)
	require.NoError(t, err)
	require.Len(t, unavailable, 1)

	f.clock.Advance(90 * time.Minute)
	ok, err = f.tenants.IsRegistrationAvailable(ctx, "acme", inv.Identifier)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.tenants.RedefineInvitation(ctx, "acme", "missing", domain.Validity{})
	require.ErrorIs(t, err, domain.ErrInvitationNotFound)

	_, err = f.tenants.RedefineInvitation(ctx, "acme", inv.Identifier, domain.Validity{From: &until, Until: &from})
	require.ErrorIs(t, err, domain.ErrInvalidValidity)

	require.NoError(t, f.tenants.WithdrawInvitation(ctx, "acme", "Open Enrollment"))
	require.ErrorIs(t, f.tenants.WithdrawInvitation(ctx, "acme", inv.Identifier), domain.ErrInvitationNotFound)

	invs, err := f.store.Invitations().ListInvitations(ctx, tn.ID)
	require.NoError(t, err)
	require.Empty(t, invs)
}

func TestTenantService_Delete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tn, inv := f.seedTenant(t, "acme")
	f.register(t, tn.Name, inv, "zoe", "Zoe", "Doe")

	require.ErrorIs(t, f.tenants.Delete(service.WithExpectedVersion(ctx, 7), "acme"), store.ErrVersionConflict)
	require.NoError(t, f.tenants.Delete(ctx, "acme"))

	_, err := f.tenants.Get(ctx, tn.ID)
	require.ErrorIs(t, err, service.ErrTenantNotFound)
	require.ErrorIs(t, f.tenants.Delete(ctx, "acme"), service.ErrTenantNotFound)

	users, err := f.store.Users().ListUsers(ctx, tn.ID)
	require.NoError(t, err)
	require.Empty(t, users)
}
