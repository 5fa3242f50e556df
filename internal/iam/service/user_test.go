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

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tn, inv := f.seedTenant(t, "acme")

	u := f.register(t, "acme", inv, "zoe", "Zoe", "Doe")
	require.Equal(t, tn.ID, u.TenantID)
	require.Equal(t, int64(0), u.Version)
	require.NotEqual(t, strongPassword, u.PasswordHash)

	reg := func(invitation, username, password string) error {
		_, err := f.users.Register(ctx, "acme", service.Registration{
			Invitation: invitation,
			Username:   username,
			Password:   password,
			Enablement: domain.IndefiniteEnablement(),
			Person:     person("Amy", "Lee", username+"@example.com"),
		})
		return err
	}

	t.Run("by description", func(t *testing.T) {
		require.NoError(t, reg("Open Enrollment", "amy", strongPassword))
	})

	t.Run("username taken", func(t *testing.T) {
		require.ErrorIs(t, reg(inv, "zoe", strongPassword), service.ErrUsernameTaken)
	})

	t.Run("unknown invitation", func(t *testing.T) {
		require.ErrorIs(t, reg("bogus", "bob", strongPassword), service.ErrInvitationUnavailable)
	})

	t.Run("weak password", func(t *testing.T) {
		require.ErrorIs(t, reg(inv, "bob", "password"), domain.ErrPasswordWeak)
	})

	t.Run("invalid person", func(t *testing.T) {
		_, err := f.users.Register(ctx, "acme", service.Registration{
			Invitation: inv,
			Username:   "bob",
			Password:   strongPassword,
			Person:     person("bob", "Smith", "not-an-email"),
		})
		var ve validx.ValidationErrors
		require.ErrorAs(t, err, &ve)
		require.Contains(t, ve.Fields(), "person.name.first_name")
		require.Contains(t, ve.Fields(), "person.contact.email")
	})

	t.Run("expired invitation", func(t *testing.T) {
		until := epoch.Add(-time.Hour)
		_, err := f.tenants.RedefineInvitation(ctx, "acme", inv, domain.Validity{Until: &until})
		require.NoError(t, err)
		require.ErrorIs(t, reg(inv, "bob", strongPassword), service.ErrInvitationUnavailable)
	})

	t.Run("inactive tenant", func(t *testing.T) {
		_, err := f.tenants.Deactivate(ctx, "acme")
		require.NoError(t, err)
		require.ErrorIs(t, reg(inv, "carl", strongPassword), domain.ErrTenantNotActive)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tn, inv := f.seedTenant(t, "acme")
	f.register(t, "acme", inv, "zoe", "Zoe", "Doe")

	desc, err := f.users.Authenticate(ctx, "acme", "zoe", strongPassword)
	require.NoError(t, err)
	require.Equal(t, domain.UserDescriptor{TenantID: tn.UUID, Username: "zoe", Email: "zoe@example.com"}, desc)

	_, err = f.users.Authenticate(ctx, "acme", "zoe", "wrong")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.users.Authenticate(ctx, "acme", "nobody", strongPassword)
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Outside the activity window.
	end := epoch.Add(time.Hour)
	_, err = f.users.DefineEnablement(ctx, "acme", "zoe", domain.Enablement{Enabled: true, End: &end})
	require.NoError(t, err)
	_, err = f.users.Authenticate(ctx, "acme", "zoe", strongPassword)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	_, err = f.users.Authenticate(ctx, "acme", "zoe", strongPassword)
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.users.DefineEnablement(ctx, "acme", "zoe", domain.IndefiniteEnablement())
	require.NoError(t, err)
	_, err = f.tenants.Deactivate(ctx, "acme")
	require.NoError(t, err)
	_, err = f.users.Authenticate(ctx, "acme", "zoe", strongPassword)
	require.ErrorIs(t, err, domain.ErrTenantNotActive)
}

func TestUserService_AuthenticateIgnoresCachedTenant(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, inv := f.seedTenant(t, "acme")
	f.register(t, "acme", inv, "zoe", "Zoe", "Doe")

	// Warm the cache with the active tenant.
	_, err := f.tenants.Get(ctx, "acme")
	require.NoError(t, err)

	// Deactivate behind the cache's back, as a writer racing a reader would
	// leave it.
	stored, err := f.store.Tenants().GetTenantByName(ctx, "acme")
	require.NoError(t, err)
	stored.Enabled = false
	_, err = f.store.Tenants().UpdateTenant(ctx, stored)
	require.NoError(t, err)

	cached, err := f.tenants.Get(ctx, "acme")
	require.NoError(t, err)
	require.True(t, cached.Enabled)

	_, err = f.users.Authenticate(ctx, "acme", "zoe", strongPassword)
	require.ErrorIs(t, err, domain.ErrTenantNotActive)
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, inv := f.seedTenant(t, "acme")
	f.register(t, "acme", inv, "zoe", "Zoe", "Doe")

	const next = "AnotherSecret456?"

	require.ErrorIs(t, f.users.ChangePassword(ctx, "acme", "zoe", strongPassword, ""), domain.ErrPasswordRequired)
	require.ErrorIs(t, f.users.ChangePassword(ctx, "acme", "zoe", "wrong", next), domain.ErrPasswordNotVerified)
	require.ErrorIs(t, f.users.ChangePassword(ctx, "acme", "zoe", strongPassword, strongPassword), domain.ErrPasswordUnchanged)
	require.ErrorIs(t, f.users.ChangePassword(ctx, "acme", "zoe", strongPassword, "abc"), domain.ErrPasswordWeak)
	require.ErrorIs(t, f.users.ChangePassword(ctx, "acme", "nobody", strongPassword, next), service.ErrUserNotFound)

	require.NoError(t, f.users.ChangePassword(ctx, "acme", "zoe", strongPassword, next))

	_, err := f.users.Authenticate(ctx, "acme", "zoe", next)
	require.NoError(t, err)
	_, err = f.users.Authenticate(ctx, "acme", "zoe", strongPassword)
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	u, err := f.users.Get(ctx, "acme", "zoe")
	require.NoError(t, err)
	require.Equal(t, int64(1), u.Version)
}

func TestUserService_Profile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, inv := f.seedTenant(t, "acme")
	f.register(t, "acme", inv, "zoe", "Zoe", "Doe")

	u, err := f.users.ChangePersonalName(ctx, "acme", "zoe", domain.FullName{First: "Zoey", Last: "O'Doe"})
	require.NoError(t, err)
	require.Equal(t, int64(1), u.Version)

	_, err = f.users.ChangePersonalName(ctx, "acme", "zoe", domain.FullName{First: "zoey", Last: "Doe"})
	var ve validx.ValidationErrors
	require.ErrorAs(t, err, &ve)

	u, err = f.users.ChangeContactInformation(ctx, "acme", "zoe", domain.ContactInformation{
		Email:            "zoey@example.com",
		PrimaryTelephone: "303-555-1210",
		Address: &domain.PostalAddress{
			Street:        "Main Street",
			PostalCode:    "2000",
			City:          "Sydney",
			StateProvince: "NSW",
			CountryCode:   "AU",
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), u.Version)

	got, err := f.users.Get(ctx, "acme", "zoe")
	require.NoError(t, err)
	require.Equal(t, "Zoey", got.Person.Name.First)
	require.Equal(t, "O'Doe", got.Person.Name.Last)
	require.Equal(t, "zoey@example.com", got.Person.Contact.Email)
	require.NotNil(t, got.Person.Contact.Address)
	require.Equal(t, "Sydney", got.Person.Contact.Address.City)

	_, err = f.users.ChangePersonalName(service.WithExpectedVersion(ctx, 1), "acme", "zoe", domain.FullName{First: "Zed", Last: "Doe"})
	require.ErrorIs(t, err, store.ErrVersionConflict)
}

func TestUserService_ListAndSearch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, inv := f.seedTenant(t, "acme")
	f.register(t, "acme", inv, "zoe", "Zoe", "Doe")
	f.register(t, "acme", inv, "zac", "Zac", "Dobbs")
	f.register(t, "acme", inv, "amy", "Amy", "Lee")

	all, err := f.users.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "amy", all[0].Username)

	similar, err := f.users.SearchSimilarlyNamed(ctx, "acme", "Z", "Do")
	require.NoError(t, err)
	require.Len(t, similar, 2)

	none, err := f.users.SearchSimilarlyNamed(ctx, "acme", "Z", "Lee")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestUserService_DeletePurgesMemberships(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, inv := f.seedTenant(t, "acme")
	f.register(t, "acme", inv, "zoe", "Zoe", "Doe")

	_, err := f.groups.Create(ctx, "acme", "staff", "")
	require.NoError(t, err)
	g, err := f.groups.AddUser(ctx, "acme", "staff", "zoe")
	require.NoError(t, err)
	require.Equal(t, int64(1), g.Version)

	require.NoError(t, f.users.Delete(ctx, "acme", "zoe"))

	g, err = f.groups.Get(ctx, "acme", "staff")
	require.NoError(t, err)
	require.Empty(t, g.Members)
	require.Equal(t, int64(2), g.Version)

	_, err = f.users.Get(ctx, "acme", "zoe")
	require.ErrorIs(t, err, service.ErrUserNotFound)
	require.ErrorIs(t, f.users.Delete(ctx, "acme", "zoe"), service.ErrUserNotFound)
}
