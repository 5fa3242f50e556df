package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/pkg/idx"
	"github.com/aussiebroadwan/iam/pkg/validx"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	t.Parallel()

	tn, err := domain.NewTenant("Acme", "Acme Corporation", true)
	require.NoError(t, err)
	require.True(t, idx.IsUUID(tn.UUID))
	require.NotEmpty(t, tn.ID)
	require.True(t, tn.Enabled)

	_, err = domain.NewTenant("", "", true)
	var ve validx.ValidationErrors
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "required", ve.Fields()["name"])

	long := make([]byte, 71)
	for i := range long {
		long[i] = 'a'
	}
	_, err = domain.NewTenant(string(long), "", true)
	require.ErrorAs(t, err, &ve)
}

func TestValidity(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	from := now.Add(-time.Hour)
	until := now.Add(time.Hour)

	_, err := domain.NewValidity(&until, &from)
	require.ErrorIs(t, err, domain.ErrInvalidValidity)

	v, err := domain.NewValidity(&from, &until)
	require.NoError(t, err)
	require.True(t, v.IsValidAt(now))
	require.True(t, v.IsValidAt(from))
	require.True(t, v.IsValidAt(until))
	require.False(t, v.IsValidAt(until.Add(time.Nanosecond)))
	require.False(t, v.IsValidAt(from.Add(-time.Nanosecond)))
	require.True(t, v.HasEndedBy(until.Add(time.Second)))

	open := domain.Validity{}
	require.True(t, open.IsOpenEnded())
	require.True(t, open.IsValidAt(now))
	require.False(t, open.HasEndedBy(now))
}

func TestTenantInvitations(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("offer and look up", func(t *testing.T) {
		t.Parallel()

		tn, err := domain.NewTenant("Offer", "", true)
		require.NoError(t, err)

		inv, err := tn.OfferInvitation("Open enrolment", now)
		require.NoError(t, err)
		require.True(t, idx.IsUUID(inv.Identifier))
		require.True(t, inv.Validity.IsOpenEnded())

		byID, ok := tn.Invitation(inv.Identifier)
		require.True(t, ok)
		require.Equal(t, inv, byID)

		byDesc, ok := tn.Invitation("Open enrolment")
		require.True(t, ok)
		require.Equal(t, inv, byDesc)

		_, err = tn.OfferInvitation("Open enrolment", now)
		require.ErrorIs(t, err, domain.ErrInvitationExists)

		available, err := tn.IsRegistrationAvailableThrough(inv.Identifier, now)
		require.NoError(t, err)
		require.True(t, available)
	})

	t.Run("redefine and withdraw", func(t *testing.T) {
		t.Parallel()

		tn, err := domain.NewTenant("Redefine", "", true)
		require.NoError(t, err)
		inv, err := tn.OfferInvitation("Spring intake", now)
		require.NoError(t, err)

		past := domain.Validity{From: ptr(now.Add(-48 * time.Hour)), Until: ptr(now.Add(-24 * time.Hour))}
		redefined, err := tn.RedefineInvitation(inv.Identifier, past)
		require.NoError(t, err)
		require.Equal(t, past, redefined.Validity)

		avail, err := tn.AvailableInvitations(now)
		require.NoError(t, err)
		require.Empty(t, avail)

		unavail, err := tn.UnavailableInvitations(now)
		require.NoError(t, err)
		require.Len(t, unavail, 1)
		require.Equal(t, tn.UUID, unavail[0].TenantID)
		require.Equal(t, "Spring intake", unavail[0].Description)

		_, err = tn.RedefineInvitation("missing", domain.Validity{})
		require.ErrorIs(t, err, domain.ErrInvitationNotFound)

		require.NoError(t, tn.WithdrawInvitation(inv.Identifier))
		require.ErrorIs(t, tn.WithdrawInvitation(inv.Identifier), domain.ErrInvitationNotFound)
		require.Empty(t, tn.Invitations)
	})

	t.Run("invalid window", func(t *testing.T) {
		t.Parallel()

		tn, err := domain.NewTenant("Window", "", true)
		require.NoError(t, err)
		inv, err := tn.OfferInvitation("Window", now)
		require.NoError(t, err)

		_, err = tn.RedefineInvitation(inv.Identifier, domain.Validity{From: ptr(now), Until: ptr(now.Add(-time.Second))})
		require.ErrorIs(t, err, domain.ErrInvalidValidity)
	})

	t.Run("inactive tenant", func(t *testing.T) {
		t.Parallel()

		tn, err := domain.NewTenant("Inactive", "", true)
		require.NoError(t, err)
		inv, err := tn.OfferInvitation("Closed", now)
		require.NoError(t, err)
		tn.Deactivate()

		_, err = tn.OfferInvitation("Another", now)
		require.ErrorIs(t, err, domain.ErrTenantNotActive)
		_, err = tn.RedefineInvitation(inv.Identifier, domain.Validity{})
		require.ErrorIs(t, err, domain.ErrTenantNotActive)
		require.ErrorIs(t, tn.WithdrawInvitation(inv.Identifier), domain.ErrTenantNotActive)
		_, err = tn.AvailableInvitations(now)
		require.ErrorIs(t, err, domain.ErrTenantNotActive)
		_, err = tn.IsRegistrationAvailableThrough(inv.Identifier, now)
		require.ErrorIs(t, err, domain.ErrTenantNotActive)

		tn.Activate()
		_, err = tn.AvailableInvitations(now)
		require.NoError(t, err)
	})
}
