package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/pkg/validx"
	"github.com/stretchr/testify/require"
)

const strongPassword = "MySecurePassword123!"

func testPerson() domain.Person {
	return domain.Person{
		Name: domain.FullName{First: "Zoe", Last: "Doe"},
		Contact: domain.ContactInformation{
			Email:            "zoe.doe@example.com",
			PrimaryTelephone: "303-555-1210",
		},
	}
}

func TestEnablement(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	start := now.Add(-24 * time.Hour)
	end := now.Add(24 * time.Hour)

	_, err := domain.NewEnablement(true, &end, &start)
	require.ErrorIs(t, err, domain.ErrInvalidValidity)

	tests := []struct {
		name    string
		e       domain.Enablement
		at      time.Time
		expired bool
		enabled bool
	}{
		{"indefinite", domain.IndefiniteEnablement(), now, false, true},
		{"disabled", domain.Enablement{Enabled: false}, now, false, false},
		{"inside window", domain.Enablement{Enabled: true, Start: &start, End: &end}, now, false, true},
		{"before start", domain.Enablement{Enabled: true, Start: &start}, start.Add(-time.Second), true, false},
		{"after end", domain.Enablement{Enabled: true, End: &end}, end.Add(time.Second), true, false},
		{"on the end bound", domain.Enablement{Enabled: true, End: &end}, end, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expired, tt.e.IsTimeExpiredAt(tt.at))
			require.Equal(t, tt.enabled, tt.e.IsEnabledAt(tt.at))
		})
	}
}

func TestNewUser(t *testing.T) {
	t.Parallel()

	u, err := domain.NewUser("tenant-1", "zoe", strongPassword, domain.IndefiniteEnablement(), testPerson())
	require.NoError(t, err)
	require.NotEqual(t, strongPassword, u.PasswordHash)
	require.NoError(t, u.VerifyPassword(strongPassword))
	require.ErrorIs(t, u.VerifyPassword("nope"), domain.ErrPasswordNotVerified)

	_, err = domain.NewUser("tenant-1", "zoe", "password", domain.IndefiniteEnablement(), testPerson())
	require.ErrorIs(t, err, domain.ErrPasswordWeak)

	_, err = domain.NewUser("tenant-1", "zoe", "", domain.IndefiniteEnablement(), testPerson())
	require.ErrorIs(t, err, domain.ErrPasswordRequired)

	_, err = domain.NewUser("tenant-1", "MySecureUsername123!", "MySecureUsername123!", domain.IndefiniteEnablement(), testPerson())
	require.ErrorIs(t, err, domain.ErrPasswordIsUsername)
}

func TestUserPersonValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *domain.Person)
		field  string
	}{
		{"lower case first name", func(p *domain.Person) { p.Name.First = "zoe" }, "person.name.first_name"},
		{"digits in last name", func(p *domain.Person) { p.Name.Last = "D0e" }, "person.name.last_name"},
		{"bad email", func(p *domain.Person) { p.Contact.Email = "zoe@" }, "person.contact.email"},
		{"bad telephone", func(p *domain.Person) { p.Contact.PrimaryTelephone = "5551210" }, "person.contact.primary_telephone"},
		{"bad country", func(p *domain.Person) {
			p.Contact.Address = &domain.PostalAddress{Street: "Main St", PostalCode: "2000", City: "Sydney", StateProvince: "NSW", CountryCode: "au"}
		}, "person.contact.address.country_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPerson()
			tt.mutate(&p)

			_, err := domain.NewUser("tenant-1", "zoe", strongPassword, domain.IndefiniteEnablement(), p)
			var ve validx.ValidationErrors
			require.ErrorAs(t, err, &ve)
			require.Contains(t, ve.Fields(), tt.field)
		})
	}

	p := testPerson()
	p.Name.Last = "O'Brien-Smith"
	p.Contact.Address = &domain.PostalAddress{Street: "Main St", BuildingNumber: "12", PostalCode: "2000", City: "Sydney", StateProvince: "NSW", CountryCode: "AU"}
	_, err := domain.NewUser("tenant-1", "zoe", strongPassword, domain.IndefiniteEnablement(), p)
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	u, err := domain.NewUser("tenant-1", "zoe", strongPassword, domain.IndefiniteEnablement(), testPerson())
	require.NoError(t, err)

	require.ErrorIs(t, u.ChangePassword(strongPassword, ""), domain.ErrPasswordRequired)
	require.ErrorIs(t, u.ChangePassword("wrong", "AnotherSecurePassword456?"), domain.ErrPasswordNotVerified)
	require.ErrorIs(t, u.ChangePassword(strongPassword, strongPassword), domain.ErrPasswordUnchanged)
	require.ErrorIs(t, u.ChangePassword(strongPassword, "short"), domain.ErrPasswordWeak)

	require.NoError(t, u.ChangePassword(strongPassword, "AnotherSecurePassword456?"))
	require.NoError(t, u.VerifyPassword("AnotherSecurePassword456?"))
	require.ErrorIs(t, u.VerifyPassword(strongPassword), domain.ErrPasswordNotVerified)
}

func TestUserDescriptorAndEquality(t *testing.T) {
	t.Parallel()

	u, err := domain.NewUser("tenant-1", "zoe", strongPassword, domain.IndefiniteEnablement(), testPerson())
	require.NoError(t, err)

	d := u.Descriptor("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.Equal(t, domain.UserDescriptor{
		TenantID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Username: "zoe",
		Email:    "zoe.doe@example.com",
	}, d)

	other := domain.User{TenantID: "tenant-1", Username: "zoe"}
	require.True(t, u.Equal(other))
	other.TenantID = "tenant-2"
	require.False(t, u.Equal(other))

	require.Equal(t, domain.GroupMember{Type: domain.MemberUser, Name: "zoe"}, u.AsMember())
}

func TestPostalAddressFrom(t *testing.T) {
	t.Parallel()

	s := func(v string) *string { return &v }

	require.Nil(t, domain.PostalAddressFrom(s("Main St"), nil, s("2000"), s("Sydney"), nil, s("AU")))

	a := domain.PostalAddressFrom(s("Main St"), nil, s("2000"), s("Sydney"), s("NSW"), s("AU"))
	require.NotNil(t, a)
	require.Empty(t, a.BuildingNumber)
	require.Equal(t, "NSW", a.StateProvince)
}
