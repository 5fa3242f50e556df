// Package storetest is a conformance suite run against every store driver.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns a migrated, empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run exercises the store contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("tenants", func(t *testing.T) { testTenants(t, newStore(t)) })
	t.Run("invitations", func(t *testing.T) { testInvitations(t, newStore(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("groups", func(t *testing.T) { testGroups(t, newStore(t)) })
	t.Run("roles", func(t *testing.T) { testRoles(t, newStore(t)) })
	t.Run("cascade", func(t *testing.T) { testCascade(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
}

var epoch = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func seedTenant(t *testing.T, s store.Store, name string) domain.Tenant {
	t.Helper()

	tn := domain.Tenant{
		ID:          idx.New().String(),
		UUID:        idx.NewUUID(),
		Name:        name,
		Description: name + " tenant",
		Enabled:     true,
		CreatedAt:   epoch,
		UpdatedAt:   epoch,
	}
	require.NoError(t, s.Tenants().CreateTenant(context.Background(), tn))
	return tn
}

func newUser(tenantID, username, first, last string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		TenantID:     tenantID,
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Enablement:   domain.Enablement{Enabled: true},
		Person: domain.Person{
			Name: domain.FullName{First: first, Last: last},
			Contact: domain.ContactInformation{
				Email: username + "@example.com",
			},
		},
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}
}

func newGroup(tenantID, name string, members ...domain.GroupMember) domain.Group {
	if members == nil {
		members = []domain.GroupMember{}
	}
	return domain.Group{
		ID:        idx.New().String(),
		TenantID:  tenantID,
		Name:      name,
		Members:   members,
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}
}

func testTenants(t *testing.T, s store.Store) {
	ctx := context.Background()

	tn := seedTenant(t, s, "Acme")

	byID, err := s.Tenants().GetTenantByID(ctx, tn.ID)
	require.NoError(t, err)
	require.Equal(t, tn.UUID, byID.UUID)
	require.Equal(t, "Acme tenant", byID.Description)
	require.True(t, byID.Enabled)
	require.Equal(t, int64(0), byID.Version)
	require.True(t, epoch.Equal(byID.CreatedAt))

	byUUID, err := s.Tenants().GetTenantByUUID(ctx, tn.UUID)
	require.NoError(t, err)
	require.Equal(t, tn.ID, byUUID.ID)

	byName, err := s.Tenants().GetTenantByName(ctx, "Acme")
	require.NoError(t, err)
	require.Equal(t, tn.ID, byName.ID)

	_, err = s.Tenants().GetTenantByName(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := tn
	dup.ID = idx.New().String()
	dup.UUID = idx.NewUUID()
	require.ErrorIs(t, s.Tenants().CreateTenant(ctx, dup), store.ErrAlreadyExists)

	seedTenant(t, s, "Beta")
	list, err := s.Tenants().ListTenants(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Acme", list[0].Name)

	byID.Enabled = false
	byID.Description = ""
	byID.UpdatedAt = epoch.Add(time.Hour)
	version, err := s.Tenants().UpdateTenant(ctx, byID)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	// A second write with the stale version loses.
	_, err = s.Tenants().UpdateTenant(ctx, byID)
	require.ErrorIs(t, err, store.ErrVersionConflict)

	reloaded, err := s.Tenants().GetTenantByID(ctx, tn.ID)
	require.NoError(t, err)
	require.False(t, reloaded.Enabled)
	require.Empty(t, reloaded.Description)
	require.Equal(t, int64(1), reloaded.Version)

	ghost := reloaded
	ghost.ID = idx.New().String()
	_, err = s.Tenants().UpdateTenant(ctx, ghost)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Tenants().DeleteTenant(ctx, tn.ID))
	require.ErrorIs(t, s.Tenants().DeleteTenant(ctx, tn.ID), store.ErrNotFound)
}

func testInvitations(t *testing.T, s store.Store) {
	ctx := context.Background()

	tn := seedTenant(t, s, "Invites")
	other := seedTenant(t, s, "Other")

	open := domain.Invitation{ID: idx.New().String(), Identifier: idx.NewUUID(), Description: "Open"}
	expired := domain.Invitation{
		ID:          idx.New().String(),
		Identifier:  idx.NewUUID(),
		Description: "Expired",
		Validity:    domain.Validity{From: ptr(epoch.Add(-48 * time.Hour)), Until: ptr(epoch.Add(-time.Hour))},
	}
	require.NoError(t, s.Invitations().UpsertInvitation(ctx, tn.ID, open))
	require.NoError(t, s.Invitations().UpsertInvitation(ctx, tn.ID, expired))

	// The same identifier may exist in another tenant.
	require.NoError(t, s.Invitations().UpsertInvitation(ctx, other.ID, domain.Invitation{
		ID: idx.New().String(), Identifier: open.Identifier, Description: "Other open",
	}))

	// Upsert by identifier updates in place.
	open.Description = "Open enrolment"
	open.Validity = domain.Validity{Until: ptr(epoch.Add(24 * time.Hour))}
	require.NoError(t, s.Invitations().UpsertInvitation(ctx, tn.ID, domain.Invitation{
		ID:          idx.New().String(),
		Identifier:  open.Identifier,
		Description: open.Description,
		Validity:    open.Validity,
	}))

	list, err := s.Invitations().ListInvitations(ctx, tn.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	got := map[string]domain.Invitation{}
	for _, inv := range list {
		got[inv.Identifier] = inv
	}
	require.Equal(t, "Open enrolment", got[open.Identifier].Description)
	require.Equal(t, open.ID, got[open.Identifier].ID)
	require.Nil(t, got[open.Identifier].Validity.From)
	require.True(t, epoch.Add(24*time.Hour).Equal(*got[open.Identifier].Validity.Until))

	purged, err := s.Invitations().DeleteExpiredInvitations(ctx, epoch)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	require.NoError(t, s.Invitations().DeleteInvitationsExcept(ctx, tn.ID, nil))
	list, err = s.Invitations().ListInvitations(ctx, tn.ID)
	require.NoError(t, err)
	require.Empty(t, list)

	list, err = s.Invitations().ListInvitations(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, s.Invitations().DeleteInvitationsExcept(ctx, other.ID, []string{open.Identifier}))
	list, err = s.Invitations().ListInvitations(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = s.Invitations().UpsertInvitation(ctx, idx.New().String(), domain.Invitation{
		ID: idx.New().String(), Identifier: "orphan", Description: "Orphan",
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	tn := seedTenant(t, s, "Users")
	other := seedTenant(t, s, "Elsewhere")

	zoe := newUser(tn.ID, "zoe", "Zoe", "Doe")
	zoe.Enablement.Start = ptr(epoch)
	zoe.Person.Contact.Address = &domain.PostalAddress{
		Street: "George St", BuildingNumber: "1", PostalCode: "2000",
		City: "Sydney", StateProvince: "NSW", CountryCode: "AU",
	}
	zoe.Person.Contact.PrimaryTelephone = "303-555-1210"
	require.NoError(t, s.Users().CreateUser(ctx, zoe))
	require.NoError(t, s.Users().CreateUser(ctx, newUser(tn.ID, "zack", "Zack", "Dobson")))
	require.NoError(t, s.Users().CreateUser(ctx, newUser(tn.ID, "amy", "Amy", "Doe")))
	require.NoError(t, s.Users().CreateUser(ctx, newUser(other.ID, "zoe", "Zoe", "Doe")))

	require.ErrorIs(t, s.Users().CreateUser(ctx, newUser(tn.ID, "zoe", "Zoe", "Doe")), store.ErrAlreadyExists)

	got, err := s.Users().GetUserByUsername(ctx, tn.ID, "zoe")
	require.NoError(t, err)
	require.Equal(t, zoe.ID, got.ID)
	require.Equal(t, zoe.Person, got.Person)
	require.True(t, got.Enablement.Enabled)
	require.True(t, epoch.Equal(*got.Enablement.Start))
	require.Nil(t, got.Enablement.End)

	byID, err := s.Users().GetUserByID(ctx, zoe.ID)
	require.NoError(t, err)
	require.Equal(t, "zoe", byID.Username)

	_, err = s.Users().GetUserByUsername(ctx, tn.ID, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.Users().ListUsers(ctx, tn.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "amy", list[0].Username)

	similar, err := s.Users().FindSimilarlyNamedUsers(ctx, tn.ID, "Z", "Do")
	require.NoError(t, err)
	require.Len(t, similar, 2)

	similar, err = s.Users().FindSimilarlyNamedUsers(ctx, tn.ID, "Z", "Doe")
	require.NoError(t, err)
	require.Len(t, similar, 1)
	require.Equal(t, "zoe", similar[0].Username)

	// Prefixes match case exactly.
	similar, err = s.Users().FindSimilarlyNamedUsers(ctx, tn.ID, "z", "d")
	require.NoError(t, err)
	require.Empty(t, similar)

	similar, err = s.Users().FindSimilarlyNamedUsers(ctx, tn.ID, "%", "")
	require.NoError(t, err)
	require.Empty(t, similar)

	got.Person.Contact.Address = nil
	got.Person.Name.Last = "Smith"
	got.Enablement.Enabled = false
	got.UpdatedAt = epoch.Add(time.Minute)
	version, err := s.Users().UpdateUser(ctx, got)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	_, err = s.Users().UpdateUser(ctx, got)
	require.ErrorIs(t, err, store.ErrVersionConflict)

	reloaded, err := s.Users().GetUserByID(ctx, zoe.ID)
	require.NoError(t, err)
	require.Nil(t, reloaded.Person.Contact.Address)
	require.Equal(t, "Smith", reloaded.Person.Name.Last)
	require.False(t, reloaded.Enablement.Enabled)

	require.NoError(t, s.Users().DeleteUser(ctx, zoe.ID))
	_, err = s.Users().GetUserByID(ctx, zoe.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Users().DeleteUser(ctx, zoe.ID), store.ErrNotFound)

	require.ErrorIs(t, s.Users().CreateUser(ctx, newUser(idx.New().String(), "ghost", "Ghost", "Host")), store.ErrNotFound)
}

func testGroups(t *testing.T, s store.Store) {
	ctx := context.Background()

	tn := seedTenant(t, s, "Groups")

	zoe := domain.GroupMember{Type: domain.MemberUser, Name: "zoe"}
	ops := domain.GroupMember{Type: domain.MemberGroup, Name: "Ops"}

	eng := newGroup(tn.ID, "Engineering", zoe, ops)
	eng.Description = "Builders"
	require.NoError(t, s.Groups().CreateGroup(ctx, eng))
	require.NoError(t, s.Groups().CreateGroup(ctx, newGroup(tn.ID, "Ops", zoe)))
	require.NoError(t, s.Groups().CreateGroup(ctx, newGroup(tn.ID, domain.RoleGroupName("Admin"))))

	require.ErrorIs(t, s.Groups().CreateGroup(ctx, newGroup(tn.ID, "Ops")), store.ErrAlreadyExists)

	got, err := s.Groups().GetGroupByName(ctx, tn.ID, "Engineering")
	require.NoError(t, err)
	require.Equal(t, "Builders", got.Description)
	require.ElementsMatch(t, []domain.GroupMember{zoe, ops}, got.Members)

	list, err := s.Groups().ListGroups(ctx, tn.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = s.Groups().ListGroups(ctx, tn.ID, true)
	require.NoError(t, err)
	require.Len(t, list, 3)

	containing, err := s.Groups().ListGroupsContaining(ctx, tn.ID, zoe)
	require.NoError(t, err)
	require.Len(t, containing, 2)

	containing, err = s.Groups().ListGroupsContaining(ctx, tn.ID, ops)
	require.NoError(t, err)
	require.Len(t, containing, 1)
	require.Equal(t, "Engineering", containing[0].Name)

	got.RemoveMember(ops)
	got.AddMember(domain.GroupMember{Type: domain.MemberUser, Name: "amy"})
	got.UpdatedAt = epoch.Add(time.Hour)
	version, err := s.Groups().UpdateGroup(ctx, got)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	_, err = s.Groups().UpdateGroup(ctx, got)
	require.ErrorIs(t, err, store.ErrVersionConflict)

	reloaded, err := s.Groups().GetGroupByID(ctx, got.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []domain.GroupMember{zoe, {Type: domain.MemberUser, Name: "amy"}}, reloaded.Members)

	removed, err := s.Groups().RemoveMemberEverywhere(ctx, tn.ID, zoe, epoch.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	reloaded, err = s.Groups().GetGroupByID(ctx, got.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), reloaded.Version)
	require.Equal(t, []domain.GroupMember{{Type: domain.MemberUser, Name: "amy"}}, reloaded.Members)

	containing, err = s.Groups().ListGroupsContaining(ctx, tn.ID, zoe)
	require.NoError(t, err)
	require.Empty(t, containing)

	require.NoError(t, s.Groups().DeleteGroup(ctx, got.ID))
	_, err = s.Groups().GetGroupByName(ctx, tn.ID, "Engineering")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testRoles(t *testing.T, s store.Store) {
	ctx := context.Background()

	tn := seedTenant(t, s, "Roles")

	role, err := domain.NewRole(tn.ID, "Admin", "Administrators", false)
	require.NoError(t, err)
	role.CreatedAt, role.UpdatedAt = epoch, epoch
	role.Group.CreatedAt, role.Group.UpdatedAt = epoch, epoch
	role.Group.AddMember(domain.GroupMember{Type: domain.MemberUser, Name: "zoe"})
	require.NoError(t, s.Roles().CreateRole(ctx, role))

	dup, err := domain.NewRole(tn.ID, "Admin", "", true)
	require.NoError(t, err)
	require.ErrorIs(t, s.Roles().CreateRole(ctx, dup), store.ErrAlreadyExists)

	got, err := s.Roles().GetRoleByName(ctx, tn.ID, "Admin")
	require.NoError(t, err)
	require.Equal(t, role.ID, got.ID)
	require.False(t, got.SupportsNesting)
	require.Equal(t, role.Group.ID, got.Group.ID)
	require.Equal(t, "ROLE-INTERNAL-GROUP: Admin", got.Group.Name)
	require.Len(t, got.Group.Members, 1)

	got.Description = "Site administrators"
	got.SupportsNesting = true
	version, err := s.Roles().UpdateRole(ctx, got)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	_, err = s.Roles().UpdateRole(ctx, got)
	require.ErrorIs(t, err, store.ErrVersionConflict)

	// Purging a holder changes the role, so its version moves with the group's.
	removed, err := s.Groups().RemoveMemberEverywhere(ctx, tn.ID,
		domain.GroupMember{Type: domain.MemberUser, Name: "zoe"}, epoch.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	purged, err := s.Roles().GetRoleByName(ctx, tn.ID, "Admin")
	require.NoError(t, err)
	require.Equal(t, int64(2), purged.Version)
	require.Equal(t, got.Group.Version+1, purged.Group.Version)
	require.Empty(t, purged.Group.Members)

	roles, err := s.Roles().ListRoles(ctx, tn.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.True(t, roles[0].SupportsNesting)

	require.NoError(t, s.Roles().DeleteRole(ctx, role.ID))
	_, err = s.Roles().GetRoleByName(ctx, tn.ID, "Admin")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Groups().GetGroupByID(ctx, role.Group.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Roles().DeleteRole(ctx, role.ID), store.ErrNotFound)
}

func testCascade(t *testing.T, s store.Store) {
	ctx := context.Background()

	tn := seedTenant(t, s, "Doomed")
	u := newUser(tn.ID, "zoe", "Zoe", "Doe")
	require.NoError(t, s.Users().CreateUser(ctx, u))
	g := newGroup(tn.ID, "Staff", u.AsMember())
	require.NoError(t, s.Groups().CreateGroup(ctx, g))
	role, err := domain.NewRole(tn.ID, "Viewer", "", false)
	require.NoError(t, err)
	require.NoError(t, s.Roles().CreateRole(ctx, role))
	require.NoError(t, s.Invitations().UpsertInvitation(ctx, tn.ID, domain.Invitation{
		ID: idx.New().String(), Identifier: idx.NewUUID(), Description: "Open",
	}))

	require.NoError(t, s.Tenants().DeleteTenant(ctx, tn.ID))

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Groups().GetGroupByID(ctx, g.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Groups().GetGroupByID(ctx, role.Group.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	invitations, err := s.Invitations().ListInvitations(ctx, tn.ID)
	require.NoError(t, err)
	require.Empty(t, invitations)
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		seedTenant(t, tx, "Rolled back")
		return store.ErrVersionConflict
	})
	require.ErrorIs(t, err, store.ErrVersionConflict)

	_, err = s.Tenants().GetTenantByName(ctx, "Rolled back")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		tn := seedTenant(t, tx, "Committed")
		// Nested WithTx joins the outer transaction.
		return tx.WithTx(ctx, func(inner store.Tx) error {
			return inner.Users().CreateUser(ctx, newUser(tn.ID, "zoe", "Zoe", "Doe"))
		})
	})
	require.NoError(t, err)

	tn, err := s.Tenants().GetTenantByName(ctx, "Committed")
	require.NoError(t, err)
	_, err = s.Users().GetUserByUsername(ctx, tn.ID, "zoe")
	require.NoError(t, err)

	require.NoError(t, s.Ping(ctx))
}
