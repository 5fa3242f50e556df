package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/service"
)

func TestGroupService_CRUD(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.seedTenant(t, "acme")

	g, err := f.groups.Create(ctx, "acme", "staff", "All staff")
	require.NoError(t, err)
	require.Empty(t, g.Members)

	_, err = f.groups.Create(ctx, "acme", "staff", "")
	require.ErrorIs(t, err, service.ErrGroupExists)

	_, err = f.groups.Create(ctx, "acme", domain.RoleGroupName("admin"), "")
	require.ErrorIs(t, err, service.ErrReservedGroupName)

	_, err = f.groups.Create(ctx, "nope", "staff", "")
	require.ErrorIs(t, err, service.ErrTenantNotFound)

	g, err = f.groups.UpdateDescription(ctx, "acme", "staff", "Everyone")
	require.NoError(t, err)
	require.Equal(t, int64(1), g.Version)

	got, err := f.groups.Get(ctx, "acme", "staff")
	require.NoError(t, err)
	require.Equal(t, "Everyone", got.Description)

	list, err := f.groups.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.groups.Delete(ctx, "acme", "staff"))
	_, err = f.groups.Get(ctx, "acme", "staff")
	require.ErrorIs(t, err, service.ErrGroupNotFound)
}

func TestGroupService_Members(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, inv := f.seedTenant(t, "acme")
	f.register(t, "acme", inv, "zoe", "Zoe", "Doe")
	f.register(t, "acme", inv, "amy", "Amy", "Lee")

	_, err := f.groups.Create(ctx, "acme", "staff", "")
	require.NoError(t, err)

	g, err := f.groups.AddUser(ctx, "acme", "staff", "zoe")
	require.NoError(t, err)
	require.Equal(t, []domain.GroupMember{{Type: domain.MemberUser, Name: "zoe"}}, g.Members)
	require.Equal(t, int64(1), g.Version)

	// Adding twice changes nothing, including the version.
	g, err = f.groups.AddUser(ctx, "acme", "staff", "zoe")
	require.NoError(t, err)
	require.Equal(t, int64(1), g.Version)

	_, err = f.groups.AddUser(ctx, "acme", "staff", "nobody")
	require.ErrorIs(t, err, service.ErrUserNotFound)

	_, err = f.users.DefineEnablement(ctx, "acme", "amy", domain.Enablement{Enabled: false})
	require.NoError(t, err)
	_, err = f.groups.AddUser(ctx, "acme", "staff", "amy")
	require.ErrorIs(t, err, domain.ErrUserNotEnabled)

	g, err = f.groups.RemoveUser(ctx, "acme", "staff", "zoe")
	require.NoError(t, err)
	require.Empty(t, g.Members)
	require.Equal(t, int64(2), g.Version)
}

func TestGroupService_Recursion(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.seedTenant(t, "acme")
	for _, name := range []string{"a", "b", "c"} {
		_, err := f.groups.Create(ctx, "acme", name, "")
		require.NoError(t, err)
	}

	// a > b > c
	_, err := f.groups.AddGroup(ctx, "acme", "a", "b")
	require.NoError(t, err)
	_, err = f.groups.AddGroup(ctx, "acme", "b", "c")
	require.NoError(t, err)

	_, err = f.groups.AddGroup(ctx, "acme", "a", "a")
	require.ErrorIs(t, err, domain.ErrGroupRecursion)

	_, err = f.groups.AddGroup(ctx, "acme", "b", "a")
	require.ErrorIs(t, err, domain.ErrGroupRecursion)

	_, err = f.groups.AddGroup(ctx, "acme", "c", "a")
	require.ErrorIs(t, err, domain.ErrGroupRecursion)

	// a already reaches c through b; a direct edge is not a cycle.
	g, err := f.groups.AddGroup(ctx, "acme", "a", "c")
	require.NoError(t, err)
	require.Len(t, g.Members, 2)

	_, err = f.groups.AddGroup(ctx, "acme", "a", "missing")
	require.ErrorIs(t, err, service.ErrGroupNotFound)

	g, err = f.groups.RemoveGroup(ctx, "acme", "a", "b")
	require.NoError(t, err)
	require.Equal(t, []domain.GroupMember{{Type: domain.MemberGroup, Name: "c"}}, g.Members)
}

func TestGroupService_IsMember(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, inv := f.seedTenant(t, "acme")
	f.register(t, "acme", inv, "zoe", "Zoe", "Doe")
	f.register(t, "acme", inv, "amy", "Amy", "Lee")

	for _, name := range []string{"company", "engineering", "platform"} {
		_, err := f.groups.Create(ctx, "acme", name, "")
		require.NoError(t, err)
	}
	_, err := f.groups.AddGroup(ctx, "acme", "company", "engineering")
	require.NoError(t, err)
	_, err = f.groups.AddGroup(ctx, "acme", "engineering", "platform")
	require.NoError(t, err)
	_, err = f.groups.AddUser(ctx, "acme", "platform", "zoe")
	require.NoError(t, err)

	tests := []struct {
		group, user string
		want        bool
	}{
		{"platform", "zoe", true},
		{"engineering", "zoe", true},
		{"company", "zoe", true},
		{"company", "amy", false},
	}
	for _, tt := range tests {
		t.Run(tt.group+"/"+tt.user, func(t *testing.T) {
			ok, err := f.groups.IsMember(ctx, "acme", tt.group, tt.user)
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
		})
	}

	t.Run("disabled user", func(t *testing.T) {
		_, err := f.users.DefineEnablement(ctx, "acme", "amy", domain.Enablement{Enabled: false})
		require.NoError(t, err)
		_, err = f.groups.IsMember(ctx, "acme", "company", "amy")
		require.ErrorIs(t, err, domain.ErrUserNotEnabled)
	})

	t.Run("deleted nested group", func(t *testing.T) {
		require.NoError(t, f.groups.Delete(ctx, "acme", "engineering"))

		ok, err := f.groups.IsMember(ctx, "acme", "company", "zoe")
		require.NoError(t, err)
		require.False(t, ok)

		g, err := f.groups.Get(ctx, "acme", "company")
		require.NoError(t, err)
		require.Empty(t, g.Members)
	})
}
