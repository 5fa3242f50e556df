package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/iam/pkg/iamsdk"
)

func TestGroups(t *testing.T) {
	t.Parallel()
	h := setupServer(t)
	c := h.client(t, allScopes...)
	ctx := t.Context()

	inv := seedTenant(t, c, "acme")
	registerUser(t, c, "acme", inv, "zoe", "Zoe", "Doe")
	registerUser(t, c, "acme", inv, "amy", "Amy", "Lee")

	for _, name := range []string{"company", "engineering", "platform"} {
		_, err := c.CreateGroup(ctx, "acme", iamsdk.CreateGroupRequest{Name: name})
		require.NoError(t, err)
	}

	_, err := c.CreateGroup(ctx, "acme", iamsdk.CreateGroupRequest{Name: "platform"})
	requireAPIError(t, err, http.StatusConflict, iamsdk.ErrorCodeAlreadyExists)

	_, err = c.CreateGroup(ctx, "acme", iamsdk.CreateGroupRequest{Name: "ROLE-INTERNAL-GROUP: admin"})
	requireAPIError(t, err, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable)

	_, err = c.AddNestedGroup(ctx, "acme", "company", "engineering")
	require.NoError(t, err)
	_, err = c.AddNestedGroup(ctx, "acme", "engineering", "platform")
	require.NoError(t, err)

	g, err := c.AddGroupUser(ctx, "acme", "platform", "zoe", iamsdk.IfMatch(0))
	require.NoError(t, err)
	require.Equal(t, []iamsdk.Member{{Type: "USER", Name: "zoe"}}, g.Members)
	require.Equal(t, int64(1), g.Version)

	t.Run("recursion", func(t *testing.T) {
		_, err := c.AddNestedGroup(ctx, "acme", "platform", "company")
		requireAPIError(t, err, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable)
	})

	t.Run("nested membership", func(t *testing.T) {
		ok, err := c.IsGroupMember(ctx, "acme", "company", "zoe")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = c.IsGroupMember(ctx, "acme", "company", "amy")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = c.IsGroupMember(ctx, "acme", "company", "nobody")
		requireAPIError(t, err, http.StatusNotFound, iamsdk.ErrorCodeNotFound)
	})

	t.Run("disabled user", func(t *testing.T) {
		_, err := c.DefineEnablement(ctx, "acme", "amy", iamsdk.Enablement{Enabled: false})
		require.NoError(t, err)

		_, err = c.AddGroupUser(ctx, "acme", "platform", "amy")
		requireAPIError(t, err, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable)
	})

	t.Run("remove nested group", func(t *testing.T) {
		g, err := c.RemoveNestedGroup(ctx, "acme", "company", "engineering")
		require.NoError(t, err)
		require.Empty(t, g.Members)

		ok, err := c.IsGroupMember(ctx, "acme", "company", "zoe")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = c.AddNestedGroup(ctx, "acme", "company", "engineering")
		require.NoError(t, err)
	})

	t.Run("update and list", func(t *testing.T) {
		g, err := c.UpdateGroup(ctx, "acme", "company", iamsdk.UpdateGroupRequest{Description: "Everyone"})
		require.NoError(t, err)
		require.Equal(t, "Everyone", g.Description)

		groups, err := c.ListGroups(ctx, "acme")
		require.NoError(t, err)
		require.Len(t, groups, 3)
	})

	t.Run("delete purges nested memberships", func(t *testing.T) {
		require.NoError(t, c.DeleteGroup(ctx, "acme", "engineering"))

		company, err := c.GetGroup(ctx, "acme", "company")
		require.NoError(t, err)
		require.Empty(t, company.Members)

		ok, err := c.IsGroupMember(ctx, "acme", "company", "zoe")
		require.NoError(t, err)
		require.False(t, ok)
	})

	g, err = c.RemoveGroupUser(ctx, "acme", "platform", "zoe")
	require.NoError(t, err)
	require.Empty(t, g.Members)
}

func TestRoles(t *testing.T) {
	t.Parallel()
	h := setupServer(t)
	c := h.client(t, allScopes...)
	ctx := t.Context()

	inv := seedTenant(t, c, "acme")
	registerUser(t, c, "acme", inv, "zoe", "Zoe", "Doe")
	registerUser(t, c, "acme", inv, "amy", "Amy", "Lee")

	_, err := c.CreateRole(ctx, "acme", iamsdk.CreateRoleRequest{Name: "admin", Description: "Administrators"})
	require.NoError(t, err)
	_, err = c.CreateRole(ctx, "acme", iamsdk.CreateRoleRequest{Name: "reader", SupportsNesting: true})
	require.NoError(t, err)

	_, err = c.CreateRole(ctx, "acme", iamsdk.CreateRoleRequest{Name: "admin"})
	requireAPIError(t, err, http.StatusConflict, iamsdk.ErrorCodeAlreadyExists)

	// Backing groups are not exposed as groups.
	groups, err := c.ListGroups(ctx, "acme")
	require.NoError(t, err)
	require.Empty(t, groups)

	role, err := c.AssignRoleUser(ctx, "acme", "admin", "zoe", iamsdk.IfMatch(0))
	require.NoError(t, err)
	require.Equal(t, int64(1), role.Version)
	require.Equal(t, []iamsdk.Member{{Type: "USER", Name: "zoe"}}, role.Members)

	ok, err := c.IsInRole(ctx, "acme", "admin", "zoe")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = c.CreateGroup(ctx, "acme", iamsdk.CreateGroupRequest{Name: "staff"})
	require.NoError(t, err)
	_, err = c.AddGroupUser(ctx, "acme", "staff", "amy")
	require.NoError(t, err)

	_, err = c.AssignRoleGroup(ctx, "acme", "admin", "staff")
	requireAPIError(t, err, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable)

	_, err = c.AssignRoleGroup(ctx, "acme", "reader", "staff")
	require.NoError(t, err)

	ok, err = c.IsInRole(ctx, "acme", "reader", "amy")
	require.NoError(t, err)
	require.True(t, ok)

	held, err := c.ListUserRoles(ctx, "acme", "amy")
	require.NoError(t, err)
	require.Len(t, held, 1)
	require.Equal(t, "reader", held[0].Name)

	roles, err := c.ListRoles(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, roles, 2)

	role, err = c.UnassignRoleUser(ctx, "acme", "admin", "zoe")
	require.NoError(t, err)
	require.Empty(t, role.Members)

	_, err = c.UnassignRoleGroup(ctx, "acme", "reader", "staff")
	require.NoError(t, err)

	require.NoError(t, c.DeleteRole(ctx, "acme", "admin"))
	_, err = c.GetRole(ctx, "acme", "admin")
	requireAPIError(t, err, http.StatusNotFound, iamsdk.ErrorCodeNotFound)
}
