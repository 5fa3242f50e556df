package iamsdk

import (
	"context"
	"net/http"
)

func (c *Client) CreateRole(ctx context.Context, tenant string, req CreateRoleRequest) (*Role, error) {
	var out Role
	if err := c.call(ctx, http.MethodPost, path("tenants", tenant, "roles"), req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListRoles(ctx context.Context, tenant string) ([]Role, error) {
	var out ListRolesResponse
	if err := c.call(ctx, http.MethodGet, path("tenants", tenant, "roles"), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Roles, nil
}

func (c *Client) GetRole(ctx context.Context, tenant, role string) (*Role, error) {
	var out Role
	if err := c.call(ctx, http.MethodGet, path("tenants", tenant, "roles", role), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRole(ctx context.Context, tenant, role string, opts ...RequestOption) error {
	return c.call(ctx, http.MethodDelete, path("tenants", tenant, "roles", role), nil, nil, http.StatusNoContent, opts...)
}

func (c *Client) AssignRoleUser(ctx context.Context, tenant, role, username string, opts ...RequestOption) (*Role, error) {
	return c.roleMember(ctx, http.MethodPut, path("tenants", tenant, "roles", role, "users", username), opts)
}

func (c *Client) UnassignRoleUser(ctx context.Context, tenant, role, username string, opts ...RequestOption) (*Role, error) {
	return c.roleMember(ctx, http.MethodDelete, path("tenants", tenant, "roles", role, "users", username), opts)
}

// AssignRoleGroup grants the role to every member of group. The role must
// support nesting.
func (c *Client) AssignRoleGroup(ctx context.Context, tenant, role, group string, opts ...RequestOption) (*Role, error) {
	return c.roleMember(ctx, http.MethodPut, path("tenants", tenant, "roles", role, "groups", group), opts)
}

func (c *Client) UnassignRoleGroup(ctx context.Context, tenant, role, group string, opts ...RequestOption) (*Role, error) {
	return c.roleMember(ctx, http.MethodDelete, path("tenants", tenant, "roles", role, "groups", group), opts)
}

func (c *Client) roleMember(ctx context.Context, method, p string, opts []RequestOption) (*Role, error) {
	var out Role
	if err := c.call(ctx, method, p, nil, &out, http.StatusOK, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsInRole reports whether the user holds the role.
func (c *Client) IsInRole(ctx context.Context, tenant, role, username string) (bool, error) {
	var out MembershipResponse
	if err := c.call(ctx, http.MethodGet, path("tenants", tenant, "roles", role, "users", username), nil, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.Member, nil
}
