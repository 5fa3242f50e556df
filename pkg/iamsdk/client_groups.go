package iamsdk

import (
	"context"
	"net/http"
)

func (c *Client) CreateGroup(ctx context.Context, tenant string, req CreateGroupRequest) (*Group, error) {
	var out Group
	if err := c.call(ctx, http.MethodPost, path("tenants", tenant, "groups"), req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListGroups(ctx context.Context, tenant string) ([]Group, error) {
	var out ListGroupsResponse
	if err := c.call(ctx, http.MethodGet, path("tenants", tenant, "groups"), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

func (c *Client) GetGroup(ctx context.Context, tenant, group string) (*Group, error) {
	var out Group
	if err := c.call(ctx, http.MethodGet, path("tenants", tenant, "groups", group), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateGroup(ctx context.Context, tenant, group string, req UpdateGroupRequest, opts ...RequestOption) (*Group, error) {
	var out Group
	if err := c.call(ctx, http.MethodPatch, path("tenants", tenant, "groups", group), req, &out, http.StatusOK, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGroup removes the group and its memberships in other groups.
func (c *Client) DeleteGroup(ctx context.Context, tenant, group string, opts ...RequestOption) error {
	return c.call(ctx, http.MethodDelete, path("tenants", tenant, "groups", group), nil, nil, http.StatusNoContent, opts...)
}

func (c *Client) AddGroupUser(ctx context.Context, tenant, group, username string, opts ...RequestOption) (*Group, error) {
	return c.groupMember(ctx, http.MethodPut, path("tenants", tenant, "groups", group, "users", username), opts)
}

func (c *Client) RemoveGroupUser(ctx context.Context, tenant, group, username string, opts ...RequestOption) (*Group, error) {
	return c.groupMember(ctx, http.MethodDelete, path("tenants", tenant, "groups", group, "users", username), opts)
}

// AddNestedGroup adds member as a nested group. Cycles are rejected.
func (c *Client) AddNestedGroup(ctx context.Context, tenant, group, member string, opts ...RequestOption) (*Group, error) {
	return c.groupMember(ctx, http.MethodPut, path("tenants", tenant, "groups", group, "groups", member), opts)
}

func (c *Client) RemoveNestedGroup(ctx context.Context, tenant, group, member string, opts ...RequestOption) (*Group, error) {
	return c.groupMember(ctx, http.MethodDelete, path("tenants", tenant, "groups", group, "groups", member), opts)
}

func (c *Client) groupMember(ctx context.Context, method, p string, opts []RequestOption) (*Group, error) {
	var out Group
	if err := c.call(ctx, method, p, nil, &out, http.StatusOK, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsGroupMember reports whether the user belongs to the group directly or
// through nested groups.
func (c *Client) IsGroupMember(ctx context.Context, tenant, group, username string) (bool, error) {
	var out MembershipResponse
	if err := c.call(ctx, http.MethodGet, path("tenants", tenant, "groups", group, "members", username), nil, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.Member, nil
}
