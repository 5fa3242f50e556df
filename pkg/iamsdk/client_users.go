package iamsdk

import (
	"context"
	"net/http"
	"net/url"
)

// RegisterUser registers a user through one of the tenant's invitations.
func (c *Client) RegisterUser(ctx context.Context, tenant string, req RegisterUserRequest) (*User, error) {
	var out User
	if err := c.call(ctx, http.MethodPost, path("tenants", tenant, "users"), req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns the tenant's users ordered by username.
func (c *Client) ListUsers(ctx context.Context, tenant string) ([]User, error) {
	return c.listUsers(ctx, path("tenants", tenant, "users"))
}

// SearchUsers returns users whose first and last names start with the
// given prefixes.
func (c *Client) SearchUsers(ctx context.Context, tenant, firstPrefix, lastPrefix string) ([]User, error) {
	q := url.Values{"first": {firstPrefix}, "last": {lastPrefix}}
	return c.listUsers(ctx, path("tenants", tenant, "users")+"?"+q.Encode())
}

func (c *Client) listUsers(ctx context.Context, p string) ([]User, error) {
	var out ListUsersResponse
	if err := c.call(ctx, http.MethodGet, p, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) GetUser(ctx context.Context, tenant, username string) (*User, error) {
	var out User
	if err := c.call(ctx, http.MethodGet, path("tenants", tenant, "users", username), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes the user and every group membership naming it.
func (c *Client) DeleteUser(ctx context.Context, tenant, username string, opts ...RequestOption) error {
	return c.call(ctx, http.MethodDelete, path("tenants", tenant, "users", username), nil, nil, http.StatusNoContent, opts...)
}

func (c *Client) ChangePassword(ctx context.Context, tenant, username string, req ChangePasswordRequest, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPut, path("tenants", tenant, "users", username, "password"), req, nil, http.StatusNoContent, opts...)
}

func (c *Client) ChangeName(ctx context.Context, tenant, username string, name Name, opts ...RequestOption) (*User, error) {
	return c.putUser(ctx, path("tenants", tenant, "users", username, "name"), name, opts)
}

func (c *Client) ChangeContact(ctx context.Context, tenant, username string, contact Contact, opts ...RequestOption) (*User, error) {
	return c.putUser(ctx, path("tenants", tenant, "users", username, "contact"), contact, opts)
}

// DefineEnablement replaces the enabled flag and activity window.
func (c *Client) DefineEnablement(ctx context.Context, tenant, username string, e Enablement, opts ...RequestOption) (*User, error) {
	return c.putUser(ctx, path("tenants", tenant, "users", username, "enablement"), e, opts)
}

func (c *Client) putUser(ctx context.Context, p string, body any, opts []RequestOption) (*User, error) {
	var out User
	if err := c.call(ctx, http.MethodPut, p, body, &out, http.StatusOK, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Authenticate checks a user's password. Requires iam:authenticate.
// Unknown users, disabled users and wrong passwords all come back as
// ErrorCodeInvalidCredentials.
func (c *Client) Authenticate(ctx context.Context, tenant, username, password string) (*UserDescriptor, error) {
	var out UserDescriptor
	req := AuthenticateRequest{Password: password}
	if err := c.call(ctx, http.MethodPost, path("tenants", tenant, "users", username, "authenticate"), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUserRoles returns the roles the user holds directly or through groups.
func (c *Client) ListUserRoles(ctx context.Context, tenant, username string) ([]Role, error) {
	var out ListRolesResponse
	if err := c.call(ctx, http.MethodGet, path("tenants", tenant, "users", username, "roles"), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Roles, nil
}
