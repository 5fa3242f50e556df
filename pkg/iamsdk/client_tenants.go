package iamsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateTenant provisions a tenant. Requires iam:write.
func (c *Client) CreateTenant(ctx context.Context, req CreateTenantRequest) (*Tenant, error) {
	var out Tenant
	if err := c.call(ctx, http.MethodPost, path("tenants"), req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTenants returns every tenant. Requires iam:read.
func (c *Client) ListTenants(ctx context.Context) ([]Tenant, error) {
	var out ListTenantsResponse
	if err := c.call(ctx, http.MethodGet, path("tenants"), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Tenants, nil
}

// GetTenant looks a tenant up by id, UUID or name. Requires iam:read.
func (c *Client) GetTenant(ctx context.Context, tenant string) (*Tenant, error) {
	var out Tenant
	if err := c.call(ctx, http.MethodGet, path("tenants", tenant), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTenant renames a tenant or changes its description.
func (c *Client) UpdateTenant(ctx context.Context, tenant string, req UpdateTenantRequest, opts ...RequestOption) (*Tenant, error) {
	var out Tenant
	if err := c.call(ctx, http.MethodPatch, path("tenants", tenant), req, &out, http.StatusOK, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTenant removes a tenant with all its users, groups and roles.
func (c *Client) DeleteTenant(ctx context.Context, tenant string, opts ...RequestOption) error {
	return c.call(ctx, http.MethodDelete, path("tenants", tenant), nil, nil, http.StatusNoContent, opts...)
}

func (c *Client) ActivateTenant(ctx context.Context, tenant string, opts ...RequestOption) (*Tenant, error) {
	var out Tenant
	if err := c.call(ctx, http.MethodPost, path("tenants", tenant, "activate"), nil, &out, http.StatusOK, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeactivateTenant(ctx context.Context, tenant string, opts ...RequestOption) (*Tenant, error) {
	var out Tenant
	if err := c.call(ctx, http.MethodPost, path("tenants", tenant, "deactivate"), nil, &out, http.StatusOK, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Invitations
// ============================================================================

// OfferInvitation opens an open-ended invitation with the given description.
func (c *Client) OfferInvitation(ctx context.Context, tenant, description string) (*Invitation, error) {
	var out Invitation
	req := OfferInvitationRequest{Description: description}
	if err := c.call(ctx, http.MethodPost, path("tenants", tenant, "invitations"), req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvitations lists the currently redeemable invitations, or the
// unavailable ones when available is false.
func (c *Client) ListInvitations(ctx context.Context, tenant string, available bool) ([]Invitation, error) {
	p := path("tenants", tenant, "invitations")
	if !available {
		p += "?" + url.Values{"available": {"false"}}.Encode()
	}

	var out ListInvitationsResponse
	if err := c.call(ctx, http.MethodGet, p, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Invitations, nil
}

// RedefineInvitation replaces the validity window of an invitation named by
// identifier or description.
func (c *Client) RedefineInvitation(ctx context.Context, tenant, identifier string, req RedefineInvitationRequest) (*Invitation, error) {
	var out Invitation
	if err := c.call(ctx, http.MethodPut, path("tenants", tenant, "invitations", identifier), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) WithdrawInvitation(ctx context.Context, tenant, identifier string) error {
	return c.call(ctx, http.MethodDelete, path("tenants", tenant, "invitations", identifier), nil, nil, http.StatusNoContent)
}
