/*
Package iamsdk is a client for the identity store admin API.

# Overview

Every call carries a bearer token minted for the admin API. Reads need the
iam:read scope, writes need iam:write and credential checks need
iam:authenticate:

	client := iamsdk.NewClient("https://iam.example.com", token)

	tenant, err := client.CreateTenant(ctx, iamsdk.CreateTenantRequest{Name: "acme", Enabled: true})

	inv, err := client.OfferInvitation(ctx, "acme", "Open Enrollment")

	user, err := client.RegisterUser(ctx, "acme", iamsdk.RegisterUserRequest{
		Invitation: inv.Identifier,
		Username:   "zoe",
		Password:   "MySecurePassword123!",
		Name:       iamsdk.Name{First: "Zoe", Last: "Doe"},
		Contact:    iamsdk.Contact{Email: "zoe@example.com"},
	})

# Optimistic concurrency

Single-entity responses carry a version. Passing it back through IfMatch makes
the server reject the write when the entity changed in between:

	_, err = client.UpdateTenant(ctx, "acme", req, iamsdk.IfMatch(tenant.Version))
	if iamsdk.IsCode(err, iamsdk.ErrorCodeVersionConflict) {
		// reload and retry
	}

# Errors

Non-2xx responses come back as *APIError carrying the HTTP status, the error
code and, for validation failures, the offending fields.
*/
package iamsdk
