package iamsdk

import "time"

// Scopes understood by the admin API.
const (
	ScopeRead         = "iam:read"
	ScopeWrite        = "iam:write"
	ScopeAuthenticate = "iam:authenticate"
)

// ============================================================================
// Health Types
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

// ============================================================================
// Tenant Types
// ============================================================================

type CreateTenantRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// UpdateTenantRequest leaves nil fields unchanged.
type UpdateTenantRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Tenant struct {
	ID          string    `json:"id"`
	UUID        string    `json:"uuid"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListTenantsResponse struct {
	Tenants []Tenant `json:"tenants"`
}

// ============================================================================
// Invitation Types
// ============================================================================

type OfferInvitationRequest struct {
	Description string `json:"description"`
}

// RedefineInvitationRequest sets the validity window; nil bounds are open.
type RedefineInvitationRequest struct {
	From  *time.Time `json:"from,omitempty"`
	Until *time.Time `json:"until,omitempty"`
}

type Invitation struct {
	TenantID    string     `json:"tenant_id"`
	Identifier  string     `json:"identifier"`
	Description string     `json:"description"`
	From        *time.Time `json:"from,omitempty"`
	Until       *time.Time `json:"until,omitempty"`
}

type ListInvitationsResponse struct {
	Invitations []Invitation `json:"invitations"`
}

// ============================================================================
// User Types
// ============================================================================

type Name struct {
	First string `json:"first_name"`
	Last  string `json:"last_name"`
}

type Address struct {
	Street         string `json:"street_name"`
	BuildingNumber string `json:"building_number,omitempty"`
	PostalCode     string `json:"postal_code"`
	City           string `json:"city"`
	StateProvince  string `json:"state_province"`
	CountryCode    string `json:"country_code"`
}

type Contact struct {
	Email              string   `json:"email"`
	Address            *Address `json:"address,omitempty"`
	PrimaryTelephone   string   `json:"primary_telephone,omitempty"`
	SecondaryTelephone string   `json:"secondary_telephone,omitempty"`
}

type Enablement struct {
	Enabled bool       `json:"enabled"`
	Start   *time.Time `json:"start_date,omitempty"`
	End     *time.Time `json:"end_date,omitempty"`
}

// RegisterUserRequest registers through an invitation, named by its
// identifier or its description. A nil Enablement means enabled with no
// activity window.
type RegisterUserRequest struct {
	Invitation string      `json:"invitation"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Name       Name        `json:"name"`
	Contact    Contact     `json:"contact"`
	Enablement *Enablement `json:"enablement,omitempty"`
}

type User struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	Username   string     `json:"username"`
	Enablement Enablement `json:"enablement"`
	Name       Name       `json:"name"`
	Contact    Contact    `json:"contact"`
	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type AuthenticateRequest struct {
	Password string `json:"password"`
}

// UserDescriptor is returned by a successful authentication.
type UserDescriptor struct {
	TenantID string `json:"tenant_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ============================================================================
// Group and Role Types
// ============================================================================

// Member is a group member; Type is USER or GROUP.
type Member struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UpdateGroupRequest struct {
	Description string `json:"description"`
}

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Members     []Member  `json:"members"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type CreateRoleRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	SupportsNesting bool   `json:"supports_nesting"`
}

type Role struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	SupportsNesting bool      `json:"supports_nesting"`
	Members         []Member  `json:"members"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ListRolesResponse struct {
	Roles []Role `json:"roles"`
}

// MembershipResponse answers group membership and role checks.
type MembershipResponse struct {
	Member bool `json:"member"`
}
