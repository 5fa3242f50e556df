package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
)

var (
	ErrNotFound        = errors.New("store: not found")
	ErrAlreadyExists   = errors.New("store: already exists")
	ErrVersionConflict = errors.New("store: version conflict")
)

// Store is the root data access interface. The sqlite and postgres drivers
// implement it. Sub-repositories are exposed as methods so a transaction
// scoped store can hand out the same repos bound to the transaction.
type Store interface {
	Tenants() Tenants
	Invitations() Invitations
	Users() Users
	Groups() Groups
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. Calling WithTx on a Tx runs fn in the
	// existing transaction.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Tenants persists tenant rows. Invitations are loaded separately.
type Tenants interface {
	CreateTenant(ctx context.Context, t domain.Tenant) error
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)
	GetTenantByUUID(ctx context.Context, uuid string) (domain.Tenant, error)
	GetTenantByName(ctx context.Context, name string) (domain.Tenant, error)

	// ListTenants returns tenants ordered by name.
	ListTenants(ctx context.Context) ([]domain.Tenant, error)

	// UpdateTenant writes name, description and enabled when the stored
	// version equals t.Version, and returns the new version.
	UpdateTenant(ctx context.Context, t domain.Tenant) (int64, error)

	// DeleteTenant cascades to every row owned by the tenant.
	DeleteTenant(ctx context.Context, id string) error
}

type Invitations interface {
	ListInvitations(ctx context.Context, tenantID string) ([]domain.Invitation, error)

	// UpsertInvitation inserts inv or, when (tenant, identifier) already
	// exists, updates its description and validity.
	UpsertInvitation(ctx context.Context, tenantID string, inv domain.Invitation) error

	// DeleteInvitationsExcept removes the tenant's invitations whose
	// identifier is not in keep.
	DeleteInvitationsExcept(ctx context.Context, tenantID string, keep []string) error

	// DeleteExpiredInvitations removes invitations whose until is before now.
	DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error)
}

type Users interface {
	// CreateUser inserts the user and its person row.
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, tenantID, username string) (domain.User, error)

	// ListUsers returns the tenant's users ordered by username.
	ListUsers(ctx context.Context, tenantID string) ([]domain.User, error)

	// FindSimilarlyNamedUsers matches first and last name by prefix.
	FindSimilarlyNamedUsers(ctx context.Context, tenantID, firstPrefix, lastPrefix string) ([]domain.User, error)

	// UpdateUser writes the user and person columns under CAS on version.
	UpdateUser(ctx context.Context, u domain.User) (int64, error)

	// DeleteUser cascades to the person row.
	DeleteUser(ctx context.Context, id string) error
}

type Groups interface {
	// CreateGroup inserts the group and its members.
	CreateGroup(ctx context.Context, g domain.Group) error
	GetGroupByID(ctx context.Context, id string) (domain.Group, error)
	GetGroupByName(ctx context.Context, tenantID, name string) (domain.Group, error)

	// ListGroups returns the tenant's groups ordered by name. Role backing
	// groups are included only when includeRoleGroups is set.
	ListGroups(ctx context.Context, tenantID string, includeRoleGroups bool) ([]domain.Group, error)

	// UpdateGroup writes the description and replaces the member set under
	// CAS on version.
	UpdateGroup(ctx context.Context, g domain.Group) (int64, error)

	DeleteGroup(ctx context.Context, id string) error

	// ListGroupsContaining returns the groups having m as a direct member.
	ListGroupsContaining(ctx context.Context, tenantID string, m domain.GroupMember) ([]domain.Group, error)

	// RemoveMemberEverywhere drops m from every group of the tenant and
	// bumps the version of each group it touched and of any role backed by
	// one of those groups.
	RemoveMemberEverywhere(ctx context.Context, tenantID string, m domain.GroupMember, now time.Time) (int64, error)
}

type Roles interface {
	// CreateRole inserts the role together with its backing group.
	CreateRole(ctx context.Context, r domain.Role) error
	GetRoleByName(ctx context.Context, tenantID, name string) (domain.Role, error)
	ListRoles(ctx context.Context, tenantID string) ([]domain.Role, error)

	// UpdateRole writes description and supports_nesting under CAS.
	UpdateRole(ctx context.Context, r domain.Role) (int64, error)

	// DeleteRole removes the role and its backing group.
	DeleteRole(ctx context.Context, id string) error
}
