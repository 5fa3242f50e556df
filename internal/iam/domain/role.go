package domain

import (
	"time"

	"github.com/aussiebroadwan/iam/pkg/idx"
	"github.com/aussiebroadwan/iam/pkg/validx"
)

// RoleGroupPrefix names the group that backs every role.
const RoleGroupPrefix = "ROLE-INTERNAL-GROUP: "

// Role grants its holders through an internal backing group. When
// SupportsNesting is false only users may be assigned.
type Role struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenant_id" validate:"required"`
	Name            string    `json:"name" validate:"required,max=70"`
	Description     string    `json:"description" validate:"max=255"`
	SupportsNesting bool      `json:"supports_nesting"`
	Group           Group     `json:"group" validate:"-"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewRole returns an unsaved role together with its backing group.
func NewRole(tenantID, name, description string, supportsNesting bool) (Role, error) {
	r := Role{
		ID:              idx.New().String(),
		TenantID:        tenantID,
		Name:            name,
		Description:     description,
		SupportsNesting: supportsNesting,
	}
	if err := validx.Struct(r); err != nil {
		return Role{}, err
	}

	g := Group{
		ID:          idx.New().String(),
		TenantID:    tenantID,
		Name:        RoleGroupName(name),
		Description: "Role backing group for " + name,
		Members:     []GroupMember{},
	}
	// The prefixed name may exceed the user-facing group limit.
	if err := validx.Var("description", g.Description, "max=255"); err != nil {
		return Role{}, err
	}
	r.Group = g
	return r, nil
}

// RoleGroupName returns the backing group name for role name.
func RoleGroupName(name string) string { return RoleGroupPrefix + name }

// AssignUser adds u to the role. It reports whether membership changed.
func (r *Role) AssignUser(u User) (bool, error) {
	if u.TenantID != r.TenantID {
		return false, ErrTenantMismatch
	}
	return r.Group.AddMember(u.AsMember()), nil
}

func (r *Role) UnassignUser(u User) (bool, error) {
	if u.TenantID != r.TenantID {
		return false, ErrTenantMismatch
	}
	return r.Group.RemoveMember(u.AsMember()), nil
}

// AssignGroup adds g to the role; the role must support nesting.
func (r *Role) AssignGroup(g Group) (bool, error) {
	if !r.SupportsNesting {
		return false, ErrNestingNotSupported
	}
	if g.TenantID != r.TenantID {
		return false, ErrTenantMismatch
	}
	return r.Group.AddMember(g.AsMember()), nil
}

func (r *Role) UnassignGroup(g Group) (bool, error) {
	if !r.SupportsNesting {
		return false, ErrNestingNotSupported
	}
	if g.TenantID != r.TenantID {
		return false, ErrTenantMismatch
	}
	return r.Group.RemoveMember(g.AsMember()), nil
}
