package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/iam/pkg/idx"
	"github.com/aussiebroadwan/iam/pkg/validx"
)

// MemberType discriminates the two kinds of group member.
type MemberType string

const (
	MemberUser  MemberType = "USER"
	MemberGroup MemberType = "GROUP"
)

// ParseMemberType accepts the stored enum spelling.
func ParseMemberType(s string) (MemberType, error) {
	switch t := MemberType(strings.ToUpper(s)); t {
	case MemberUser, MemberGroup:
		return t, nil
	default:
		return "", fmt.Errorf("unknown member type %q", s)
	}
}

// GroupMember names a user or a group inside the group's tenant.
type GroupMember struct {
	Type MemberType `json:"type" validate:"required,oneof=USER GROUP"`
	Name string     `json:"name" validate:"required,max=255"`
}

func (m GroupMember) IsGroup() bool { return m.Type == MemberGroup }

func (m GroupMember) String() string { return string(m.Type) + ":" + m.Name }

// Group is a named set of members within a tenant.
type Group struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenant_id" validate:"required"`
	Name        string        `json:"name" validate:"required,max=70"`
	Description string        `json:"description,omitempty" validate:"max=255"`
	Members     []GroupMember `json:"members" validate:"dive"`
	Version     int64         `json:"version"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewGroup returns an unsaved, empty group.
func NewGroup(tenantID, name, description string) (Group, error) {
	g := Group{
		ID:          idx.New().String(),
		TenantID:    tenantID,
		Name:        name,
		Description: description,
		Members:     []GroupMember{},
	}
	if err := g.Validate(); err != nil {
		return Group{}, err
	}
	return g, nil
}

func (g Group) Validate() error { return validx.Struct(g) }

// AsMember returns the membership triple naming this group.
func (g Group) AsMember() GroupMember {
	return GroupMember{Type: MemberGroup, Name: g.Name}
}

// HasMember reports a direct membership only.
func (g Group) HasMember(m GroupMember) bool {
	return slices.Contains(g.Members, m)
}

// AddMember appends m and reports whether the member set changed.
func (g *Group) AddMember(m GroupMember) bool {
	if g.HasMember(m) {
		return false
	}
	g.Members = append(g.Members, m)
	return true
}

// RemoveMember drops m and reports whether the member set changed.
func (g *Group) RemoveMember(m GroupMember) bool {
	i := slices.Index(g.Members, m)
	if i < 0 {
		return false
	}
	g.Members = slices.Delete(g.Members, i, i+1)
	return true
}

// NestedGroups returns the names of the direct GROUP members.
func (g Group) NestedGroups() []string {
	var out []string
	for _, m := range g.Members {
		if m.IsGroup() {
			out = append(out, m.Name)
		}
	}
	return out
}

// IsRoleGroup reports whether the group backs a role.
func (g Group) IsRoleGroup() bool {
	return strings.HasPrefix(g.Name, RoleGroupPrefix)
}
