package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/cache"
	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/pkg/slogx"
)

// RoleService manages roles. A role's holders are the members of its
// backing group, so assignments rewrite that group and bump the role's
// version alongside it.
type RoleService struct {
	Store store.Store
	Cache *cache.Tenants
	Now   func() time.Time
}

// Provision creates a role together with its backing group.
func (s *RoleService) Provision(ctx context.Context, tenantRef, name, description string, supportsNesting bool) (domain.Role, error) {
	log := slogx.FromContext(ctx)

	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return domain.Role{}, err
	}

	r, err := domain.NewRole(t.ID, name, description, supportsNesting)
	if err != nil {
		return domain.Role{}, err
	}
	now := clock(s.Now)
	r.CreatedAt, r.UpdatedAt = now, now
	r.Group.CreatedAt, r.Group.UpdatedAt = now, now

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Roles().CreateRole(ctx, r)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Role{}, ErrRoleExists
		}
		log.Error("failed to create role", slog.String("name", name), slog.Any("error", err))
		return domain.Role{}, err
	}

	log.Info("role provisioned",
		slog.String("tenant_id", t.ID),
		slog.String("role", r.Name),
		slog.Bool("supports_nesting", r.SupportsNesting),
	)
	return r, nil
}

func (s *RoleService) Get(ctx context.Context, tenantRef, name string) (domain.Role, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return domain.Role{}, err
	}
	return getRole(ctx, s.Store, t.ID, name)
}

func (s *RoleService) List(ctx context.Context, tenantRef string) ([]domain.Role, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return nil, err
	}
	return s.Store.Roles().ListRoles(ctx, t.ID)
}

// Delete removes the role and its backing group.
func (s *RoleService) Delete(ctx context.Context, tenantRef, name string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := findTenant(ctx, tx, tenantRef)
		if err != nil {
			return err
		}
		r, err := getRole(ctx, tx, t.ID, name)
		if err != nil {
			return err
		}
		if err := checkVersion(ctx, "role", r.Version); err != nil {
			return err
		}
		return tx.Roles().DeleteRole(ctx, r.ID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("role deleted", slog.String("role", name))
	return nil
}

// AssignUser grants the role to username. The user must be enabled.
func (s *RoleService) AssignUser(ctx context.Context, tenantRef, roleName, username string) (domain.Role, error) {
	return s.mutate(ctx, tenantRef, roleName, func(tx store.Tx, r *domain.Role) (bool, error) {
		u, err := getUser(ctx, tx, r.TenantID, username)
		if err != nil {
			return false, err
		}
		if !u.IsEnabledAt(clock(s.Now)) {
			return false, domain.ErrUserNotEnabled
		}
		return r.AssignUser(u)
	})
}

// UnassignUser revokes a direct grant. A deleted user is removed by name.
func (s *RoleService) UnassignUser(ctx context.Context, tenantRef, roleName, username string) (domain.Role, error) {
	return s.mutate(ctx, tenantRef, roleName, func(tx store.Tx, r *domain.Role) (bool, error) {
		u, err := getUser(ctx, tx, r.TenantID, username)
		if errors.Is(err, ErrUserNotFound) {
			return r.Group.RemoveMember(domain.GroupMember{Type: domain.MemberUser, Name: username}), nil
		}
		if err != nil {
			return false, err
		}
		return r.UnassignUser(u)
	})
}

// AssignGroup grants the role to every member of groupName. The role must
// support nesting.
func (s *RoleService) AssignGroup(ctx context.Context, tenantRef, roleName, groupName string) (domain.Role, error) {
	return s.mutate(ctx, tenantRef, roleName, func(tx store.Tx, r *domain.Role) (bool, error) {
		if !r.SupportsNesting {
			return false, domain.ErrNestingNotSupported
		}
		g, err := getGroup(ctx, tx, r.TenantID, groupName)
		if err != nil {
			return false, err
		}
		if err := (resolver{st: tx, now: clock(s.Now)}).checkNesting(ctx, r.Group, g); err != nil {
			return false, err
		}
		return r.AssignGroup(g)
	})
}

func (s *RoleService) UnassignGroup(ctx context.Context, tenantRef, roleName, groupName string) (domain.Role, error) {
	return s.mutate(ctx, tenantRef, roleName, func(tx store.Tx, r *domain.Role) (bool, error) {
		if !r.SupportsNesting {
			return false, domain.ErrNestingNotSupported
		}
		g, err := getGroup(ctx, tx, r.TenantID, groupName)
		if errors.Is(err, ErrGroupNotFound) {
			return r.Group.RemoveMember(domain.GroupMember{Type: domain.MemberGroup, Name: groupName}), nil
		}
		if err != nil {
			return false, err
		}
		return r.UnassignGroup(g)
	})
}

// IsInRole reports whether username holds the role directly or through a
// nested group.
func (s *RoleService) IsInRole(ctx context.Context, tenantRef, roleName, username string) (bool, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return false, err
	}
	r, err := getRole(ctx, s.Store, t.ID, roleName)
	if err != nil {
		return false, err
	}
	u, err := getUser(ctx, s.Store, t.ID, username)
	if err != nil {
		return false, err
	}
	return resolver{st: s.Store, now: clock(s.Now)}.isUserInGroup(ctx, "role", r.Group, u)
}

// ListUserRoles returns every role username holds, ordered by role name.
func (s *RoleService) ListUserRoles(ctx context.Context, tenantRef, username string) ([]domain.Role, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return nil, err
	}
	u, err := getUser(ctx, s.Store, t.ID, username)
	if err != nil {
		return nil, err
	}
	roles, err := s.Store.Roles().ListRoles(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	res := resolver{st: s.Store, now: clock(s.Now)}
	held := make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		ok, err := res.isUserInGroup(ctx, "role", r.Group, u)
		if err != nil {
			return nil, err
		}
		if ok {
			held = append(held, r)
		}
	}
	return held, nil
}

// mutate loads the role inside a transaction and applies fn. When fn
// reports a change the backing group is rewritten and the role version
// bumped.
func (s *RoleService) mutate(ctx context.Context, tenantRef, name string, fn func(tx store.Tx, r *domain.Role) (bool, error)) (domain.Role, error) {
	log := slogx.FromContext(ctx)

	var role domain.Role
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := findTenant(ctx, tx, tenantRef)
		if err != nil {
			return err
		}
		r, err := getRole(ctx, tx, t.ID, name)
		if err != nil {
			return err
		}
		if err := checkVersion(ctx, "role", r.Version); err != nil {
			return err
		}

		changed, err := fn(tx, &r)
		if err != nil {
			return err
		}
		if changed {
			now := clock(s.Now)
			r.Group.UpdatedAt = now
			gv, err := tx.Groups().UpdateGroup(ctx, r.Group)
			if err != nil {
				return versionErr("group", err)
			}
			r.Group.Version = gv

			r.UpdatedAt = now
			rv, err := tx.Roles().UpdateRole(ctx, r)
			if err != nil {
				return versionErr("role", err)
			}
			r.Version = rv
		}
		role = r
		return nil
	})
	if err != nil {
		if !isExpected(err) {
			log.Error("failed to update role", slog.String("role", name), slog.Any("error", err))
		}
		return domain.Role{}, err
	}
	return role, nil
}
