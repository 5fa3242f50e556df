package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/cache"
	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/pkg/slogx"
)

// GroupService manages user-facing groups. Role backing groups are never
// visible through it.
type GroupService struct {
	Store store.Store
	Cache *cache.Tenants
	Now   func() time.Time
}

func (s *GroupService) Create(ctx context.Context, tenantRef, name, description string) (domain.Group, error) {
	log := slogx.FromContext(ctx)

	if strings.HasPrefix(name, domain.RoleGroupPrefix) {
		return domain.Group{}, ErrReservedGroupName
	}

	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return domain.Group{}, err
	}

	g, err := domain.NewGroup(t.ID, name, description)
	if err != nil {
		return domain.Group{}, err
	}
	now := clock(s.Now)
	g.CreatedAt, g.UpdatedAt = now, now

	if err := s.Store.Groups().CreateGroup(ctx, g); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Group{}, ErrGroupExists
		}
		log.Error("failed to create group", slog.String("name", name), slog.Any("error", err))
		return domain.Group{}, err
	}

	log.Info("group created", slog.String("tenant_id", t.ID), slog.String("group", g.Name))
	return g, nil
}

func (s *GroupService) Get(ctx context.Context, tenantRef, name string) (domain.Group, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return domain.Group{}, err
	}
	return getGroup(ctx, s.Store, t.ID, name)
}

// List returns the tenant's groups ordered by name.
func (s *GroupService) List(ctx context.Context, tenantRef string) ([]domain.Group, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return nil, err
	}
	return s.Store.Groups().ListGroups(ctx, t.ID, false)
}

func (s *GroupService) UpdateDescription(ctx context.Context, tenantRef, name, description string) (domain.Group, error) {
	return s.mutate(ctx, tenantRef, name, func(_ store.Tx, g *domain.Group) (bool, error) {
		g.Description = description
		return true, g.Validate()
	})
}

// Delete removes the group and every membership naming it.
func (s *GroupService) Delete(ctx context.Context, tenantRef, name string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := findTenant(ctx, tx, tenantRef)
		if err != nil {
			return err
		}
		g, err := getGroup(ctx, tx, t.ID, name)
		if err != nil {
			return err
		}
		if err := checkVersion(ctx, "group", g.Version); err != nil {
			return err
		}

		if _, err := tx.Groups().RemoveMemberEverywhere(ctx, t.ID, g.AsMember(), clock(s.Now)); err != nil {
			return err
		}
		return tx.Groups().DeleteGroup(ctx, g.ID)
	})
	if err != nil {
		return err
	}

	log.Info("group deleted", slog.String("group", name))
	return nil
}

// AddUser makes username a direct member. The user must be enabled.
func (s *GroupService) AddUser(ctx context.Context, tenantRef, groupName, username string) (domain.Group, error) {
	return s.mutate(ctx, tenantRef, groupName, func(tx store.Tx, g *domain.Group) (bool, error) {
		u, err := getUser(ctx, tx, g.TenantID, username)
		if err != nil {
			return false, err
		}
		if u.TenantID != g.TenantID {
			return false, domain.ErrTenantMismatch
		}
		if !u.IsEnabledAt(clock(s.Now)) {
			return false, domain.ErrUserNotEnabled
		}
		return g.AddMember(u.AsMember()), nil
	})
}

// AddGroup nests memberName inside groupName unless that would create a
// cycle.
func (s *GroupService) AddGroup(ctx context.Context, tenantRef, groupName, memberName string) (domain.Group, error) {
	return s.mutate(ctx, tenantRef, groupName, func(tx store.Tx, g *domain.Group) (bool, error) {
		member, err := getGroup(ctx, tx, g.TenantID, memberName)
		if err != nil {
			return false, err
		}
		if member.TenantID != g.TenantID {
			return false, domain.ErrTenantMismatch
		}
		if err := (resolver{st: tx, now: clock(s.Now)}).checkNesting(ctx, *g, member); err != nil {
			return false, err
		}
		return g.AddMember(member.AsMember()), nil
	})
}

// RemoveUser drops a direct USER membership. The user need not exist.
func (s *GroupService) RemoveUser(ctx context.Context, tenantRef, groupName, username string) (domain.Group, error) {
	return s.mutate(ctx, tenantRef, groupName, func(_ store.Tx, g *domain.Group) (bool, error) {
		return g.RemoveMember(domain.GroupMember{Type: domain.MemberUser, Name: username}), nil
	})
}

// RemoveGroup drops a direct GROUP membership.
func (s *GroupService) RemoveGroup(ctx context.Context, tenantRef, groupName, memberName string) (domain.Group, error) {
	return s.mutate(ctx, tenantRef, groupName, func(_ store.Tx, g *domain.Group) (bool, error) {
		return g.RemoveMember(domain.GroupMember{Type: domain.MemberGroup, Name: memberName}), nil
	})
}

// IsMember reports whether username belongs to groupName directly or
// through nested groups.
func (s *GroupService) IsMember(ctx context.Context, tenantRef, groupName, username string) (bool, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return false, err
	}
	g, err := getGroup(ctx, s.Store, t.ID, groupName)
	if err != nil {
		return false, err
	}
	u, err := getUser(ctx, s.Store, t.ID, username)
	if err != nil {
		return false, err
	}
	return resolver{st: s.Store, now: clock(s.Now)}.isUserInGroup(ctx, "group", g, u)
}

// mutate loads the group inside a transaction and applies fn. The group is
// written back only when fn reports a change.
func (s *GroupService) mutate(ctx context.Context, tenantRef, name string, fn func(tx store.Tx, g *domain.Group) (bool, error)) (domain.Group, error) {
	log := slogx.FromContext(ctx)

	var group domain.Group
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := findTenant(ctx, tx, tenantRef)
		if err != nil {
			return err
		}
		g, err := getGroup(ctx, tx, t.ID, name)
		if err != nil {
			return err
		}
		if err := checkVersion(ctx, "group", g.Version); err != nil {
			return err
		}

		changed, err := fn(tx, &g)
		if err != nil {
			return err
		}
		if changed {
			g.UpdatedAt = clock(s.Now)
			v, err := tx.Groups().UpdateGroup(ctx, g)
			if err != nil {
				return versionErr("group", err)
			}
			g.Version = v
		}
		group = g
		return nil
	})
	if err != nil {
		if !isExpected(err) {
			log.Error("failed to update group", slog.String("group", name), slog.Any("error", err))
		}
		return domain.Group{}, err
	}
	return group, nil
}
