package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/metrics"
	"github.com/aussiebroadwan/iam/internal/iam/store"
)

// resolver answers nested membership questions against a store. Group
// members reference users and groups by name, so every hop is a lookup and
// members that no longer exist are skipped.
type resolver struct {
	st  store.Store
	now time.Time
}

// isUserInGroup reports whether u is a member of g, directly or through
// nested groups. A direct member only counts while the stored user is
// still enabled.
func (r resolver) isUserInGroup(ctx context.Context, kind string, g domain.Group, u domain.User) (bool, error) {
	ok, err := r.checkUser(ctx, g, u)
	result := "not_member"
	switch {
	case err != nil:
		result = "error"
	case ok:
		result = "member"
	}
	metrics.MembershipChecks.WithLabelValues(kind, result).Inc()
	return ok, err
}

func (r resolver) checkUser(ctx context.Context, g domain.Group, u domain.User) (bool, error) {
	if g.TenantID != u.TenantID {
		return false, domain.ErrTenantMismatch
	}
	if !u.IsEnabledAt(r.now) {
		return false, domain.ErrUserNotEnabled
	}
	return r.searchUser(ctx, g, u.AsMember(), map[string]struct{}{})
}

func (r resolver) searchUser(ctx context.Context, g domain.Group, m domain.GroupMember, visited map[string]struct{}) (bool, error) {
	visited[g.Name] = struct{}{}

	if g.HasMember(m) {
		return r.confirmUser(ctx, g.TenantID, m.Name)
	}

	for _, name := range g.NestedGroups() {
		if _, seen := visited[name]; seen {
			continue
		}
		nested, err := r.st.Groups().GetGroupByName(ctx, g.TenantID, name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		found, err := r.searchUser(ctx, nested, m, visited)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

// confirmUser re-reads a direct member. A deleted user is not a member.
func (r resolver) confirmUser(ctx context.Context, tenantID, username string) (bool, error) {
	u, err := r.st.Users().GetUserByUsername(ctx, tenantID, username)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsEnabledAt(r.now), nil
}

// containsGroup reports whether the group named target is reachable from g
// through GROUP members.
func (r resolver) containsGroup(ctx context.Context, g domain.Group, target string) (bool, error) {
	return r.searchGroup(ctx, g, target, map[string]struct{}{})
}

func (r resolver) searchGroup(ctx context.Context, g domain.Group, target string, visited map[string]struct{}) (bool, error) {
	visited[g.Name] = struct{}{}

	for _, name := range g.NestedGroups() {
		if name == target {
			return true, nil
		}
		if _, seen := visited[name]; seen {
			continue
		}
		nested, err := r.st.Groups().GetGroupByName(ctx, g.TenantID, name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		found, err := r.searchGroup(ctx, nested, target, visited)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

// checkNesting rejects adding member to g when it would create a cycle.
func (r resolver) checkNesting(ctx context.Context, g, member domain.Group) error {
	if g.Name == member.Name {
		return domain.ErrGroupRecursion
	}
	cycle, err := r.containsGroup(ctx, member, g.Name)
	if err != nil {
		return err
	}
	if cycle {
		return domain.ErrGroupRecursion
	}
	return nil
}
