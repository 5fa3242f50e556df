package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/cache"
	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/pkg/idx"
)

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

// findTenant resolves ref as a tenant ID, UUID or name, in that order.
// Invitations are not loaded.
func findTenant(ctx context.Context, st store.Store, ref string) (domain.Tenant, error) {
	t, err := st.Tenants().GetTenantByID(ctx, ref)
	if errors.Is(err, store.ErrNotFound) && idx.IsUUID(ref) {
		t, err = st.Tenants().GetTenantByUUID(ctx, ref)
	}
	if errors.Is(err, store.ErrNotFound) {
		t, err = st.Tenants().GetTenantByName(ctx, ref)
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.Tenant{}, ErrTenantNotFound
	}
	return t, err
}

// loadTenant is findTenant plus the tenant's invitations.
func loadTenant(ctx context.Context, st store.Store, ref string) (domain.Tenant, error) {
	t, err := findTenant(ctx, st, ref)
	if err != nil {
		return domain.Tenant{}, err
	}
	invs, err := st.Invitations().ListInvitations(ctx, t.ID)
	if err != nil {
		return domain.Tenant{}, err
	}
	t.Invitations = invs
	return t, nil
}

// cachedTenant serves reads from c and fills it on a miss. c may be nil.
// A load that overlaps a tenant write is returned but not cached.
func cachedTenant(ctx context.Context, st store.Store, c *cache.Tenants, ref string) (domain.Tenant, error) {
	if c == nil {
		return loadTenant(ctx, st, ref)
	}
	if t, ok := c.Get(ref); ok {
		return t, nil
	}

	gen := c.Generation()
	t, err := loadTenant(ctx, st, ref)
	if err != nil {
		return domain.Tenant{}, err
	}
	c.PutIfCurrent(t, gen)
	return t, nil
}

func getUser(ctx context.Context, st store.Store, tenantID, username string) (domain.User, error) {
	u, err := st.Users().GetUserByUsername(ctx, tenantID, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// getGroup loads a user-facing group; role backing groups are reported
// as missing.
func getGroup(ctx context.Context, st store.Store, tenantID, name string) (domain.Group, error) {
	g, err := st.Groups().GetGroupByName(ctx, tenantID, name)
	if errors.Is(err, store.ErrNotFound) || (err == nil && g.IsRoleGroup()) {
		return domain.Group{}, ErrGroupNotFound
	}
	return g, err
}

func getRole(ctx context.Context, st store.Store, tenantID, name string) (domain.Role, error) {
	r, err := st.Roles().GetRoleByName(ctx, tenantID, name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrRoleNotFound
	}
	return r, err
}
