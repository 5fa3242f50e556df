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

// TenantService manages tenants and their registration invitations.
// Reads are served through Cache when it is set.
type TenantService struct {
	Store store.Store
	Cache *cache.Tenants
	Now   func() time.Time
}

// TenantUpdate carries the optional fields of an update; nil leaves the
// field unchanged.
type TenantUpdate struct {
	Name        *string
	Description *string
}

// Provision creates a tenant.
func (s *TenantService) Provision(ctx context.Context, name, description string, enabled bool) (domain.Tenant, error) {
	log := slogx.FromContext(ctx)

	t, err := domain.NewTenant(name, description, enabled)
	if err != nil {
		return domain.Tenant{}, err
	}
	now := clock(s.Now)
	t.CreatedAt, t.UpdatedAt = now, now

	if err := s.Store.Tenants().CreateTenant(ctx, t); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Tenant{}, ErrTenantExists
		}
		log.Error("failed to create tenant", slog.String("name", name), slog.Any("error", err))
		return domain.Tenant{}, err
	}

	log.Info("tenant provisioned",
		slog.String("tenant_id", t.ID),
		slog.String("tenant_uuid", t.UUID),
		slog.String("name", t.Name),
	)
	return t, nil
}

// Get resolves ref as a tenant ID, UUID or name.
func (s *TenantService) Get(ctx context.Context, ref string) (domain.Tenant, error) {
	return cachedTenant(ctx, s.Store, s.Cache, ref)
}

// List returns every tenant ordered by name, without invitations.
func (s *TenantService) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.Store.Tenants().ListTenants(ctx)
}

func (s *TenantService) Update(ctx context.Context, ref string, upd TenantUpdate) (domain.Tenant, error) {
	return s.mutate(ctx, ref, func(t *domain.Tenant) error {
		if upd.Name != nil {
			t.Name = *upd.Name
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		return nil
	})
}

func (s *TenantService) Activate(ctx context.Context, ref string) (domain.Tenant, error) {
	return s.mutate(ctx, ref, func(t *domain.Tenant) error {
		t.Activate()
		return nil
	})
}

func (s *TenantService) Deactivate(ctx context.Context, ref string) (domain.Tenant, error) {
	return s.mutate(ctx, ref, func(t *domain.Tenant) error {
		t.Deactivate()
		return nil
	})
}

// Delete removes the tenant together with everything it owns.
func (s *TenantService) Delete(ctx context.Context, ref string) error {
	log := slogx.FromContext(ctx)

	var deleted domain.Tenant
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := findTenant(ctx, tx, ref)
		if err != nil {
			return err
		}
		if err := checkVersion(ctx, "tenant", t.Version); err != nil {
			return err
		}
		deleted = t
		return tx.Tenants().DeleteTenant(ctx, t.ID)
	})
	if err != nil {
		return err
	}

	s.invalidate(deleted)
	log.Info("tenant deleted", slog.String("tenant_id", deleted.ID), slog.String("name", deleted.Name))
	return nil
}

// OfferInvitation opens an invitation described by description.
func (s *TenantService) OfferInvitation(ctx context.Context, ref, description string) (domain.InvitationDescriptor, error) {
	var offered domain.Invitation
	t, err := s.mutate(ctx, ref, func(t *domain.Tenant) error {
		inv, err := t.OfferInvitation(description, clock(s.Now))
		offered = inv
		return err
	})
	if err != nil {
		return domain.InvitationDescriptor{}, err
	}

	slogx.FromContext(ctx).Info("invitation offered",
		slog.String("tenant_id", t.ID),
		slog.String("identifier", offered.Identifier),
	)
	return offered.Descriptor(t.UUID), nil
}

// RedefineInvitation replaces the validity window of the invitation
// answering to identifier.
func (s *TenantService) RedefineInvitation(ctx context.Context, ref, identifier string, validity domain.Validity) (domain.InvitationDescriptor, error) {
	var redefined domain.Invitation
	t, err := s.mutate(ctx, ref, func(t *domain.Tenant) error {
		inv, err := t.RedefineInvitation(identifier, validity)
		redefined = inv
		return err
	})
	if err != nil {
		return domain.InvitationDescriptor{}, err
	}
	return redefined.Descriptor(t.UUID), nil
}

func (s *TenantService) WithdrawInvitation(ctx context.Context, ref, identifier string) error {
	_, err := s.mutate(ctx, ref, func(t *domain.Tenant) error {
		return t.WithdrawInvitation(identifier)
	})
	return err
}

// ListInvitations returns the available invitations, or the unavailable
// ones when available is false.
func (s *TenantService) ListInvitations(ctx context.Context, ref string, available bool) ([]domain.InvitationDescriptor, error) {
	t, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if available {
		return t.AvailableInvitations(clock(s.Now))
	}
	return t.UnavailableInvitations(clock(s.Now))
}

// IsRegistrationAvailable reports whether identifier names a currently
// redeemable invitation.
func (s *TenantService) IsRegistrationAvailable(ctx context.Context, ref, identifier string) (bool, error) {
	t, err := s.Get(ctx, ref)
	if err != nil {
		return false, err
	}
	return t.IsRegistrationAvailableThrough(identifier, clock(s.Now))
}

// mutate loads the tenant inside a transaction, applies fn and writes the
// tenant row and its invitation set back.
func (s *TenantService) mutate(ctx context.Context, ref string, fn func(t *domain.Tenant) error) (domain.Tenant, error) {
	log := slogx.FromContext(ctx)

	var before, after domain.Tenant
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Load the aggregate.
		t, err := loadTenant(ctx, tx, ref)
		if err != nil {
			return err
		}
		before = t
		if err := checkVersion(ctx, "tenant", t.Version); err != nil {
			return err
		}

		// 2. Apply the change.
		if err := fn(&t); err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return err
		}
		t.UpdatedAt = clock(s.Now)

		// 3. Save the row under CAS.
		v, err := tx.Tenants().UpdateTenant(ctx, t)
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrTenantExists
			}
			return versionErr("tenant", err)
		}
		t.Version = v

		// 4. Sync the invitation set.
		keep := make([]string, 0, len(t.Invitations))
		for _, inv := range t.Invitations {
			if err := tx.Invitations().UpsertInvitation(ctx, t.ID, inv); err != nil {
				return err
			}
			keep = append(keep, inv.Identifier)
		}
		if err := tx.Invitations().DeleteInvitationsExcept(ctx, t.ID, keep); err != nil {
			return err
		}

		after = t
		return nil
	})
	if err != nil {
		if !isExpected(err) {
			log.Error("failed to update tenant", slog.String("tenant", ref), slog.Any("error", err))
		}
		return domain.Tenant{}, err
	}

	s.invalidate(before)
	s.invalidate(after)
	return after, nil
}

func (s *TenantService) invalidate(t domain.Tenant) {
	if s.Cache != nil {
		s.Cache.Invalidate(t)
	}
}
