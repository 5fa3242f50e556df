package sqlite

import (
	"context"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store/drivers/sqlite/gen"
)

type tenantsRepo struct {
	q *gen.Queries
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	return mapWriteErr(r.q.CreateTenant(ctx, gen.CreateTenantParams{
		ID:          t.ID,
		Uuid:        t.UUID,
		Name:        t.Name,
		Description: mapStringNull(t.Description),
		Enabled:     t.Enabled,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}))
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row, err := r.q.GetTenantByID(ctx, id)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return mapTenant(row), nil
}

func (r *tenantsRepo) GetTenantByUUID(ctx context.Context, uuid string) (domain.Tenant, error) {
	row, err := r.q.GetTenantByUUID(ctx, uuid)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return mapTenant(row), nil
}

func (r *tenantsRepo) GetTenantByName(ctx context.Context, name string) (domain.Tenant, error) {
	row, err := r.q.GetTenantByName(ctx, name)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return mapTenant(row), nil
}

func (r *tenantsRepo) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.q.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	tenants := make([]domain.Tenant, len(rows))
	for i, row := range rows {
		tenants[i] = mapTenant(row)
	}
	return tenants, nil
}

func (r *tenantsRepo) UpdateTenant(ctx context.Context, t domain.Tenant) (int64, error) {
	affected, err := r.q.UpdateTenant(ctx, gen.UpdateTenantParams{
		Name:        t.Name,
		Description: mapStringNull(t.Description),
		Enabled:     t.Enabled,
		UpdatedAt:   t.UpdatedAt.UTC(),
		ID:          t.ID,
		Version:     t.Version,
	})
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return casResult(ctx, affected, t.Version, r.q.GetTenantVersion, t.ID)
}

func (r *tenantsRepo) DeleteTenant(ctx context.Context, id string) error {
	return deleteResult(r.q.DeleteTenant(ctx, id))
}
