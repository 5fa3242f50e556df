package postgres

import (
	"context"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
)

type tenantsRepo struct {
	q querier
}

const tenantColumns = `id, version, uuid, name, description, enabled, created_at, updated_at`

func scanTenant(row scannable) (domain.Tenant, error) {
	var (
		t           domain.Tenant
		description *string
	)
	err := row.Scan(&t.ID, &t.Version, &t.UUID, &t.Name, &description, &t.Enabled, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Tenant{}, err
	}
	t.Description = deref(description)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO tenant (id, version, uuid, name, description, enabled, created_at, updated_at)
		 VALUES ($1, 0, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UUID, t.Name, nullIfEmpty(t.Description), t.Enabled, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	return mapWriteErr(err)
}

func (r *tenantsRepo) getBy(ctx context.Context, column, value string) (domain.Tenant, error) {
	t, err := scanTenant(r.q.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenant WHERE `+column+` = $1`, value))
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	return r.getBy(ctx, "id", id)
}

func (r *tenantsRepo) GetTenantByUUID(ctx context.Context, uuid string) (domain.Tenant, error) {
	return r.getBy(ctx, "uuid", uuid)
}

func (r *tenantsRepo) GetTenantByName(ctx context.Context, name string) (domain.Tenant, error) {
	return r.getBy(ctx, "name", name)
}

func (r *tenantsRepo) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.q.Query(ctx, `SELECT `+tenantColumns+` FROM tenant ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTenant)
}

func (r *tenantsRepo) UpdateTenant(ctx context.Context, t domain.Tenant) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE tenant
		 SET name = $1, description = $2, enabled = $3, updated_at = $4, version = version + 1
		 WHERE id = $5 AND version = $6`,
		t.Name, nullIfEmpty(t.Description), t.Enabled, t.UpdatedAt.UTC(), t.ID, t.Version)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return casResult(ctx, r.q, tag, "tenant", t.ID, t.Version)
}

func (r *tenantsRepo) DeleteTenant(ctx context.Context, id string) error {
	return execExpectOne(r.q.Exec(ctx, `DELETE FROM tenant WHERE id = $1`, id))
}
