package gen

import (
	"context"
	"database/sql"
	"time"
)

const tenantColumns = `id, version, uuid, name, description, enabled, created_at, updated_at`

func scanTenant(row interface{ Scan(...any) error }) (Tenant, error) {
	var i Tenant
	err := row.Scan(
		&i.ID,
		&i.Version,
		&i.Uuid,
		&i.Name,
		&i.Description,
		&i.Enabled,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTenant = `-- name: CreateTenant :exec
INSERT INTO tenant (id, version, uuid, name, description, enabled, created_at, updated_at)
VALUES (?, 0, ?, ?, ?, ?, ?, ?)
`

type CreateTenantParams struct {
	ID          string
	Uuid        string
	Name        string
	Description sql.NullString
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateTenant(ctx context.Context, arg CreateTenantParams) error {
	_, err := q.db.ExecContext(ctx, createTenant,
		arg.ID,
		arg.Uuid,
		arg.Name,
		arg.Description,
		arg.Enabled,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getTenantByID = `-- name: GetTenantByID :one
SELECT ` + tenantColumns + ` FROM tenant WHERE id = ?
`

func (q *Queries) GetTenantByID(ctx context.Context, id string) (Tenant, error) {
	return scanTenant(q.db.QueryRowContext(ctx, getTenantByID, id))
}

const getTenantByUUID = `-- name: GetTenantByUUID :one
SELECT ` + tenantColumns + ` FROM tenant WHERE uuid = ?
`

func (q *Queries) GetTenantByUUID(ctx context.Context, uuid string) (Tenant, error) {
	return scanTenant(q.db.QueryRowContext(ctx, getTenantByUUID, uuid))
}

const getTenantByName = `-- name: GetTenantByName :one
SELECT ` + tenantColumns + ` FROM tenant WHERE name = ?
`

func (q *Queries) GetTenantByName(ctx context.Context, name string) (Tenant, error) {
	return scanTenant(q.db.QueryRowContext(ctx, getTenantByName, name))
}

const listTenants = `-- name: ListTenants :many
SELECT ` + tenantColumns + ` FROM tenant ORDER BY name
`

func (q *Queries) ListTenants(ctx context.Context) ([]Tenant, error) {
	rows, err := q.db.QueryContext(ctx, listTenants)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Tenant
	for rows.Next() {
		i, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTenant = `-- name: UpdateTenant :execrows
UPDATE tenant
SET name = ?, description = ?, enabled = ?, updated_at = ?, version = version + 1
WHERE id = ? AND version = ?
`

type UpdateTenantParams struct {
	Name        string
	Description sql.NullString
	Enabled     bool
	UpdatedAt   time.Time
	ID          string
	Version     int64
}

func (q *Queries) UpdateTenant(ctx context.Context, arg UpdateTenantParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTenant,
		arg.Name,
		arg.Description,
		arg.Enabled,
		arg.UpdatedAt,
		arg.ID,
		arg.Version,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getTenantVersion = `-- name: GetTenantVersion :one
SELECT version FROM tenant WHERE id = ?
`

func (q *Queries) GetTenantVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := q.db.QueryRowContext(ctx, getTenantVersion, id).Scan(&version)
	return version, err
}

const deleteTenant = `-- name: DeleteTenant :execrows
DELETE FROM tenant WHERE id = ?
`

func (q *Queries) DeleteTenant(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTenant, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
