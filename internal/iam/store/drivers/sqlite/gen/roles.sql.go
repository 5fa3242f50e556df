package gen

import (
	"context"
	"time"
)

const roleColumns = `id, version, tenant_id, name, description, supports_nesting, group_id, created_at, updated_at`

func scanRole(row interface{ Scan(...any) error }) (Role, error) {
	var i Role
	err := row.Scan(
		&i.ID,
		&i.Version,
		&i.TenantID,
		&i.Name,
		&i.Description,
		&i.SupportsNesting,
		&i.GroupID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createRole = `-- name: CreateRole :exec
INSERT INTO role (id, version, tenant_id, name, description, supports_nesting, group_id, created_at, updated_at)
VALUES (?, 0, ?, ?, ?, ?, ?, ?, ?)
`

type CreateRoleParams struct {
	ID              string
	TenantID        string
	Name            string
	Description     string
	SupportsNesting bool
	GroupID         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (q *Queries) CreateRole(ctx context.Context, arg CreateRoleParams) error {
	_, err := q.db.ExecContext(ctx, createRole,
		arg.ID,
		arg.TenantID,
		arg.Name,
		arg.Description,
		arg.SupportsNesting,
		arg.GroupID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getRoleByID = `-- name: GetRoleByID :one
SELECT ` + roleColumns + ` FROM role WHERE id = ?
`

func (q *Queries) GetRoleByID(ctx context.Context, id string) (Role, error) {
	return scanRole(q.db.QueryRowContext(ctx, getRoleByID, id))
}

const getRoleByName = `-- name: GetRoleByName :one
SELECT ` + roleColumns + ` FROM role WHERE tenant_id = ? AND name = ?
`

func (q *Queries) GetRoleByName(ctx context.Context, tenantID, name string) (Role, error) {
	return scanRole(q.db.QueryRowContext(ctx, getRoleByName, tenantID, name))
}

const listRolesByTenant = `-- name: ListRolesByTenant :many
SELECT ` + roleColumns + ` FROM role WHERE tenant_id = ? ORDER BY name
`

func (q *Queries) ListRolesByTenant(ctx context.Context, tenantID string) ([]Role, error) {
	rows, err := q.db.QueryContext(ctx, listRolesByTenant, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Role
	for rows.Next() {
		i, err := scanRole(rows)
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

const updateRole = `-- name: UpdateRole :execrows
UPDATE role
SET description = ?, supports_nesting = ?, updated_at = ?, version = version + 1
WHERE id = ? AND version = ?
`

type UpdateRoleParams struct {
	Description     string
	SupportsNesting bool
	UpdatedAt       time.Time
	ID              string
	Version         int64
}

func (q *Queries) UpdateRole(ctx context.Context, arg UpdateRoleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateRole,
		arg.Description,
		arg.SupportsNesting,
		arg.UpdatedAt,
		arg.ID,
		arg.Version,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getRoleVersion = `-- name: GetRoleVersion :one
SELECT version FROM role WHERE id = ?
`

func (q *Queries) GetRoleVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := q.db.QueryRowContext(ctx, getRoleVersion, id).Scan(&version)
	return version, err
}
