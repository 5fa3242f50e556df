package postgres

import (
	"context"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
)

type rolesRepo struct {
	q querier
}

const roleColumns = `id, version, tenant_id, name, description, supports_nesting, group_id, created_at, updated_at`

func scanRole(row scannable) (domain.Role, error) {
	var r domain.Role
	err := row.Scan(&r.ID, &r.Version, &r.TenantID, &r.Name, &r.Description, &r.SupportsNesting,
		&r.Group.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return domain.Role{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func (r *rolesRepo) groups() *groupsRepo { return &groupsRepo{q: r.q} }

// CreateRole inserts the backing group first so the role can reference it.
func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	if err := r.groups().CreateGroup(ctx, role.Group); err != nil {
		return err
	}

	_, err := r.q.Exec(ctx,
		`INSERT INTO role (id, version, tenant_id, name, description, supports_nesting, group_id, created_at, updated_at)
		 VALUES ($1, 0, $2, $3, $4, $5, $6, $7, $8)`,
		role.ID, role.TenantID, role.Name, role.Description, role.SupportsNesting, role.Group.ID,
		role.CreatedAt.UTC(), role.UpdatedAt.UTC())
	return mapWriteErr(err)
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, tenantID, name string) (domain.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM role WHERE tenant_id = $1 AND name = $2`, tenantID, name))
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return r.withGroup(ctx, role)
}

func (r *rolesRepo) ListRoles(ctx context.Context, tenantID string) ([]domain.Role, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+roleColumns+` FROM role WHERE tenant_id = $1 ORDER BY name`, tenantID)
	if err != nil {
		return nil, err
	}
	roles, err := collect(rows, scanRole)
	if err != nil {
		return nil, err
	}

	for i := range roles {
		if roles[i], err = r.withGroup(ctx, roles[i]); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (r *rolesRepo) UpdateRole(ctx context.Context, role domain.Role) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE role SET description = $1, supports_nesting = $2, updated_at = $3, version = version + 1
		 WHERE id = $4 AND version = $5`,
		role.Description, role.SupportsNesting, role.UpdatedAt.UTC(), role.ID, role.Version)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return casResult(ctx, r.q, tag, "role", role.ID, role.Version)
}

// DeleteRole drops the backing group; the role row follows by cascade.
func (r *rolesRepo) DeleteRole(ctx context.Context, id string) error {
	return execExpectOne(r.q.Exec(ctx,
		`DELETE FROM groups WHERE id = (SELECT group_id FROM role WHERE id = $1)`, id))
}

func (r *rolesRepo) withGroup(ctx context.Context, role domain.Role) (domain.Role, error) {
	g, err := r.groups().GetGroupByID(ctx, role.Group.ID)
	if err != nil {
		return domain.Role{}, err
	}
	role.Group = g
	return role, nil
}
