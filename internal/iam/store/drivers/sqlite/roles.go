package sqlite

import (
	"context"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store/drivers/sqlite/gen"
)

type rolesRepo struct {
	q *gen.Queries
}

func (r *rolesRepo) groups() *groupsRepo { return &groupsRepo{q: r.q} }

// CreateRole inserts the backing group first so the role can reference it.
func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	if err := r.groups().CreateGroup(ctx, role.Group); err != nil {
		return err
	}
	return mapWriteErr(r.q.CreateRole(ctx, gen.CreateRoleParams{
		ID:              role.ID,
		TenantID:        role.TenantID,
		Name:            role.Name,
		Description:     role.Description,
		SupportsNesting: role.SupportsNesting,
		GroupID:         role.Group.ID,
		CreatedAt:       role.CreatedAt.UTC(),
		UpdatedAt:       role.UpdatedAt.UTC(),
	}))
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, tenantID, name string) (domain.Role, error) {
	row, err := r.q.GetRoleByName(ctx, tenantID, name)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return r.withGroup(ctx, row)
}

func (r *rolesRepo) ListRoles(ctx context.Context, tenantID string) ([]domain.Role, error) {
	rows, err := r.q.ListRolesByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	roles := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		role, err := r.withGroup(ctx, row)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (r *rolesRepo) UpdateRole(ctx context.Context, role domain.Role) (int64, error) {
	affected, err := r.q.UpdateRole(ctx, gen.UpdateRoleParams{
		Description:     role.Description,
		SupportsNesting: role.SupportsNesting,
		UpdatedAt:       role.UpdatedAt.UTC(),
		ID:              role.ID,
		Version:         role.Version,
	})
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return casResult(ctx, affected, role.Version, r.q.GetRoleVersion, role.ID)
}

// DeleteRole drops the backing group; the role row follows by cascade.
func (r *rolesRepo) DeleteRole(ctx context.Context, id string) error {
	row, err := r.q.GetRoleByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	return deleteResult(r.q.DeleteGroup(ctx, row.GroupID))
}

func (r *rolesRepo) withGroup(ctx context.Context, row gen.Role) (domain.Role, error) {
	g, err := r.groups().GetGroupByID(ctx, row.GroupID)
	if err != nil {
		return domain.Role{}, err
	}
	return mapRole(row, g), nil
}
