package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store/drivers/sqlite/gen"
)

type groupsRepo struct {
	q *gen.Queries
}

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	err := r.q.CreateGroup(ctx, gen.CreateGroupParams{
		ID:          g.ID,
		TenantID:    g.TenantID,
		Name:        g.Name,
		Description: mapStringNull(g.Description),
		CreatedAt:   g.CreatedAt.UTC(),
		UpdatedAt:   g.UpdatedAt.UTC(),
	})
	if err != nil {
		return mapWriteErr(err)
	}
	return r.insertMembers(ctx, g)
}

func (r *groupsRepo) GetGroupByID(ctx context.Context, id string) (domain.Group, error) {
	row, err := r.q.GetGroupByID(ctx, id)
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	return r.withMembers(ctx, row)
}

func (r *groupsRepo) GetGroupByName(ctx context.Context, tenantID, name string) (domain.Group, error) {
	row, err := r.q.GetGroupByName(ctx, tenantID, name)
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	return r.withMembers(ctx, row)
}

func (r *groupsRepo) ListGroups(ctx context.Context, tenantID string, includeRoleGroups bool) ([]domain.Group, error) {
	rows, err := r.q.ListGroupsByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// One query for every member of the tenant instead of one per group.
	members, err := r.q.ListGroupMembersByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	byGroup := make(map[string][]gen.GroupMember, len(rows))
	for _, m := range members {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m)
	}

	groups := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		g := mapGroup(row, byGroup[row.ID])
		if !includeRoleGroups && g.IsRoleGroup() {
			continue
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// UpdateGroup bumps the version and rewrites the member set.
func (r *groupsRepo) UpdateGroup(ctx context.Context, g domain.Group) (int64, error) {
	affected, err := r.q.UpdateGroup(ctx, gen.UpdateGroupParams{
		Description: mapStringNull(g.Description),
		UpdatedAt:   g.UpdatedAt.UTC(),
		ID:          g.ID,
		Version:     g.Version,
	})
	if err != nil {
		return 0, mapWriteErr(err)
	}

	version, err := casResult(ctx, affected, g.Version, r.q.GetGroupVersion, g.ID)
	if err != nil {
		return 0, err
	}

	if err := r.q.DeleteGroupMembers(ctx, g.ID); err != nil {
		return 0, err
	}
	if err := r.insertMembers(ctx, g); err != nil {
		return 0, err
	}
	return version, nil
}

func (r *groupsRepo) DeleteGroup(ctx context.Context, id string) error {
	return deleteResult(r.q.DeleteGroup(ctx, id))
}

func (r *groupsRepo) ListGroupsContaining(ctx context.Context, tenantID string, m domain.GroupMember) ([]domain.Group, error) {
	rows, err := r.q.ListGroupsContaining(ctx, gen.ListGroupsContainingParams{
		TenantID:   tenantID,
		MemberType: string(m.Type),
		MemberName: m.Name,
	})
	if err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		g, err := r.withMembers(ctx, row)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// RemoveMemberEverywhere bumps the version of every affected group, and of
// the roles those groups back, before dropping the membership rows.
func (r *groupsRepo) RemoveMemberEverywhere(ctx context.Context, tenantID string, m domain.GroupMember, now time.Time) (int64, error) {
	err := r.q.BumpGroupsContaining(ctx, gen.BumpGroupsContainingParams{
		UpdatedAt:  now.UTC(),
		TenantID:   tenantID,
		MemberType: string(m.Type),
		MemberName: m.Name,
	})
	if err != nil {
		return 0, err
	}
	err = r.q.BumpRolesContaining(ctx, gen.BumpRolesContainingParams{
		UpdatedAt:  now.UTC(),
		TenantID:   tenantID,
		MemberType: string(m.Type),
		MemberName: m.Name,
	})
	if err != nil {
		return 0, err
	}
	return r.q.DeleteMemberEverywhere(ctx, gen.DeleteMemberEverywhereParams{
		MemberType: string(m.Type),
		MemberName: m.Name,
		TenantID:   tenantID,
	})
}

func (r *groupsRepo) withMembers(ctx context.Context, row gen.Group) (domain.Group, error) {
	members, err := r.q.ListGroupMembers(ctx, row.ID)
	if err != nil {
		return domain.Group{}, err
	}
	return mapGroup(row, members), nil
}

func (r *groupsRepo) insertMembers(ctx context.Context, g domain.Group) error {
	for _, m := range g.Members {
		err := r.q.AddGroupMember(ctx, gen.GroupMember{
			GroupID:    g.ID,
			MemberType: string(m.Type),
			MemberName: m.Name,
		})
		if err != nil {
			return mapWriteErr(err)
		}
	}
	return nil
}
