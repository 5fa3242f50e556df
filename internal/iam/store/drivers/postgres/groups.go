package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
)

type groupsRepo struct {
	q querier
}

const groupColumns = `g.id, g.version, g.tenant_id, g.name, g.description, g.created_at, g.updated_at`

func scanGroup(row scannable) (domain.Group, error) {
	var (
		g           domain.Group
		description *string
	)
	if err := row.Scan(&g.ID, &g.Version, &g.TenantID, &g.Name, &description, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return domain.Group{}, err
	}
	g.Description = deref(description)
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	g.Members = []domain.GroupMember{}
	return g, nil
}

type memberRow struct {
	groupID string
	member  domain.GroupMember
}

func scanMember(row scannable) (memberRow, error) {
	var m memberRow
	var memberType string
	if err := row.Scan(&m.groupID, &memberType, &m.member.Name); err != nil {
		return memberRow{}, err
	}
	m.member.Type = domain.MemberType(memberType)
	return m, nil
}

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO groups (id, version, tenant_id, name, description, created_at, updated_at)
		 VALUES ($1, 0, $2, $3, $4, $5, $6)`,
		g.ID, g.TenantID, g.Name, nullIfEmpty(g.Description), g.CreatedAt.UTC(), g.UpdatedAt.UTC())
	if err != nil {
		return mapWriteErr(err)
	}
	return r.insertMembers(ctx, g)
}

func (r *groupsRepo) GetGroupByID(ctx context.Context, id string) (domain.Group, error) {
	g, err := scanGroup(r.q.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups g WHERE g.id = $1`, id))
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	return r.withMembers(ctx, g)
}

func (r *groupsRepo) GetGroupByName(ctx context.Context, tenantID, name string) (domain.Group, error) {
	g, err := scanGroup(r.q.QueryRow(ctx,
		`SELECT `+groupColumns+` FROM groups g WHERE g.tenant_id = $1 AND g.name = $2`, tenantID, name))
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	return r.withMembers(ctx, g)
}

func (r *groupsRepo) ListGroups(ctx context.Context, tenantID string, includeRoleGroups bool) ([]domain.Group, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+groupColumns+` FROM groups g
		 WHERE g.tenant_id = $1 AND ($2 OR g.name NOT LIKE $3)
		 ORDER BY g.name`,
		tenantID, includeRoleGroups, likeEscaper.Replace(domain.RoleGroupPrefix)+"%")
	if err != nil {
		return nil, err
	}
	groups, err := collect(rows, scanGroup)
	if err != nil {
		return nil, err
	}

	memberRows, err := r.q.Query(ctx,
		`SELECT m.group_id, m.member_type, m.member_name
		 FROM group_member m JOIN groups g ON g.id = m.group_id
		 WHERE g.tenant_id = $1
		 ORDER BY m.member_type DESC, m.member_name`, tenantID)
	if err != nil {
		return nil, err
	}
	members, err := collect(memberRows, scanMember)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[string][]domain.GroupMember, len(groups))
	for _, m := range members {
		byGroup[m.groupID] = append(byGroup[m.groupID], m.member)
	}
	for i := range groups {
		if ms, ok := byGroup[groups[i].ID]; ok {
			groups[i].Members = ms
		}
	}
	return groups, nil
}

func (r *groupsRepo) UpdateGroup(ctx context.Context, g domain.Group) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE groups SET description = $1, updated_at = $2, version = version + 1
		 WHERE id = $3 AND version = $4`,
		nullIfEmpty(g.Description), g.UpdatedAt.UTC(), g.ID, g.Version)
	if err != nil {
		return 0, mapWriteErr(err)
	}

	version, err := casResult(ctx, r.q, tag, "groups", g.ID, g.Version)
	if err != nil {
		return 0, err
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM group_member WHERE group_id = $1`, g.ID); err != nil {
		return 0, err
	}
	if err := r.insertMembers(ctx, g); err != nil {
		return 0, err
	}
	return version, nil
}

func (r *groupsRepo) DeleteGroup(ctx context.Context, id string) error {
	return execExpectOne(r.q.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id))
}

func (r *groupsRepo) ListGroupsContaining(ctx context.Context, tenantID string, m domain.GroupMember) ([]domain.Group, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+groupColumns+`
		 FROM groups g JOIN group_member m ON m.group_id = g.id
		 WHERE g.tenant_id = $1 AND m.member_type = $2 AND m.member_name = $3
		 ORDER BY g.name`,
		tenantID, string(m.Type), m.Name)
	if err != nil {
		return nil, err
	}
	groups, err := collect(rows, scanGroup)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		if groups[i], err = r.withMembers(ctx, groups[i]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// RemoveMemberEverywhere bumps the version of every affected group, and of
// the roles those groups back, before dropping the membership rows.
func (r *groupsRepo) RemoveMemberEverywhere(ctx context.Context, tenantID string, m domain.GroupMember, now time.Time) (int64, error) {
	_, err := r.q.Exec(ctx,
		`UPDATE groups SET version = version + 1, updated_at = $1
		 WHERE tenant_id = $2
		   AND id IN (SELECT group_id FROM group_member WHERE member_type = $3 AND member_name = $4)`,
		now.UTC(), tenantID, string(m.Type), m.Name)
	if err != nil {
		return 0, err
	}

	_, err = r.q.Exec(ctx,
		`UPDATE role SET version = version + 1, updated_at = $1
		 WHERE tenant_id = $2
		   AND group_id IN (SELECT group_id FROM group_member WHERE member_type = $3 AND member_name = $4)`,
		now.UTC(), tenantID, string(m.Type), m.Name)
	if err != nil {
		return 0, err
	}

	tag, err := r.q.Exec(ctx,
		`DELETE FROM group_member
		 WHERE member_type = $1 AND member_name = $2
		   AND group_id IN (SELECT id FROM groups WHERE tenant_id = $3)`,
		string(m.Type), m.Name, tenantID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *groupsRepo) withMembers(ctx context.Context, g domain.Group) (domain.Group, error) {
	rows, err := r.q.Query(ctx,
		`SELECT group_id, member_type, member_name FROM group_member
		 WHERE group_id = $1 ORDER BY member_type DESC, member_name`, g.ID)
	if err != nil {
		return domain.Group{}, err
	}
	members, err := collect(rows, scanMember)
	if err != nil {
		return domain.Group{}, err
	}

	g.Members = make([]domain.GroupMember, len(members))
	for i, m := range members {
		g.Members[i] = m.member
	}
	return g, nil
}

func (r *groupsRepo) insertMembers(ctx context.Context, g domain.Group) error {
	for _, m := range g.Members {
		_, err := r.q.Exec(ctx,
			`INSERT INTO group_member (group_id, member_type, member_name) VALUES ($1, $2, $3)`,
			g.ID, string(m.Type), m.Name)
		if err != nil {
			return mapWriteErr(err)
		}
	}
	return nil
}
