package gen

import (
	"context"
	"database/sql"
	"time"
)

const groupColumns = `g.id, g.version, g.tenant_id, g.name, g.description, g.created_at, g.updated_at`

func scanGroup(row interface{ Scan(...any) error }) (Group, error) {
	var i Group
	err := row.Scan(
		&i.ID,
		&i.Version,
		&i.TenantID,
		&i.Name,
		&i.Description,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) queryGroups(ctx context.Context, query string, args ...interface{}) ([]Group, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Group
	for rows.Next() {
		i, err := scanGroup(rows)
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

const createGroup = `-- name: CreateGroup :exec
INSERT INTO "groups" (id, version, tenant_id, name, description, created_at, updated_at)
VALUES (?, 0, ?, ?, ?, ?, ?)
`

type CreateGroupParams struct {
	ID          string
	TenantID    string
	Name        string
	Description sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateGroup(ctx context.Context, arg CreateGroupParams) error {
	_, err := q.db.ExecContext(ctx, createGroup,
		arg.ID,
		arg.TenantID,
		arg.Name,
		arg.Description,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getGroupByID = `-- name: GetGroupByID :one
SELECT ` + groupColumns + ` FROM "groups" g WHERE g.id = ?
`

func (q *Queries) GetGroupByID(ctx context.Context, id string) (Group, error) {
	return scanGroup(q.db.QueryRowContext(ctx, getGroupByID, id))
}

const getGroupByName = `-- name: GetGroupByName :one
SELECT ` + groupColumns + ` FROM "groups" g WHERE g.tenant_id = ? AND g.name = ?
`

func (q *Queries) GetGroupByName(ctx context.Context, tenantID, name string) (Group, error) {
	return scanGroup(q.db.QueryRowContext(ctx, getGroupByName, tenantID, name))
}

const listGroupsByTenant = `-- name: ListGroupsByTenant :many
SELECT ` + groupColumns + ` FROM "groups" g WHERE g.tenant_id = ? ORDER BY g.name
`

func (q *Queries) ListGroupsByTenant(ctx context.Context, tenantID string) ([]Group, error) {
	return q.queryGroups(ctx, listGroupsByTenant, tenantID)
}

const listGroupsContaining = `-- name: ListGroupsContaining :many
SELECT ` + groupColumns + `
FROM "groups" g JOIN group_member m ON m.group_id = g.id
WHERE g.tenant_id = ? AND m.member_type = ? AND m.member_name = ?
ORDER BY g.name
`

type ListGroupsContainingParams struct {
	TenantID   string
	MemberType string
	MemberName string
}

func (q *Queries) ListGroupsContaining(ctx context.Context, arg ListGroupsContainingParams) ([]Group, error) {
	return q.queryGroups(ctx, listGroupsContaining, arg.TenantID, arg.MemberType, arg.MemberName)
}

const updateGroup = `-- name: UpdateGroup :execrows
UPDATE "groups"
SET description = ?, updated_at = ?, version = version + 1
WHERE id = ? AND version = ?
`

type UpdateGroupParams struct {
	Description sql.NullString
	UpdatedAt   time.Time
	ID          string
	Version     int64
}

func (q *Queries) UpdateGroup(ctx context.Context, arg UpdateGroupParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateGroup,
		arg.Description,
		arg.UpdatedAt,
		arg.ID,
		arg.Version,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getGroupVersion = `-- name: GetGroupVersion :one
SELECT version FROM "groups" WHERE id = ?
`

func (q *Queries) GetGroupVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := q.db.QueryRowContext(ctx, getGroupVersion, id).Scan(&version)
	return version, err
}

const deleteGroup = `-- name: DeleteGroup :execrows
DELETE FROM "groups" WHERE id = ?
`

func (q *Queries) DeleteGroup(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteGroup, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listGroupMembers = `-- name: ListGroupMembers :many
SELECT group_id, member_type, member_name
FROM group_member
WHERE group_id = ?
ORDER BY member_type DESC, member_name
`

func (q *Queries) ListGroupMembers(ctx context.Context, groupID string) ([]GroupMember, error) {
	return q.queryGroupMembers(ctx, listGroupMembers, groupID)
}

const listGroupMembersByTenant = `-- name: ListGroupMembersByTenant :many
SELECT m.group_id, m.member_type, m.member_name
FROM group_member m JOIN "groups" g ON g.id = m.group_id
WHERE g.tenant_id = ?
ORDER BY m.member_type DESC, m.member_name
`

func (q *Queries) ListGroupMembersByTenant(ctx context.Context, tenantID string) ([]GroupMember, error) {
	return q.queryGroupMembers(ctx, listGroupMembersByTenant, tenantID)
}

func (q *Queries) queryGroupMembers(ctx context.Context, query string, args ...interface{}) ([]GroupMember, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GroupMember
	for rows.Next() {
		var i GroupMember
		if err := rows.Scan(&i.GroupID, &i.MemberType, &i.MemberName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const addGroupMember = `-- name: AddGroupMember :exec
INSERT INTO group_member (group_id, member_type, member_name) VALUES (?, ?, ?)
`

func (q *Queries) AddGroupMember(ctx context.Context, arg GroupMember) error {
	_, err := q.db.ExecContext(ctx, addGroupMember, arg.GroupID, arg.MemberType, arg.MemberName)
	return err
}

const deleteGroupMembers = `-- name: DeleteGroupMembers :exec
DELETE FROM group_member WHERE group_id = ?
`

func (q *Queries) DeleteGroupMembers(ctx context.Context, groupID string) error {
	_, err := q.db.ExecContext(ctx, deleteGroupMembers, groupID)
	return err
}

const bumpGroupsContaining = `-- name: BumpGroupsContaining :exec
UPDATE "groups"
SET version = version + 1, updated_at = ?
WHERE tenant_id = ?
  AND id IN (SELECT group_id FROM group_member WHERE member_type = ? AND member_name = ?)
`

type BumpGroupsContainingParams struct {
	UpdatedAt  time.Time
	TenantID   string
	MemberType string
	MemberName string
}

func (q *Queries) BumpGroupsContaining(ctx context.Context, arg BumpGroupsContainingParams) error {
	_, err := q.db.ExecContext(ctx, bumpGroupsContaining, arg.UpdatedAt, arg.TenantID, arg.MemberType, arg.MemberName)
	return err
}

const bumpRolesContaining = `-- name: BumpRolesContaining :exec
UPDATE role
SET version = version + 1, updated_at = ?
WHERE tenant_id = ?
  AND group_id IN (SELECT group_id FROM group_member WHERE member_type = ? AND member_name = ?)
`

type BumpRolesContainingParams struct {
	UpdatedAt  time.Time
	TenantID   string
	MemberType string
	MemberName string
}

func (q *Queries) BumpRolesContaining(ctx context.Context, arg BumpRolesContainingParams) error {
	_, err := q.db.ExecContext(ctx, bumpRolesContaining, arg.UpdatedAt, arg.TenantID, arg.MemberType, arg.MemberName)
	return err
}

const deleteMemberEverywhere = `-- name: DeleteMemberEverywhere :execrows
DELETE FROM group_member
WHERE member_type = ? AND member_name = ?
  AND group_id IN (SELECT id FROM "groups" WHERE tenant_id = ?)
`

type DeleteMemberEverywhereParams struct {
	MemberType string
	MemberName string
	TenantID   string
}

func (q *Queries) DeleteMemberEverywhere(ctx context.Context, arg DeleteMemberEverywhereParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteMemberEverywhere, arg.MemberType, arg.MemberName, arg.TenantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
