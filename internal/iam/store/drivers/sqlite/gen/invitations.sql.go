package gen

import (
	"context"
	"database/sql"
	"time"
)

const listInvitationsByTenant = `-- name: ListInvitationsByTenant :many
SELECT id, tenant_id, identifier, description, valid_from, until
FROM invitation
WHERE tenant_id = ?
ORDER BY identifier
`

func (q *Queries) ListInvitationsByTenant(ctx context.Context, tenantID string) ([]Invitation, error) {
	rows, err := q.db.QueryContext(ctx, listInvitationsByTenant, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Invitation
	for rows.Next() {
		var i Invitation
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.Identifier,
			&i.Description,
			&i.ValidFrom,
			&i.Until,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertInvitation = `-- name: UpsertInvitation :exec
INSERT INTO invitation (id, tenant_id, identifier, description, valid_from, until)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (tenant_id, identifier) DO UPDATE
SET description = excluded.description,
    valid_from = excluded.valid_from,
    until = excluded.until
`

type UpsertInvitationParams struct {
	ID          string
	TenantID    string
	Identifier  string
	Description string
	ValidFrom   sql.NullTime
	Until       sql.NullTime
}

func (q *Queries) UpsertInvitation(ctx context.Context, arg UpsertInvitationParams) error {
	_, err := q.db.ExecContext(ctx, upsertInvitation,
		arg.ID,
		arg.TenantID,
		arg.Identifier,
		arg.Description,
		arg.ValidFrom,
		arg.Until,
	)
	return err
}

const deleteInvitation = `-- name: DeleteInvitation :exec
DELETE FROM invitation WHERE tenant_id = ? AND identifier = ?
`

func (q *Queries) DeleteInvitation(ctx context.Context, tenantID, identifier string) error {
	_, err := q.db.ExecContext(ctx, deleteInvitation, tenantID, identifier)
	return err
}

const deleteExpiredInvitations = `-- name: DeleteExpiredInvitations :execrows
DELETE FROM invitation WHERE until IS NOT NULL AND until < ?
`

func (q *Queries) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpiredInvitations, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
