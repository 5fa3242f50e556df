package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
)

type invitationsRepo struct {
	q querier
}

func scanInvitation(row scannable) (domain.Invitation, error) {
	var inv domain.Invitation
	var from, until *time.Time
	if err := row.Scan(&inv.ID, &inv.Identifier, &inv.Description, &from, &until); err != nil {
		return domain.Invitation{}, err
	}
	inv.Validity = domain.Validity{From: utcPtr(from), Until: utcPtr(until)}
	return inv, nil
}

func (r *invitationsRepo) ListInvitations(ctx context.Context, tenantID string) ([]domain.Invitation, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, identifier, description, valid_from, until
		 FROM invitation WHERE tenant_id = $1 ORDER BY identifier`, tenantID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanInvitation)
}

func (r *invitationsRepo) UpsertInvitation(ctx context.Context, tenantID string, inv domain.Invitation) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO invitation (id, tenant_id, identifier, description, valid_from, until)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (tenant_id, identifier) DO UPDATE
		 SET description = EXCLUDED.description, valid_from = EXCLUDED.valid_from, until = EXCLUDED.until`,
		inv.ID, tenantID, inv.Identifier, inv.Description, utcPtr(inv.Validity.From), utcPtr(inv.Validity.Until))
	return mapWriteErr(err)
}

func (r *invitationsRepo) DeleteInvitationsExcept(ctx context.Context, tenantID string, keep []string) error {
	if keep == nil {
		keep = []string{}
	}
	_, err := r.q.Exec(ctx,
		`DELETE FROM invitation WHERE tenant_id = $1 AND NOT (identifier = ANY($2))`,
		tenantID, keep)
	return err
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM invitation WHERE until IS NOT NULL AND until < $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
