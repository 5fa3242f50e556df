package sqlite

import (
	"context"
	"slices"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store/drivers/sqlite/gen"
)

type invitationsRepo struct {
	q *gen.Queries
}

func (r *invitationsRepo) ListInvitations(ctx context.Context, tenantID string) ([]domain.Invitation, error) {
	rows, err := r.q.ListInvitationsByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	invitations := make([]domain.Invitation, len(rows))
	for i, row := range rows {
		invitations[i] = mapInvitation(row)
	}
	return invitations, nil
}

func (r *invitationsRepo) UpsertInvitation(ctx context.Context, tenantID string, inv domain.Invitation) error {
	return mapWriteErr(r.q.UpsertInvitation(ctx, gen.UpsertInvitationParams{
		ID:          inv.ID,
		TenantID:    tenantID,
		Identifier:  inv.Identifier,
		Description: inv.Description,
		ValidFrom:   mapOptionalTime(inv.Validity.From),
		Until:       mapOptionalTime(inv.Validity.Until),
	}))
}

func (r *invitationsRepo) DeleteInvitationsExcept(ctx context.Context, tenantID string, keep []string) error {
	rows, err := r.q.ListInvitationsByTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if slices.Contains(keep, row.Identifier) {
			continue
		}
		if err := r.q.DeleteInvitation(ctx, tenantID, row.Identifier); err != nil {
			return err
		}
	}
	return nil
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredInvitations(ctx, now.UTC())
}
