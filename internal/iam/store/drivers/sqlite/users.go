package sqlite

import (
	"context"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

// CreateUser writes both rows; callers run it in a transaction so a failed
// person insert leaves no user behind.
func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Username:  u.Username,
		Password:  u.PasswordHash,
		Enabled:   u.Enablement.Enabled,
		StartDate: mapOptionalTime(u.Enablement.Start),
		EndDate:   mapOptionalTime(u.Enablement.End),
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	})
	if err != nil {
		return mapWriteErr(err)
	}
	return mapWriteErr(r.q.CreatePerson(ctx, mapPersonRow(u)))
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, tenantID, username string) (domain.User, error) {
	row, err := r.q.GetUserByUsername(ctx, tenantID, username)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) ListUsers(ctx context.Context, tenantID string) ([]domain.User, error) {
	rows, err := r.q.ListUsersByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return mapUsers(rows), nil
}

func (r *usersRepo) FindSimilarlyNamedUsers(ctx context.Context, tenantID, firstPrefix, lastPrefix string) ([]domain.User, error) {
	rows, err := r.q.FindSimilarlyNamedUsers(ctx, gen.FindSimilarlyNamedUsersParams{
		TenantID:        tenantID,
		FirstNamePrefix: firstPrefix,
		LastNamePrefix:  lastPrefix,
	})
	if err != nil {
		return nil, err
	}
	return mapUsers(rows), nil
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) (int64, error) {
	affected, err := r.q.UpdateUser(ctx, gen.UpdateUserParams{
		Password:  u.PasswordHash,
		Enabled:   u.Enablement.Enabled,
		StartDate: mapOptionalTime(u.Enablement.Start),
		EndDate:   mapOptionalTime(u.Enablement.End),
		UpdatedAt: u.UpdatedAt.UTC(),
		ID:        u.ID,
		Version:   u.Version,
	})
	if err != nil {
		return 0, mapWriteErr(err)
	}

	version, err := casResult(ctx, affected, u.Version, r.q.GetUserVersion, u.ID)
	if err != nil {
		return 0, err
	}
	if err := r.q.UpdatePerson(ctx, mapPersonRow(u)); err != nil {
		return 0, mapWriteErr(err)
	}
	return version, nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	return deleteResult(r.q.DeleteUser(ctx, id))
}

func mapUsers(rows []gen.UserPersonRow) []domain.User {
	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = mapUser(row)
	}
	return users
}
