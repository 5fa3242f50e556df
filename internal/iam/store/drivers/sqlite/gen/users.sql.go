package gen

import (
	"context"
	"database/sql"
	"time"
)

// UserPersonRow is a user joined with its person row.
type UserPersonRow struct {
	User   User
	Person Person
}

const userPersonColumns = `u.id, u.version, u.tenant_id, u.username, u.password, u.enabled, u.start_date, u.end_date, u.created_at, u.updated_at,
       p.id, p.first_name, p.last_name, p.email_address, p.street_name, p.building_number, p.postal_code,
       p.city, p.state_province, p.country_code, p.primary_telephone, p.secondary_telephone`

func scanUserPerson(row interface{ Scan(...any) error }) (UserPersonRow, error) {
	var i UserPersonRow
	err := row.Scan(
		&i.User.ID,
		&i.User.Version,
		&i.User.TenantID,
		&i.User.Username,
		&i.User.Password,
		&i.User.Enabled,
		&i.User.StartDate,
		&i.User.EndDate,
		&i.User.CreatedAt,
		&i.User.UpdatedAt,
		&i.Person.ID,
		&i.Person.FirstName,
		&i.Person.LastName,
		&i.Person.EmailAddress,
		&i.Person.StreetName,
		&i.Person.BuildingNumber,
		&i.Person.PostalCode,
		&i.Person.City,
		&i.Person.StateProvince,
		&i.Person.CountryCode,
		&i.Person.PrimaryTelephone,
		&i.Person.SecondaryTelephone,
	)
	return i, err
}

func (q *Queries) queryUserPersons(ctx context.Context, query string, args ...interface{}) ([]UserPersonRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []UserPersonRow
	for rows.Next() {
		i, err := scanUserPerson(rows)
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

const createUser = `-- name: CreateUser :exec
INSERT INTO users (id, version, tenant_id, username, password, enabled, start_date, end_date, created_at, updated_at)
VALUES (?, 0, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateUserParams struct {
	ID        string
	TenantID  string
	Username  string
	Password  string
	Enabled   bool
	StartDate sql.NullTime
	EndDate   sql.NullTime
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID,
		arg.TenantID,
		arg.Username,
		arg.Password,
		arg.Enabled,
		arg.StartDate,
		arg.EndDate,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const createPerson = `-- name: CreatePerson :exec
INSERT INTO person (
    id, first_name, last_name, email_address, street_name, building_number, postal_code,
    city, state_province, country_code, primary_telephone, secondary_telephone
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreatePerson(ctx context.Context, arg Person) error {
	_, err := q.db.ExecContext(ctx, createPerson,
		arg.ID,
		arg.FirstName,
		arg.LastName,
		arg.EmailAddress,
		arg.StreetName,
		arg.BuildingNumber,
		arg.PostalCode,
		arg.City,
		arg.StateProvince,
		arg.CountryCode,
		arg.PrimaryTelephone,
		arg.SecondaryTelephone,
	)
	return err
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userPersonColumns + `
FROM users u JOIN person p ON p.id = u.id
WHERE u.id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id string) (UserPersonRow, error) {
	return scanUserPerson(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT ` + userPersonColumns + `
FROM users u JOIN person p ON p.id = u.id
WHERE u.tenant_id = ? AND u.username = ?
`

func (q *Queries) GetUserByUsername(ctx context.Context, tenantID, username string) (UserPersonRow, error) {
	return scanUserPerson(q.db.QueryRowContext(ctx, getUserByUsername, tenantID, username))
}

const listUsersByTenant = `-- name: ListUsersByTenant :many
SELECT ` + userPersonColumns + `
FROM users u JOIN person p ON p.id = u.id
WHERE u.tenant_id = ?
ORDER BY u.username
`

func (q *Queries) ListUsersByTenant(ctx context.Context, tenantID string) ([]UserPersonRow, error) {
	return q.queryUserPersons(ctx, listUsersByTenant, tenantID)
}

const findSimilarlyNamedUsers = `-- name: FindSimilarlyNamedUsers :many
SELECT ` + userPersonColumns + `
FROM users u JOIN person p ON p.id = u.id
WHERE u.tenant_id = ?1
  AND substr(p.first_name, 1, length(?2)) = ?2
  AND substr(p.last_name, 1, length(?3)) = ?3
ORDER BY p.last_name, p.first_name, u.username
`

type FindSimilarlyNamedUsersParams struct {
	TenantID        string
	FirstNamePrefix string
	LastNamePrefix  string
}

// FindSimilarlyNamedUsers matches raw, case-sensitive name prefixes. LIKE
// is avoided because SQLite folds ASCII case there.
func (q *Queries) FindSimilarlyNamedUsers(ctx context.Context, arg FindSimilarlyNamedUsersParams) ([]UserPersonRow, error) {
	return q.queryUserPersons(ctx, findSimilarlyNamedUsers, arg.TenantID, arg.FirstNamePrefix, arg.LastNamePrefix)
}

const updateUser = `-- name: UpdateUser :execrows
UPDATE users
SET password = ?, enabled = ?, start_date = ?, end_date = ?, updated_at = ?, version = version + 1
WHERE id = ? AND version = ?
`

type UpdateUserParams struct {
	Password  string
	Enabled   bool
	StartDate sql.NullTime
	EndDate   sql.NullTime
	UpdatedAt time.Time
	ID        string
	Version   int64
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUser,
		arg.Password,
		arg.Enabled,
		arg.StartDate,
		arg.EndDate,
		arg.UpdatedAt,
		arg.ID,
		arg.Version,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updatePerson = `-- name: UpdatePerson :exec
UPDATE person
SET first_name = ?, last_name = ?, email_address = ?, street_name = ?, building_number = ?,
    postal_code = ?, city = ?, state_province = ?, country_code = ?,
    primary_telephone = ?, secondary_telephone = ?
WHERE id = ?
`

func (q *Queries) UpdatePerson(ctx context.Context, arg Person) error {
	_, err := q.db.ExecContext(ctx, updatePerson,
		arg.FirstName,
		arg.LastName,
		arg.EmailAddress,
		arg.StreetName,
		arg.BuildingNumber,
		arg.PostalCode,
		arg.City,
		arg.StateProvince,
		arg.CountryCode,
		arg.PrimaryTelephone,
		arg.SecondaryTelephone,
		arg.ID,
	)
	return err
}

const getUserVersion = `-- name: GetUserVersion :one
SELECT version FROM users WHERE id = ?
`

func (q *Queries) GetUserVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := q.db.QueryRowContext(ctx, getUserVersion, id).Scan(&version)
	return version, err
}

const deleteUser = `-- name: DeleteUser :execrows
DELETE FROM users WHERE id = ?
`

func (q *Queries) DeleteUser(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
