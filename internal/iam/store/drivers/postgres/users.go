package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `u.id, u.version, u.tenant_id, u.username, u.password, u.enabled, u.start_date, u.end_date,
       u.created_at, u.updated_at, p.first_name, p.last_name, p.email_address, p.street_name,
       p.building_number, p.postal_code, p.city, p.state_province, p.country_code,
       p.primary_telephone, p.secondary_telephone`

const userFrom = ` FROM users u JOIN person p ON p.id = u.id`

func scanUser(row scannable) (domain.User, error) {
	var (
		u                                     domain.User
		start, end                            *time.Time
		street, building, postal, city, state *string
		country, phone1, phone2               *string
	)
	err := row.Scan(
		&u.ID, &u.Version, &u.TenantID, &u.Username, &u.PasswordHash, &u.Enablement.Enabled,
		&start, &end, &u.CreatedAt, &u.UpdatedAt,
		&u.Person.Name.First, &u.Person.Name.Last, &u.Person.Contact.Email,
		&street, &building, &postal, &city, &state, &country, &phone1, &phone2,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Enablement.Start = utcPtr(start)
	u.Enablement.End = utcPtr(end)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	u.Person.Contact.Address = domain.PostalAddressFrom(street, building, postal, city, state, country)
	u.Person.Contact.PrimaryTelephone = deref(phone1)
	u.Person.Contact.SecondaryTelephone = deref(phone2)
	return u, nil
}

// personArgs returns the person columns after id, in table order.
func personArgs(u domain.User) []any {
	c := u.Person.Contact
	var a domain.PostalAddress
	if c.Address != nil {
		a = *c.Address
	}
	return []any{
		u.Person.Name.First, u.Person.Name.Last, c.Email,
		nullIfEmpty(a.Street), nullIfEmpty(a.BuildingNumber), nullIfEmpty(a.PostalCode),
		nullIfEmpty(a.City), nullIfEmpty(a.StateProvince), nullIfEmpty(a.CountryCode),
		nullIfEmpty(c.PrimaryTelephone), nullIfEmpty(c.SecondaryTelephone),
	}
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO users (id, version, tenant_id, username, password, enabled, start_date, end_date, created_at, updated_at)
		 VALUES ($1, 0, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.TenantID, u.Username, u.PasswordHash, u.Enablement.Enabled,
		utcPtr(u.Enablement.Start), utcPtr(u.Enablement.End), u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		return mapWriteErr(err)
	}

	_, err = r.q.Exec(ctx,
		`INSERT INTO person (id, first_name, last_name, email_address, street_name, building_number,
		                     postal_code, city, state_province, country_code, primary_telephone, secondary_telephone)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		append([]any{u.ID}, personArgs(u)...)...)
	return mapWriteErr(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+userFrom+` WHERE u.id = $1`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, tenantID, username string) (domain.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+userFrom+` WHERE u.tenant_id = $1 AND u.username = $2`, tenantID, username))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context, tenantID string) ([]domain.User, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+userColumns+userFrom+` WHERE u.tenant_id = $1 ORDER BY u.username`, tenantID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *usersRepo) FindSimilarlyNamedUsers(ctx context.Context, tenantID, firstPrefix, lastPrefix string) ([]domain.User, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+userColumns+userFrom+`
		 WHERE u.tenant_id = $1 AND p.first_name LIKE $2 AND p.last_name LIKE $3
		 ORDER BY p.last_name, p.first_name, u.username`,
		tenantID, likeEscaper.Replace(firstPrefix)+"%", likeEscaper.Replace(lastPrefix)+"%")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE users
		 SET password = $1, enabled = $2, start_date = $3, end_date = $4, updated_at = $5, version = version + 1
		 WHERE id = $6 AND version = $7`,
		u.PasswordHash, u.Enablement.Enabled, utcPtr(u.Enablement.Start), utcPtr(u.Enablement.End),
		u.UpdatedAt.UTC(), u.ID, u.Version)
	if err != nil {
		return 0, mapWriteErr(err)
	}

	version, err := casResult(ctx, r.q, tag, "users", u.ID, u.Version)
	if err != nil {
		return 0, err
	}

	_, err = r.q.Exec(ctx,
		`UPDATE person
		 SET first_name = $2, last_name = $3, email_address = $4, street_name = $5, building_number = $6,
		     postal_code = $7, city = $8, state_province = $9, country_code = $10,
		     primary_telephone = $11, secondary_telephone = $12
		 WHERE id = $1`,
		append([]any{u.ID}, personArgs(u)...)...)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return version, nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	return execExpectOne(r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}
