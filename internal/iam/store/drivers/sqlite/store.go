package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/internal/iam/store/drivers/sqlite/gen"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

// NewStore opens the database at dsn. SQLite allows a single writer, so the
// pool is capped at one connection; this also keeps ":memory:" databases
// shared across calls. Code running inside WithTx must only use the Tx it
// was handed.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Rollback after a successful commit is a no-op returning ErrTxDone.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Tenants() store.Tenants         { return &tenantsRepo{q: s.q} }
func (s *Store) Invitations() store.Invitations { return &invitationsRepo{q: s.q} }
func (s *Store) Users() store.Users             { return &usersRepo{q: s.q} }
func (s *Store) Groups() store.Groups           { return &groupsRepo{q: s.q} }
func (s *Store) Roles() store.Roles             { return &rolesRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapWriteErr turns constraint violations into store sentinels. A missing
// parent row surfaces as ErrNotFound.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}

	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return store.ErrNotFound
		}
	}
	return err
}

// casResult interprets the affected row count of a versioned update.
func casResult(ctx context.Context, affected int64, version int64, probe func(context.Context, string) (int64, error), id string) (int64, error) {
	if affected == 1 {
		return version + 1, nil
	}
	if _, err := probe(ctx, id); err != nil {
		return 0, mapNotFound(err)
	}
	return 0, store.ErrVersionConflict
}

func deleteResult(affected int64, err error) error {
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

// Times are stored in UTC so text comparisons in SQL order correctly.
func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func mapTenant(row gen.Tenant) domain.Tenant {
	return domain.Tenant{
		ID:          row.ID,
		UUID:        row.Uuid,
		Name:        row.Name,
		Description: mapNullString(row.Description),
		Enabled:     row.Enabled,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func mapInvitation(row gen.Invitation) domain.Invitation {
	return domain.Invitation{
		ID:          row.ID,
		Identifier:  row.Identifier,
		Description: row.Description,
		Validity: domain.Validity{
			From:  mapNullTimePtr(row.ValidFrom),
			Until: mapNullTimePtr(row.Until),
		},
	}
}

func mapUser(row gen.UserPersonRow) domain.User {
	p := row.Person
	return domain.User{
		ID:           row.User.ID,
		TenantID:     row.User.TenantID,
		Username:     row.User.Username,
		PasswordHash: row.User.Password,
		Enablement: domain.Enablement{
			Enabled: row.User.Enabled,
			Start:   mapNullTimePtr(row.User.StartDate),
			End:     mapNullTimePtr(row.User.EndDate),
		},
		Person: domain.Person{
			Name: domain.FullName{First: p.FirstName, Last: p.LastName},
			Contact: domain.ContactInformation{
				Email: p.EmailAddress,
				Address: domain.PostalAddressFrom(
					mapNullStringPtr(p.StreetName),
					mapNullStringPtr(p.BuildingNumber),
					mapNullStringPtr(p.PostalCode),
					mapNullStringPtr(p.City),
					mapNullStringPtr(p.StateProvince),
					mapNullStringPtr(p.CountryCode),
				),
				PrimaryTelephone:   mapNullString(p.PrimaryTelephone),
				SecondaryTelephone: mapNullString(p.SecondaryTelephone),
			},
		},
		Version:   row.User.Version,
		CreatedAt: row.User.CreatedAt.UTC(),
		UpdatedAt: row.User.UpdatedAt.UTC(),
	}
}

func mapPersonRow(u domain.User) gen.Person {
	p := gen.Person{
		ID:                 u.ID,
		FirstName:          u.Person.Name.First,
		LastName:           u.Person.Name.Last,
		EmailAddress:       u.Person.Contact.Email,
		PrimaryTelephone:   mapStringNull(u.Person.Contact.PrimaryTelephone),
		SecondaryTelephone: mapStringNull(u.Person.Contact.SecondaryTelephone),
	}
	if a := u.Person.Contact.Address; a != nil {
		p.StreetName = mapStringNull(a.Street)
		p.BuildingNumber = mapStringNull(a.BuildingNumber)
		p.PostalCode = mapStringNull(a.PostalCode)
		p.City = mapStringNull(a.City)
		p.StateProvince = mapStringNull(a.StateProvince)
		p.CountryCode = mapStringNull(a.CountryCode)
	}
	return p
}

func mapGroup(row gen.Group, members []gen.GroupMember) domain.Group {
	g := domain.Group{
		ID:          row.ID,
		TenantID:    row.TenantID,
		Name:        row.Name,
		Description: mapNullString(row.Description),
		Members:     make([]domain.GroupMember, 0, len(members)),
		Version:     row.Version,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	for _, m := range members {
		g.Members = append(g.Members, domain.GroupMember{
			Type: domain.MemberType(m.MemberType),
			Name: m.MemberName,
		})
	}
	return g
}

func mapRole(row gen.Role, group domain.Group) domain.Role {
	return domain.Role{
		ID:              row.ID,
		TenantID:        row.TenantID,
		Name:            row.Name,
		Description:     row.Description,
		SupportsNesting: row.SupportsNesting,
		Group:           group,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}
