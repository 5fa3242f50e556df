package gen

import (
	"database/sql"
	"time"
)

type Tenant struct {
	ID          string
	Version     int64
	Uuid        string
	Name        string
	Description sql.NullString
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Invitation struct {
	ID          string
	TenantID    string
	Identifier  string
	Description string
	ValidFrom   sql.NullTime
	Until       sql.NullTime
}

type User struct {
	ID        string
	Version   int64
	TenantID  string
	Username  string
	Password  string
	Enabled   bool
	StartDate sql.NullTime
	EndDate   sql.NullTime
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Person struct {
	ID                 string
	FirstName          string
	LastName           string
	EmailAddress       string
	StreetName         sql.NullString
	BuildingNumber     sql.NullString
	PostalCode         sql.NullString
	City               sql.NullString
	StateProvince      sql.NullString
	CountryCode        sql.NullString
	PrimaryTelephone   sql.NullString
	SecondaryTelephone sql.NullString
}

type Group struct {
	ID          string
	Version     int64
	TenantID    string
	Name        string
	Description sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GroupMember struct {
	GroupID    string
	MemberType string
	MemberName string
}

type Role struct {
	ID              string
	Version         int64
	TenantID        string
	Name            string
	Description     string
	SupportsNesting bool
	GroupID         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
