package domain

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/iam/pkg/cryptox"
	"github.com/aussiebroadwan/iam/pkg/idx"
	"github.com/aussiebroadwan/iam/pkg/validx"
)

// Enablement combines the enabled flag with an optional activity window.
type Enablement struct {
	Enabled bool       `json:"enabled"`
	Start   *time.Time `json:"start_date,omitempty"`
	End     *time.Time `json:"end_date,omitempty"`
}

// NewEnablement rejects a window that ends before it starts.
func NewEnablement(enabled bool, start, end *time.Time) (Enablement, error) {
	if start != nil && end != nil && start.After(*end) {
		return Enablement{}, ErrInvalidValidity
	}
	return Enablement{Enabled: enabled, Start: start, End: end}, nil
}

// IndefiniteEnablement is enabled with no window.
func IndefiniteEnablement() Enablement { return Enablement{Enabled: true} }

// IsTimeExpiredAt reports whether an enabled account is outside its window at t.
func (e Enablement) IsTimeExpiredAt(t time.Time) bool {
	if !e.Enabled {
		return false
	}
	if e.Start != nil && e.Start.After(t) {
		return true
	}
	return e.End != nil && e.End.Before(t)
}

// IsEnabledAt reports whether the account may be used at t.
func (e Enablement) IsEnabledAt(t time.Time) bool {
	return e.Enabled && !e.IsTimeExpiredAt(t)
}

// User is an account within a tenant. Two users are the same user when
// they share tenant and username.
type User struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id" validate:"required"`
	Username     string     `json:"username" validate:"required,max=255"`
	PasswordHash string     `json:"-" validate:"required"`
	Enablement   Enablement `json:"enablement"`
	Person       Person     `json:"person"`
	Version      int64      `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewUser builds an unsaved user, enforcing the password policy on password.
func NewUser(tenantID, username, password string, enablement Enablement, person Person) (User, error) {
	u := User{
		ID:         idx.New().String(),
		TenantID:   tenantID,
		Username:   username,
		Enablement: enablement,
		Person:     person,
	}
	if err := validx.Var("username", username, "required,max=255"); err != nil {
		return User{}, err
	}
	if err := u.protectPassword("", password); err != nil {
		return User{}, err
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// Validate checks field constraints including the person profile.
func (u User) Validate() error {
	if err := validx.Struct(u); err != nil {
		return err
	}
	if u.Enablement.Start != nil && u.Enablement.End != nil && u.Enablement.Start.After(*u.Enablement.End) {
		return ErrInvalidValidity
	}
	return nil
}

// ChangePassword replaces the password after confirming current.
func (u *User) ChangePassword(current, next string) error {
	if next == "" {
		return ErrPasswordRequired
	}
	if err := u.VerifyPassword(current); err != nil {
		return err
	}
	return u.protectPassword(current, next)
}

// VerifyPassword checks plain against the stored hash.
func (u User) VerifyPassword(plain string) error {
	err := cryptox.VerifyPassword(plain, u.PasswordHash)
	if errors.Is(err, cryptox.ErrPasswordMismatch) {
		return ErrPasswordNotVerified
	}
	return err
}

func (u *User) protectPassword(current, next string) error {
	switch {
	case next == "":
		return ErrPasswordRequired
	case next == current:
		return ErrPasswordUnchanged
	case cryptox.IsWeakPassword(next):
		return ErrPasswordWeak
	case next == u.Username:
		return ErrPasswordIsUsername
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) ChangePersonalName(name FullName) { u.Person.Name = name }

func (u *User) ChangeContactInformation(c ContactInformation) { u.Person.Contact = c }

func (u *User) DefineEnablement(e Enablement) { u.Enablement = e }

// IsEnabledAt reports whether the account may be used at t.
func (u User) IsEnabledAt(t time.Time) bool { return u.Enablement.IsEnabledAt(t) }

// Equal compares identity (tenant and username).
func (u User) Equal(o User) bool {
	return u.TenantID == o.TenantID && u.Username == o.Username
}

// AsMember returns the membership triple naming this user.
func (u User) AsMember() GroupMember {
	return GroupMember{Type: MemberUser, Name: u.Username}
}

// UserDescriptor is the minimal view handed out after authentication.
type UserDescriptor struct {
	TenantID string `json:"tenant_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Descriptor summarises u. tenantUUID is the tenant's external identifier.
func (u User) Descriptor(tenantUUID string) UserDescriptor {
	return UserDescriptor{
		TenantID: tenantUUID,
		Username: u.Username,
		Email:    u.Person.Contact.Email,
	}
}
