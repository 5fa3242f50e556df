package domain

import (
	"slices"
	"time"

	"github.com/aussiebroadwan/iam/pkg/idx"
	"github.com/aussiebroadwan/iam/pkg/validx"
)

// Tenant is the isolation boundary every other entity is scoped to. ID is
// the internal row key; UUID is the stable external identifier.
type Tenant struct {
	ID          string       `json:"id"`
	UUID        string       `json:"uuid" validate:"required,uuid"`
	Name        string       `json:"name" validate:"required,max=70"`
	Description string       `json:"description,omitempty" validate:"max=255"`
	Enabled     bool         `json:"enabled"`
	Version     int64        `json:"version"`
	Invitations []Invitation `json:"invitations,omitempty" validate:"dive"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTenant returns an unsaved tenant with fresh identifiers.
func NewTenant(name, description string, enabled bool) (Tenant, error) {
	t := Tenant{
		ID:          idx.New().String(),
		UUID:        idx.NewUUID(),
		Name:        name,
		Description: description,
		Enabled:     enabled,
	}
	if err := t.Validate(); err != nil {
		return Tenant{}, err
	}
	return t, nil
}

// Validate checks field constraints and every invitation window.
func (t Tenant) Validate() error {
	if err := validx.Struct(t); err != nil {
		return err
	}
	for _, inv := range t.Invitations {
		if err := inv.Validity.Check(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tenant) Activate()   { t.Enabled = true }
func (t *Tenant) Deactivate() { t.Enabled = false }

// OfferInvitation opens a new, open-ended invitation described by
// description. It fails with ErrInvitationExists when an invitation already
// answering to description is currently available.
func (t *Tenant) OfferInvitation(description string, now time.Time) (Invitation, error) {
	available, err := t.IsRegistrationAvailableThrough(description, now)
	if err != nil {
		return Invitation{}, err
	}
	if available {
		return Invitation{}, ErrInvitationExists
	}
	if err := validx.Var("description", description, "required,max=255"); err != nil {
		return Invitation{}, err
	}

	inv := Invitation{
		ID:          idx.New().String(),
		Identifier:  idx.NewUUID(),
		Description: description,
	}
	t.Invitations = append(t.Invitations, inv)
	return inv, nil
}

// RedefineInvitation replaces the validity window of an invitation.
func (t *Tenant) RedefineInvitation(identifier string, validity Validity) (Invitation, error) {
	if err := t.assertActive(); err != nil {
		return Invitation{}, err
	}
	if err := validity.Check(); err != nil {
		return Invitation{}, err
	}

	i := t.invitationIndex(identifier)
	if i < 0 {
		return Invitation{}, ErrInvitationNotFound
	}
	t.Invitations[i].Validity = validity
	return t.Invitations[i], nil
}

// WithdrawInvitation removes an invitation.
func (t *Tenant) WithdrawInvitation(identifier string) error {
	if err := t.assertActive(); err != nil {
		return err
	}

	i := t.invitationIndex(identifier)
	if i < 0 {
		return ErrInvitationNotFound
	}
	t.Invitations = slices.Delete(t.Invitations, i, i+1)
	return nil
}

// Invitation looks an invitation up by identifier or description.
func (t Tenant) Invitation(identifier string) (Invitation, bool) {
	if i := t.invitationIndex(identifier); i >= 0 {
		return t.Invitations[i], true
	}
	return Invitation{}, false
}

// AvailableInvitations lists the invitations redeemable at now.
func (t Tenant) AvailableInvitations(now time.Time) ([]InvitationDescriptor, error) {
	return t.invitationsWhere(true, now)
}

// UnavailableInvitations lists the invitations not redeemable at now.
func (t Tenant) UnavailableInvitations(now time.Time) ([]InvitationDescriptor, error) {
	return t.invitationsWhere(false, now)
}

// IsRegistrationAvailableThrough reports whether an invitation answering to
// identifier is redeemable at now.
func (t Tenant) IsRegistrationAvailableThrough(identifier string, now time.Time) (bool, error) {
	if err := t.assertActive(); err != nil {
		return false, err
	}
	inv, ok := t.Invitation(identifier)
	return ok && inv.IsAvailableAt(now), nil
}

func (t Tenant) invitationsWhere(available bool, now time.Time) ([]InvitationDescriptor, error) {
	if err := t.assertActive(); err != nil {
		return nil, err
	}

	out := make([]InvitationDescriptor, 0, len(t.Invitations))
	for _, inv := range t.Invitations {
		if inv.IsAvailableAt(now) == available {
			out = append(out, inv.Descriptor(t.UUID))
		}
	}
	return out, nil
}

func (t Tenant) invitationIndex(identifier string) int {
	return slices.IndexFunc(t.Invitations, func(inv Invitation) bool {
		return inv.IsIdentifiedBy(identifier)
	})
}

func (t Tenant) assertActive() error {
	if !t.Enabled {
		return ErrTenantNotActive
	}
	return nil
}
