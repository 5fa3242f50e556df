package domain

import "time"

// Invitation is a registration invitation offered by a tenant. It can be
// looked up by its identifier or by its description.
type Invitation struct {
	ID          string   `json:"id,omitempty"`
	Identifier  string   `json:"identifier" validate:"required,max=36"`
	Description string   `json:"description" validate:"required,max=255"`
	Validity    Validity `json:"validity"`
}

// IsIdentifiedBy matches s against the identifier or the description.
func (i Invitation) IsIdentifiedBy(s string) bool {
	return i.Identifier == s || i.Description == s
}

// IsAvailableAt reports whether the invitation can be redeemed at t.
func (i Invitation) IsAvailableAt(t time.Time) bool {
	return i.Validity.IsValidAt(t)
}

// InvitationDescriptor is the read model handed out for an invitation.
type InvitationDescriptor struct {
	TenantID    string     `json:"tenant_id"`
	Identifier  string     `json:"identifier"`
	Description string     `json:"description"`
	From        *time.Time `json:"from,omitempty"`
	Until       *time.Time `json:"until,omitempty"`
}

// Descriptor summarises i for the tenant with external identifier tenantUUID.
func (i Invitation) Descriptor(tenantUUID string) InvitationDescriptor {
	return InvitationDescriptor{
		TenantID:    tenantUUID,
		Identifier:  i.Identifier,
		Description: i.Description,
		From:        i.Validity.From,
		Until:       i.Validity.Until,
	}
}
