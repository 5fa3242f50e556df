package http

import (
	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/pkg/iamsdk"
)

func toTenant(t domain.Tenant) iamsdk.Tenant {
	return iamsdk.Tenant{
		ID:          t.ID,
		UUID:        t.UUID,
		Name:        t.Name,
		Description: t.Description,
		Enabled:     t.Enabled,
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toInvitation(d domain.InvitationDescriptor) iamsdk.Invitation {
	return iamsdk.Invitation{
		TenantID:    d.TenantID,
		Identifier:  d.Identifier,
		Description: d.Description,
		From:        d.From,
		Until:       d.Until,
	}
}

func toUser(u domain.User) iamsdk.User {
	return iamsdk.User{
		ID:         u.ID,
		TenantID:   u.TenantID,
		Username:   u.Username,
		Enablement: toEnablement(u.Enablement),
		Name:       toName(u.Person.Name),
		Contact:    toContact(u.Person.Contact),
		Version:    u.Version,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toEnablement(e domain.Enablement) iamsdk.Enablement {
	return iamsdk.Enablement{Enabled: e.Enabled, Start: e.Start, End: e.End}
}

func fromEnablement(e iamsdk.Enablement) (domain.Enablement, error) {
	return domain.NewEnablement(e.Enabled, e.Start, e.End)
}

func toName(n domain.FullName) iamsdk.Name {
	return iamsdk.Name{First: n.First, Last: n.Last}
}

func fromName(n iamsdk.Name) domain.FullName {
	return domain.FullName{First: n.First, Last: n.Last}
}

func toContact(c domain.ContactInformation) iamsdk.Contact {
	out := iamsdk.Contact{
		Email:              c.Email,
		PrimaryTelephone:   c.PrimaryTelephone,
		SecondaryTelephone: c.SecondaryTelephone,
	}
	if a := c.Address; a != nil {
		out.Address = &iamsdk.Address{
			Street:         a.Street,
			BuildingNumber: a.BuildingNumber,
			PostalCode:     a.PostalCode,
			City:           a.City,
			StateProvince:  a.StateProvince,
			CountryCode:    a.CountryCode,
		}
	}
	return out
}

func fromContact(c iamsdk.Contact) domain.ContactInformation {
	out := domain.ContactInformation{
		Email:              c.Email,
		PrimaryTelephone:   c.PrimaryTelephone,
		SecondaryTelephone: c.SecondaryTelephone,
	}
	if a := c.Address; a != nil {
		out.Address = &domain.PostalAddress{
			Street:         a.Street,
			BuildingNumber: a.BuildingNumber,
			PostalCode:     a.PostalCode,
			City:           a.City,
			StateProvince:  a.StateProvince,
			CountryCode:    a.CountryCode,
		}
	}
	return out
}

func toMembers(ms []domain.GroupMember) []iamsdk.Member {
	out := make([]iamsdk.Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, iamsdk.Member{Type: string(m.Type), Name: m.Name})
	}
	return out
}

func toGroup(g domain.Group) iamsdk.Group {
	return iamsdk.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Members:     toMembers(g.Members),
		Version:     g.Version,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// toRole flattens the backing group into the role's member list.
func toRole(r domain.Role) iamsdk.Role {
	return iamsdk.Role{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		SupportsNesting: r.SupportsNesting,
		Members:         toMembers(r.Group.Members),
		Version:         r.Version,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
