package domain

// Person is the profile attached one-to-one to a User.
type Person struct {
	Name    FullName           `json:"name"`
	Contact ContactInformation `json:"contact"`
}

type FullName struct {
	First string `json:"first_name" validate:"required,max=50,firstname"`
	Last  string `json:"last_name" validate:"required,max=50,lastname"`
}

// Formatted returns "First Last".
func (n FullName) Formatted() string {
	return n.First + " " + n.Last
}

type ContactInformation struct {
	Email              string         `json:"email" validate:"required,max=255,emailaddr"`
	Address            *PostalAddress `json:"address,omitempty"`
	PrimaryTelephone   string         `json:"primary_telephone,omitempty" validate:"omitempty,min=5,max=20,telephone"`
	SecondaryTelephone string         `json:"secondary_telephone,omitempty" validate:"omitempty,min=5,max=20,telephone"`
}

type PostalAddress struct {
	Street         string `json:"street_name" validate:"required,max=150"`
	BuildingNumber string `json:"building_number,omitempty" validate:"omitempty,max=18"`
	PostalCode     string `json:"postal_code" validate:"required,max=10"`
	City           string `json:"city" validate:"required,max=35"`
	StateProvince  string `json:"state_province" validate:"required,max=18"`
	CountryCode    string `json:"country_code" validate:"required,len=2,countrycode"`
}

// PostalAddressFrom rebuilds an address from nullable columns. It returns nil
// unless street, postal code, city, state and country are all present.
func PostalAddressFrom(street, building, postalCode, city, state, country *string) *PostalAddress {
	if street == nil || postalCode == nil || city == nil || state == nil || country == nil {
		return nil
	}
	a := &PostalAddress{
		Street:        *street,
		PostalCode:    *postalCode,
		City:          *city,
		StateProvince: *state,
		CountryCode:   *country,
	}
	if building != nil {
		a.BuildingNumber = *building
	}
	return a
}
