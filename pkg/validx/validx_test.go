package validx_test

import (
	"testing"

	"github.com/aussiebroadwan/iam/pkg/validx"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Email string `json:"email" validate:"required,max=255,emailaddr"`
	Phone string `json:"phone,omitempty" validate:"omitempty,min=5,max=20,telephone"`
}

type person struct {
	First   string  `json:"first_name" validate:"required,max=50,firstname"`
	Last    string  `json:"last_name" validate:"required,max=50,lastname"`
	Country string  `json:"country_code" validate:"countrycode"`
	Contact contact `json:"contact"`
}

func validPerson() person {
	return person{
		First:   "Zoe",
		Last:    "O'Brien-Smith",
		Country: "AU",
		Contact: contact{Email: "zoe.obrien@example.com.au", Phone: "(555)123-4567"},
	}
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()
	require.NoError(t, validx.Struct(validPerson()))
}

func TestStruct_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edit  func(p *person)
		field string
		tag   string
	}{
		{"lower case first name", func(p *person) { p.First = "zoe" }, "first_name", "firstname"},
		{"digits in last name", func(p *person) { p.Last = "Sm1th" }, "last_name", "lastname"},
		{"missing first name", func(p *person) { p.First = "" }, "first_name", "required"},
		{"lower country", func(p *person) { p.Country = "au" }, "country_code", "countrycode"},
		{"bad email", func(p *person) { p.Contact.Email = "zoe-at-example" }, "contact.email", "emailaddr"},
		{"bad telephone", func(p *person) { p.Contact.Phone = "5551234567" }, "contact.phone", "telephone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPerson()
			tt.edit(&p)

			err := validx.Struct(p)
			var ve validx.ValidationErrors
			require.ErrorAs(t, err, &ve)
			require.Len(t, ve, 1)
			require.Equal(t, tt.field, ve[0].Field)
			require.Equal(t, tt.tag, ve[0].Tag)
			require.Equal(t, tt.tag, ve.Fields()[tt.field])
		})
	}
}

func TestStruct_OptionalTelephone(t *testing.T) {
	t.Parallel()

	p := validPerson()
	p.Contact.Phone = ""
	require.NoError(t, validx.Struct(p))

	p.Contact.Phone = "555-123-4567"
	require.NoError(t, validx.Struct(p))
}

func TestVar(t *testing.T) {
	t.Parallel()

	require.NoError(t, validx.Var("name", "engineering", "required,max=70"))

	err := validx.Var("name", "", "required,max=70")
	var ve validx.ValidationErrors
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "name", ve[0].Field)
	require.Equal(t, "required", ve[0].Tag)
	require.Equal(t, "name failed on required", ve.Error())
}
