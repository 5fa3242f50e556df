// Package validx wraps go-playground/validator with the identity rules used
// across the domain: person names, telephones, emails and country codes.
package validx

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	firstNamePattern   = regexp.MustCompile(`^[A-Z][a-z]*$`)
	lastNamePattern    = regexp.MustCompile(`^[a-zA-Z'][ a-zA-Z'-]*[a-zA-Z']?$`)
	emailPattern       = regexp.MustCompile(`^\w+([-+.']\w+)*@\w+([-.]\w+)*\.\w+([-.]\w+)*$`)
	telephonePattern   = regexp.MustCompile(`^((\(\d{3}\))|(\d{3}-))\d{3}-\d{4}$`)
	countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)
)

var (
	once     sync.Once
	validate *validator.Validate
)

// FieldError is a single field validation failure.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, fe := range v {
		if fe.Param != "" {
			parts[i] = fe.Field + " failed on " + fe.Tag + "=" + fe.Param
		} else {
			parts[i] = fe.Field + " failed on " + fe.Tag
		}
	}
	return strings.Join(parts, "; ")
}

// Fields renders the failures as field -> rule, for API error bodies.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		rule := fe.Tag
		if fe.Param != "" {
			rule += "=" + fe.Param
		}
		out[fe.Field] = rule
	}
	return out
}

// Struct validates s against its `validate` tags. Failures come back as
// ValidationErrors; anything else (e.g. a non-struct argument) is returned as is.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, FieldError{
			Field: fieldPath(fe.Namespace()),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}

// Var validates a single value against tag, reporting failures under field.
func Var(field string, value any, tag string) error {
	err := instance().Var(value, tag)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, FieldError{Field: field, Tag: fe.Tag(), Param: fe.Param()})
	}
	return failures
}

// RegisterValidation exposes underlying validator custom rules.
func RegisterValidation(tag string, fn validator.Func) error {
	return instance().RegisterValidation(tag, fn)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		for tag, re := range map[string]*regexp.Regexp{
			"firstname":   firstNamePattern,
			"lastname":    lastNamePattern,
			"emailaddr":   emailPattern,
			"telephone":   telephonePattern,
			"countrycode": countryCodePattern,
		} {
			if err := validate.RegisterValidation(tag, matches(re)); err != nil {
				panic(err)
			}
		}
	})
	return validate
}
