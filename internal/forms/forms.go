// Package forms validates the dashboard's forms before anything is sent to
// the backend.
package forms

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a form field name to the message shown next to it.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, k := range slices.Sorted(maps.Keys(e)) {
		parts = append(parts, k+": "+e[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "strongpassword", func(fl validator.FieldLevel) bool { return StrongPassword(fl.Field().String()) })
	mustRegister(v, "digits", func(fl validator.FieldLevel) bool { return allDigits(fl.Field().String()) })
	mustRegister(v, "positive", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && f > 0
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("forms: register %q: %v", tag, err))
	}
}

// Validate checks form against its struct tags. It returns nil or Errors.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

// fieldMessages overrides the generic text for a field and rule.
var fieldMessages = map[string]string{
	"email.email":                "Invalid email format",
	"password.strongpassword":    "Password must contain at least one lowercase letter, one uppercase letter, one digit, one special character, and be at least 6 characters long",
	"password.min":               "Password must be at least 6 characters",
	"phone.digits":               "Phone must be a valid number",
	"specialization.required_if": "Specialization is required for workers",
	"isActive.required":          "Active status is required",
	"price.positive":             "Price must be a positive number",
	"productLink.url":            "Product link must be a valid URL",
	"subCategoryId.required":     "Subcategory is required",
}

func message(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required", "required_if":
		return label + " is required"
	case "oneof":
		return "Invalid " + strings.ToLower(label) + " selected"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "numeric":
		return label + " must be a number"
	}
	return label + " is invalid"
}

// humanize turns "firstName" into "First name".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PasswordSpecials are the special characters a strong password may use.
const PasswordSpecials = "@$!%?&#"

// StrongPassword reports whether s is 6 to 100 characters drawn from
// letters, digits and PasswordSpecials, with at least one of each kind
// including both letter cases.
func StrongPassword(s string) bool {
	if len(s) < 6 || len(s) > 100 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func field(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// yesNo reads the Yes/No select used for isActive.
func yesNo(s string) bool { return strings.EqualFold(s, "yes") || s == "true" }
