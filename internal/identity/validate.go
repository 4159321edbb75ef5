package identity

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted anywhere.
const MinPasswordLength = 8

// CheckPassword applies the password policy: at least MinPasswordLength
// characters with an upper-case letter, a lower-case letter and a digit.
func CheckPassword(pw string) error {
	var upper, lower, digit bool
	for _, c := range pw {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		}
	}

	var missing []string
	if !upper {
		missing = append(missing, "an upper-case letter")
	}
	if !lower {
		missing = append(missing, "a lower-case letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}

	switch {
	case len([]rune(pw)) < MinPasswordLength:
		return FieldErrors{"password": fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	case len(missing) > 0:
		return FieldErrors{"password": "must contain " + strings.Join(missing, ", ")}
	}
	return nil
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,18}[0-9]$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their form name, falling back to json.
		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name, _, _ := strings.Cut(sf.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return sf.Name
		})

		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			_, err := ParseRole(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return CheckPassword(fl.Field().String()) == nil
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})

		validate = v
	})
	return validate
}

// Validate runs the struct's `validate` tags and returns field messages
// keyed by form name, or nil.
func Validate(s any) FieldErrors {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg := validationMessage(fe.Tag(), fe.Param())
		if fe.Tag() == "password" {
			pw, _ := fe.Value().(string)
			var pe FieldErrors
			if errors.As(CheckPassword(pw), &pe) {
				msg = pe["password"]
			}
		}
		out[fe.Field()] = msg
	}
	return out
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "eqfield":
		return "does not match"
	case "role":
		return "must be a known role"
	case "phone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	}
	if param != "" {
		return fmt.Sprintf("failed %s validation (%s)", rule, param)
	}
	return "failed " + rule + " validation"
}

// NormalizeEmail lower-cases and trims an address for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
