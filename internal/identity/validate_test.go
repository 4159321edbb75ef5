package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tripnest/tripnest/internal/identity"
)

func TestCheckPassword(t *testing.T) {
	require.NoError(t, identity.CheckPassword("Abcdef12"))
	require.NoError(t, identity.CheckPassword("Sunny-Beach-2026"))

	rejects := map[string]string{
		"Abc12":     "at least 8",
		"abcdefg12": "upper-case",
		"ABCDEFG12": "lower-case",
		"Abcdefghi": "digit",
		"":          "at least 8",
	}
	for pw, msg := range rejects {
		var fe identity.FieldErrors
		require.ErrorAs(t, identity.CheckPassword(pw), &fe, pw)
		require.Contains(t, fe["password"], msg, pw)
	}
}

type signupForm struct {
	Name     string `form:"name" validate:"required,max=120"`
	Email    string `form:"email" validate:"required,email"`
	Phone    string `form:"phone" validate:"omitempty,phone"`
	Role     string `form:"role" validate:"required,role"`
	Password string `form:"password" validate:"required,password"`
	Confirm  string `form:"confirm_password" validate:"eqfield=Password"`
}

func TestValidate(t *testing.T) {
	ok := signupForm{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "+1234567890",
		Role:     "customer",
		Password: "Abcdef12",
		Confirm:  "Abcdef12",
	}
	require.Nil(t, identity.Validate(ok))

	bad := signupForm{
		Email:    "not-an-email",
		Phone:    "call me",
		Role:     "ROOT",
		Password: "abcdefgh",
		Confirm:  "different",
	}
	fe := identity.Validate(bad)
	require.Equal(t, "is required", fe["name"])
	require.Equal(t, "must be a valid email address", fe["email"])
	require.Equal(t, "must be a valid phone number", fe["phone"])
	require.Equal(t, "must be a known role", fe["role"])
	require.Contains(t, fe["password"], "upper-case")
	require.Equal(t, "does not match", fe["confirm_password"])
	require.Error(t, fe.OrNil())
}

func TestFieldErrorsMerge(t *testing.T) {
	var fe identity.FieldErrors
	fe = fe.Merge(identity.FieldErrors{"email": "taken"})
	fe = fe.Merge(identity.FieldErrors{"email": "other", "name": "is required"})

	require.Equal(t, identity.FieldErrors{"email": "taken", "name": "is required"}, fe)
	require.Equal(t, "validation failed: email: taken; name: is required", fe.Error())
	require.NoError(t, identity.FieldErrors{}.OrNil())
}
