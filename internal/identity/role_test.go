package identity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tripnest/tripnest/internal/identity"
)

func TestParseRole(t *testing.T) {
	cases := map[string]identity.Role{
		"PLATFORM_ADMIN": identity.RolePlatformAdmin,
		"platform-staff": identity.RolePlatformStaff,
		"agency-admin":   identity.RoleAgencyAdmin,
		" AGENCY_STAFF ": identity.RoleAgencyStaff,
		"AGENCY_USER":    identity.RoleAgencyStaff,
		"customer":       identity.RoleCustomer,
	}
	for in, want := range cases {
		got, err := identity.ParseRole(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "ROOT", "agency"} {
		_, err := identity.ParseRole(in)
		require.ErrorIs(t, err, identity.ErrUnknownRole, in)
	}
}

func TestRoleJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Role identity.Role `json:"role"`
	}{identity.RoleAgencyAdmin})
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"AGENCY_ADMIN"}`, string(b))

	var out struct {
		Role identity.Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"agency-staff"}`), &out))
	require.Equal(t, identity.RoleAgencyStaff, out.Role)

	require.Error(t, json.Unmarshal([]byte(`{"role":"nope"}`), &out))
}

func TestScopesAndHome(t *testing.T) {
	require.Equal(t, "/admin", identity.RolePlatformAdmin.HomePath())
	require.Equal(t, "/admin", identity.RolePlatformStaff.HomePath())
	require.Equal(t, "/agency", identity.RoleAgencyAdmin.HomePath())
	require.Equal(t, "/agency", identity.RoleAgencyStaff.HomePath())
	require.Equal(t, "/", identity.RoleCustomer.HomePath())

	require.True(t, identity.RoleAgencyStaff.IsAgencyScoped())
	require.False(t, identity.RolePlatformAdmin.IsAgencyScoped())
	require.True(t, identity.RoleCustomer.SelfRegistrable())
	require.False(t, identity.RoleAgencyAdmin.SelfRegistrable())
}

func TestRoleSet(t *testing.T) {
	s := identity.NewRoleSet(identity.RoleAgencyAdmin, identity.RoleAgencyStaff, identity.RoleUnknown)

	require.True(t, s.Has(identity.RoleAgencyAdmin))
	require.False(t, s.Has(identity.RoleCustomer))
	require.False(t, s.Has(identity.RoleUnknown))
	require.Equal(t, []identity.Role{identity.RoleAgencyAdmin, identity.RoleAgencyStaff}, s.Roles())
	require.Equal(t, "AGENCY_ADMIN,AGENCY_STAFF", s.String())
	require.True(t, identity.RoleSet(0).Empty())
}

func TestCapabilityMap(t *testing.T) {
	require.Equal(t, identity.NewRoleSet(identity.RolePlatformAdmin, identity.RolePlatformStaff), identity.RolesFor("/admin"))
	require.Equal(t, identity.NewRoleSet(identity.RolePlatformAdmin), identity.RolesFor("/admin/invites"))
	require.Equal(t, identity.NewRoleSet(identity.RoleAgencyAdmin), identity.RolesFor("/agency/invites"))
	require.True(t, identity.RolesFor("/packages").Empty())

	cases := []struct {
		role identity.Role
		path string
		want bool
	}{
		{identity.RolePlatformStaff, "/admin", true},
		{identity.RolePlatformStaff, "/admin/invites", false},
		{identity.RolePlatformStaff, "/admin/invites/inv_1/revoke", false},
		{identity.RolePlatformAdmin, "/admin/invites", true},
		{identity.RoleAgencyStaff, "/agency/bookings", true},
		{identity.RoleAgencyStaff, "/agency/invites", false},
		{identity.RoleAgencyAdmin, "/admin", false},
		{identity.RoleCustomer, "/account", true},
		{identity.RoleCustomer, "/agency", false},
		{identity.RoleCustomer, "/packages", true},
		{identity.RoleCustomer, "/administrator", true},
		{identity.RoleUnknown, "/account", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, identity.CanAccess(tc.role, tc.path), "%s %s", tc.role, tc.path)
	}

	p, ok := identity.GuardedPrefix("/admin/invites/abc")
	require.True(t, ok)
	require.Equal(t, "/admin/invites", p)
}
