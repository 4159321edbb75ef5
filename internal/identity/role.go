package identity

import (
	"fmt"
	"slices"
	"strings"
)

// Role is one of the fixed platform roles.
type Role uint8

const (
	RoleUnknown Role = iota
	RolePlatformAdmin
	RolePlatformStaff
	RoleAgencyAdmin
	RoleAgencyStaff
	RoleCustomer
)

// AllRoles in display order.
var AllRoles = []Role{RolePlatformAdmin, RolePlatformStaff, RoleAgencyAdmin, RoleAgencyStaff, RoleCustomer}

var roleNames = [...]string{
	RoleUnknown:       "",
	RolePlatformAdmin: "PLATFORM_ADMIN",
	RolePlatformStaff: "PLATFORM_STAFF",
	RoleAgencyAdmin:   "AGENCY_ADMIN",
	RoleAgencyStaff:   "AGENCY_STAFF",
	RoleCustomer:      "CUSTOMER",
}

// roleAliases are legacy spellings still sent by older clients.
var roleAliases = map[string]Role{
	"AGENCY_USER": RoleAgencyStaff,
}

// ParseRole accepts the canonical wire form (AGENCY_ADMIN), the kebab-case
// form (agency-admin) and known aliases.
func ParseRole(s string) (Role, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	if norm == "" {
		return RoleUnknown, fmt.Errorf("%w: empty", ErrUnknownRole)
	}
	for r, name := range roleNames {
		if r != int(RoleUnknown) && name == norm {
			return Role(r), nil
		}
	}
	if r, ok := roleAliases[norm]; ok {
		return r, nil
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// MustParseRole is ParseRole for constants.
func MustParseRole(s string) Role {
	r, err := ParseRole(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return ""
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r > RoleUnknown && r <= RoleCustomer }

// Label is the human form used in page copy.
func (r Role) Label() string {
	switch r {
	case RolePlatformAdmin:
		return "Platform admin"
	case RolePlatformStaff:
		return "Platform staff"
	case RoleAgencyAdmin:
		return "Agency admin"
	case RoleAgencyStaff:
		return "Agency staff"
	case RoleCustomer:
		return "Customer"
	}
	return "Unknown"
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scope groups roles by the breadth of their authority.
type Scope uint8

const (
	ScopeNone Scope = iota
	ScopePlatform
	ScopeAgency
	ScopeCustomer
)

func (r Role) Scope() Scope {
	switch r {
	case RolePlatformAdmin, RolePlatformStaff:
		return ScopePlatform
	case RoleAgencyAdmin, RoleAgencyStaff:
		return ScopeAgency
	case RoleCustomer:
		return ScopeCustomer
	}
	return ScopeNone
}

// IsAgencyScoped reports whether r must carry an agency id.
func (r Role) IsAgencyScoped() bool { return r.Scope() == ScopeAgency }

// HomePath is where a freshly signed-in user of role r lands.
func (r Role) HomePath() string {
	switch r.Scope() {
	case ScopePlatform:
		return "/admin"
	case ScopeAgency:
		return "/agency"
	}
	return "/"
}

// SelfRegistrable reports whether r may be chosen on the public sign-up
// form. Every other role is reachable through an invitation only.
func (r Role) SelfRegistrable() bool { return r == RoleCustomer }

// RoleSet is an immutable set of roles. The zero value is empty.
type RoleSet uint8

// NewRoleSet builds a set from roles; unknown roles are ignored.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		if r.Valid() {
			s |= 1 << r
		}
	}
	return s
}

func (s RoleSet) Has(r Role) bool { return r.Valid() && s&(1<<r) != 0 }
func (s RoleSet) Empty() bool     { return s == 0 }

// Union returns s ∪ o.
func (s RoleSet) Union(o RoleSet) RoleSet { return s | o }

// Roles lists the members in AllRoles order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(AllRoles))
	for _, r := range s.Roles() {
		names = append(names, r.String())
	}
	return strings.Join(names, ",")
}

// capabilityTable lists the route prefixes each role may enter. "/account"
// is open to every signed-in user.
var capabilityTable = map[Role][]string{
	RolePlatformAdmin: {"/admin", "/admin/invites", "/account"},
	RolePlatformStaff: {"/admin", "/account"},
	RoleAgencyAdmin:   {"/agency", "/agency/invites", "/account"},
	RoleAgencyStaff:   {"/agency", "/account"},
	RoleCustomer:      {"/account"},
}

var (
	// prefixRoles is the inverse of capabilityTable.
	prefixRoles = map[string]RoleSet{}
	// guardedPrefixes is sorted longest first so the first match is the
	// most specific one.
	guardedPrefixes []string
)

func init() {
	for role, prefixes := range capabilityTable {
		for _, p := range prefixes {
			if _, seen := prefixRoles[p]; !seen {
				guardedPrefixes = append(guardedPrefixes, p)
			}
			prefixRoles[p] = prefixRoles[p].Union(NewRoleSet(role))
		}
	}
	slices.SortFunc(guardedPrefixes, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
}

// AllowedPrefixes returns the route prefixes r may enter.
func AllowedPrefixes(r Role) []string {
	return slices.Clone(capabilityTable[r])
}

// RolesFor returns the roles admitted under prefix, or an empty set if the
// prefix is not guarded.
func RolesFor(prefix string) RoleSet {
	return prefixRoles[prefix]
}

// GuardedPrefix returns the most specific guarded prefix covering path.
func GuardedPrefix(path string) (string, bool) {
	for _, p := range guardedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return p, true
		}
	}
	return "", false
}

// CanAccess reports whether r may view path. Paths outside every guarded
// prefix are public.
func CanAccess(r Role, path string) bool {
	p, ok := GuardedPrefix(path)
	if !ok {
		return true
	}
	return prefixRoles[p].Has(r)
}
