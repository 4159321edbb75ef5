// Package guard decides whether a request may see a protected page.
//
// Decide is a pure function of the session inputs and a Requirement; the
// middleware re-evaluates it on every request, so a role change or sign-out
// takes effect on the next navigation.
package guard

import (
	"net/url"
	"strings"

	"github.com/tripnest/tripnest/internal/identity"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// Outcome is the guard state for one evaluation.
type Outcome uint8

const (
	Resolving Outcome = iota
	Unauthenticated
	Forbidden
	Authorized
	// Unavailable means the session could not be checked because the
	// backend failed. The user is not sent to login.
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Resolving:
		return "resolving"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Authorized:
		return "authorized"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}

// Requirement configures a guarded subtree. An empty Roles set admits any
// authenticated user. Fallback is where forbidden requests go; "/" when
// empty.
type Requirement struct {
	Roles    identity.RoleSet
	Fallback string
}

// Require admits the listed roles.
func Require(roles ...identity.Role) Requirement {
	return Requirement{Roles: identity.NewRoleSet(roles...)}
}

// SignedIn admits any authenticated user.
func SignedIn() Requirement { return Requirement{} }

// ForPrefix admits the roles the capability table grants prefix.
func ForPrefix(prefix string) Requirement {
	return Requirement{Roles: identity.RolesFor(prefix)}
}

// WithFallback returns a copy of req that sends forbidden requests to path.
func (req Requirement) WithFallback(path string) Requirement {
	req.Fallback = path
	return req
}

func (req Requirement) fallback() string {
	if f := SafeNext(req.Fallback); f != "" {
		return f
	}
	return "/"
}

// Inputs are the session facts a decision depends on. Path is the
// requested path including any query. Failed means resolving the persisted
// token failed for a reason other than rejection.
type Inputs struct {
	Loading       bool
	Failed        bool
	Authenticated bool
	Role          identity.Role
	Path          string
}

// Decision is the outcome and, for Unauthenticated and Forbidden, where to
// send the browser. Redirect is empty when the target is the current page.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// Decide evaluates req against in.
func Decide(in Inputs, req Requirement) Decision {
	switch {
	case in.Loading:
		return Decision{Outcome: Resolving}
	case !in.Authenticated && in.Failed:
		return Decision{Outcome: Unavailable}
	case !in.Authenticated:
		return redirect(Unauthenticated, LoginURL(in.Path), in.Path)
	case !req.Roles.Empty() && !req.Roles.Has(in.Role):
		return redirect(Forbidden, req.fallback(), in.Path)
	}
	return Decision{Outcome: Authorized}
}

func redirect(o Outcome, target, current string) Decision {
	if samePage(target, current) {
		return Decision{Outcome: o}
	}
	return Decision{Outcome: o, Redirect: target}
}

func samePage(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.TrimSuffix(ua.Path, "/") == strings.TrimSuffix(ub.Path, "/")
}

// LoginURL is the login page carrying next as the return path. An unsafe
// or empty next is dropped.
func LoginURL(next string) string {
	next = SafeNext(next)
	if next == "" || samePage(next, LoginPath) {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"next": {next}}.Encode()
}

// SafeNext returns next if it is a local absolute path, or "" otherwise.
// Absolute URLs, protocol-relative URLs and backslash tricks are rejected.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || next[0] != '/' {
		return ""
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return ""
	}
	if strings.ContainsAny(next, "\\\r\n\t") {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return ""
	}
	return u.RequestURI()
}
