// Package session holds the signed-in identity of each browser session.
//
// A Store owns one session's State and changes it only by dispatching the
// actions below through Reduce. The only writers are startup resolution
// (Resolve) and the four user operations: Login, Register,
// CompleteOnboarding and Logout.
package session

import (
	"errors"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// Phase is the coarse session state.
type Phase uint8

const (
	// PhaseAnonymous has no identity. Token may still be set if resolving
	// it failed transiently; Err then says why.
	PhaseAnonymous Phase = iota
	// PhaseResolving is validating a persisted token. Authorization
	// decisions must wait.
	PhaseResolving
	// PhaseAuthenticated carries a User and its Token.
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseResolving:
		return "resolving"
	case PhaseAuthenticated:
		return "authenticated"
	}
	return "anonymous"
}

// State is an immutable snapshot of a session.
type State struct {
	Phase Phase
	User  *identity.User
	Token string
	Err   error
}

func (s State) IsLoading() bool       { return s.Phase == PhaseResolving }
func (s State) IsAuthenticated() bool { return s.Phase == PhaseAuthenticated && s.User != nil }

// IsUnavailable reports that the persisted token could not be checked
// because the backend failed. The token is kept and the next Resolve
// tries again.
func (s State) IsUnavailable() bool {
	return s.Phase == PhaseAnonymous && s.Token != "" && s.Err != nil
}

// Role is the user's role, or RoleUnknown when not signed in.
func (s State) Role() identity.Role {
	if !s.IsAuthenticated() {
		return identity.RoleUnknown
	}
	return s.User.Role
}

// Action is one of ResolveStarted, Resolved, ResolveFailed, SignedIn or
// SignedOut.
type Action interface{ action() }

type (
	// ResolveStarted begins validating the persisted token.
	ResolveStarted struct{}
	// Resolved completes validation with the token's user.
	Resolved struct{ User identity.User }
	// ResolveFailed ends validation without a user.
	ResolveFailed struct{ Err error }
	// SignedIn replaces the session after login, registration or
	// onboarding completion.
	SignedIn struct {
		Token string
		User  identity.User
	}
	// SignedOut clears the session on logout or token expiry.
	SignedOut struct{}
)

func (ResolveStarted) action() {}
func (Resolved) action()       {}
func (ResolveFailed) action()  {}
func (SignedIn) action()       {}
func (SignedOut) action()      {}

// Initial is the state of a session restored from a persisted token.
func Initial(token string) State {
	return Reduce(State{Token: token}, ResolveStarted{})
}

// Reduce is the session transition function. Resolution results that
// arrive after the session has moved on are ignored.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ResolveStarted:
		if s.Token == "" || s.Phase == PhaseAuthenticated {
			return s
		}
		return State{Phase: PhaseResolving, Token: s.Token}

	case Resolved:
		if s.Phase != PhaseResolving {
			return s
		}
		u := a.User
		return State{Phase: PhaseAuthenticated, User: &u, Token: s.Token}

	case ResolveFailed:
		if s.Phase != PhaseResolving {
			return s
		}
		// A rejected token is routine: forget it quietly. Anything else
		// keeps the token so a later request can try again.
		if a.Err == nil || errors.Is(a.Err, travelsdk.ErrUnauthenticated) {
			return State{Phase: PhaseAnonymous}
		}
		return State{Phase: PhaseAnonymous, Token: s.Token, Err: a.Err}

	case SignedIn:
		u := a.User
		return State{Phase: PhaseAuthenticated, User: &u, Token: a.Token}

	case SignedOut:
		return State{Phase: PhaseAnonymous}
	}
	return s
}
