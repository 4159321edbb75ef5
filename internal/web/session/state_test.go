package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

func sampleUser() identity.User {
	return identity.User{ID: "usr_1", Email: "a@b.co", Role: identity.RoleCustomer, Status: identity.StatusActive}
}

func TestInitial(t *testing.T) {
	require.Equal(t, State{Phase: PhaseAnonymous}, Initial(""))

	st := Initial("tok")
	require.True(t, st.IsLoading())
	require.False(t, st.IsAuthenticated())
	require.Equal(t, "tok", st.Token)
	require.Equal(t, identity.RoleUnknown, st.Role())
}

func TestReduceSignedOutFromAnyState(t *testing.T) {
	u := sampleUser()
	states := map[string]State{
		"anonymous":      {},
		"resolving":      Initial("tok"),
		"authenticated":  {Phase: PhaseAuthenticated, User: &u, Token: "tok"},
		"failed-retains": {Phase: PhaseAnonymous, Token: "tok", Err: travelsdk.ErrRequestFailed},
	}
	for name, st := range states {
		t.Run(name, func(t *testing.T) {
			got := Reduce(st, SignedOut{})
			require.Equal(t, PhaseAnonymous, got.Phase)
			require.Nil(t, got.User)
			require.Empty(t, got.Token)
			require.NoError(t, got.Err)
		})
	}
}

func TestReduceResolution(t *testing.T) {
	u := sampleUser()

	t.Run("resolved authenticates", func(t *testing.T) {
		got := Reduce(Initial("tok"), Resolved{User: u})
		require.True(t, got.IsAuthenticated())
		require.Equal(t, "tok", got.Token)
		require.Equal(t, identity.RoleCustomer, got.Role())
	})

	t.Run("401 is a quiet sign-out", func(t *testing.T) {
		got := Reduce(Initial("tok"), ResolveFailed{Err: travelsdk.ErrUnauthenticated})
		require.Equal(t, State{Phase: PhaseAnonymous}, got)
		require.False(t, got.IsUnavailable())
	})

	t.Run("transient failure keeps the token", func(t *testing.T) {
		boom := errors.New("boom")
		got := Reduce(Initial("tok"), ResolveFailed{Err: boom})
		require.Equal(t, PhaseAnonymous, got.Phase)
		require.Equal(t, "tok", got.Token)
		require.ErrorIs(t, got.Err, boom)
		require.True(t, got.IsUnavailable())
		require.False(t, got.IsAuthenticated())

		retry := Reduce(got, ResolveStarted{})
		require.True(t, retry.IsLoading())
		require.False(t, retry.IsUnavailable())
		require.NoError(t, retry.Err)
	})

	t.Run("late results are ignored", func(t *testing.T) {
		signedIn := Reduce(Initial("old"), SignedIn{Token: "new", User: u})
		require.Equal(t, signedIn, Reduce(signedIn, Resolved{User: identity.User{ID: "other"}}))
		require.Equal(t, signedIn, Reduce(signedIn, ResolveFailed{Err: travelsdk.ErrUnauthenticated}))
		require.Equal(t, signedIn, Reduce(signedIn, ResolveStarted{}))
	})

	t.Run("nothing to resolve", func(t *testing.T) {
		require.Equal(t, State{}, Reduce(State{}, ResolveStarted{}))
	})
}

func TestUserFromWire(t *testing.T) {
	u, err := UserFromWire(agent("ana@sunny.travel"))
	require.NoError(t, err)
	require.Equal(t, identity.RoleAgencyStaff, u.Role)
	require.Equal(t, "agc_sunny", u.AgencyID)

	legacy := agent("ana@sunny.travel")
	legacy.Role = "AGENCY_USER"
	u, err = UserFromWire(legacy)
	require.NoError(t, err)
	require.Equal(t, identity.RoleAgencyStaff, u.Role)

	bad := agent("ana@sunny.travel")
	bad.AgencyID = ""
	_, err = UserFromWire(bad)
	require.Error(t, err)

	bad = agent("ana@sunny.travel")
	bad.Role = "PILOT"
	_, err = UserFromWire(bad)
	require.ErrorIs(t, err, identity.ErrUnknownRole)
}
