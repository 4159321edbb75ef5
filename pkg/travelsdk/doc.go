/*
Package travelsdk is the client for the TripNest platform REST API.

Every call the web tier makes to the backend goes through this package, and
every failure comes back as a *Error whose Kind is one of a small, fixed
taxonomy. Callers compare with errors.Is against the exported sentinels:

	_, err := client.Login(ctx, email, password)
	switch {
	case errors.Is(err, travelsdk.ErrInvalidCredentials):
		// wrong email or password
	case errors.Is(err, travelsdk.ErrRequestFailed):
		// network or 5xx, safe to offer a retry
	}

# SDKClient vs Session

SDKClient performs the unauthenticated calls (login, register, invitation
verification and completion). A Session wraps a bearer token and performs
the authenticated ones:

	client := travelsdk.NewSDKClient("http://localhost:8081")
	auth, err := client.Login(ctx, "admin@tripnest.test", "Sunny2026")
	sess := client.NewSession(auth.Token)
	me, err := sess.Me(ctx)

A Session reports 401 responses through its OnUnauthorized hook so that the
owner of the token can drop it.

# Cancellation

All calls honour their context. A cancelled call returns the context's error
unchanged rather than a *Error, so callers can tell "the user went away"
apart from "the backend failed".
*/
package travelsdk
