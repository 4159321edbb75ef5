package httpx

import (
	"context"

	"github.com/tripnest/tripnest/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyRole     ctxKey = "role"
	CtxKeyAgencyID ctxKey = "agency_id"
	CtxKeyClaims   ctxKey = "claims"
)

// UserID returns the authenticated subject, if any.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyUserID).(string)
	return v
}

// Role returns the authenticated role claim, if any.
func Role(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyRole).(string)
	return v
}

// ClaimsFromContext returns the verified token claims.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// ContextWithClaims injects verified claims the same way AuthnMiddleware does.
func ContextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyAgencyID, c.AgencyID)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// WithSubject records who is calling for requests authenticated by other
// means than a bearer token, e.g. a session cookie.
func WithSubject(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	return context.WithValue(ctx, CtxKeyRole, role)
}
