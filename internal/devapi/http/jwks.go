package http

import (
	"net/http"

	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/jwtx"
)

// JWKSHandler publishes the session-token verification keys.
//
//	@Summary		Get JWKS
//	@Description	Public keys for verifying session tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
