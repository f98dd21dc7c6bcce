package middleware

import (
	"net/http"

	"github.com/hyperterse/querygate/core/infrastructure/auth"
	"github.com/hyperterse/querygate/core/infrastructure/transport/http/handlers"
	sharedctx "github.com/hyperterse/querygate/core/shared/context"
)

// Authenticate rejects requests without a valid bearer token with 401 and
// stores the authenticated caller in the request context
func Authenticate(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	h := handlers.NewBaseHandler("auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := authenticator.AuthenticateHeader(r.Header.Get("Authorization"))
			if err != nil {
				h.WriteUnauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(sharedctx.WithCaller(r.Context(), caller)))
		})
	}
}
