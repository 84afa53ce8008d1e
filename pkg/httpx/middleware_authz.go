package httpx

import "net/http"

// RequireModerator rejects the request unless the verified session carries
// the moderator flag. Must run after AuthnMiddleware.
func RequireModerator() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromCtx(r.Context())
			if !ok || !session.Moderator {
				WriteError(w, http.StatusForbidden, "not_authorized", "Moderator permissions required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
