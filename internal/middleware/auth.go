package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"journal/internal/auth"
	"journal/internal/httputil"
)

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// Disabled skips token verification and treats every request as DevUserID.
	Disabled  bool
	DevUserID string
}

// Authenticate resolves the caller from a Supabase bearer token. Requests
// without a token continue anonymously; requests with an invalid token are
// rejected with 401. Use RequireUser on routes that need a user.
func Authenticate(verifier auth.JWTVerifier, opts AuthOptions, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Disabled {
				next.ServeHTTP(w, httputil.WithUserID(r, opts.DevUserID))
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}
			if verifier == nil {
				logger.Error("bearer token received but no verifier is configured")
				httputil.RespondError(w, http.StatusUnauthorized, "authentication unavailable")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, httputil.WithUserID(r, claims.UserID()))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httputil.GetUserID(r) == "" {
			httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
