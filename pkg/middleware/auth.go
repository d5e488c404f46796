package middleware

import (
	"errors"
	"net/http"
	"strings"

	"wanderlust/pkg/auth"
	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// Authentication resolves a Bearer token into a principal on the request
// context. Requests without an Authorization header continue anonymously;
// routes that need a caller wrap their handler in RequireUser. A header that
// is present but invalid is always rejected.
func Authentication(verifier TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeJSONError(w, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid authorization header format")
				return
			}

			principal, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				log.Warn("Rejected session token",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				msg := "Invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "Session expired, please log in again"
				}
				writeJSONError(w, http.StatusUnauthorized, apperrors.CodeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireUser rejects anonymous callers before the route handler runs.
func RequireUser(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, apperrors.CodeUnauthorized, "You must be logged in")
			return
		}
		h(w, r, ps)
	}
}
