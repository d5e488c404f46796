package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/logger"
)

// Recovery turns a handler panic into a 500. http.ErrAbortHandler is
// re-raised so the server can drop the connection.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}

				log.Error("Handler panicked",
					"request_id", RequestIDFromContext(r.Context()),
					"user_id", UserIDFromContext(r.Context()),
					"route", r.Method+" "+r.URL.Path,
					"panic", p,
					"stack", string(debug.Stack()),
				)
				writeJSONError(w, http.StatusInternalServerError, apperrors.CodeInternal, "Internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
