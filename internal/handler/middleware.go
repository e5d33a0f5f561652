package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// callerIDKey is the context key the verified caller identity is
// stored under.
type callerIDKey struct{}

// CallerID returns the verified caller identity attached to the
// request context, or "" when the request is anonymous.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerIDKey{}).(string)
	return id
}

// WithCallerID attaches a caller identity to a context. Exposed for tests.
func WithCallerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerIDKey{}, id)
}

// IdentityMiddleware extracts the externally verified caller identity
// from the configured header. The upstream authorizer is trusted to
// have validated it; these handlers never re-validate.
func IdentityMiddleware(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get(header); id != "" {
				r = r.WithContext(WithCallerID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware mirrors the permissive CORS policy of the API: every
// response carries wildcard CORS headers, and preflight requests are
// answered directly.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", "OPTIONS,GET,POST,PUT,DELETE")
		h.Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Sunset-User-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request in the access-log style.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
