package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/notifier"
)

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middlewares into a single handler.
// The middlewares are applied in the order they are passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// contextKey is a custom type to avoid key collisions in context.
type contextKey string

const (
	requestIDKey contextKey = "requestID"

	RequestIDHeader = "X-Request-ID"
	CoachHeader     = "X-Coach-Password"
)

// requestIDMiddleware keeps the caller's request id or assigns a new one, and
// echoes it back.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the id assigned by requestIDMiddleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// paramsMiddleware handles common query parameters like 'verbose' and 'dry_run'.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("incoming request", "method", r.Method, "url", r.URL.String(), "requestID", RequestID(r.Context()))
		// Handle 'verbose' for request-scoped verbose logging.
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}

		// Handle 'dry_run' and add it to the request context.
		ctx := notifier.WithDryRun(r.Context(), r.URL.Query().Get("dry_run") == "true")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// coachMiddleware gates the coach feature set behind the shared password.
// An empty password locks every write.
func coachMiddleware(password string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(CoachHeader)
			if password == "" || subtle.ConstantTimeCompare([]byte(given), []byte(password)) != 1 {
				log.Warn("Rejected coach request", "method", r.Method, "url", r.URL.Path, "requestID", RequestID(r.Context()))
				http.Error(w, "Coach password required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
