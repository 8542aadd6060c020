package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// RequestIDContextKey is the key for storing the request id in context
const RequestIDContextKey ContextKey = "requestID"

// RequestIDHeader carries the request id back to the client
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logger returns a middleware that tags each request with an id and logs it on completion
func Logger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.Printf("%s %s %d %s [%s]", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond), requestID)
		})
	}
}

// GetRequestIDFromContext retrieves the request id from request context
func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDContextKey).(string)
	return id, ok
}
