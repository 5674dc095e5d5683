// Package requestid carries a per-request correlation id through the
// context so handlers can echo it in error payloads and logs.
package requestid

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Middleware resolves the request id, preferring the x-request-id header,
// then chi's generated id, and minting a fresh UUID as a last resort. The id
// is injected into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("x-request-id")
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		next.ServeHTTP(w, r.WithContext(ToContext(r.Context(), requestID)))
	})
}

func ToContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// FromContext returns the request id or the empty string.
func FromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// FromContextPtr returns the request id or nil, matching the optional
// request_id field of the error payload.
func FromContextPtr(ctx context.Context) *string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return &requestID
	}
	return nil
}
