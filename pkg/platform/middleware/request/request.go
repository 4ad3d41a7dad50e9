// Package request provides request-ID middleware. Every request gets a stable
// correlation ID, honoring an inbound X-Request-ID from a trusted proxy.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"clubgate/pkg/requestcontext"
)

// HeaderRequestID is the header used to propagate correlation IDs.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns a correlation ID to each request and echoes it back in the
// response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		w.Header().Set(HeaderRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
