package testutil

import (
	"net/http"
	"time"

	"clubgate/pkg/domain"
	"clubgate/pkg/requestcontext"
)

// WithActor adds a verified subject and role to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithActor(req *http.Request, subject string, role domain.Role) *http.Request {
	ctx := requestcontext.WithSubject(req.Context(), subject)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithTime pins the request-scoped time for deterministic expiry arithmetic.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithClientIP adds client metadata to the request context.
func WithClientIP(req *http.Request, ip string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "testutil"))
}
