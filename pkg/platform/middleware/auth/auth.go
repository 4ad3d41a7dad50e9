package auth

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"clubgate/pkg/domain"
	request "clubgate/pkg/platform/middleware/request"
	"clubgate/pkg/requestcontext"
)

// SessionVerifier validates bearer session tokens and returns their verified
// claims. Implementations live in internal/sessiontoken.
type SessionVerifier interface {
	Verify(tokenString string) (*SessionClaims, error)
}

// SessionClaims represents the claims the middleware needs from a verified
// session token. Role is already normalized to the closed domain set.
type SessionClaims struct {
	Subject string
	Role    domain.Role
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// RequireRole returns middleware enforcing a verified bearer session token
// whose role claim is in the allowed set. Missing or malformed headers and
// failed verification yield 401; a verified but underprivileged role yields
// 403. Verified subject and role are injected into the request context.
func RequireRole(verifier SessionVerifier, logger *slog.Logger, allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if !slices.Contains(allowed, claims.Role) {
				logger.WarnContext(ctx, "forbidden access - insufficient role",
					"role", claims.Role.String(),
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Insufficient role for this operation")
				return
			}

			ctx = requestcontext.WithSubject(ctx, claims.Subject)
			ctx = requestcontext.WithRole(ctx, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
