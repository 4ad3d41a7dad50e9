// Package sessiontoken verifies the HS256 session tokens issued by the
// platform's login flow. Verification normalizes the role claim: older tokens
// carry the role nested under app_metadata or user_metadata, newer ones carry
// a top-level role claim.
package sessiontoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"clubgate/pkg/domain"
	dErrors "clubgate/pkg/domain-errors"
	"clubgate/pkg/platform/middleware/auth"
)

// metadata is the legacy claim envelope some issuers nest the role under.
type metadata struct {
	Role string `json:"role,omitempty"`
}

// Claims represents the JWT claims for session tokens.
type Claims struct {
	Role         string    `json:"role,omitempty"`
	AppMetadata  *metadata `json:"app_metadata,omitempty"`
	UserMetadata *metadata `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// normalizedRole resolves the effective role claim. Precedence: top-level
// role, then app_metadata.role, then user_metadata.role.
func (c *Claims) normalizedRole() string {
	if c.Role != "" {
		return c.Role
	}
	if c.AppMetadata != nil && c.AppMetadata.Role != "" {
		return c.AppMetadata.Role
	}
	if c.UserMetadata != nil && c.UserMetadata.Role != "" {
		return c.UserMetadata.Role
	}
	return ""
}

// Service handles session token creation and verification.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey string, issuer string, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Mint issues a signed session token for the given subject and role.
func (s *Service) Mint(subject string, role domain.Role, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// Verify validates the token signature and expiry, then normalizes the role
// claim to the closed domain set. A token whose role cannot be resolved to a
// known role is rejected.
func (s *Service) Verify(tokenString string) (*auth.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing subject")
	}

	role, err := domain.ParseRole(claims.normalizedRole())
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing or carrying unknown role")
	}

	return &auth.SessionClaims{
		Subject: claims.Subject,
		Role:    role,
	}, nil
}
