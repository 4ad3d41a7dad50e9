// Package identity provisions and revokes accounts in the club's user
// directory. The production directory is a Cognito user pool; development and
// tests run against an in-memory directory.
package identity

import (
	"context"
	"time"

	"clubgate/pkg/domain"
)

// User is a provisioned directory account.
type User struct {
	ID        domain.UserID
	Email     string
	Username  string
	Role      domain.Role
	CreatedAt time.Time
}

// NewUser carries the attributes needed to provision an account. The
// credential hash is only persisted by directories that hold credentials
// themselves; the Cognito pool authenticates via email OTP and ignores it.
type NewUser struct {
	Email          string
	Username       string
	CredentialHash string
	Role           domain.Role
}

// Directory is the provisioning port. Implementations return sentinel errors
// (sentinel.ErrConflict for duplicate emails, sentinel.ErrNotFound for unknown
// accounts); the registration service translates those into domain errors.
type Directory interface {
	Create(ctx context.Context, nu NewUser) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	SetRole(ctx context.Context, email string, role domain.Role) error
	Delete(ctx context.Context, email string) error
}
