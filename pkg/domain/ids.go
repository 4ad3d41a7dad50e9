// Package domain defines typed identifiers and closed enums shared across
// modules. Typed UUIDs prevent cross-type assignment at compile time; parsing
// enforces validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "clubgate/pkg/domain-errors"
)

// RegistrationID identifies a pending registration row.
type RegistrationID uuid.UUID

// UserID identifies an account in the identity directory.
type UserID uuid.UUID

// NewRegistrationID returns a fresh random RegistrationID.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// ParseRegistrationID validates and returns a RegistrationID.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RegistrationID{}, err
	}
	return RegistrationID(u), nil
}

// ParseUserID validates and returns a UserID.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}

func (id RegistrationID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
