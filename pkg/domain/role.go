package domain

import (
	dErrors "clubgate/pkg/domain-errors"
)

// Role is the closed set of authorization labels attached to identities and
// asserted inside session tokens. The zero value is invalid; use ParseRole at
// trust boundaries.
type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// ParseRole validates and returns a Role. Unknown values are rejected so a
// drifting issuer cannot smuggle an unrecognized label past authorization.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+s)
	}
	return r, nil
}

// IsValid reports whether the role is one of the recognized values.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanApprove reports whether the role may perform first-time approval of a
// pending registration. Only admins provision new identities.
func (r Role) CanApprove() bool {
	return r == RoleAdmin
}

// CanManageMembers reports whether the role may change roles on existing
// identities or revoke accounts.
func (r Role) CanManageMembers() bool {
	return r == RoleAdmin || r == RoleCreator
}

func (r Role) String() string { return string(r) }

// Roles returns all recognized roles.
func Roles() []Role {
	return []Role{RoleUser, RoleCreator, RoleAdmin}
}
