package registration

import (
	"time"

	id "clubgate/pkg/domain"
	dErrors "clubgate/pkg/domain-errors"
)

// ConfirmationTTL is how long a confirmation token stays redeemable. Resend
// extends the window by the same amount.
const ConfirmationTTL = 24 * time.Hour

// PendingRegistration is the aggregate root for a registration awaiting
// confirmation and approval.
//
// Invariants:
//   - At most one row per email; email is the natural key for the workflow
//   - ConfirmationToken is unique and single-use
//   - Confirmed=true means the token has been consumed and cannot flip back
//   - Approval sets Role and erases CredentialHash; the row is kept so the
//     admin list and audit trail retain the registration's history
type PendingRegistration struct {
	ID                id.RegistrationID `json:"id"`
	Email             string            `json:"email"`
	Username          string            `json:"username"`
	CredentialHash    string            `json:"-"`
	ConfirmationToken string            `json:"-"`
	ExpiresAt         time.Time         `json:"expires_at"`
	Confirmed         bool              `json:"confirmed"`
	Role              *id.Role          `json:"role,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func NewPendingRegistration(regID id.RegistrationID, email, username, credentialHash, token string, now time.Time) (*PendingRegistration, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if credentialHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "credential hash cannot be empty")
	}
	if token == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "confirmation token cannot be empty")
	}
	return &PendingRegistration{
		ID:                regID,
		Email:             email,
		Username:          username,
		CredentialHash:    credentialHash,
		ConfirmationToken: token,
		ExpiresAt:         now.Add(ConfirmationTTL),
		Confirmed:         false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// IsExpired reports whether the confirmation window has closed.
func (p *PendingRegistration) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// IsApproved reports whether an admin has approved the registration.
func (p *PendingRegistration) IsApproved() bool {
	return p.Role != nil
}

// CanRedeem checks if the confirmation token can be consumed at the given
// time. Use with ApplyRedemption so the store can hold its lock across both.
func (p *PendingRegistration) CanRedeem(now time.Time) error {
	if p.Confirmed {
		return dErrors.New(dErrors.CodeInvariantViolation, "registration is already confirmed")
	}
	if p.IsExpired(now) {
		return dErrors.New(dErrors.CodeExpired, "confirmation token has expired")
	}
	return nil
}

// ApplyRedemption consumes the confirmation token. Call CanRedeem first.
func (p *PendingRegistration) ApplyRedemption(now time.Time) {
	p.Confirmed = true
	p.UpdatedAt = now
}

// CanApprove checks if the registration is ready for approval.
func (p *PendingRegistration) CanApprove() error {
	if !p.Confirmed {
		return dErrors.New(dErrors.CodeInvariantViolation, "registration has not been confirmed")
	}
	return nil
}

// ApplyApproval records the granted role and erases the held credential hash.
// Once the account is provisioned the hash lives in the identity directory
// and must not survive here.
func (p *PendingRegistration) ApplyApproval(role id.Role, now time.Time) {
	p.Role = &role
	p.CredentialHash = ""
	p.UpdatedAt = now
}

// ExtendExpiry pushes the confirmation window out from the given time.
func (p *PendingRegistration) ExtendExpiry(now time.Time) {
	p.ExpiresAt = now.Add(ConfirmationTTL)
	p.UpdatedAt = now
}
