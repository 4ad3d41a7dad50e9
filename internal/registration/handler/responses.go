package handler

import (
	"time"

	"clubgate/internal/registration"
)

// SubmitResponse is returned for an accepted submission.
type SubmitResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmResponse reports the redemption outcome.
type ConfirmResponse struct {
	Status string `json:"status"`
}

// SuccessResponse is the generic success envelope.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// RegistrationResponse is an admin-facing view of a pending registration.
// Token and credential hash never leave the service.
type RegistrationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Confirmed bool      `json:"confirmed"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse wraps the admin pending-registration listing.
type ListResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
}

// FromRegistration maps a domain registration to its admin view.
func FromRegistration(reg *registration.PendingRegistration) RegistrationResponse {
	return RegistrationResponse{
		ID:        reg.ID.String(),
		Email:     reg.Email,
		Username:  reg.Username,
		Confirmed: reg.Confirmed,
		ExpiresAt: reg.ExpiresAt,
		CreatedAt: reg.CreatedAt,
	}
}
