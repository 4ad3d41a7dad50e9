package handler

import (
	"strings"

	"github.com/asaskevich/govalidator"

	id "clubgate/pkg/domain"
	dErrors "clubgate/pkg/domain-errors"
)

func validateEmail(email string) error {
	if email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !govalidator.StringLength(email, "3", "255") || !govalidator.IsEmail(email) {
		return dErrors.New(dErrors.CodeValidation, "email must be a valid address")
	}
	return nil
}

// SubmitRequest is the HTTP request body for POST /registrations.
type SubmitRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Credential string `json:"credential"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)

	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if !govalidator.StringLength(r.Username, "1", "64") {
		return dErrors.New(dErrors.CodeValidation, "username is required and must be at most 64 characters")
	}
	if len(r.Credential) < 8 || len(r.Credential) > 128 {
		return dErrors.New(dErrors.CodeValidation, "credential must be between 8 and 128 characters")
	}
	return nil
}

// ConfirmRequest is the HTTP request body for POST /registrations/confirm.
type ConfirmRequest struct {
	Token string `json:"token"`
}

func (r *ConfirmRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}

// ResendRequest is the HTTP request body for POST /registrations/resend.
type ResendRequest struct {
	Email string `json:"email"`
}

func (r *ResendRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateEmail(r.Email)
}

// ApproveRequest is the HTTP request body for POST /admin/registrations/approve.
type ApproveRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`

	parsedRole id.Role
}

func (r *ApproveRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	role, err := id.ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.parsedRole = role
	return nil
}

// ParsedRole returns the validated role.
func (r *ApproveRequest) ParsedRole() id.Role { return r.parsedRole }

// RevokeRequest is the HTTP request body for POST /admin/registrations/revoke.
type RevokeRequest struct {
	Email string `json:"email"`
}

func (r *RevokeRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateEmail(r.Email)
}

// DirectCreateRequest is the HTTP request body for POST /admin/registrations.
type DirectCreateRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Credential string `json:"credential"`
	Role       string `json:"role"`

	parsedRole id.Role
}

func (r *DirectCreateRequest) Validate() error {
	submit := SubmitRequest{Email: r.Email, Username: r.Username, Credential: r.Credential}
	if err := submit.Validate(); err != nil {
		return err
	}
	r.Email = submit.Email
	r.Username = submit.Username

	role, err := id.ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.parsedRole = role
	return nil
}

// ParsedRole returns the validated role.
func (r *DirectCreateRequest) ParsedRole() id.Role { return r.parsedRole }
