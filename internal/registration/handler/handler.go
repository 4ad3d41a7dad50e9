package handler

import (
	"context"
	"log/slog"
	"net/http"

	"clubgate/internal/registration"
	dErrors "clubgate/pkg/domain-errors"
	"clubgate/pkg/platform/httputil"
	"clubgate/pkg/requestcontext"
)

// Service defines the interface for registration workflow operations.
type Service interface {
	Submit(ctx context.Context, req registration.SubmitRequest) (*registration.PendingRegistration, error)
	Redeem(ctx context.Context, token string) (registration.RedeemOutcome, error)
	Resend(ctx context.Context, email string) error
	Approve(ctx context.Context, req registration.ApproveRequest) error
	Revoke(ctx context.Context, email string) error
	DirectCreate(ctx context.Context, req registration.DirectCreateRequest) (*registration.PendingRegistration, error)
	ListPending(ctx context.Context) ([]*registration.PendingRegistration, error)
}

// Handler wires registration endpoints to the workflow service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registration handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// HandleSubmit handles POST /registrations.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reg, err := h.service.Submit(ctx, registration.SubmitRequest{
		Email:      req.Email,
		Username:   req.Username,
		Credential: req.Credential,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "registration submit failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration submitted",
		"request_id", requestID,
		"registration_id", reg.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{
		ID:        reg.ID.String(),
		Email:     reg.Email,
		ExpiresAt: reg.ExpiresAt,
	})
}

// HandleConfirmGet handles GET /registrations/confirm?token=... — the link
// target from the confirmation email.
func (h *Handler) HandleConfirmGet(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, r.URL.Query().Get("token"))
}

// HandleConfirmPost handles POST /registrations/confirm with a JSON body.
func (h *Handler) HandleConfirmPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ConfirmRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	h.confirm(w, r, req.Token)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, token string) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "token is required"))
		return
	}

	outcome, err := h.service.Redeem(ctx, token)
	if err != nil {
		h.logger.WarnContext(ctx, "confirmation redeem failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "confirmation redeemed",
		"request_id", requestID,
		"outcome", outcome.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, ConfirmResponse{Status: outcome.String()})
}

// HandleResend handles POST /registrations/resend.
func (h *Handler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ResendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Resend(ctx, req.Email); err != nil {
		h.logger.WarnContext(ctx, "confirmation resend failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleListPending handles GET /admin/registrations.
func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	regs, err := h.service.ListPending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "pending registration listing failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := ListResponse{Registrations: make([]RegistrationResponse, 0, len(regs))}
	for _, reg := range regs {
		out.Registrations = append(out.Registrations, FromRegistration(reg))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleDirectCreate handles POST /admin/registrations.
func (h *Handler) HandleDirectCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DirectCreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reg, err := h.service.DirectCreate(ctx, registration.DirectCreateRequest{
		Email:      req.Email,
		Username:   req.Username,
		Credential: req.Credential,
		Role:       req.ParsedRole(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "direct account creation failed",
			"request_id", requestID,
			"actor", requestcontext.Subject(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "account created directly",
		"request_id", requestID,
		"registration_id", reg.ID.String(),
		"actor", requestcontext.Subject(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{
		ID:        reg.ID.String(),
		Email:     reg.Email,
		ExpiresAt: reg.ExpiresAt,
	})
}

// HandleApprove handles POST /admin/registrations/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Approve(ctx, registration.ApproveRequest{
		Email: req.Email,
		Role:  req.ParsedRole(),
	}); err != nil {
		h.logger.ErrorContext(ctx, "registration approval failed",
			"request_id", requestID,
			"actor", requestcontext.Subject(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration approved",
		"request_id", requestID,
		"actor", requestcontext.Subject(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleRevoke handles POST /admin/registrations/revoke.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Revoke(ctx, req.Email); err != nil {
		h.logger.ErrorContext(ctx, "registration revocation failed",
			"request_id", requestID,
			"actor", requestcontext.Subject(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration revoked",
		"request_id", requestID,
		"actor", requestcontext.Subject(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
