package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"clubgate/internal/audit"
	"clubgate/internal/identity"
	"clubgate/internal/notify"
	regmetrics "clubgate/internal/registration/metrics"
	id "clubgate/pkg/domain"
	dErrors "clubgate/pkg/domain-errors"
	"clubgate/pkg/platform/sentinel"
	"clubgate/pkg/requestcontext"
)

// Service orchestrates the registration workflow: submit, confirm, resend,
// approve, revoke. It owns no HTTP or storage concerns; stores and the
// identity directory are injected ports.
type Service struct {
	store      Store
	directory  identity.Directory
	dispatcher *notify.Dispatcher
	audit      *audit.Publisher
	metrics    *regmetrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
	baseURL    string
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithMetrics attaches prometheus metrics to the service.
func WithMetrics(m *regmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, directory identity.Directory, dispatcher *notify.Dispatcher, auditPub *audit.Publisher, logger *slog.Logger, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:      store,
		directory:  directory,
		dispatcher: dispatcher,
		audit:      auditPub,
		logger:     logger,
		tracer:     otel.Tracer("clubgate/registration"),
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitRequest carries a self-service registration submission. Credential is
// the raw secret; it is hashed before anything is persisted.
type SubmitRequest struct {
	Email      string
	Username   string
	Credential string
}

// Submit records a new pending registration and dispatches the confirmation
// email. The email is fire-and-forget: delivery problems never fail the
// submission.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*PendingRegistration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Submit")
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash credential")
	}

	token, err := NewConfirmationToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate confirmation token")
	}

	now := requestcontext.Now(ctx)
	reg, err := NewPendingRegistration(id.NewRegistrationID(), req.Email, req.Username, string(hash), token, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, reg); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a registration for this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration")
	}

	s.dispatcher.Dispatch(reg.Email, notify.ConfirmationMessage(reg.Username, s.baseURL, reg.ConfirmationToken))
	s.emit(ctx, audit.ActionSubmitted, reg.Email, "")
	if s.metrics != nil {
		s.metrics.IncrementSubmitted()
	}
	return reg, nil
}

// Redeem consumes a confirmation token. Redeeming an already-confirmed
// registration succeeds idempotently; an expired token is a distinct failure
// from an unknown one.
func (s *Service) Redeem(ctx context.Context, token string) (RedeemOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Redeem")
	defer span.End()

	if token == "" {
		return AlreadyConfirmed, dErrors.New(dErrors.CodeValidation, "confirmation token is required")
	}

	outcome, err := s.store.Redeem(ctx, token, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return AlreadyConfirmed, dErrors.New(dErrors.CodeNotFound, "unknown confirmation token")
		case errors.Is(err, sentinel.ErrExpired):
			return AlreadyConfirmed, dErrors.New(dErrors.CodeExpired, "confirmation token has expired")
		default:
			return AlreadyConfirmed, dErrors.Wrap(err, dErrors.CodeInternal, "failed to redeem confirmation token")
		}
	}

	if outcome == RedeemedFresh {
		if reg, findErr := s.store.FindByToken(ctx, token); findErr == nil {
			s.emit(ctx, audit.ActionRedeemed, reg.Email, "")
		}
		if s.metrics != nil {
			s.metrics.IncrementConfirmed()
		}
	}
	return outcome, nil
}

// Resend extends the confirmation window and re-sends the confirmation email.
// The token is not rotated; the original link keeps working. Confirmed
// registrations are not found on purpose: the flow reveals nothing about
// accounts past the confirmation step.
func (s *Service) Resend(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, "registration.Resend")
	defer span.End()

	if email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}

	reg, err := s.store.FindByEmail(ctx, email)
	if err != nil || reg.Confirmed {
		return dErrors.New(dErrors.CodeNotFound, "no pending registration for this email")
	}

	now := requestcontext.Now(ctx)
	if err := s.store.ExtendExpiry(ctx, email, now); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no pending registration for this email")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to extend registration expiry")
	}

	s.dispatcher.Dispatch(reg.Email, notify.ResendMessage(reg.Username, s.baseURL, reg.ConfirmationToken))
	s.emit(ctx, audit.ActionResent, reg.Email, "")
	return nil
}

// ApproveRequest names the registration to approve and the role to grant.
type ApproveRequest struct {
	Email string
	Role  id.Role
}

// Approve provisions a confirmed registration into the identity directory, or
// changes the role of an already-provisioned account.
//
// First approval requires an admin actor and a confirmed registration. If
// provisioning fails the pending row is left untouched (hash intact) so the
// approval can simply be retried. A later call for an email that already has
// an identity is a role change, open to admins and creators, and touches only
// the directory.
func (s *Service) Approve(ctx context.Context, req ApproveRequest) error {
	ctx, span := s.tracer.Start(ctx, "registration.Approve")
	defer span.End()

	start := time.Now()
	if s.metrics != nil {
		defer s.metrics.ObserveApprove(start)
	}

	actor := requestcontext.Role(ctx)

	existing, err := s.directory.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return s.changeRole(ctx, existing, req.Role, actor)
	case errors.Is(err, sentinel.ErrNotFound):
		return s.firstApproval(ctx, req, actor)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to query identity directory")
	}
}

func (s *Service) firstApproval(ctx context.Context, req ApproveRequest, actor id.Role) error {
	if !actor.CanApprove() {
		return dErrors.New(dErrors.CodeForbidden, "only admins can approve registrations")
	}

	reg, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "no registration for this email")
	}
	if err := reg.CanApprove(); err != nil {
		return dErrors.New(dErrors.CodeNotFound, "registration has not been confirmed")
	}

	if _, err := s.directory.Create(ctx, identity.NewUser{
		Email:          reg.Email,
		Username:       reg.Username,
		CredentialHash: reg.CredentialHash,
		Role:           req.Role,
	}); err != nil {
		// The pending row keeps its credential hash; the admin can retry
		// once the directory recovers.
		return dErrors.Wrap(err, dErrors.CodeInternal, "identity provisioning failed")
	}

	now := requestcontext.Now(ctx)
	if err := s.store.Approve(ctx, req.Email, req.Role, now); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "identity created but registration update failed")
	}

	s.dispatcher.Dispatch(reg.Email, notify.ApprovalMessage(reg.Username, s.baseURL))
	s.emit(ctx, audit.ActionApproved, reg.Email, "role="+req.Role.String())
	if s.metrics != nil {
		s.metrics.IncrementApproved()
	}
	return nil
}

func (s *Service) changeRole(ctx context.Context, user *identity.User, role id.Role, actor id.Role) error {
	if !actor.CanManageMembers() {
		return dErrors.New(dErrors.CodeForbidden, "insufficient role to change member roles")
	}

	if err := s.directory.SetRole(ctx, user.Email, role); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no account for this email")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role")
	}

	s.emit(ctx, audit.ActionRoleChanged, user.Email, "role="+role.String())
	return nil
}

// Revoke removes an account and its registration trail. The identity is
// deleted first; if that fails the pending row is left alone so a retry can
// finish the job. Revoking an email with only a pending row (never approved)
// also succeeds.
func (s *Service) Revoke(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, "registration.Revoke")
	defer span.End()

	if email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}

	actor := requestcontext.Role(ctx)
	if !actor.CanManageMembers() {
		return dErrors.New(dErrors.CodeForbidden, "insufficient role to revoke registrations")
	}

	identityExisted := false
	if _, err := s.directory.FindByEmail(ctx, email); err == nil {
		identityExisted = true
		if err := s.directory.Delete(ctx, email); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete identity")
		}
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to query identity directory")
	}

	if err := s.store.Delete(ctx, email); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			if !identityExisted {
				return dErrors.New(dErrors.CodeNotFound, "no registration or account for this email")
			}
		} else {
			return dErrors.Wrap(err, dErrors.CodeInternal, "identity deleted but registration cleanup failed")
		}
	}

	s.logger.InfoContext(ctx, "registration revoked",
		"email", email,
		"identity_existed", identityExisted,
	)

	s.emit(ctx, audit.ActionRevoked, email, "")
	if s.metrics != nil {
		s.metrics.IncrementRevoked()
	}
	return nil
}

// DirectCreateRequest carries an admin-created account. It enters the same
// lifecycle as a self-service registration, pre-confirmed and approved in the
// same call.
type DirectCreateRequest struct {
	Email      string
	Username   string
	Credential string
	Role       id.Role
}

// DirectCreate lets an admin provision an account without the email-confirm
// round trip.
func (s *Service) DirectCreate(ctx context.Context, req DirectCreateRequest) (*PendingRegistration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.DirectCreate")
	defer span.End()

	actor := requestcontext.Role(ctx)
	if !actor.CanApprove() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can create accounts directly")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash credential")
	}

	token, err := NewConfirmationToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate confirmation token")
	}

	now := requestcontext.Now(ctx)
	reg, err := NewPendingRegistration(id.NewRegistrationID(), req.Email, req.Username, string(hash), token, now)
	if err != nil {
		return nil, err
	}
	reg.ApplyRedemption(now)

	if err := s.store.Create(ctx, reg); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a registration for this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration")
	}

	if _, err := s.directory.Create(ctx, identity.NewUser{
		Email:          reg.Email,
		Username:       reg.Username,
		CredentialHash: reg.CredentialHash,
		Role:           req.Role,
	}); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account for this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "identity provisioning failed")
	}

	if err := s.store.Approve(ctx, req.Email, req.Role, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "identity created but registration update failed")
	}
	reg.ApplyApproval(req.Role, now)

	s.dispatcher.Dispatch(reg.Email, notify.ApprovalMessage(reg.Username, s.baseURL))
	s.emit(ctx, audit.ActionDirectCreated, reg.Email, "role="+req.Role.String())
	if s.metrics != nil {
		s.metrics.IncrementApproved()
	}
	return reg, nil
}

// ListPending returns registrations not yet approved, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]*PendingRegistration, error) {
	regs, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending registrations")
	}
	return regs, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, email, detail string) {
	s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		Email:     email,
		Actor:     requestcontext.Subject(ctx),
		Role:      requestcontext.Role(ctx).String(),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Detail:    detail,
	})
}
