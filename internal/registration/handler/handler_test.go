package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"clubgate/internal/audit"
	"clubgate/internal/identity"
	"clubgate/internal/notify"
	"clubgate/internal/registration"
	reghandler "clubgate/internal/registration/handler"
	"clubgate/internal/sessiontoken"
	id "clubgate/pkg/domain"
	"clubgate/pkg/platform/middleware/auth"
	"clubgate/pkg/requestcontext"
	"clubgate/pkg/testutil"
)

type nullSender struct{}

func (nullSender) Send(context.Context, string, string, string) error { return nil }

type HandlerSuite struct {
	suite.Suite
	store   *registration.InMemoryStore
	service *registration.Service
	tokens  *sessiontoken.Service
	router  chi.Router
	now     time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = registration.NewInMemoryStore()
	s.service = registration.NewService(
		s.store,
		identity.NewInMemoryDirectory(),
		notify.NewDispatcher(nullSender{}, logger),
		audit.NewPublisher(logger, audit.NewInMemorySink()),
		logger,
		"https://club.example.com",
	)
	s.tokens = sessiontoken.NewService("test-signing-key", "clubgate", "clubgate-api")

	h := reghandler.New(s.service, logger)
	r := chi.NewRouter()
	// Pin the request clock so expiry behavior is testable.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithTime(req.Context(), s.now)))
		})
	})
	r.Post("/registrations", h.HandleSubmit)
	r.Get("/registrations/confirm", h.HandleConfirmGet)
	r.Post("/registrations/confirm", h.HandleConfirmPost)
	r.Post("/registrations/resend", h.HandleResend)
	r.Route("/admin", func(adm chi.Router) {
		adm.Use(auth.RequireRole(s.tokens, logger, id.RoleAdmin, id.RoleCreator))
		adm.Get("/registrations", h.HandleListPending)
		adm.Post("/registrations", h.HandleDirectCreate)
		adm.Post("/registrations/approve", h.HandleApprove)
		adm.Post("/registrations/revoke", h.HandleRevoke)
	})
	s.router = r
}

func (s *HandlerSuite) bearerFor(role id.Role) string {
	token, err := s.tokens.Mint("boss@example.com", role, time.Hour)
	s.Require().NoError(err)
	return "Bearer " + token
}

func (s *HandlerSuite) submitBody() map[string]string {
	return map[string]string{
		"email":      "alice@example.com",
		"username":   "alice",
		"credential": "s3cret-pass",
	}
}

// submit posts a valid registration and returns its confirmation token,
// looked up through the store since the token never appears in responses.
func (s *HandlerSuite) submit() string {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", s.submitBody())
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusCreated, rr.Code)

	reg, err := s.store.FindByEmail(context.Background(), "alice@example.com")
	s.Require().NoError(err)
	return reg.ConfirmationToken
}

func (s *HandlerSuite) TestSubmit() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", s.submitBody())
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[reghandler.SubmitResponse](s.T(), rr)
	s.NotEmpty(resp.ID)
	s.Equal("alice@example.com", resp.Email)
	s.Equal(s.now.Add(registration.ConfirmationTTL), resp.ExpiresAt.UTC())
}

func (s *HandlerSuite) TestSubmit_Validation() {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"invalid email", map[string]string{"email": "not-an-email", "username": "alice", "credential": "s3cret-pass"}},
		{"missing email", map[string]string{"username": "alice", "credential": "s3cret-pass"}},
		{"missing username", map[string]string{"email": "alice@example.com", "credential": "s3cret-pass"}},
		{"short credential", map[string]string{"email": "alice@example.com", "username": "alice", "credential": "short"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", tt.body)
			rr := testutil.DoRequest(s.router, req)
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
		})
	}
}

func (s *HandlerSuite) TestSubmit_MalformedBody() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/registrations", "{not json")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestSubmit_Duplicate() {
	s.submit()

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", s.submitBody())
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
}

func (s *HandlerSuite) TestConfirm() {
	token := s.submit()

	s.Run("GET link redeems", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/registrations/confirm?token="+token)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "status", "redeemed")
	})

	s.Run("second redemption is idempotent", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations/confirm", map[string]string{"token": token})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "status", "already_confirmed")
	})
}

func (s *HandlerSuite) TestConfirm_MissingToken() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/registrations/confirm")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *HandlerSuite) TestConfirm_UnknownToken() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/registrations/confirm?token=deadbeef")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestConfirm_ExpiredToken() {
	token := s.submit()
	s.now = s.now.Add(registration.ConfirmationTTL + time.Minute)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/registrations/confirm?token="+token)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusGone, "expired")
}

func (s *HandlerSuite) TestResend() {
	s.submit()

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations/resend", map[string]string{"email": "alice@example.com"})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "success", true)
}

func (s *HandlerSuite) TestResend_UnknownEmail() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations/resend", map[string]string{"email": "nobody@example.com"})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestAdmin_Authentication() {
	s.Run("missing token", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/admin/registrations")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("garbage token", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/admin/registrations")
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("member role", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/admin/registrations")
		req.Header.Set("Authorization", s.bearerFor(id.RoleUser))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}

func (s *HandlerSuite) TestListPending() {
	s.submit()

	req := testutil.NewRequest(s.T(), http.MethodGet, "/admin/registrations")
	req.Header.Set("Authorization", s.bearerFor(id.RoleAdmin))
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[reghandler.ListResponse](s.T(), rr)
	s.Require().Len(resp.Registrations, 1)
	s.Equal("alice@example.com", resp.Registrations[0].Email)
	s.False(resp.Registrations[0].Confirmed)
}

func (s *HandlerSuite) TestApprove() {
	token := s.submit()
	confirm := testutil.NewRequest(s.T(), http.MethodGet, "/registrations/confirm?token="+token)
	s.Require().Equal(http.StatusOK, testutil.DoRequest(s.router, confirm).Code)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registrations/approve",
		map[string]string{"email": "alice@example.com", "role": "user"})
	req.Header.Set("Authorization", s.bearerFor(id.RoleAdmin))
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "success", true)
}

func (s *HandlerSuite) TestApprove_Unconfirmed() {
	s.submit()

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registrations/approve",
		map[string]string{"email": "alice@example.com", "role": "user"})
	req.Header.Set("Authorization", s.bearerFor(id.RoleAdmin))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestApprove_UnknownRole() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registrations/approve",
		map[string]string{"email": "alice@example.com", "role": "superuser"})
	req.Header.Set("Authorization", s.bearerFor(id.RoleAdmin))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *HandlerSuite) TestRevoke() {
	s.submit()

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registrations/revoke",
		map[string]string{"email": "alice@example.com"})
	req.Header.Set("Authorization", s.bearerFor(id.RoleAdmin))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)

	// Nothing left to revoke the second time around.
	repeat := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registrations/revoke",
		map[string]string{"email": "alice@example.com"})
	repeat.Header.Set("Authorization", s.bearerFor(id.RoleAdmin))
	rr = testutil.DoRequest(s.router, repeat)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestDirectCreate() {
	body := map[string]string{
		"email":      "coach@example.com",
		"username":   "coach",
		"credential": "coach-pass",
		"role":       "creator",
	}

	s.Run("admin creates directly", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registrations", body)
		req.Header.Set("Authorization", s.bearerFor(id.RoleAdmin))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[reghandler.SubmitResponse](s.T(), rr)
		s.Equal("coach@example.com", resp.Email)
	})

	s.Run("creator is forbidden", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registrations", body)
		req.Header.Set("Authorization", s.bearerFor(id.RoleCreator))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}
