// Package httptransport assembles the HTTP surface: middleware chain, public
// registration routes, admin routes behind the session-token check, and the
// operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	reghandler "clubgate/internal/registration/handler"
	"clubgate/internal/throttle"
	"clubgate/pkg/domain"
	"clubgate/pkg/platform/httputil"
	"clubgate/pkg/platform/middleware/auth"
	"clubgate/pkg/platform/middleware/metadata"
	"clubgate/pkg/platform/middleware/request"
	"clubgate/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router needs. All fields are required.
type Deps struct {
	Registrations *reghandler.Handler
	Verifier      auth.SessionVerifier
	Limiter       *throttle.Limiter
	Logger        *slog.Logger
}

// NewRouter wires all endpoints with the shared middleware chain (request ID,
// request time, client metadata), then per-route throttling and admin auth.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h := deps.Registrations
	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(pub chi.Router) {
			pub.With(deps.Limiter.Middleware("registration_submit")).
				Post("/registrations", h.HandleSubmit)
			pub.Get("/registrations/confirm", h.HandleConfirmGet)
			pub.Post("/registrations/confirm", h.HandleConfirmPost)
			pub.With(deps.Limiter.Middleware("registration_resend")).
				Post("/registrations/resend", h.HandleResend)
		})

		api.Route("/admin", func(adm chi.Router) {
			adm.Use(auth.RequireRole(deps.Verifier, deps.Logger, domain.RoleAdmin, domain.RoleCreator))
			adm.Get("/registrations", h.HandleListPending)
			adm.Post("/registrations", h.HandleDirectCreate)
			adm.Post("/registrations/approve", h.HandleApprove)
			adm.Post("/registrations/revoke", h.HandleRevoke)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
