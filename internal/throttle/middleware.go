package throttle

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"clubgate/pkg/requestcontext"
)

// Limiter holds the per-window limit shared by the throttled routes.
type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures optional limiter dependencies.
type Option func(*Limiter)

// WithMetrics attaches prometheus metrics to the limiter.
func WithMetrics(m *Metrics) Option {
	return func(l *Limiter) { l.metrics = m }
}

func NewLimiter(counter Counter, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		counter: counter,
		limit:   int64(limit),
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Middleware throttles the wrapped routes per (route, client IP). Counter
// failures fail open: registration availability beats strict limiting when
// Redis is down.
func (l *Limiter) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				ip = r.RemoteAddr
			}

			count, err := l.counter.Incr(ctx, route+":"+ip, l.window)
			if err != nil {
				l.logger.WarnContext(ctx, "throttle counter unavailable, failing open",
					"error", err,
					"route", route,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			if count > l.limit {
				l.logger.WarnContext(ctx, "request throttled",
					"route", route,
					"client_ip", ip,
					"count", count,
					"request_id", requestcontext.RequestID(ctx),
				)
				if l.metrics != nil {
					l.metrics.IncrementThrottled(route)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"Too many requests, slow down"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
