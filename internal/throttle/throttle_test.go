package throttle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubgate/pkg/requestcontext"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_MemoryCounter_CountsWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	counter := NewMemoryCounter().WithClock(func() time.Time { return now })

	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := counter.Incr(ctx, "submit:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func Test_MemoryCounter_ResetsAfterWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	counter := NewMemoryCounter().WithClock(func() time.Time { return now })

	ctx := context.Background()
	_, err := counter.Incr(ctx, "submit:1.2.3.4", time.Minute)
	require.NoError(t, err)

	now = now.Add(61 * time.Second)
	got, err := counter.Incr(ctx, "submit:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func Test_MemoryCounter_KeysAreIndependent(t *testing.T) {
	counter := NewMemoryCounter()
	ctx := context.Background()

	_, err := counter.Incr(ctx, "submit:1.2.3.4", time.Minute)
	require.NoError(t, err)
	got, err := counter.Incr(ctx, "submit:5.6.7.8", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func throttledHandler(limiter *Limiter) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return limiter.Middleware("submit")(next)
}

func doRequest(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/registrations", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Test_Middleware_AllowsUnderLimit(t *testing.T) {
	limiter := NewLimiter(NewMemoryCounter(), 3, time.Minute, testLogger())
	h := throttledHandler(limiter)

	for i := 0; i < 3; i++ {
		rec := doRequest(h, "1.2.3.4")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func Test_Middleware_RejectsOverLimit(t *testing.T) {
	limiter := NewLimiter(NewMemoryCounter(), 2, time.Minute, testLogger())
	h := throttledHandler(limiter)

	doRequest(h, "1.2.3.4")
	doRequest(h, "1.2.3.4")
	rec := doRequest(h, "1.2.3.4")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func Test_Middleware_LimitsPerIP(t *testing.T) {
	limiter := NewLimiter(NewMemoryCounter(), 1, time.Minute, testLogger())
	h := throttledHandler(limiter)

	doRequest(h, "1.2.3.4")
	rec := doRequest(h, "5.6.7.8")
	assert.Equal(t, http.StatusOK, rec.Code)
}

type brokenCounter struct{}

func (brokenCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func Test_Middleware_FailsOpenOnCounterError(t *testing.T) {
	limiter := NewLimiter(brokenCounter{}, 1, time.Minute, testLogger())
	h := throttledHandler(limiter)

	rec := doRequest(h, "1.2.3.4")
	assert.Equal(t, http.StatusOK, rec.Code)
}
