// Package throttle bounds unauthenticated registration traffic with a fixed
// window counter per (route, client IP). Redis backs the counter in
// production so limits hold across replicas; a process-local counter covers
// development.
package throttle

import (
	"context"
	"time"
)

// Counter increments a window-scoped key and reports the count inside the
// current window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
