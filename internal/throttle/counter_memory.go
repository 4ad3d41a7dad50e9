package throttle

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryCounter is the single-process fallback used when Redis is not
// configured.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	clock   func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*memoryWindow),
		clock:   time.Now,
	}
}

// WithClock overrides the counter clock for tests.
func (c *MemoryCounter) WithClock(clock func() time.Time) *MemoryCounter {
	c.clock = clock
	return c
}

func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	w, ok := c.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		c.windows[key] = w
	}
	w.count++
	return w.count, nil
}
