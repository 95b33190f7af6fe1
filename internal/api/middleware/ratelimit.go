package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chamomile/taskboard/internal/api/metrics"
)

// Route classes with independent counters and limits.
const (
	ClassSignup = "signup"
	ClassLogin  = "login"
	ClassAPI    = "api"
)

// CounterStore increments the fixed-window counter for key and returns the
// count inside the current window. The window starts on the first hit.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limit describes one route class: at most Max requests per Window per client.
type Limit struct {
	Class   string
	Max     int64
	Window  time.Duration
	Message string
}

// Default limits per route class.
var (
	SignupLimit = Limit{ClassSignup, 3, 24 * time.Hour, "Too many signup attempts. Please try again later."}
	LoginLimit  = Limit{ClassLogin, 10, 15 * time.Minute, "Too many login attempts. Please try again later."}
	APILimit    = Limit{ClassAPI, 150, 15 * time.Minute, "Too many requests. Please slow down."}
)

// RateLimit caps request frequency per client address for one route class.
// Store failures fail open: rate limiting is best-effort abuse mitigation,
// not a security boundary.
func RateLimit(store CounterStore, limit Limit, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := limit.Class + ":" + c.RealIP()
			n, err := store.Incr(c.Request().Context(), key, limit.Window)
			if err != nil {
				log.Warn().Err(err).Str("class", limit.Class).Msg("rate limit store unavailable, allowing request")
				return next(c)
			}
			if n > limit.Max {
				metrics.RateLimitedTotal.WithLabelValues(limit.Class).Inc()
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": limit.Message})
			}
			return next(c)
		}
	}
}

type windowEntry struct {
	count    int64
	expireAt time.Time
}

// MemoryStore is the default process-local CounterStore: a mutex-guarded map
// of fixed windows keyed by class+client address. Counters do not survive a
// restart, which is acceptable for best-effort limiting.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*windowEntry)}
}

// Incr implements CounterStore.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.entries[key]
	if !ok || now.After(e.expireAt) {
		s.entries[key] = &windowEntry{count: 1, expireAt: now.Add(window)}
		return 1, nil
	}
	e.count++
	return e.count, nil
}

// Cleanup removes expired windows.
func (s *MemoryStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expireAt) {
			delete(s.entries, key)
		}
	}
}

// StartJanitor runs Cleanup on the given interval until ctx is cancelled.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}
