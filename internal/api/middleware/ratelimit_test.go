package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestMemoryStore_Incr(t *testing.T) {
	store := NewMemoryStore()

	for want := int64(1); want <= 5; want++ {
		n, err := store.Incr(context.Background(), "login:1.2.3.4", time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if n != want {
			t.Fatalf("expected count %d, got %d", want, n)
		}
	}
}

func TestMemoryStore_WindowReset(t *testing.T) {
	store := NewMemoryStore()

	for i := 0; i < 3; i++ {
		if _, err := store.Incr(context.Background(), "key", 10*time.Millisecond); err != nil {
			t.Fatalf("incr: %v", err)
		}
	}

	time.Sleep(15 * time.Millisecond)

	n, err := store.Incr(context.Background(), "key", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected fresh window count 1, got %d", n)
	}
}

func TestMemoryStore_Cleanup(t *testing.T) {
	store := NewMemoryStore()

	_, _ = store.Incr(context.Background(), "expired", 10*time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	_, _ = store.Incr(context.Background(), "active", time.Minute)

	store.Cleanup()

	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.entries["expired"]; ok {
		t.Error("expired entry should have been cleaned up")
	}
	if _, ok := store.entries["active"]; !ok {
		t.Error("active entry should still exist")
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	e := echo.New()
	store := NewMemoryStore()
	limit := Limit{Class: "login", Max: 2, Window: time.Minute, Message: "slow down"}

	mw := RateLimit(store, limit, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("limited request: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimit_SeparateClients(t *testing.T) {
	e := echo.New()
	store := NewMemoryStore()
	limit := Limit{Class: "signup", Max: 1, Window: time.Minute, Message: "slow down"}

	mw := RateLimit(store, limit, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("client %s: %v", addr, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("client %s should not share counters, got %d", addr, rec.Code)
		}
	}
}

func TestRateLimit_SeparateClasses(t *testing.T) {
	e := echo.New()
	store := NewMemoryStore()

	loginMW := RateLimit(store, Limit{Class: "login", Max: 1, Window: time.Minute}, zerolog.Nop())
	apiMW := RateLimit(store, Limit{Class: "api", Max: 1, Window: time.Minute}, zerolog.Nop())

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	// Exhaust the login class; the api class must stay unaffected.
	for i, mw := range []echo.MiddlewareFunc{loginMW, apiMW} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.9:1"
		rec := httptest.NewRecorder()
		if err := mw(ok)(e.NewContext(req, rec)); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, context.DeadlineExceeded
}

func TestRateLimit_FailsOpenOnStoreError(t *testing.T) {
	e := echo.New()
	mw := RateLimit(failingStore{}, Limit{Class: "api", Max: 1, Window: time.Minute}, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected fail-open 200, got %d", rec.Code)
	}
}
