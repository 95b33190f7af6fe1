package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestGateDecision(t *testing.T) {
	now := time.Now()
	ms := now.UnixMilli()

	tests := []struct {
		name   string
		probe  signupProbe
		reason string
	}{
		{"clean submission", signupProbe{Timestamp: ms - 5000}, ""},
		{"no timestamp passes", signupProbe{}, ""},
		{"lower bound inclusive", signupProbe{Timestamp: ms - 2000}, ""},
		{"upper bound inclusive", signupProbe{Timestamp: ms - 600000}, ""},
		{"honeypot filled", signupProbe{Nickname: "bot3000", Timestamp: ms - 5000}, "honeypot"},
		{"honeypot whitespace only", signupProbe{Nickname: "   "}, ""},
		{"too fast", signupProbe{Timestamp: ms - 1999}, "timing"},
		{"instant", signupProbe{Timestamp: ms}, "timing"},
		{"future timestamp", signupProbe{Timestamp: ms + 10000}, "timing"},
		{"stale form", signupProbe{Timestamp: ms - 600001}, "timing"},
		{"honeypot wins over timing", signupProbe{Nickname: "x", Timestamp: ms}, "honeypot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gateDecision(tt.probe, now); got != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, got)
			}
		})
	}
}

func gateRequest(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignupGate_HoneypotRejected(t *testing.T) {
	c, rec := gateRequest(t, `{"email":"a@b.com","password":"password1","nickname":"bot"}`)

	mw := SignupGate(zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	// The rejection must not reveal which check fired.
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if strings.Contains(strings.ToLower(resp["error"]), "honeypot") {
		t.Fatalf("response leaks the failed check: %q", resp["error"])
	}
}

func TestSignupGate_TooFastRejected(t *testing.T) {
	ts := time.Now().UnixMilli() - 500
	c, rec := gateRequest(t, fmt.Sprintf(`{"email":"a@b.com","password":"password1","timestamp":%d}`, ts))

	mw := SignupGate(zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestSignupGate_PassRestoresBody(t *testing.T) {
	ts := time.Now().UnixMilli() - 5000
	body := fmt.Sprintf(`{"email":"a@b.com","password":"password1","timestamp":%d}`, ts)
	c, rec := gateRequest(t, body)

	mw := SignupGate(zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		// The handler must still be able to read the full payload.
		got, err := io.ReadAll(c.Request().Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if string(got) != body {
			t.Fatalf("body not restored: %q", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSignupGate_MalformedJSONPassesThrough(t *testing.T) {
	c, rec := gateRequest(t, "not-json")

	called := false
	mw := SignupGate(zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("malformed payload should be left to the handler's bind")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
