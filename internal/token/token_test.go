package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chamomile/taskboard/internal/core/domain"
)

func testIssuer(ttl time.Duration) *Issuer {
	return NewIssuer("secret", ttl, zerolog.Nop())
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	iss := testIssuer(time.Hour)

	raw, err := iss.Issue(42, "alice@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := iss.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", id.UserID)
	}
	if id.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %s", id.Email)
	}
}

func TestVerify_Expired(t *testing.T) {
	iss := testIssuer(time.Minute)

	raw, err := iss.Issue(1, "bob@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Shift the verifier's clock past expiry.
	iss.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if _, err := iss.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, err := testIssuer(time.Hour).Issue(1, "bob@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewIssuer("different-secret", time.Hour, zerolog.Nop())
	if _, err := other.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	iss := testIssuer(time.Hour)

	raw, err := iss.Issue(7, "carol@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip the high bit of every base64url character in turn; no mutation
	// may verify. The high bit is always part of the decoded payload, so
	// each mutation changes the token content.
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for i := 0; i < len(raw); i++ {
		idx := strings.IndexByte(alphabet, raw[i])
		if idx < 0 {
			continue // segment separator
		}
		mutated := []byte(raw)
		mutated[i] = alphabet[(idx+32)%64]
		if _, err := iss.Verify(string(mutated)); err == nil {
			t.Fatalf("mutation at index %d verified", i)
		}
	}
}

func TestVerify_Garbage(t *testing.T) {
	iss := testIssuer(time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := iss.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("input %q: expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestNewIssuer_FallbackSecret(t *testing.T) {
	iss := NewIssuer("", time.Hour, zerolog.Nop())

	raw, err := iss.Issue(1, "x@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := iss.Verify(raw); err != nil {
		t.Fatalf("verify with fallback secret: %v", err)
	}
}
