package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chamomile/taskboard/internal/api/metrics"
)

// Abuse gate thresholds. A human takes at least minFillTime to fill the form;
// anything older than maxFillTime is a stale or replayed submission.
const (
	minFillTime = 2 * time.Second
	maxFillTime = 10 * time.Minute
)

// gateMessage is deliberately generic: the response never reveals which check
// fired, so bots get no feedback signal to tune against.
const gateMessage = "Unable to process signup. Please try again later."

// signupProbe is the subset of the register payload the gate inspects.
// Timestamp is the client-recorded form-render time in unix milliseconds.
type signupProbe struct {
	Nickname  string `json:"nickname"`
	Timestamp int64  `json:"timestamp"`
}

// SignupGate rejects likely-automated signups before the register handler
// runs. Two layers: a honeypot field invisible to humans, and an elapsed-time
// check between form render and submission. The request body is restored for
// the handler after inspection. Values are inspected once and discarded,
// never persisted.
func SignupGate(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(body))

			var probe signupProbe
			// Malformed JSON falls through: the handler's bind reports 400.
			_ = json.Unmarshal(body, &probe)

			if reason := gateDecision(probe, time.Now()); reason != "" {
				metrics.SignupsBlockedTotal.WithLabelValues(reason).Inc()
				log.Warn().Str("reason", reason).Str("ip", c.RealIP()).Msg("signup blocked")
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": gateMessage})
			}

			return next(c)
		}
	}
}

// gateDecision returns the internal rejection reason, or "" to let the
// request through. A missing timestamp passes: API clients never render the
// form field that records it.
func gateDecision(probe signupProbe, now time.Time) string {
	if strings.TrimSpace(probe.Nickname) != "" {
		return "honeypot"
	}

	if probe.Timestamp != 0 {
		elapsed := now.UnixMilli() - probe.Timestamp
		if elapsed < 0 || elapsed < minFillTime.Milliseconds() || elapsed > maxFillTime.Milliseconds() {
			return "timing"
		}
	}

	return ""
}
