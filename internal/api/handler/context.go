package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chamomile/taskboard/internal/api/middleware"
)

// ctxUserID extracts the authenticated user id injected by the Auth
// middleware. Its presence proves the middleware ran; a handler reached
// without it rejects with 401 rather than trusting anything client-supplied.
func ctxUserID(c echo.Context) (int64, error) {
	id, ok := c.Get(middleware.CtxUserID).(int64)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
