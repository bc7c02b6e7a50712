package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/agenda/plugin/ai/timeout"
	apierrors "github.com/hrygo/agenda/server/internal/errors"
)

// PostMessageRequest is the body of POST /api/v1/sessions/:session/messages.
type PostMessageRequest struct {
	Text string `json:"text"`
}

// PostMessage runs one arbitration turn and returns its outcome.
// POST /api/v1/sessions/:session/messages
func (s *APIV1Service) PostMessage(c echo.Context) error {
	sessionID := c.Param("session")
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	if strings.TrimSpace(req.Text) == "" {
		return writeError(c, apierrors.InvalidArgument("text is required").WithContext("field", "text"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout.TurnTimeout)
	defer cancel()

	outcome, err := s.Arbiter.HandleMessage(ctx, sessionID, req.Text)
	if err != nil {
		return writeError(c, apierrors.Wrap(err, apierrors.ErrCodeServiceUnavailable, "failed to process message"))
	}
	return c.JSON(http.StatusOK, outcome)
}

// GetSession returns the stored conversation context.
// GET /api/v1/sessions/:session
func (s *APIV1Service) GetSession(c echo.Context) error {
	sessionID := c.Param("session")
	conv, err := s.Sessions.LoadContext(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, apierrors.Wrap(err, apierrors.ErrCodeServiceUnavailable, "failed to load session"))
	}
	if conv == nil {
		return writeError(c, apierrors.NotFound("session not found").WithContext("session_id", sessionID))
	}
	return c.JSON(http.StatusOK, conv)
}

// DeleteSession ends the session and discards any pending reservation.
// DELETE /api/v1/sessions/:session
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	if err := s.Arbiter.EndSession(c.Request().Context(), c.Param("session")); err != nil {
		return writeError(c, apierrors.Wrap(err, apierrors.ErrCodeServiceUnavailable, "failed to end session"))
	}
	return c.NoContent(http.StatusNoContent)
}
