package v1

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/plugin/ai/aitime"
	aischedule "github.com/hrygo/agenda/plugin/ai/schedule"
	"github.com/hrygo/agenda/plugin/ai/session"
	apierrors "github.com/hrygo/agenda/server/internal/errors"
	agendamw "github.com/hrygo/agenda/server/middleware"
	sched "github.com/hrygo/agenda/server/service/schedule"
)

// APIV1Service serves the JSON API over echo.
type APIV1Service struct {
	Profile     *profile.Profile
	Arbiter     *aischedule.Arbiter
	Sessions    session.SessionService
	Calendar    sched.Service
	Policy      *sched.BusinessHoursPolicy
	RateLimiter *agendamw.RateLimiter
	// Times reads the range filter of the calendar listing.
	Times aitime.TimeService

	location *time.Location
}

// NewAPIV1Service wires the handlers to the arbiter and calendar.
func NewAPIV1Service(
	profile *profile.Profile,
	arbiter *aischedule.Arbiter,
	sessions session.SessionService,
	calendar sched.Service,
	policy *sched.BusinessHoursPolicy,
) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Arbiter:     arbiter,
		Sessions:    sessions,
		Calendar:    calendar,
		Policy:      policy,
		RateLimiter: agendamw.NewRateLimiter(agendamw.DefaultRate, agendamw.DefaultBurst),
		Times:       aitime.NewService(profile.Location()),
		location:    profile.Location(),
	}
}

// RegisterRoutes registers every API route with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.Healthz)

	corsHandler := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"*"},
	})
	api := echoServer.Group("/api/v1", corsHandler)

	api.POST("/sessions/:session/messages", s.PostMessage, agendamw.RateLimit(s.RateLimiter, agendamw.SessionKey))
	api.GET("/sessions/:session", s.GetSession)
	api.DELETE("/sessions/:session", s.DeleteSession)

	api.GET("/calendar", s.ListCalendar)
	api.POST("/calendar", s.AddBooking)
	api.GET("/calendar/free", s.ListFreeSlots)

	api.GET("/system/metrics", s.GetMetrics)
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Healthz reports that the server is up.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthzResponse{Status: "ok", Version: s.Profile.Version})
}

// writeError renders err as an API error. Errors that are not typed are
// reported as internal without exposing the cause.
func writeError(c echo.Context, err error) error {
	var apiErr *apierrors.APIError
	if !stderrors.As(err, &apiErr) {
		apiErr = apierrors.Internal("internal error", err)
	}
	status := apiErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"code", apiErr.Code,
			"error", apiErr,
		)
	}
	return c.JSON(status, apiErr.Body())
}
