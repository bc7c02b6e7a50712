package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/agenda/internal/observability"
)

// MetricsResponse represents the arbitration metrics since process start.
type MetricsResponse struct {
	*observability.MetricsSnapshot
	SuccessRate float64 `json:"success_rate"`
}

// GetMetrics returns the arbitration turn counters.
// GET /api/v1/system/metrics
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	snapshot := observability.GlobalMetrics().Snapshot()
	return c.JSON(http.StatusOK, MetricsResponse{
		MetricsSnapshot: snapshot,
		SuccessRate:     snapshot.SuccessRate(),
	})
}
