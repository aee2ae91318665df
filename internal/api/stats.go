package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/love-dialect/internal/stats"
)

type (
	StatsComputer interface {
		Compute(ctx context.Context) ([]stats.Bucket, error)
	}

	StatsHandler struct {
		stats StatsComputer
		log   *slog.Logger
	}
)

func NewStatsHandler(computer StatsComputer, log *slog.Logger) *StatsHandler {
	return &StatsHandler{
		stats: computer,
		log:   log,
	}
}

func (h *StatsHandler) Global(c echo.Context) error {
	buckets, err := h.stats.Compute(c.Request().Context())
	if err != nil {
		return fmt.Errorf("compute stats: %w", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"items": buckets})
}
