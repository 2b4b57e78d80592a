package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ucbazaar/shop-backend/internal/service"
)

type StatsHandler struct {
	svc service.OrderService
}

func NewStatsHandler(svc service.OrderService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

type StatsResponse struct {
	Orders  map[string]int64 `json:"orders"`
	Revenue int64            `json:"revenue"`
}

func (h *StatsHandler) Get(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to compute stats"))
	}
	orders := make(map[string]int64, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		orders[string(status)] = count
	}
	return c.JSON(http.StatusOK, StatsResponse{Orders: orders, Revenue: stats.Revenue})
}
