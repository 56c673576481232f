// README: Stateless fare estimate handler.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"payana/internal/modules/pricing"
)

type PricingHandler struct {
	pricing *pricing.Service
	log     *slog.Logger
}

func NewPricingHandler(svc *pricing.Service, log *slog.Logger) *PricingHandler {
	return &PricingHandler{pricing: svc, log: log}
}

func (h *PricingHandler) Estimate(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Query("distance_km"), 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "distance_km query parameter is required")
		return
	}
	var duration *float64
	if raw := c.Query("duration_min"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "duration_min must be a number")
			return
		}
		duration = &d
	}
	var hour *int
	if raw := c.Query("hour"); raw != "" {
		hh, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "hour must be an integer")
			return
		}
		hour = &hh
	}
	quote, err := h.pricing.Estimate(distance, duration, hour)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, quote)
}
