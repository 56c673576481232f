// README: Rider registration and listing handlers.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"payana/internal/modules/rider"
	"payana/internal/types"
)

type RiderHandler struct {
	riders *rider.Service
	log    *slog.Logger
}

func NewRiderHandler(svc *rider.Service, log *slog.Logger) *RiderHandler {
	return &RiderHandler{riders: svc, log: log}
}

type createRiderReq struct {
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	Rating     *float64 `json:"rating"`
	Credential string   `json:"credential"`
}

func (h *RiderHandler) Create(c *gin.Context) {
	var req createRiderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.riders.Register(c.Request.Context(), rider.RegisterCommand{
		Name:       req.Name,
		Phone:      req.Phone,
		Rating:     req.Rating,
		Credential: req.Credential,
	})
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusCreated, registrationResponse{ID: string(r.ID), Credential: r.Credential})
}

func (h *RiderHandler) Get(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "rider not found")
		return
	}
	r, err := h.riders.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RiderHandler) List(c *gin.Context) {
	riders, err := h.riders.List(c.Request.Context())
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, riders)
}
