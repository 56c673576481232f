// README: Ride creation, retrieval, listing, and lifecycle update handlers.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"payana/internal/http/middleware"
	"payana/internal/modules/ride"
	"payana/internal/types"
)

type RideHandler struct {
	rides *ride.Service
	log   *slog.Logger
}

func NewRideHandler(svc *ride.Service, log *slog.Logger) *RideHandler {
	return &RideHandler{rides: svc, log: log}
}

type createRideReq struct {
	RiderID      string      `json:"rider_id"`
	DriverID     *string     `json:"driver_id"`
	Pickup       types.Point `json:"pickup"`
	Dropoff      types.Point `json:"dropoff"`
	DistanceKm   *float64    `json:"distance_km"`
	DurationMin  *float64    `json:"duration_min"`
	FareEstimate *float64    `json:"fare_estimate"`
	Status       string      `json:"status"`
}

func (h *RideHandler) Create(c *gin.Context) {
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RiderID == "" {
		writeError(c, http.StatusBadRequest, "rider_id is required")
		return
	}
	cmd := ride.CreateCommand{
		RiderID:      types.ID(req.RiderID),
		Pickup:       req.Pickup,
		Dropoff:      req.Dropoff,
		DistanceKm:   req.DistanceKm,
		DurationMin:  req.DurationMin,
		FareEstimate: req.FareEstimate,
		Status:       ride.Status(req.Status),
		Credential:   middleware.Credential(c),
	}
	if req.DriverID != nil {
		d := types.ID(*req.DriverID)
		cmd.DriverID = &d
	}
	r, err := h.rides.Create(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusCreated, idResponse{ID: string(r.ID)})
}

func (h *RideHandler) Get(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "ride not found")
		return
	}
	r, err := h.rides.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RideHandler) List(c *gin.Context) {
	var status *ride.Status
	if raw := c.Query("status"); raw != "" {
		s := ride.Status(raw)
		status = &s
	}
	rides, err := h.rides.List(c.Request.Context(), status)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	if rides == nil {
		rides = []*ride.Ride{}
	}
	writeJSON(c, http.StatusOK, rides)
}

type updateRideReq struct {
	Status   *string `json:"status"`
	DriverID *string `json:"driver_id"`
}

func (h *RideHandler) Update(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "ride not found")
		return
	}
	var req updateRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := ride.UpdateCommand{
		RideID:     id,
		Credential: middleware.Credential(c),
	}
	if req.Status != nil {
		s := ride.Status(*req.Status)
		cmd.Status = &s
	}
	if req.DriverID != nil {
		d := types.ID(*req.DriverID)
		cmd.DriverID = &d
	}
	res, err := h.rides.Update(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
