// README: Driver registration, location update, and nearby-search handlers.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"payana/internal/http/middleware"
	"payana/internal/modules/driver"
	"payana/internal/types"
)

type DriverHandler struct {
	drivers       *driver.Service
	defaultRadius float64
	log           *slog.Logger
}

func NewDriverHandler(svc *driver.Service, defaultRadiusKm float64, log *slog.Logger) *DriverHandler {
	return &DriverHandler{drivers: svc, defaultRadius: defaultRadiusKm, log: log}
}

type createDriverReq struct {
	Name        string         `json:"name"`
	Phone       string         `json:"phone"`
	Vehicle     driver.Vehicle `json:"vehicle"`
	Location    *types.Point   `json:"location"`
	IsAvailable *bool          `json:"is_available"`
	Rating      *float64       `json:"rating"`
	Credential  string         `json:"credential"`
}

func (h *DriverHandler) Create(c *gin.Context) {
	var req createDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.drivers.Register(c.Request.Context(), driver.RegisterCommand{
		Name:        req.Name,
		Phone:       req.Phone,
		Vehicle:     req.Vehicle,
		Location:    req.Location,
		IsAvailable: req.IsAvailable,
		Rating:      req.Rating,
		Credential:  req.Credential,
	})
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusCreated, registrationResponse{ID: string(d.ID), Credential: d.Credential})
}

func (h *DriverHandler) Get(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "driver not found")
		return
	}
	d, err := h.drivers.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

func (h *DriverHandler) List(c *gin.Context) {
	drivers, err := h.drivers.List(c.Request.Context())
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, drivers)
}

type updateLocationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type updatedResponse struct {
	Updated bool `json:"updated"`
}

func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "driver not found")
		return
	}
	var req updateLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	updated, err := h.drivers.UpdateLocation(c.Request.Context(),
		id, types.Point{Lat: req.Lat, Lng: req.Lng}, middleware.Credential(c))
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, updatedResponse{Updated: updated})
}

func (h *DriverHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(c, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}
	radius := h.defaultRadius
	if raw := c.Query("radius_km"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "radius_km must be a number")
			return
		}
		radius = r
	}
	drivers, err := h.drivers.Nearby(c.Request.Context(), types.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	if drivers == nil {
		drivers = []*driver.Driver{}
	}
	writeJSON(c, http.StatusOK, drivers)
}
