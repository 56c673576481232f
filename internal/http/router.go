// README: HTTP router registration.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"payana/internal/http/handlers"
	"payana/internal/http/middleware"
	"payana/internal/modules/driver"
	"payana/internal/modules/pricing"
	"payana/internal/modules/rider"
	"payana/internal/modules/ride"
)

type RouterDeps struct {
	Riders          *rider.Service
	Drivers         *driver.Service
	Rides           *ride.Service
	Pricing         *pricing.Service
	DB              *pgxpool.Pool
	Redis           *redis.Client
	DefaultRadiusKm float64
	Log             *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(deps.Log), middleware.Recovery(deps.Log))

	riderHandler := handlers.NewRiderHandler(deps.Riders, deps.Log)
	r.POST("/riders", riderHandler.Create)
	r.GET("/riders", riderHandler.List)
	r.GET("/riders/:id", riderHandler.Get)

	driverHandler := handlers.NewDriverHandler(deps.Drivers, deps.DefaultRadiusKm, deps.Log)
	r.POST("/drivers", driverHandler.Create)
	r.GET("/drivers", driverHandler.List)
	r.GET("/drivers/:id", driverHandler.Get)
	r.PUT("/drivers/:id/location", driverHandler.UpdateLocation)
	r.GET("/drivers/nearby", driverHandler.Nearby)

	rideHandler := handlers.NewRideHandler(deps.Rides, deps.Log)
	r.POST("/rides", rideHandler.Create)
	r.GET("/rides", rideHandler.List)
	r.GET("/rides/:id", rideHandler.Get)
	r.PATCH("/rides/:id", rideHandler.Update)

	pricingHandler := handlers.NewPricingHandler(deps.Pricing, deps.Log)
	r.GET("/pricing/estimate", pricingHandler.Estimate)

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis)
	r.GET("/health", healthHandler.Check)

	return r
}
