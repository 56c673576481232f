// README: Entry point; loads config, wires stores and services, starts the
// HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payana/internal/config"
	httptransport "payana/internal/http"
	"payana/internal/identity"
	"payana/internal/infra"
	"payana/internal/maps"
	"payana/internal/modules/driver"
	"payana/internal/modules/pricing"
	"payana/internal/modules/ride"
	"payana/internal/modules/rider"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Error("postgres init", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := infra.Migrate(ctx, dbPool); err != nil {
		log.Error("migrate", "error", err)
		os.Exit(1)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	riderStore := rider.NewStore(dbPool)
	driverStore := driver.NewStore(dbPool, redisClient)
	rideStore := ride.NewStore(dbPool)

	verifier := identity.NewVerifier(riderStore, driverStore)
	pricingSvc := pricing.NewService(nil)

	var router ride.TravelEstimator
	if cfg.Maps.APIKey != "" {
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Error("maps init", "error", err)
			os.Exit(1)
		}
		router = routeSvc
	}

	riderSvc := rider.NewService(riderStore)
	driverSvc := driver.NewService(driverStore, verifier, log)
	rideSvc := ride.NewService(rideStore, verifier, pricingSvc, router, log)

	engine := httptransport.NewRouter(httptransport.RouterDeps{
		Riders:          riderSvc,
		Drivers:         driverSvc,
		Rides:           rideSvc,
		Pricing:         pricingSvc,
		DB:              dbPool,
		Redis:           redisClient,
		DefaultRadiusKm: cfg.Nearby.DefaultRadiusKm,
		Log:             log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: engine}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server", "error", err)
		os.Exit(1)
	}
}
