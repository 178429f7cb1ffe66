package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibelink/vibelink-server/internal/api"
	"github.com/vibelink/vibelink-server/internal/config"
	"github.com/vibelink/vibelink-server/internal/factory"
	"github.com/vibelink/vibelink-server/internal/health"
	"github.com/vibelink/vibelink-server/internal/platform/logger"
	"github.com/vibelink/vibelink-server/internal/services"
	"github.com/vibelink/vibelink-server/internal/store"
)

func main() {
	log := logger.New("vibelink-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("geo_index_driver", cfg.GeoIndexDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Vibelink service starting…")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// -------- Storage & geo indexes --------
	st, err := factory.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Storage driver unavailable")
	}
	momentIdx, userIdx, err := factory.NewGeoIndexes(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Geo index driver unavailable")
	}
	geocoder := factory.NewGeocoder(cfg)

	// -------- Services ----------------------
	momentSvc := services.NewMomentService(st, momentIdx, cfg.MomentTTL)
	matchSvc := services.NewMatchService(st, cfg.DefaultPageSize)
	querySvc := services.NewQueryService(st, momentIdx, userIdx, geocoder, services.QueryDefaults{
		RadiusMeters: cfg.DefaultRadiusMeters,
		GridMeters:   cfg.DefaultGridMeters,
		PageSize:     cfg.DefaultPageSize,
	}, log)

	// -------- Health monitor ----------------
	storeChecker := store.NewStoreHealthChecker(st, log, 5*time.Second)
	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go storeChecker.Start(ctx, 30*time.Second)
	go svcHealth.Start(ctx, 10*time.Second)

	// -------- Reaper ------------------------
	reaper := services.NewReaper(st, momentIdx, cfg.ReaperInterval, log)
	go func() {
		if err := reaper.Run(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("reaper exited")
		}
	}()

	// -------- Router & Server ---------------
	router := api.NewRouter(api.Deps{
		Moments:   momentSvc,
		Matches:   matchSvc,
		Query:     querySvc,
		IsHealthy: svcHealth.IsHealthy,
	})
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	stop()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
