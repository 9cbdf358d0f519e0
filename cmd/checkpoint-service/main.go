package main

import (
	"fmt"
	"os"

	"checkpoint-service/internal/config"
	"checkpoint-service/internal/db"
	httphandler "checkpoint-service/internal/http"
	"checkpoint-service/internal/logger"
	"checkpoint-service/internal/repository"
	"checkpoint-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	vehicleRepo := repository.NewVehicleRepository(database)
	checkpointRepo := repository.NewCheckpointRepository(database)
	scanLogRepo := repository.NewScanLogRepository(database)
	analyticsRepo := repository.NewAnalyticsRepository(database)

	ingestService := service.NewIngestService(database, cfg.Ingest.TerminalSuffix, appLogger)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	trackingService := service.NewTrackingService(
		database,
		vehicleRepo,
		checkpointRepo,
		scanLogRepo,
		analyticsRepo,
		cfg.Ingest.TerminalSuffix,
	)

	handler := httphandler.NewHandler(ingestService, analyticsService, trackingService, appLogger)
	router := httphandler.NewRouter(handler, cfg.Environment, cfg.Ingest.MaxUploadBytes)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting checkpoint service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
