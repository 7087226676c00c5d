// Command sentineld is the main executable for the Sentinel Console backend
// service. It initializes the database, domain services, background
// maintenance, and the HTTP API server, and handles graceful shutdown when
// terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/api"
	"sentinel-console/internal/config"
	"sentinel-console/internal/maintenance"
	"sentinel-console/internal/service"
	"sentinel-console/internal/store"
)

var logLevelFlag string

// parseFlags parses command line flags and returns the config path
func parseFlags() string {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()
	return *configPath
}

func main() {
	configPath := parseFlags()

	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(logLevelFlag)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Use colored console output for development
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting Sentinel Console")

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}

	// Initialize database
	log.Info().Str("path", cfg.Database.Path).Msg("Initializing database")
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Initialize domain services
	logService := service.NewActivityLogService(db)
	userService := service.NewUserService(db)
	clientService := service.NewClientService(db)
	threatService := service.NewThreatService(db)
	systemService := service.NewSystemService(db)
	scanService := service.NewScanService(db)
	metricService := service.NewMetricService(db)
	reportService := service.NewReportService(db)

	// Start background maintenance
	maintenanceService := maintenance.New(cfg, db, logService)
	if err := maintenanceService.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start maintenance service")
	}

	// Initialize router and API handlers
	router := mux.NewRouter()

	api.NewUserHandler(userService, logService).RegisterRoutes(router)
	api.NewClientHandler(clientService, logService).RegisterRoutes(router)
	api.NewThreatHandler(threatService, logService).RegisterRoutes(router)
	api.NewSystemHandler(systemService, logService).RegisterRoutes(router)
	api.NewScanHandler(scanService, logService).RegisterRoutes(router)
	api.NewMetricHandler(metricService, logService).RegisterRoutes(router)
	api.NewReportHandler(reportService, logService).RegisterRoutes(router)
	api.NewActivityLogHandler(logService).RegisterRoutes(router)
	api.NewStatusHandler(db, cfg).RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	// Set up CORS
	corsMiddleware := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-User-ID"}),
	)

	// Set up HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      corsMiddleware(router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for termination signal
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signalChan
	log.Info().Str("signal", sig.String()).Msg("Received termination signal")

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	log.Info().Msg("Shutting down HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Stopping maintenance service")
	if err := maintenanceService.Stop(); err != nil {
		log.Error().Err(err).Msg("Maintenance service shutdown failed")
	}

	log.Info().Msg("Optimizing database before exit")
	if err := db.Optimize(); err != nil {
		log.Error().Err(err).Msg("Database optimization failed")
	}

	log.Info().Msg("Sentinel Console has been shut down gracefully")
}
