package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"flightspotter-service/internal/infrastructure/config"
	"flightspotter-service/internal/infrastructure/persistence"
	mongoRepo "flightspotter-service/internal/interface/repository"
	"flightspotter-service/internal/usecase"
	"flightspotter-service/pkg/logger"
	"flightspotter-service/pkg/metrics"
	"flightspotter-service/pkg/utils"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting FlightSpotter Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	flightTableRepo := mongoRepo.NewMongoFlightTableRepository(db)
	locationRepository := mongoRepo.NewGormLocationRepository(gormDB)

	// Reference data and read-path services
	appMetrics := metrics.NewMetrics("flightspotter")
	clock := clockwork.NewRealClock()
	prefixes := utils.LoadPrefixData(cfg.PrefixDataPath, log)
	normalizer := utils.NewFlightNormalizer(prefixes, clock)
	partitions := utils.NewPartitionKeyBuilder(locationRepository, clock, log)
	flightService := usecase.NewFlightService(flightTableRepo, normalizer, partitions, log, appMetrics)

	// Set up HTTP server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	mux.HandleFunc("/flights", func(w http.ResponseWriter, r *http.Request) {
		order := sortOrder(r)
		writeJSON(w, log, flightService.ListFlights(r.Context(), order))
	})

	mux.HandleFunc("/flights/location", func(w http.ResponseWriter, r *http.Request) {
		locationID := r.URL.Query().Get("id")
		if locationID == "" {
			http.Error(w, "missing location id", http.StatusBadRequest)
			return
		}
		days, _ := strconv.Atoi(r.URL.Query().Get("days"))
		order := sortOrder(r)
		writeJSON(w, log, flightService.ListFlightsForLocation(r.Context(), locationID, days, order))
	})

	mux.HandleFunc("/debug/entities", func(w http.ResponseWriter, r *http.Request) {
		count, err := strconv.Atoi(r.URL.Query().Get("count"))
		if err != nil || count <= 0 {
			count = cfg.RawDumpLimit
		}
		entities := flightService.RawEntities(r.Context(), count)
		writeJSON(w, log, map[string]interface{}{
			"count":    len(entities),
			"entities": entities,
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("FlightSpotter Service stopped")
}

func sortOrder(r *http.Request) string {
	if r.URL.Query().Get("sort") == usecase.SortDescending {
		return usecase.SortDescending
	}
	return usecase.SortAscending
}

func writeJSON(w http.ResponseWriter, log logger.Logger, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
