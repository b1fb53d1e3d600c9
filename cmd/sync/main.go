package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"flightspotter-service/internal/infrastructure/config"
	"flightspotter-service/internal/infrastructure/persistence"
	mongoRepo "flightspotter-service/internal/interface/repository"
	"flightspotter-service/internal/usecase"
	"flightspotter-service/pkg/logger"
	"flightspotter-service/pkg/metrics"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting aircraft sync")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	datasetPath := flag.String("dataset", cfg.SyncDatasetPath, "path to the bulk aircraft dataset")
	workers := flag.Int("workers", cfg.SyncWorkers, "number of concurrent row workers")
	flag.Parse()

	// Cancel on interrupt; in-flight rows finish, no new rows start
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("Received signal, stopping", "signal", sig)
		cancel()
	}()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer mongoClient.Disconnect(context.Background())

	dataset, err := os.Open(*datasetPath)
	if err != nil {
		log.Fatal("Failed to open dataset", "path", *datasetPath, "error", err)
	}
	defer dataset.Close()

	aircraftRepo := mongoRepo.NewMongoAircraftRepository(db)
	syncMetrics := metrics.NewMetrics("flightspotter")
	syncer := usecase.NewAircraftSyncer(aircraftRepo, log, syncMetrics, *workers)

	result, err := syncer.Sync(ctx, dataset)
	if err != nil {
		log.Fatal("Sync failed", "error", err)
	}

	log.Info("Aircraft sync finished",
		"inserted", result.Inserted,
		"merged", result.Merged,
		"skipped", result.Skipped,
		"conflicts", result.Conflicts,
	)
}
