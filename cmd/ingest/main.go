package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/geoplace/geocore/internal/backend"
	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/logging"
	"github.com/geoplace/geocore/internal/osm"
	"github.com/geoplace/geocore/internal/place"
)

// cmd/ingest drives the OSM admin and street ingestion pipeline (C4/C5)
// against a PBF extract, writing the resulting documents to the configured
// search backend in batches (§5's "bulk indexing ... streamed").
func main() {
	pbfPath := flag.String("pbf", "", "path to an OSM PBF extract")
	useSpill := flag.Bool("spill", false, "route the OSM object map through a MongoDB store and read it back from there")
	flag.Parse()

	if *pbfPath == "" {
		panic("ingest: -pbf is required")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting OSM ingestion", zap.String("pbf", *pbfPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("ingestion interrupted, cancelling the in-flight batch and exiting")
		cancel()
	}()

	var src osm.Source = osm.NewPBFSource(*pbfPath)
	boundary := osm.OrbBoundaryBuilder{}

	if *useSpill {
		// SpillingSource routes every GetObjsAndDeps call through
		// GetObjsAndDepsStore, writing the matched nodes/ways to Mongo and
		// reading them back into an in-memory Objects value (§9). The PBF
		// scan still collects the matches in memory before writing them, so
		// the full object map is held in process memory with or without
		// -spill.
		spill, err := osm.NewMongoStore(ctx, cfg.Mongo.URL, "geocore_ingest")
		if err != nil {
			logger.Fatal("failed to open object spill store", zap.Error(err))
		}
		defer spill.Close()
		src = osm.SpillingSource{Source: src, Store: spill}
	}

	admins, err := osm.ReadAdmins(src, cfg.Ingest.AdminLevels, cfg.Ingest.CityLevel, boundary, logger)
	if err != nil {
		logger.Fatal("admin ingestion failed", zap.Error(err))
	}
	logger.Info("admin ingestion complete", zap.Int("count", len(admins)))

	geofinder := osm.NewRingGeofinder(admins)

	streets, err := osm.ReadStreets(src, geofinder, logger)
	if err != nil {
		logger.Fatal("street ingestion failed", zap.Error(err))
	}
	logger.Info("street ingestion complete", zap.Int("count", len(streets)))

	be, err := backend.NewESExecutor(backend.ESConfig{
		URL:     cfg.Backend.URL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize backend writer", zap.Error(err))
	}

	if err := bulkIndex(ctx, be, "place_admin", admins, cfg.Ingest.NbThreads, logger); err != nil {
		logger.Fatal("bulk index of admins failed", zap.Error(err))
	}
	if err := bulkIndex(ctx, be, "place_street", streets, cfg.Ingest.NbThreads, logger); err != nil {
		logger.Fatal("bulk index of streets failed", zap.Error(err))
	}

	logger.Info("ingestion finished")
}

// bulkIndex submits places in fixed-size batches (§5's streamed bulk
// indexing), aborting the whole import on the first batch failure rather
// than continuing with a partially-indexed dataset.
func bulkIndex(ctx context.Context, be backend.Backend, index string, places []place.Place, batchSize int, logger *zap.Logger) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	bulk, ok := be.(backend.BulkIndexer)
	if !ok {
		logger.Warn("backend does not support bulk indexing, skipping", zap.String("index", index))
		return nil
	}

	for start := 0; start < len(places); start += batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		end := start + batchSize
		if end > len(places) {
			end = len(places)
		}
		batch := places[start:end]
		if err := bulk.BulkIndex(ctx, index, batch); err != nil {
			return err
		}
		logger.Info("indexed batch", zap.String("index", index), zap.Int("from", start), zap.Int("to", end))
	}
	return nil
}
