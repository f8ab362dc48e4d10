package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"farecast/config"
	"farecast/db"
	"farecast/ml"
	"farecast/trip"
	"farecast/zone"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	tripsPath := flag.String("trips", "", "trips CSV path (overrides config)")
	zonesPath := flag.String("zones", "", "zone table CSV path (overrides config)")
	skipStore := flag.Bool("skip_store", false, "do not persist cleaned trips to the database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *tripsPath != "" {
		cfg.Data.TripsCSV = *tripsPath
	}
	if *zonesPath != "" {
		cfg.Data.ZonesCSV = *zonesPath
	}
	if cfg.Data.TripsCSV == "" {
		log.Fatal("trips CSV path is required")
	}

	zones, err := zone.Load(cfg.Data.ZonesCSV)
	if err != nil {
		log.Fatalf("failed to load zone table: %v", err)
	}
	log.Printf("zone table loaded: %d zones", zones.Len())

	raws, err := trip.ReadTripsFile(cfg.Data.TripsCSV)
	if err != nil {
		log.Fatalf("failed to read trips: %v", err)
	}
	log.Printf("read %d raw trip records", len(raws))

	cleaner := trip.NewCleaner(trip.ModeTraining, cfg.Limits(), zones)
	cleaned, _ := cleaner.CleanBatch(raws)
	stats := cleaner.Stats()
	log.Printf("cleaning done: processed=%d passed=%d rejected=%d", stats.Processed, stats.Passed, stats.Rejected)
	for reason, count := range stats.Reasons {
		log.Printf("  rejected %s: %d", reason, count)
	}
	if len(cleaned) == 0 {
		log.Fatal("no usable records after cleaning")
	}

	if !*skipStore && cfg.Database.Path != "" {
		if err := db.InitDB(cfg.Database.Path); err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		defer db.CloseDB()
		if err := db.SaveTrips(cleaned); err != nil {
			log.Fatalf("failed to store cleaned trips: %v", err)
		}
		log.Printf("stored %d cleaned trips in %s", len(cleaned), cfg.Database.Path)
	}

	deriver := ml.NewDeriverWithWindows(zones, cfg.RushWindows())
	features := deriver.DeriveBatch(cleaned)
	schema := ml.FitVocab(features)
	vectors := schema.EncodeBatch(features)

	durations := make([]float64, len(cleaned))
	fares := make([]float64, len(cleaned))
	for i, rec := range cleaned {
		durations[i] = rec.DurationSeconds()
		fares[i] = rec.FareAmount
	}

	trainTarget(vectors, durations, ml.TargetDuration, schema, cfg, cfg.Models.DurationPath, *skipStore)
	trainTarget(vectors, fares, ml.TargetFare, schema, cfg, cfg.Models.FarePath, *skipStore)
	fmt.Println("training complete")
}

func trainTarget(vectors [][]float64, targets []float64, target ml.Target, schema *ml.Schema, cfg *config.Config, path string, skipStore bool) {
	model, err := ml.Train(vectors, targets, target, schema, cfg.Training)
	if err != nil {
		log.Fatalf("failed to train %s model: %v", target, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := ml.SaveArtifact(path, model); err != nil {
		log.Fatalf("failed to save %s model: %v", target, err)
	}
	log.Printf("saved %s model (%s, mae=%.4f rmse=%.4f) to %s",
		target, model.ModelType, model.Metrics.MAE, model.Metrics.RMSE, path)

	if !skipStore && cfg.Database.Path != "" {
		entry := db.TrainingLog{
			Target:     string(target),
			ModelType:  model.ModelType,
			MAE:        model.Metrics.MAE,
			RMSE:       model.Metrics.RMSE,
			TrainedAt:  time.Now().UTC(),
			DataPoints: model.Metrics.TrainSize + model.Metrics.TestSize,
		}
		if err := db.SaveTrainingLog(entry); err != nil {
			log.Printf("failed to record training log: %v", err)
		}
	}
}
