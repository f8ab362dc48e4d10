package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"farecast/config"
	"farecast/ml"
	"farecast/trip"
	"farecast/zone"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	pickupID := flag.Int("pickup_id", 0, "pickup location id")
	dropoffID := flag.Int("dropoff_id", 0, "dropoff location id")
	pickupTime := flag.String("pickup_time", "", "pickup time, e.g. 2022-05-02 08:15:00 (default: now)")
	distance := flag.Float64("distance", 0, "trip distance in miles (0: estimate from zone centroids)")
	passengers := flag.Int("passengers", 1, "passenger count")
	rateCode := flag.String("rate_code", trip.RateStandard, "rate code")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zones, err := zone.Load(cfg.Data.ZonesCSV)
	if err != nil {
		log.Fatalf("failed to load zone table: %v", err)
	}

	duration, err := ml.LoadArtifact(cfg.Models.DurationPath)
	if err != nil {
		log.Fatalf("failed to load duration model: %v", err)
	}
	fare, err := ml.LoadArtifact(cfg.Models.FarePath)
	if err != nil {
		log.Fatalf("failed to load fare model: %v", err)
	}

	deriver := ml.NewDeriverWithWindows(zones, cfg.RushWindows())
	cleaner := trip.NewCleaner(trip.ModeInference, cfg.Limits(), zones)
	predictor, err := ml.NewPredictor(duration, fare, zones, deriver, cleaner)
	if err != nil {
		log.Fatalf("failed to build predictor: %v", err)
	}

	when := time.Now()
	if *pickupTime != "" {
		when, err = time.Parse("2006-01-02 15:04:05", *pickupTime)
		if err != nil {
			log.Fatalf("invalid pickup_time: %v", err)
		}
	}

	prediction, err := predictor.Predict(trip.Request{
		PickupTime:        when,
		PickupLocationID:  *pickupID,
		DropoffLocationID: *dropoffID,
		TripDistance:      *distance,
		PassengerCount:    *passengers,
		RateCode:          *rateCode,
	})
	if err != nil {
		log.Fatalf("prediction failed: %v", err)
	}

	fmt.Printf("duration: %.0f seconds (%.1f minutes)\n", prediction.DurationSeconds, prediction.DurationSeconds/60)
	fmt.Printf("fare: $%.2f\n", prediction.FareUSD)
}
