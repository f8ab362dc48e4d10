package ml

import (
	"testing"
	"time"

	"farecast/trip"
)

// syntheticDataset derives features for a spread of trips whose duration is an
// exact linear function of distance, so the linear candidate can win cleanly.
func syntheticDataset(t *testing.T) ([][]float64, []float64, *Schema) {
	t.Helper()
	deriver := NewDeriver(testZones(t))

	locations := []int{132, 161, 234}
	var records []trip.CleanedTripRecord
	for i := 0; i < 80; i++ {
		pickup := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * 7 * time.Hour)
		distance := 0.5 + float64(i%17)*0.7
		rate := trip.RateStandard
		if i%5 == 0 {
			rate = trip.RateNegotiated
		}
		records = append(records, trip.CleanedTripRecord{
			PickupTime:        pickup,
			DropoffTime:       pickup.Add(time.Duration(distance*180) * time.Second),
			PickupLocationID:  locations[i%3],
			DropoffLocationID: locations[(i+1)%3],
			TripDistance:      distance,
			FareAmount:        2.5 + distance*2.5,
			PassengerCount:    1 + i%4,
			RateCode:          rate,
		})
	}

	features := deriver.DeriveBatch(records)
	schema := FitVocab(features)
	vectors := schema.EncodeBatch(features)
	targets := make([]float64, len(records))
	for i, rec := range records {
		targets[i] = rec.DurationSeconds()
	}
	return vectors, targets, schema
}

func TestTrainSelectsLinearOnLinearData(t *testing.T) {
	vectors, targets, schema := syntheticDataset(t)

	model, err := Train(vectors, targets, TargetDuration, schema, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.ModelType != ModelLinear {
		t.Fatalf("expected linear winner on linear data, got %s (mae=%.4f)", model.ModelType, model.Metrics.MAE)
	}
	if model.Metrics.MAE > 1 {
		t.Fatalf("expected near-zero MAE, got %.4f", model.Metrics.MAE)
	}
	if model.Metrics.TestSize == 0 {
		t.Fatal("expected a held-out partition")
	}
}

func TestTrainReproducible(t *testing.T) {
	vectors, targets, schema := syntheticDataset(t)
	cfg := DefaultTrainConfig()

	first, err := Train(vectors, targets, TargetDuration, schema, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Train(vectors, targets, TargetDuration, schema, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ModelType != second.ModelType {
		t.Fatalf("expected identical selection, got %s and %s", first.ModelType, second.ModelType)
	}
	if first.Metrics != second.Metrics {
		t.Fatalf("expected identical metrics, got %+v and %+v", first.Metrics, second.Metrics)
	}
}

func TestTrainDoesNotMutateInputs(t *testing.T) {
	vectors, targets, schema := syntheticDataset(t)

	vectorCopy := make([][]float64, len(vectors))
	for i, row := range vectors {
		vectorCopy[i] = append([]float64(nil), row...)
	}
	targetCopy := append([]float64(nil), targets...)

	if _, err := Train(vectors, targets, TargetDuration, schema, DefaultTrainConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range vectors {
		for j := range vectors[i] {
			if vectors[i][j] != vectorCopy[i][j] {
				t.Fatalf("training mutated vector %d", i)
			}
		}
	}
	for i := range targets {
		if targets[i] != targetCopy[i] {
			t.Fatalf("training mutated target %d", i)
		}
	}
}

func TestTrainRejectsEmptyDataset(t *testing.T) {
	schema := FitVocab(nil)
	if _, err := Train(nil, nil, TargetFare, schema, DefaultTrainConfig()); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}
