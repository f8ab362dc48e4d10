package ml

import (
	"errors"
	"testing"
	"time"

	"farecast/trip"
)

func testPredictor(t *testing.T) *Predictor {
	t.Helper()
	vectors, durations, schema := syntheticDataset(t)

	duration, err := Train(vectors, durations, TargetDuration, schema, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fares := make([]float64, len(durations))
	for i, d := range durations {
		fares[i] = 2.5 + d/120
	}
	fare, err := Train(vectors, fares, TargetFare, schema, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	predictor, err := NewPredictor(duration, fare, testZones(t), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return predictor
}

func validRequest() trip.Request {
	return trip.Request{
		PickupTime:        time.Date(2022, 5, 2, 8, 15, 0, 0, time.UTC),
		PickupLocationID:  161,
		DropoffLocationID: 234,
		TripDistance:      3.2,
		PassengerCount:    1,
		RateCode:          trip.RateStandard,
	}
}

func TestPredictReturnsBothTargets(t *testing.T) {
	predictor := testPredictor(t)

	prediction, err := predictor.Predict(validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prediction.DurationSeconds <= 0 {
		t.Fatalf("expected positive duration, got %.2f", prediction.DurationSeconds)
	}
	if prediction.FareUSD <= 0 {
		t.Fatalf("expected positive fare, got %.2f", prediction.FareUSD)
	}
}

func TestPredictUnknownZoneStillScores(t *testing.T) {
	predictor := testPredictor(t)

	req := validRequest()
	req.PickupLocationID = 999

	prediction, err := predictor.Predict(req)
	if err != nil {
		t.Fatalf("expected a prediction for an unknown zone, got: %v", err)
	}
	if prediction.DurationSeconds < 0 || prediction.FareUSD < 0 {
		t.Fatalf("expected non-negative outputs, got %+v", prediction)
	}
}

func TestPredictInvalidDistanceIsValidationError(t *testing.T) {
	predictor := testPredictor(t)

	req := validRequest()
	req.TripDistance = -1

	_, err := predictor.Predict(req)
	var validationErr *trip.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Reason != trip.ReasonInvalidDistance {
		t.Fatalf("expected reason %q, got %q", trip.ReasonInvalidDistance, validationErr.Reason)
	}
}

func TestPredictMissingDistanceUsesCentroidEstimate(t *testing.T) {
	predictor := testPredictor(t)

	req := validRequest()
	req.TripDistance = 0 // both zones carry centroids in the test table

	if _, err := predictor.Predict(req); err != nil {
		t.Fatalf("expected centroid distance estimate, got: %v", err)
	}
}

func TestPredictMissingDistanceWithoutCentroidsRejected(t *testing.T) {
	predictor := testPredictor(t)

	req := validRequest()
	req.TripDistance = 0
	req.PickupLocationID = 999 // no centroid for unknown zones

	_, err := predictor.Predict(req)
	var validationErr *trip.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPredictClampsNegativeOutputs(t *testing.T) {
	schema := FitVocab(nil)
	weights := make([]float64, len(FeatureNames()))
	negative := &TrainedModel{
		Target:    TargetDuration,
		ModelType: ModelLinear,
		Model:     &LinearModel{Intercept: -500, Weights: weights},
		Schema:    schema,
	}
	fare := &TrainedModel{
		Target:    TargetFare,
		ModelType: ModelLinear,
		Model:     &LinearModel{Intercept: -10, Weights: weights},
		Schema:    schema,
	}

	predictor, err := NewPredictor(negative, fare, testZones(t), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prediction, err := predictor.Predict(validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prediction.DurationSeconds != 0 || prediction.FareUSD != 0 {
		t.Fatalf("expected outputs clamped to zero, got %+v", prediction)
	}
}

func TestNewPredictorRejectsSchemaMismatch(t *testing.T) {
	vectors, durations, schema := syntheticDataset(t)
	duration, err := Train(vectors, durations, TargetDuration, schema, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fare := *duration
	fare.Target = TargetFare

	stale := *schema
	stale.Features = stale.Features[1:]
	staleDuration := *duration
	staleDuration.Schema = &stale

	_, err = NewPredictor(&staleDuration, &fare, testZones(t), nil, nil)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestPredictDurationOnly(t *testing.T) {
	vectors, durations, schema := syntheticDataset(t)
	duration, err := Train(vectors, durations, TargetDuration, schema, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	predictor, err := NewPredictor(duration, nil, testZones(t), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prediction, err := predictor.Predict(validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prediction.DurationSeconds <= 0 {
		t.Fatalf("expected positive duration, got %.2f", prediction.DurationSeconds)
	}
	if prediction.FareUSD != 0 {
		t.Fatalf("expected zero fare without a fare model, got %.2f", prediction.FareUSD)
	}

	if _, err := NewPredictor(nil, nil, testZones(t), nil, nil); err == nil {
		t.Fatal("expected error when no model is supplied")
	}
}

func TestNewPredictorRejectsSwappedTargets(t *testing.T) {
	vectors, durations, schema := syntheticDataset(t)
	duration, err := Train(vectors, durations, TargetDuration, schema, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewPredictor(duration, duration, testZones(t), nil, nil); err == nil {
		t.Fatal("expected error for a duration model in the fare slot")
	}
}
