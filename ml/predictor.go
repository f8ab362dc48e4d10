package ml

import (
	"errors"
	"fmt"
	"math"

	"farecast/trip"
	"farecast/zone"
)

// Prediction is the trip-start estimate for both targets.
type Prediction struct {
	DurationSeconds float64 `json:"duration_seconds"`
	FareUSD         float64 `json:"fare_usd"`
}

// Predictor serves single-request predictions from two loaded models, one per
// target. All shared state (models, schemas, zone table) is immutable after
// construction, so Predict is safe for unlimited concurrent callers.
type Predictor struct {
	duration *TrainedModel
	fare     *TrainedModel
	deriver  *Deriver
	cleaner  *trip.Cleaner
	zones    *zone.Map
}

// NewPredictor wires the loaded models to the cleaning and derivation path.
// Either model may be nil to serve a single target; the corresponding output
// stays zero. Schema validity is re-checked here so a mismatched artifact
// fails at startup, never on a live request.
func NewPredictor(duration, fare *TrainedModel, zones *zone.Map, deriver *Deriver, cleaner *trip.Cleaner) (*Predictor, error) {
	if duration == nil && fare == nil {
		return nil, errors.New("at least one model is required")
	}
	if duration != nil {
		if err := checkModel(duration, TargetDuration); err != nil {
			return nil, err
		}
	}
	if fare != nil {
		if err := checkModel(fare, TargetFare); err != nil {
			return nil, err
		}
	}
	if deriver == nil {
		deriver = NewDeriver(zones)
	}
	if cleaner == nil {
		cleaner = trip.NewCleaner(trip.ModeInference, trip.DefaultLimits(), zones)
	}
	return &Predictor{
		duration: duration,
		fare:     fare,
		deriver:  deriver,
		cleaner:  cleaner,
		zones:    zones,
	}, nil
}

func checkModel(tm *TrainedModel, want Target) error {
	if tm == nil || tm.Model == nil {
		return fmt.Errorf("%s model: %w", want, errNotFitted)
	}
	if tm.Target != want {
		return fmt.Errorf("model for target %q loaded where %q was expected", tm.Target, want)
	}
	if tm.Schema == nil {
		return fmt.Errorf("%s model: %w: no schema bundled", want, ErrSchemaMismatch)
	}
	return tm.Schema.Validate()
}

// Predict runs the full path for one request: clean, derive, infer, clamp.
// An uncleanable request returns a *trip.ValidationError, never a panic.
func (p *Predictor) Predict(req trip.Request) (Prediction, error) {
	raw := req.Raw()

	// A request may omit trip_distance; estimate it from zone centroids
	// before cleaning so the distance rule sees a usable value.
	if raw.TripDistance == 0 {
		if miles, ok := p.zones.CentroidMiles(raw.PickupLocationID, raw.DropoffLocationID); ok {
			raw.TripDistance = miles
		}
	}

	cleaned, rejection := p.cleaner.Clean(raw)
	if rejection != nil {
		return Prediction{}, &trip.ValidationError{
			Reason:  rejection.Reason,
			Message: rejection.Message,
		}
	}

	features := p.deriver.Derive(cleaned)

	duration, err := p.infer(p.duration, features)
	if err != nil {
		return Prediction{}, fmt.Errorf("duration inference: %w", err)
	}
	fare, err := p.infer(p.fare, features)
	if err != nil {
		return Prediction{}, fmt.Errorf("fare inference: %w", err)
	}

	// Final safety floor, independent of what the regressor outputs.
	return Prediction{
		DurationSeconds: math.Max(0, duration),
		FareUSD:         math.Max(0, fare),
	}, nil
}

func (p *Predictor) infer(tm *TrainedModel, features TripFeatures) (float64, error) {
	if tm == nil {
		return 0, nil
	}
	return tm.Model.Predict(tm.Schema.Encode(features))
}
