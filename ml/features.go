// Package ml derives feature vectors from cleaned trip records, trains the
// duration and fare regressors and serves predictions from the fitted
// artifacts. The feature schema is fitted once at training time and bundled
// with every model so training and inference can never drift apart.
package ml

import (
	"time"

	"farecast/trip"
	"farecast/zone"
)

// Target names one of the two prediction targets.
type Target string

const (
	TargetDuration Target = "duration"
	TargetFare     Target = "fare"
)

// TripFeatures is the fixed feature set derived from a cleaned record. Every
// field is a function of trip-start data only; dropoff_datetime and
// fare_amount never contribute.
type TripFeatures struct {
	TripDistance   float64 `json:"trip_distance"`
	HourOfDay      int     `json:"hour_of_day"`
	DayOfWeek      int     `json:"day_of_week"`
	IsWeekend      bool    `json:"is_weekend"`
	IsRushHour     bool    `json:"is_rush_hour"`
	RateCode       string  `json:"rate_code"`
	PickupZone     string  `json:"pickup_zone"`
	DropoffZone    string  `json:"dropoff_zone"`
	PassengerCount int     `json:"passenger_count"`
}

// FeatureNames returns the feature order shared by every schema and vector.
func FeatureNames() []string {
	return []string{
		"trip_distance",
		"hour_of_day",
		"day_of_week",
		"is_weekend",
		"is_rush_hour",
		"rate_code",
		"pickup_zone",
		"dropoff_zone",
		"passenger_count",
	}
}

// categoricalFeatures are the features encoded through a fitted vocabulary.
func categoricalFeatures() []string {
	return []string{"rate_code", "pickup_zone", "dropoff_zone"}
}

// HourRange is an inclusive window of hours, e.g. {7, 9} covers 07:00-09:59.
type HourRange struct {
	Start int
	End   int
}

// DefaultRushWindows covers the weekday morning and evening peaks.
func DefaultRushWindows() []HourRange {
	return []HourRange{{Start: 7, End: 9}, {Start: 16, End: 18}}
}

// Deriver maps cleaned records to feature structs. Pure and deterministic:
// it reads only the record itself and the immutable zone table.
type Deriver struct {
	zones       *zone.Map
	rushWindows []HourRange
}

// NewDeriver builds a deriver with the default rush-hour windows.
func NewDeriver(zones *zone.Map) *Deriver {
	return &Deriver{zones: zones, rushWindows: DefaultRushWindows()}
}

// NewDeriverWithWindows builds a deriver with custom rush-hour windows.
func NewDeriverWithWindows(zones *zone.Map, windows []HourRange) *Deriver {
	if len(windows) == 0 {
		windows = DefaultRushWindows()
	}
	return &Deriver{zones: zones, rushWindows: windows}
}

// Derive produces the feature struct for one cleaned record.
func (d *Deriver) Derive(rec trip.CleanedTripRecord) TripFeatures {
	hour := rec.PickupTime.Hour()
	weekday := rec.PickupTime.Weekday()
	weekend := weekday == time.Saturday || weekday == time.Sunday

	return TripFeatures{
		TripDistance:   rec.TripDistance,
		HourOfDay:      hour,
		DayOfWeek:      int(weekday),
		IsWeekend:      weekend,
		IsRushHour:     !weekend && d.inRushWindow(hour),
		RateCode:       rec.RateCode,
		PickupZone:     d.zones.Resolve(rec.PickupLocationID).Zone,
		DropoffZone:    d.zones.Resolve(rec.DropoffLocationID).Zone,
		PassengerCount: rec.PassengerCount,
	}
}

// DeriveBatch derives features for a cleaned dataset.
func (d *Deriver) DeriveBatch(recs []trip.CleanedTripRecord) []TripFeatures {
	features := make([]TripFeatures, len(recs))
	for i, rec := range recs {
		features[i] = d.Derive(rec)
	}
	return features
}

func (d *Deriver) inRushWindow(hour int) bool {
	for _, window := range d.rushWindows {
		if hour >= window.Start && hour <= window.End {
			return true
		}
	}
	return false
}
