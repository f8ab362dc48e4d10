package trip

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"farecast/zone"
)

// Rejection reason codes.
const (
	ReasonInvalidPickupTime  = "invalid_pickup_time"
	ReasonInvalidDropoffTime = "invalid_dropoff_time"
	ReasonNegativeDuration   = "negative_duration"
	ReasonExcessiveDuration  = "excessive_duration"
	ReasonInvalidDistance    = "invalid_distance"
	ReasonExcessiveDistance  = "excessive_distance"
	ReasonInvalidPassengers  = "invalid_passenger_count"
	ReasonUnknownPickupZone  = "unknown_pickup_zone"
	ReasonUnknownDropoffZone = "unknown_dropoff_zone"
	ReasonInvalidFare        = "invalid_fare"
)

var (
	recordsCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farecast_records_cleaned_total",
		Help: "Total number of trip records that passed cleaning.",
	})
	recordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farecast_records_rejected_total",
		Help: "Total number of trip records rejected during cleaning.",
	}, []string{"reason"})
)

// Mode selects which rules apply. Training mode validates the dropoff time
// and fare targets; inference mode only sees trip-start fields and tolerates
// unknown zones (the resolver maps them to a sentinel).
type Mode int

const (
	ModeTraining Mode = iota
	ModeInference
)

// Rejection is the structured outcome for a record that failed cleaning. It
// is a normal result, not an error: a batch with K bad rows yields K of these
// and keeps going.
type Rejection struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ValidationRule validates one aspect of a raw record. Apply may repair the
// record in place (the passenger-count default) and returns a Rejection when
// the record is unusable.
type ValidationRule interface {
	Name() string
	Apply(*RawTripRecord) *Rejection
}

// Limits holds the outlier ceilings. Records beyond a ceiling are rejected,
// not clipped, to avoid biasing the training distributions.
type Limits struct {
	MaxDistanceMiles   float64
	MaxDurationMinutes float64
	MaxPassengers      int
}

// DefaultLimits mirrors the documented defaults: 100 miles, 120 minutes,
// 8 passengers.
func DefaultLimits() Limits {
	return Limits{
		MaxDistanceMiles:   100,
		MaxDurationMinutes: 120,
		MaxPassengers:      8,
	}
}

// CleaningStats tracks cleaning outcomes per reason code.
type CleaningStats struct {
	Processed int64            `json:"processed"`
	Passed    int64            `json:"passed"`
	Rejected  int64            `json:"rejected"`
	Reasons   map[string]int64 `json:"reasons"`
	LastClean time.Time        `json:"last_clean"`
}

// Cleaner validates and sanitizes raw trip records through an ordered rule
// set. Safe for concurrent use; the stats counters are mutex-guarded.
type Cleaner struct {
	mode  Mode
	rules []ValidationRule

	statsLock sync.Mutex
	stats     CleaningStats
}

// NewCleaner builds a cleaner for the given mode. zones may be nil in
// inference mode, where zone membership is not enforced.
func NewCleaner(mode Mode, limits Limits, zones *zone.Map) *Cleaner {
	c := &Cleaner{
		mode:  mode,
		stats: CleaningStats{Reasons: make(map[string]int64)},
	}
	c.rules = append(c.rules, &pickupTimeRule{})
	if mode == ModeTraining {
		c.rules = append(c.rules, &dropoffTimeRule{maxDuration: minutes(limits.MaxDurationMinutes)})
	}
	c.rules = append(c.rules,
		&distanceRule{maxMiles: limits.MaxDistanceMiles},
		&passengerRule{max: limits.MaxPassengers},
	)
	if mode == ModeTraining {
		c.rules = append(c.rules,
			&zoneRule{zones: zones},
			&fareRule{},
		)
	}
	return c
}

// Clean validates one record. On success the returned Rejection is nil.
func (c *Cleaner) Clean(raw RawTripRecord) (CleanedTripRecord, *Rejection) {
	for _, rule := range c.rules {
		if rej := rule.Apply(&raw); rej != nil {
			c.record(rej)
			recordsRejected.WithLabelValues(rej.Reason).Inc()
			return CleanedTripRecord{}, rej
		}
	}
	c.pass()
	recordsCleaned.Inc()
	return CleanedTripRecord{
		PickupTime:        raw.PickupTime,
		DropoffTime:       raw.DropoffTime,
		PickupLocationID:  raw.PickupLocationID,
		DropoffLocationID: raw.DropoffLocationID,
		TripDistance:      raw.TripDistance,
		FareAmount:        raw.FareAmount,
		PassengerCount:    raw.PassengerCount,
		RateCode:          raw.RateCode,
		PaymentType:       raw.PaymentType,
	}, nil
}

// CleanBatch validates a batch. N rows with K bad rows yield N-K cleaned
// records and K categorized rejections.
func (c *Cleaner) CleanBatch(raws []RawTripRecord) ([]CleanedTripRecord, []Rejection) {
	cleaned := make([]CleanedTripRecord, 0, len(raws))
	var rejections []Rejection
	for _, raw := range raws {
		rec, rej := c.Clean(raw)
		if rej != nil {
			rejections = append(rejections, *rej)
			continue
		}
		cleaned = append(cleaned, rec)
	}
	return cleaned, rejections
}

// Stats returns a snapshot of the cleaning counters.
func (c *Cleaner) Stats() CleaningStats {
	c.statsLock.Lock()
	defer c.statsLock.Unlock()

	snapshot := c.stats
	snapshot.Reasons = make(map[string]int64, len(c.stats.Reasons))
	for reason, count := range c.stats.Reasons {
		snapshot.Reasons[reason] = count
	}
	return snapshot
}

func (c *Cleaner) record(rej *Rejection) {
	c.statsLock.Lock()
	defer c.statsLock.Unlock()
	c.stats.Processed++
	c.stats.Rejected++
	c.stats.Reasons[rej.Reason]++
	c.stats.LastClean = time.Now()
}

func (c *Cleaner) pass() {
	c.statsLock.Lock()
	defer c.statsLock.Unlock()
	c.stats.Processed++
	c.stats.Passed++
	c.stats.LastClean = time.Now()
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// ============ validation rules ============

type pickupTimeRule struct{}

func (r *pickupTimeRule) Name() string { return "pickup_time_validation" }

func (r *pickupTimeRule) Apply(rec *RawTripRecord) *Rejection {
	if rec.PickupTime.IsZero() {
		return &Rejection{Reason: ReasonInvalidPickupTime, Message: "pickup_datetime missing or malformed"}
	}
	return nil
}

type dropoffTimeRule struct {
	maxDuration time.Duration
}

func (r *dropoffTimeRule) Name() string { return "dropoff_time_validation" }

func (r *dropoffTimeRule) Apply(rec *RawTripRecord) *Rejection {
	if rec.DropoffTime.IsZero() {
		return &Rejection{Reason: ReasonInvalidDropoffTime, Message: "dropoff_datetime missing or malformed"}
	}
	duration := rec.DropoffTime.Sub(rec.PickupTime)
	if duration <= 0 {
		return &Rejection{
			Reason:  ReasonNegativeDuration,
			Message: fmt.Sprintf("dropoff %s not after pickup %s", rec.DropoffTime.Format(time.RFC3339), rec.PickupTime.Format(time.RFC3339)),
		}
	}
	if duration > r.maxDuration {
		return &Rejection{
			Reason:  ReasonExcessiveDuration,
			Message: fmt.Sprintf("duration %s exceeds ceiling %s", duration, r.maxDuration),
		}
	}
	return nil
}

type distanceRule struct {
	maxMiles float64
}

func (r *distanceRule) Name() string { return "distance_validation" }

func (r *distanceRule) Apply(rec *RawTripRecord) *Rejection {
	if rec.TripDistance <= 0 {
		return &Rejection{
			Reason:  ReasonInvalidDistance,
			Message: fmt.Sprintf("trip_distance %.2f is not positive", rec.TripDistance),
		}
	}
	if rec.TripDistance > r.maxMiles {
		return &Rejection{
			Reason:  ReasonExcessiveDistance,
			Message: fmt.Sprintf("trip_distance %.2f exceeds ceiling %.2f", rec.TripDistance, r.maxMiles),
		}
	}
	return nil
}

type passengerRule struct {
	max int
}

func (r *passengerRule) Name() string { return "passenger_validation" }

func (r *passengerRule) Apply(rec *RawTripRecord) *Rejection {
	if rec.PassengerCount == 0 {
		rec.PassengerCount = DefaultPassengerCount
	}
	if rec.PassengerCount < 0 || rec.PassengerCount > r.max {
		return &Rejection{
			Reason:  ReasonInvalidPassengers,
			Message: fmt.Sprintf("passenger_count %d outside (0, %d]", rec.PassengerCount, r.max),
		}
	}
	return nil
}

type zoneRule struct {
	zones *zone.Map
}

func (r *zoneRule) Name() string { return "zone_validation" }

func (r *zoneRule) Apply(rec *RawTripRecord) *Rejection {
	if r.zones == nil {
		return nil
	}
	if !r.zones.Contains(rec.PickupLocationID) {
		return &Rejection{
			Reason:  ReasonUnknownPickupZone,
			Message: fmt.Sprintf("pickup_location_id %d not in zone table", rec.PickupLocationID),
		}
	}
	if !r.zones.Contains(rec.DropoffLocationID) {
		return &Rejection{
			Reason:  ReasonUnknownDropoffZone,
			Message: fmt.Sprintf("dropoff_location_id %d not in zone table", rec.DropoffLocationID),
		}
	}
	return nil
}

type fareRule struct{}

func (r *fareRule) Name() string { return "fare_validation" }

func (r *fareRule) Apply(rec *RawTripRecord) *Rejection {
	if rec.FareAmount <= 0 {
		return &Rejection{
			Reason:  ReasonInvalidFare,
			Message: fmt.Sprintf("fare_amount %.2f is not positive", rec.FareAmount),
		}
	}
	return nil
}
