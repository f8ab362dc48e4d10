package trip

import "time"

// Rate code names from the TLC data dictionary. Raw files carry the numeric
// RatecodeID; ingestion maps it to these names.
const (
	RateStandard          = "standard"
	RateJFK               = "jfk"
	RateNewark            = "newark"
	RateNassauWestchester = "nassau_westchester"
	RateNegotiated        = "negotiated"
	RateGroupRide         = "group_ride"
)

// DefaultPassengerCount is substituted when a record omits passenger_count.
const DefaultPassengerCount = 1

// RawTripRecord is one row as read from the source dataset. Zero values mean
// the field was absent or malformed: a zero time, a zero location id or a
// zero passenger count all signal "not provided" and are resolved or rejected
// by the Cleaner.
type RawTripRecord struct {
	PickupTime        time.Time `json:"pickup_datetime"`
	DropoffTime       time.Time `json:"dropoff_datetime"`
	PickupLocationID  int       `json:"pickup_location_id"`
	DropoffLocationID int       `json:"dropoff_location_id"`
	TripDistance      float64   `json:"trip_distance"`
	FareAmount        float64   `json:"fare_amount"`
	PassengerCount    int       `json:"passenger_count"`
	RateCode          string    `json:"rate_code"`
	PaymentType       string    `json:"payment_type"`
}

// CleanedTripRecord is a validated trip row. In inference mode DropoffTime
// and FareAmount stay zero since they are unknown at trip start.
type CleanedTripRecord struct {
	PickupTime        time.Time `json:"pickup_datetime"`
	DropoffTime       time.Time `json:"dropoff_datetime"`
	PickupLocationID  int       `json:"pickup_location_id"`
	DropoffLocationID int       `json:"dropoff_location_id"`
	TripDistance      float64   `json:"trip_distance"`
	FareAmount        float64   `json:"fare_amount"`
	PassengerCount    int       `json:"passenger_count"`
	RateCode          string    `json:"rate_code"`
	PaymentType       string    `json:"payment_type"`
}

// DurationSeconds returns the trip duration target. Zero when the dropoff
// time is unset (inference mode).
func (c CleanedTripRecord) DurationSeconds() float64 {
	if c.DropoffTime.IsZero() {
		return 0
	}
	return c.DropoffTime.Sub(c.PickupTime).Seconds()
}

// Request is a single trip-start prediction request from the serving layer.
type Request struct {
	PickupTime        time.Time `json:"pickup_datetime"`
	PickupLocationID  int       `json:"pickup_location_id"`
	DropoffLocationID int       `json:"dropoff_location_id"`
	TripDistance      float64   `json:"trip_distance"`
	PassengerCount    int       `json:"passenger_count"`
	RateCode          string    `json:"rate_code"`
}

// Raw converts a request to a raw record for cleaning.
func (r Request) Raw() RawTripRecord {
	return RawTripRecord{
		PickupTime:        r.PickupTime,
		PickupLocationID:  r.PickupLocationID,
		DropoffLocationID: r.DropoffLocationID,
		TripDistance:      r.TripDistance,
		PassengerCount:    r.PassengerCount,
		RateCode:          r.RateCode,
	}
}

// ValidationError reports a request that could not be cleaned. It is returned
// to the caller as a structured result, never raised as a crash.
type ValidationError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason + ": " + e.Message
}
