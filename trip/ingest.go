package trip

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"farecast/internal/csvenc"
)

// Time layouts seen across TLC extracts.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006 03:04:05 PM",
}

// rateCodeNames maps the numeric RatecodeID column to rate code names.
var rateCodeNames = map[string]string{
	"1": RateStandard,
	"2": RateJFK,
	"3": RateNewark,
	"4": RateNassauWestchester,
	"5": RateNegotiated,
	"6": RateGroupRide,
}

// ReadTripsFile reads raw trip records from a CSV file.
func ReadTripsFile(path string) ([]RawTripRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trips file: %w", err)
	}
	defer file.Close()
	return ReadTrips(file)
}

// ReadTrips reads raw trip records from a CSV stream. Column names are matched
// case-insensitively and the tpep_/lpep_ datetime prefixes used by yellow and
// green cab extracts are accepted. Malformed cell values are left as zero
// values for the Cleaner to categorize; only structural CSV errors fail the
// read.
func ReadTrips(r io.Reader) ([]RawTripRecord, error) {
	decoded, err := csvenc.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("decode trips: %w", err)
	}

	reader := csv.NewReader(decoded)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read trips header: %w", err)
	}
	cols := mapColumns(header)

	var records []RawTripRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trips row: %w", err)
		}
		records = append(records, parseRow(row, cols))
	}
	return records, nil
}

type columnIndex struct {
	pickupTime  int
	dropoffTime int
	pickupLoc   int
	dropoffLoc  int
	distance    int
	fare        int
	passengers  int
	rateCode    int
	paymentType int
}

func mapColumns(header []string) columnIndex {
	cols := columnIndex{
		pickupTime: -1, dropoffTime: -1, pickupLoc: -1, dropoffLoc: -1,
		distance: -1, fare: -1, passengers: -1, rateCode: -1, paymentType: -1,
	}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "pickup_datetime", "tpep_pickup_datetime", "lpep_pickup_datetime":
			cols.pickupTime = i
		case "dropoff_datetime", "tpep_dropoff_datetime", "lpep_dropoff_datetime":
			cols.dropoffTime = i
		case "pulocationid", "pickup_location_id":
			cols.pickupLoc = i
		case "dolocationid", "dropoff_location_id":
			cols.dropoffLoc = i
		case "trip_distance":
			cols.distance = i
		case "fare_amount":
			cols.fare = i
		case "passenger_count":
			cols.passengers = i
		case "ratecodeid", "rate_code":
			cols.rateCode = i
		case "payment_type":
			cols.paymentType = i
		}
	}
	return cols
}

func parseRow(row []string, cols columnIndex) RawTripRecord {
	return RawTripRecord{
		PickupTime:        parseTime(cell(row, cols.pickupTime)),
		DropoffTime:       parseTime(cell(row, cols.dropoffTime)),
		PickupLocationID:  parseInt(cell(row, cols.pickupLoc)),
		DropoffLocationID: parseInt(cell(row, cols.dropoffLoc)),
		TripDistance:      parseFloat(cell(row, cols.distance)),
		FareAmount:        parseFloat(cell(row, cols.fare)),
		PassengerCount:    parseInt(cell(row, cols.passengers)),
		RateCode:          parseRateCode(cell(row, cols.rateCode)),
		PaymentType:       strings.TrimSpace(cell(row, cols.paymentType)),
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseInt(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	// passenger_count arrives as "1.0" in some parquet-converted extracts
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseRateCode(value string) string {
	value = strings.TrimSpace(value)
	if name, ok := rateCodeNames[value]; ok {
		return name
	}
	return strings.ToLower(value)
}
