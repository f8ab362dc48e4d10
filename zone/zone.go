// Package zone maps TLC location ids to taxi zone names and boroughs. The
// zone table is loaded once at process start and is read-only afterwards.
package zone

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"farecast/internal/csvenc"
)

// Unknown is the sentinel label for location ids outside the zone table.
const Unknown = "unknown_zone"

const earthRadiusMiles = 3958.8

// Info describes one taxi zone. Lat/Lon hold the zone centroid when the
// reference file provides one; both zero means no centroid is known.
type Info struct {
	LocationID int
	Zone       string
	Borough    string
	Lat        float64
	Lon        float64
}

// Map is the in-memory zone table shared by all lookups.
type Map struct {
	zones map[int]Info
}

// Load reads the zone reference CSV from path.
func Load(path string) (*Map, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zone table: %w", err)
	}
	defer file.Close()
	return LoadFrom(file)
}

// LoadFrom reads the zone reference table from r. The expected columns are
// LocationID, Borough and Zone, with optional Latitude/Longitude centroids.
func LoadFrom(r io.Reader) (*Map, error) {
	decoded, err := csvenc.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("decode zone table: %w", err)
	}

	reader := csv.NewReader(decoded)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read zone header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idCol, ok := cols["locationid"]
	if !ok {
		return nil, errors.New("zone table missing LocationID column")
	}
	zoneCol, ok := cols["zone"]
	if !ok {
		return nil, errors.New("zone table missing Zone column")
	}
	boroughCol := colOrDefault(cols, "borough", -1)
	latCol := colOrDefault(cols, "latitude", colOrDefault(cols, "lat", -1))
	lonCol := colOrDefault(cols, "longitude", colOrDefault(cols, "lon", -1))

	zones := make(map[int]Info)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read zone row: %w", err)
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[idCol]))
		if err != nil {
			continue
		}
		info := Info{
			LocationID: id,
			Zone:       strings.TrimSpace(record[zoneCol]),
		}
		if boroughCol >= 0 && boroughCol < len(record) {
			info.Borough = strings.TrimSpace(record[boroughCol])
		}
		if latCol >= 0 && lonCol >= 0 && latCol < len(record) && lonCol < len(record) {
			lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[latCol]), 64)
			lon, lonErr := strconv.ParseFloat(strings.TrimSpace(record[lonCol]), 64)
			if latErr == nil && lonErr == nil {
				info.Lat = lat
				info.Lon = lon
			}
		}
		zones[id] = info
	}
	if len(zones) == 0 {
		return nil, errors.New("zone table is empty")
	}
	return &Map{zones: zones}, nil
}

func colOrDefault(cols map[string]int, name string, fallback int) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return fallback
}

// Resolve returns the zone info for a location id. Unknown ids resolve to the
// sentinel label instead of failing so a malformed inference request can still
// be scored.
func (m *Map) Resolve(locationID int) Info {
	if info, ok := m.zones[locationID]; ok {
		return info
	}
	return Info{LocationID: locationID, Zone: Unknown, Borough: Unknown}
}

// Contains reports whether a location id is in the zone table.
func (m *Map) Contains(locationID int) bool {
	_, ok := m.zones[locationID]
	return ok
}

// Len returns the number of zones loaded.
func (m *Map) Len() int {
	return len(m.zones)
}

// CentroidMiles returns the great-circle distance in miles between two zone
// centroids. The second return is false when either zone is unknown or has no
// centroid.
func (m *Map) CentroidMiles(pickupID, dropoffID int) (float64, bool) {
	from, ok := m.zones[pickupID]
	if !ok || (from.Lat == 0 && from.Lon == 0) {
		return 0, false
	}
	to, ok := m.zones[dropoffID]
	if !ok || (to.Lat == 0 && to.Lon == 0) {
		return 0, false
	}
	return haversineMiles(from.Lat, from.Lon, to.Lat, to.Lon), true
}

func haversineMiles(latFrom, lonFrom, latTo, lonTo float64) float64 {
	deltaLat := (latTo - latFrom) * (math.Pi / 180)
	deltaLon := (lonTo - lonFrom) * (math.Pi / 180)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(latFrom*(math.Pi/180))*math.Cos(latTo*(math.Pi/180))*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}
