package zone

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableWithCentroids = `LocationID,Borough,Zone,service_zone,Latitude,Longitude
132,Queens,JFK Airport,Airports,40.6413,-73.7781
161,Manhattan,Midtown Center,Yellow Zone,40.7549,-73.9840
234,Manhattan,Union Sq,Yellow Zone,40.7359,-73.9911
`

const tableWithoutCentroids = `LocationID,Borough,Zone,service_zone
132,Queens,JFK Airport,Airports
161,Manhattan,Midtown Center,Yellow Zone
`

func TestLoadFrom(t *testing.T) {
	zones, err := LoadFrom(strings.NewReader(tableWithCentroids))
	require.NoError(t, err)
	assert.Equal(t, 3, zones.Len())

	info := zones.Resolve(132)
	assert.Equal(t, "JFK Airport", info.Zone)
	assert.Equal(t, "Queens", info.Borough)
	assert.InDelta(t, 40.6413, info.Lat, 1e-6)
}

func TestResolveUnknownReturnsSentinel(t *testing.T) {
	zones, err := LoadFrom(strings.NewReader(tableWithCentroids))
	require.NoError(t, err)

	info := zones.Resolve(999)
	assert.Equal(t, Unknown, info.Zone)
	assert.Equal(t, Unknown, info.Borough)
	assert.False(t, zones.Contains(999))
}

func TestCentroidMiles(t *testing.T) {
	zones, err := LoadFrom(strings.NewReader(tableWithCentroids))
	require.NoError(t, err)

	miles, ok := zones.CentroidMiles(132, 161)
	require.True(t, ok)
	// JFK to Midtown is roughly 13 miles as the crow flies.
	assert.InDelta(t, 13.0, miles, 2.0)

	_, ok = zones.CentroidMiles(132, 999)
	assert.False(t, ok)
}

func TestCentroidMilesWithoutCentroids(t *testing.T) {
	zones, err := LoadFrom(strings.NewReader(tableWithoutCentroids))
	require.NoError(t, err)

	_, ok := zones.CentroidMiles(132, 161)
	assert.False(t, ok)
}

func TestLoadFromRejectsMissingColumns(t *testing.T) {
	_, err := LoadFrom(strings.NewReader("Borough,Zone\nQueens,JFK Airport\n"))
	assert.Error(t, err)

	_, err = LoadFrom(strings.NewReader("LocationID,Zone\n"))
	assert.Error(t, err)
}
