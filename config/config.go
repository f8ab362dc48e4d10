// Package config loads the pipeline configuration from YAML with documented
// defaults for every threshold.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"farecast/ml"
	"farecast/trip"
)

// HourRange mirrors ml.HourRange for YAML decoding.
type HourRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type Config struct {
	Data struct {
		TripsCSV string `yaml:"trips_csv"`
		ZonesCSV string `yaml:"zones_csv"`
	} `yaml:"data"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Models struct {
		DurationPath string `yaml:"duration_path"`
		FarePath     string `yaml:"fare_path"`
	} `yaml:"models"`
	Cleaning struct {
		MaxDistanceMiles   float64 `yaml:"max_distance_miles"`
		MaxDurationMinutes float64 `yaml:"max_duration_minutes"`
		MaxPassengers      int     `yaml:"max_passengers"`
	} `yaml:"cleaning"`
	RushHours []HourRange    `yaml:"rush_hours"`
	Training  ml.TrainConfig `yaml:"training"`
}

// Default returns the documented defaults: ceilings of 100 miles, 120
// minutes and 8 passengers, weekday rush windows 07-09 and 16-18, and a
// seeded 80/20 training split.
func Default() *Config {
	cfg := &Config{}
	cfg.Data.ZonesCSV = "data/taxi_zones.csv"
	cfg.Database.Path = "data/farecast.db"
	cfg.Models.DurationPath = "models/duration.json"
	cfg.Models.FarePath = "models/fare.json"
	cfg.Cleaning.MaxDistanceMiles = 100
	cfg.Cleaning.MaxDurationMinutes = 120
	cfg.Cleaning.MaxPassengers = 8
	cfg.RushHours = []HourRange{{Start: 7, End: 9}, {Start: 16, End: 18}}
	cfg.Training = ml.DefaultTrainConfig()
	return cfg
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Limits converts the cleaning section to trip.Limits.
func (c *Config) Limits() trip.Limits {
	return trip.Limits{
		MaxDistanceMiles:   c.Cleaning.MaxDistanceMiles,
		MaxDurationMinutes: c.Cleaning.MaxDurationMinutes,
		MaxPassengers:      c.Cleaning.MaxPassengers,
	}
}

// RushWindows converts the rush-hour section to ml.HourRange values.
func (c *Config) RushWindows() []ml.HourRange {
	windows := make([]ml.HourRange, len(c.RushHours))
	for i, hr := range c.RushHours {
		windows[i] = ml.HourRange{Start: hr.Start, End: hr.End}
	}
	return windows
}
