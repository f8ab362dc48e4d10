package ml

import (
	"errors"
	"fmt"
	"sort"
)

// SchemaVersion is bumped whenever the feature set or encoding changes.
// A persisted artifact from a different version refuses to load.
const SchemaVersion = 1

// OtherCategory is the bucket for values unseen during vocabulary fitting.
// It always sits at index 0 of every vocabulary.
const OtherCategory = "other"

// ErrSchemaMismatch is returned when an artifact's bundled schema does not
// match the schema the current deriver produces. This is a fatal
// configuration error: serving with a mismatched schema would silently score
// garbage.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// Schema is the versioned feature contract bundled with every trained model:
// the ordered feature names plus the categorical vocabularies fitted at
// training time.
type Schema struct {
	Version  int                 `json:"version"`
	Features []string            `json:"features"`
	Vocabs   map[string][]string `json:"vocabs"`

	index map[string]map[string]int
}

// FitVocab builds the schema for a training set: the fixed feature order plus
// sorted vocabularies for each categorical feature, with the explicit other
// bucket at index 0.
func FitVocab(features []TripFeatures) *Schema {
	seen := map[string]map[string]struct{}{
		"rate_code":    {},
		"pickup_zone":  {},
		"dropoff_zone": {},
	}
	for _, f := range features {
		seen["rate_code"][f.RateCode] = struct{}{}
		seen["pickup_zone"][f.PickupZone] = struct{}{}
		seen["dropoff_zone"][f.DropoffZone] = struct{}{}
	}

	vocabs := make(map[string][]string, len(seen))
	for name, values := range seen {
		vocab := make([]string, 0, len(values)+1)
		vocab = append(vocab, OtherCategory)
		sorted := make([]string, 0, len(values))
		for value := range values {
			if value == OtherCategory {
				continue
			}
			sorted = append(sorted, value)
		}
		sort.Strings(sorted)
		vocabs[name] = append(vocab, sorted...)
	}

	s := &Schema{
		Version:  SchemaVersion,
		Features: FeatureNames(),
		Vocabs:   vocabs,
	}
	s.buildIndex()
	return s
}

// Validate checks the schema structurally against what the current deriver
// emits. Any deviation is ErrSchemaMismatch.
func (s *Schema) Validate() error {
	if s.Version != SchemaVersion {
		return fmt.Errorf("%w: artifact version %d, current version %d", ErrSchemaMismatch, s.Version, SchemaVersion)
	}
	current := FeatureNames()
	if len(s.Features) != len(current) {
		return fmt.Errorf("%w: artifact has %d features, deriver emits %d", ErrSchemaMismatch, len(s.Features), len(current))
	}
	for i, name := range current {
		if s.Features[i] != name {
			return fmt.Errorf("%w: feature %d is %q, expected %q", ErrSchemaMismatch, i, s.Features[i], name)
		}
	}
	for _, name := range categoricalFeatures() {
		vocab, ok := s.Vocabs[name]
		if !ok || len(vocab) == 0 {
			return fmt.Errorf("%w: missing vocabulary for %q", ErrSchemaMismatch, name)
		}
		if vocab[0] != OtherCategory {
			return fmt.Errorf("%w: vocabulary for %q does not start with %q", ErrSchemaMismatch, name, OtherCategory)
		}
	}
	return nil
}

// Encode maps a feature struct to the numeric vector in schema order.
// Booleans become 0/1, categoricals become their vocabulary index with
// unseen values falling into the other bucket.
func (s *Schema) Encode(f TripFeatures) []float64 {
	return []float64{
		f.TripDistance,
		float64(f.HourOfDay),
		float64(f.DayOfWeek),
		boolToFloat(f.IsWeekend),
		boolToFloat(f.IsRushHour),
		float64(s.encodeCategory("rate_code", f.RateCode)),
		float64(s.encodeCategory("pickup_zone", f.PickupZone)),
		float64(s.encodeCategory("dropoff_zone", f.DropoffZone)),
		float64(f.PassengerCount),
	}
}

// EncodeBatch encodes a feature slice to the training matrix.
func (s *Schema) EncodeBatch(features []TripFeatures) [][]float64 {
	vectors := make([][]float64, len(features))
	for i, f := range features {
		vectors[i] = s.Encode(f)
	}
	return vectors
}

func (s *Schema) encodeCategory(name, value string) int {
	if s.index != nil {
		if idx, ok := s.index[name][value]; ok {
			return idx
		}
		return 0
	}
	for i, v := range s.Vocabs[name] {
		if v == value {
			return i
		}
	}
	return 0
}

// buildIndex precomputes vocabulary lookups. Called after fitting or loading;
// the schema is immutable afterwards so the maps are safe to share.
func (s *Schema) buildIndex() {
	s.index = make(map[string]map[string]int, len(s.Vocabs))
	for name, vocab := range s.Vocabs {
		lookup := make(map[string]int, len(vocab))
		for i, value := range vocab {
			lookup[value] = i
		}
		s.index[name] = lookup
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
