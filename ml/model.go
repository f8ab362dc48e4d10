package ml

import "errors"

var errNotFitted = errors.New("model not fitted")

// Regressor is the common capability shared by every model candidate.
type Regressor interface {
	Fit(features [][]float64, targets []float64) error
	Predict(features []float64) (float64, error)
	Name() string
}

// Candidate model type names, in selection-preference order: when MAE ties,
// the earlier (simpler) candidate wins.
const (
	ModelLinear = "linear"
	ModelForest = "forest"
	ModelGBT    = "gbt"
)
