package ml

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LinearModel is an ordinary least squares regressor.
type LinearModel struct {
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
}

func NewLinearModel() *LinearModel {
	return &LinearModel{}
}

func (m *LinearModel) Name() string { return ModelLinear }

// Fit solves the least squares system via QR decomposition.
func (m *LinearModel) Fit(features [][]float64, targets []float64) error {
	rows := len(features)
	if rows == 0 || len(targets) != rows {
		return errors.New("features and targets size mismatch")
	}
	cols := len(features[0]) + 1 // bias column
	if rows < cols {
		return fmt.Errorf("need at least %d rows to fit %d coefficients, got %d", cols, cols, rows)
	}

	a := mat.NewDense(rows, cols, nil)
	for i, row := range features {
		if len(row) != cols-1 {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), cols-1)
		}
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewDense(rows, 1, append([]float64(nil), targets...))

	var qr mat.QR
	qr.Factorize(a)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, b); err != nil {
		return fmt.Errorf("least squares solve: %w", err)
	}

	m.Intercept = beta.At(0, 0)
	m.Weights = make([]float64, cols-1)
	for j := range m.Weights {
		m.Weights[j] = beta.At(j+1, 0)
	}
	return nil
}

func (m *LinearModel) Predict(features []float64) (float64, error) {
	if m.Weights == nil {
		return 0, errNotFitted
	}
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("got %d features, model fitted on %d", len(features), len(m.Weights))
	}
	prediction := m.Intercept
	for i, w := range m.Weights {
		prediction += w * features[i]
	}
	return prediction, nil
}
