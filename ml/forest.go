package ml

import (
	"errors"
	"math/rand"
)

// ForestModel averages regression trees fitted on bootstrap resamples.
type ForestModel struct {
	Size     int              `json:"size"`
	MaxDepth int              `json:"max_depth"`
	Seed     int64            `json:"seed"`
	Trees    []regressionTree `json:"trees"`
}

func NewForestModel(size, maxDepth int, seed int64) *ForestModel {
	if size <= 0 {
		size = 25
	}
	if maxDepth <= 0 {
		maxDepth = 8
	}
	return &ForestModel{Size: size, MaxDepth: maxDepth, Seed: seed}
}

func (m *ForestModel) Name() string { return ModelForest }

func (m *ForestModel) Fit(features [][]float64, targets []float64) error {
	if len(features) == 0 || len(features) != len(targets) {
		return errors.New("features and targets size mismatch")
	}

	rnd := rand.New(rand.NewSource(m.Seed))
	m.Trees = m.Trees[:0]

	sampleX := make([][]float64, len(features))
	sampleY := make([]float64, len(targets))
	for t := 0; t < m.Size; t++ {
		for i := range sampleX {
			idx := rnd.Intn(len(features))
			sampleX[i] = features[idx]
			sampleY[i] = targets[idx]
		}
		var tree regressionTree
		if err := tree.fit(sampleX, sampleY, m.MaxDepth, 2); err != nil {
			return err
		}
		m.Trees = append(m.Trees, tree)
	}
	return nil
}

func (m *ForestModel) Predict(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, errNotFitted
	}
	var sum float64
	for i := range m.Trees {
		prediction, err := m.Trees[i].predict(features)
		if err != nil {
			return 0, err
		}
		sum += prediction
	}
	return sum / float64(len(m.Trees)), nil
}
