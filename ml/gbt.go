package ml

import "errors"

// GBTModel is a gradient-boosted ensemble of regression trees fitted on
// residuals with a constant learning rate.
type GBTModel struct {
	BasePrediction float64          `json:"base_prediction"`
	LearningRate   float64          `json:"learning_rate"`
	MaxDepth       int              `json:"max_depth"`
	Rounds         int              `json:"rounds"`
	Trees          []regressionTree `json:"trees"`
}

func NewGBTModel(rounds, maxDepth int, learningRate float64) *GBTModel {
	if rounds <= 0 {
		rounds = 50
	}
	if maxDepth <= 0 {
		maxDepth = 4
	}
	if learningRate <= 0 || learningRate > 1 {
		learningRate = 0.1
	}
	return &GBTModel{LearningRate: learningRate, MaxDepth: maxDepth, Rounds: rounds}
}

func (m *GBTModel) Name() string { return ModelGBT }

func (m *GBTModel) Fit(features [][]float64, targets []float64) error {
	if len(features) == 0 || len(features) != len(targets) {
		return errors.New("features and targets size mismatch")
	}

	m.BasePrediction = mean(targets)
	m.Trees = m.Trees[:0]

	predictions := make([]float64, len(targets))
	for i := range predictions {
		predictions[i] = m.BasePrediction
	}
	residuals := make([]float64, len(targets))

	for round := 0; round < m.Rounds; round++ {
		for i := range targets {
			residuals[i] = targets[i] - predictions[i]
		}
		var tree regressionTree
		if err := tree.fit(features, residuals, m.MaxDepth, 2); err != nil {
			return err
		}
		for i, row := range features {
			update, err := tree.predict(row)
			if err != nil {
				return err
			}
			predictions[i] += m.LearningRate * update
		}
		m.Trees = append(m.Trees, tree)
	}
	return nil
}

func (m *GBTModel) Predict(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, errNotFitted
	}
	prediction := m.BasePrediction
	for i := range m.Trees {
		update, err := m.Trees[i].predict(features)
		if err != nil {
			return 0, err
		}
		prediction += m.LearningRate * update
	}
	return prediction, nil
}
