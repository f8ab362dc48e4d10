package ml

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
)

// TrainConfig controls the training run. The zero value is usable: Defaults
// fills in the documented defaults.
type TrainConfig struct {
	TestRatio    float64 `yaml:"test_ratio"`
	Seed         int64   `yaml:"seed"`
	MaxTreeDepth int     `yaml:"max_tree_depth"`
	BoostRounds  int     `yaml:"boost_rounds"`
	LearningRate float64 `yaml:"learning_rate"`
	ForestSize   int     `yaml:"forest_size"`
}

// DefaultTrainConfig returns the reproducible defaults: 80/20 split with a
// fixed seed.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		TestRatio:    0.2,
		Seed:         42,
		MaxTreeDepth: 4,
		BoostRounds:  50,
		LearningRate: 0.1,
		ForestSize:   25,
	}
}

func (c TrainConfig) withDefaults() TrainConfig {
	defaults := DefaultTrainConfig()
	if c.TestRatio <= 0 || c.TestRatio >= 1 {
		c.TestRatio = defaults.TestRatio
	}
	if c.Seed == 0 {
		c.Seed = defaults.Seed
	}
	if c.MaxTreeDepth <= 0 {
		c.MaxTreeDepth = defaults.MaxTreeDepth
	}
	if c.BoostRounds <= 0 {
		c.BoostRounds = defaults.BoostRounds
	}
	if c.LearningRate <= 0 {
		c.LearningRate = defaults.LearningRate
	}
	if c.ForestSize <= 0 {
		c.ForestSize = defaults.ForestSize
	}
	return c
}

// Metrics holds the held-out evaluation for a fitted model. MAE is the
// selection metric; RMSE is reported alongside.
type Metrics struct {
	MAE       float64 `json:"mae"`
	RMSE      float64 `json:"rmse"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
}

// TrainedModel bundles the winning regressor with the exact schema it was
// fitted on. The artifact is self-describing: a Predictor needs nothing
// beyond what is bundled here.
type TrainedModel struct {
	Target    Target
	ModelType string
	Model     Regressor
	Schema    *Schema
	Metrics   Metrics
}

// Train fits every candidate regressor for one target on an 80/20 split and
// returns the candidate with the lowest held-out MAE. Ties keep the earlier,
// simpler candidate. The input matrices are never mutated.
func Train(vectors [][]float64, targets []float64, target Target, schema *Schema, cfg TrainConfig) (*TrainedModel, error) {
	if len(vectors) == 0 || len(vectors) != len(targets) {
		return nil, errors.New("vectors and targets size mismatch")
	}
	if schema == nil {
		return nil, errors.New("schema is required")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	trainX, trainY, testX, testY := splitDataset(vectors, targets, cfg.TestRatio, cfg.Seed)
	if len(testY) == 0 {
		return nil, errors.New("dataset too small for a held-out split")
	}

	candidates := []Regressor{
		NewLinearModel(),
		NewForestModel(cfg.ForestSize, cfg.MaxTreeDepth*2, cfg.Seed),
		NewGBTModel(cfg.BoostRounds, cfg.MaxTreeDepth, cfg.LearningRate),
	}

	var best *TrainedModel
	for _, candidate := range candidates {
		if err := candidate.Fit(trainX, trainY); err != nil {
			log.Printf("candidate %s failed to fit for %s: %v", candidate.Name(), target, err)
			continue
		}
		metrics, err := evaluate(candidate, testX, testY)
		if err != nil {
			log.Printf("candidate %s failed evaluation for %s: %v", candidate.Name(), target, err)
			continue
		}
		metrics.TrainSize = len(trainY)
		log.Printf("target=%s candidate=%s mae=%.4f rmse=%.4f", target, candidate.Name(), metrics.MAE, metrics.RMSE)

		if best == nil || metrics.MAE < best.Metrics.MAE {
			best = &TrainedModel{
				Target:    target,
				ModelType: candidate.Name(),
				Model:     candidate,
				Schema:    schema,
				Metrics:   metrics,
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no candidate could be fitted for target %s", target)
	}
	log.Printf("target=%s selected=%s mae=%.4f", target, best.ModelType, best.Metrics.MAE)
	return best, nil
}

// splitDataset shuffles with a fixed seed so runs are reproducible.
func splitDataset(vectors [][]float64, targets []float64, testRatio float64, seed int64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(vectors))

	split := int(math.Round(float64(len(vectors)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, vectors[idx])
			trainY = append(trainY, targets[idx])
		} else {
			testX = append(testX, vectors[idx])
			testY = append(testY, targets[idx])
		}
	}
	return trainX, trainY, testX, testY
}

func evaluate(model Regressor, testX [][]float64, testY []float64) (Metrics, error) {
	var absSum, sqSum float64
	for i, row := range testX {
		prediction, err := model.Predict(row)
		if err != nil {
			return Metrics{}, err
		}
		diff := prediction - testY[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}
	n := float64(len(testY))
	return Metrics{
		MAE:      absSum / n,
		RMSE:     math.Sqrt(sqSum / n),
		TestSize: len(testY),
	}, nil
}
