package ml

import (
	"math"
	"testing"
)

func TestLinearModelRecoversCoefficients(t *testing.T) {
	// y = 3 + 2*x1 - 0.5*x2
	var features [][]float64
	var targets []float64
	for i := 0; i < 20; i++ {
		x1 := float64(i)
		x2 := float64(i % 5)
		features = append(features, []float64{x1, x2})
		targets = append(targets, 3+2*x1-0.5*x2)
	}

	model := NewLinearModel()
	if err := model.Fit(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(model.Intercept-3) > 1e-8 {
		t.Fatalf("expected intercept 3, got %.6f", model.Intercept)
	}
	if math.Abs(model.Weights[0]-2) > 1e-8 || math.Abs(model.Weights[1]+0.5) > 1e-8 {
		t.Fatalf("unexpected weights: %v", model.Weights)
	}

	prediction, err := model.Predict([]float64{10, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(prediction-22) > 1e-8 {
		t.Fatalf("expected 22, got %.6f", prediction)
	}
}

func TestLinearModelRejectsUnderdeterminedFit(t *testing.T) {
	model := NewLinearModel()
	err := model.Fit([][]float64{{1, 2, 3}}, []float64{1})
	if err == nil {
		t.Fatal("expected error for fewer rows than coefficients")
	}
}

func TestLinearModelNotFitted(t *testing.T) {
	model := NewLinearModel()
	if _, err := model.Predict([]float64{1}); err == nil {
		t.Fatal("expected not fitted error")
	}
}

func TestRegressionTreeSplits(t *testing.T) {
	// two clusters with distinct means
	features := [][]float64{{1}, {2}, {3}, {4}, {11}, {12}, {13}, {14}}
	targets := []float64{10, 10, 10, 10, 50, 50, 50, 50}

	var tree regressionTree
	if err := tree.fit(features, targets, 3, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	low, err := tree.predict([]float64{2.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := tree.predict([]float64{12.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(low-10) > 1e-8 {
		t.Fatalf("expected 10 for the low cluster, got %.4f", low)
	}
	if math.Abs(high-50) > 1e-8 {
		t.Fatalf("expected 50 for the high cluster, got %.4f", high)
	}
}

func TestGBTModelFitsNonLinearTargets(t *testing.T) {
	var features [][]float64
	var targets []float64
	for i := 0; i < 60; i++ {
		x := float64(i)
		features = append(features, []float64{x})
		targets = append(targets, x*x/60) // convex, out of reach for one tree
	}

	model := NewGBTModel(80, 3, 0.2)
	if err := model.Fit(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var absSum float64
	for i, row := range features {
		prediction, err := model.Predict(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		absSum += math.Abs(prediction - targets[i])
	}
	mae := absSum / float64(len(targets))
	if mae > 3 {
		t.Fatalf("expected boosted MAE under 3, got %.4f", mae)
	}
}

func TestForestModelDeterministicWithSeed(t *testing.T) {
	var features [][]float64
	var targets []float64
	for i := 0; i < 40; i++ {
		features = append(features, []float64{float64(i), float64(i % 7)})
		targets = append(targets, float64(i)*2)
	}

	first := NewForestModel(10, 6, 42)
	if err := first.Fit(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := NewForestModel(10, 6, 42)
	if err := second.Fit(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, probe := range [][]float64{{5, 5}, {20, 6}, {35, 0}} {
		a, err := first.Predict(probe)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := second.Predict(probe)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != b {
			t.Fatalf("expected deterministic forest, got %.6f and %.6f", a, b)
		}
	}
}
