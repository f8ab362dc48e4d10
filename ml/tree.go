package ml

import (
	"errors"
	"math"
	"sort"
)

// regressionTree is a CART-style tree stored as a flat node array. The layout
// (root first, left subtree, then right subtree) keeps the tree trivially
// JSON-serializable inside a model artifact.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

type treeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// split candidates are taken at these quantiles of each feature column.
var splitQuantiles = []float64{0.25, 0.5, 0.75}

func (t *regressionTree) fit(features [][]float64, targets []float64, maxDepth, minLeaf int) error {
	if len(features) == 0 || len(targets) == 0 {
		return errors.New("features or targets empty")
	}
	if len(features) != len(targets) {
		return errors.New("features and targets size mismatch")
	}
	if maxDepth <= 0 {
		maxDepth = 4
	}
	if minLeaf <= 0 {
		minLeaf = 1
	}

	t.Nodes = t.buildNode(features, targets, 0, maxDepth, minLeaf)
	return nil
}

func (t *regressionTree) predict(features []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errNotFitted
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func (t *regressionTree) buildNode(features [][]float64, targets []float64, depth, maxDepth, minLeaf int) []treeNode {
	leaf := treeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      mean(targets),
		IsLeaf:     true,
	}
	if depth >= maxDepth || len(targets) < 2*minLeaf || isConstant(targets) {
		return []treeNode{leaf}
	}

	bestFeature, threshold, ok := bestSplit(features, targets, minLeaf)
	if !ok {
		return []treeNode{leaf}
	}

	leftX, leftY, rightX, rightY := partition(features, targets, bestFeature, threshold)
	if len(leftY) < minLeaf || len(rightY) < minLeaf {
		return []treeNode{leaf}
	}

	leftNodes := t.buildNode(leftX, leftY, depth+1, maxDepth, minLeaf)
	rightNodes := t.buildNode(rightX, rightY, depth+1, maxDepth, minLeaf)

	root := treeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		Value:      leaf.Value,
		IsLeaf:     false,
	}

	nodes := make([]treeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	for _, node := range leftNodes {
		if !node.IsLeaf {
			node.LeftChild++
			node.RightChild++
		}
		nodes = append(nodes, node)
	}
	for _, node := range rightNodes {
		if !node.IsLeaf {
			node.LeftChild += 1 + len(leftNodes)
			node.RightChild += 1 + len(leftNodes)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func bestSplit(features [][]float64, targets []float64, minLeaf int) (int, float64, bool) {
	featureCount := len(features[0])
	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.MaxFloat64

	column := make([]float64, len(features))
	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		for i := range features {
			column[i] = features[i][featureIdx]
		}
		for _, q := range splitQuantiles {
			threshold := quantile(column, q)
			leftY, rightY := splitTargets(features, targets, featureIdx, threshold)
			if len(leftY) < minLeaf || len(rightY) < minLeaf {
				continue
			}
			score := sumSquaredError(leftY) + sumSquaredError(rightY)
			if score < bestScore {
				bestScore = score
				bestFeature = featureIdx
				bestThreshold = threshold
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func partition(features [][]float64, targets []float64, featureIdx int, threshold float64) ([][]float64, []float64, [][]float64, []float64) {
	var leftX, rightX [][]float64
	var leftY, rightY []float64
	for i, row := range features {
		if row[featureIdx] <= threshold {
			leftX = append(leftX, row)
			leftY = append(leftY, targets[i])
		} else {
			rightX = append(rightX, row)
			rightY = append(rightY, targets[i])
		}
	}
	return leftX, leftY, rightX, rightY
}

func splitTargets(features [][]float64, targets []float64, featureIdx int, threshold float64) ([]float64, []float64) {
	var leftY, rightY []float64
	for i, row := range features {
		if row[featureIdx] <= threshold {
			leftY = append(leftY, targets[i])
		} else {
			rightY = append(rightY, targets[i])
		}
	}
	return leftY, rightY
}

func sumSquaredError(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	m := mean(targets)
	var sum float64
	for _, y := range targets {
		diff := y - m
		sum += diff * diff
	}
	return sum
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}

func isConstant(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	first := values[0]
	for _, v := range values[1:] {
		if v != first {
			return false
		}
	}
	return true
}
