package ml

import (
	"errors"
	"fmt"
)

type DecisionTree struct {
	nodes  []TreeNode
	schema Schema
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

func NewDecisionTree(nodes []TreeNode, schema Schema) (*DecisionTree, error) {
	if err := validateNodes(nodes, schema.Len()); err != nil {
		return nil, err
	}
	return &DecisionTree{nodes: append([]TreeNode(nil), nodes...), schema: schema}, nil
}

func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	if len(dt.nodes) == 0 {
		return 0, 0, errors.New("model not loaded")
	}
	if len(features) != dt.schema.Len() {
		return 0, 0, fmt.Errorf("expected %d features, got %d", dt.schema.Len(), len(features))
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, 1, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, 0, errors.New("feature index out of range")
		}
		next := node.RightChild
		if features[node.FeatureIdx] <= node.Threshold {
			next = node.LeftChild
		}
		if next <= idx || next >= len(dt.nodes) {
			return 0, 0, errors.New("invalid tree state")
		}
		idx = next
	}
}

func (dt *DecisionTree) Schema() Schema {
	return dt.schema
}

func (dt *DecisionTree) Name() string {
	return fmt.Sprintf("decision_tree(%d nodes)", len(dt.nodes))
}

// validateNodes expects the pre-order layout: every child sits after its
// parent, which also rules out cycles.
func validateNodes(nodes []TreeNode, featureCount int) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
			return fmt.Errorf("node %d: feature index %d out of range [0,%d)", i, node.FeatureIdx, featureCount)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}
