package ml

import (
	"errors"
	"fmt"
)

// RandomForest takes a majority vote over its trees. Ties go to the lower
// class id and the confidence is the winning vote share.
type RandomForest struct {
	trees  []*DecisionTree
	schema Schema
}

func NewRandomForest(trees [][]TreeNode, schema Schema) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	forest := &RandomForest{trees: make([]*DecisionTree, 0, len(trees)), schema: schema}
	for i, nodes := range trees {
		tree, err := NewDecisionTree(nodes, schema)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		forest.trees = append(forest.trees, tree)
	}
	return forest, nil
}

func (rf *RandomForest) Predict(features []float64) (int, float64, error) {
	if len(rf.trees) == 0 {
		return 0, 0, errors.New("model not loaded")
	}
	votes := make(map[int]int)
	for i, tree := range rf.trees {
		label, _, err := tree.Predict(features)
		if err != nil {
			return 0, 0, fmt.Errorf("tree %d: %w", i, err)
		}
		votes[label]++
	}

	bestLabel, bestCount := 0, -1
	for label, count := range votes {
		if count > bestCount || (count == bestCount && label < bestLabel) {
			bestLabel = label
			bestCount = count
		}
	}
	return bestLabel, float64(bestCount) / float64(len(rf.trees)), nil
}

func (rf *RandomForest) Schema() Schema {
	return rf.schema
}

func (rf *RandomForest) Name() string {
	return fmt.Sprintf("random_forest(%d trees)", len(rf.trees))
}
