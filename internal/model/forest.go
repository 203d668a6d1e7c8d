package model

import (
	"errors"
	"fmt"

	"boxoffice/internal/forecast"
)

// Forest is a random forest regressor: the prediction is the mean of its
// trees' leaf values.
type Forest struct {
	schema forecast.Schema
	trees  []Tree
}

func newForest(schema forecast.Schema, trees []Tree) (*Forest, error) {
	if len(trees) == 0 {
		return nil, errors.New("random forest has no trees")
	}
	for i, t := range trees {
		if err := validateTree(t, schema.Len()); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &Forest{schema: schema, trees: trees}, nil
}

func (f *Forest) Predict(x forecast.Vector) (float64, error) {
	if err := checkInput(f.schema, x); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.eval(x)
	}
	return sum / float64(len(f.trees)), nil
}

// eval walks from the root; values <= threshold go left.
func (t Tree) eval(x forecast.Vector) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x.At(n.Feature) <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// validateTree rejects out-of-range references and cycles, so eval always
// terminates. Children must point forward, as in a pre-order export.
func validateTree(t Tree, width int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Feature < 0 {
			continue
		}
		if n.Feature >= width {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: invalid child %d", i, child)
			}
		}
	}
	return nil
}
