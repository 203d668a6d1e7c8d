// Package model loads trained regression models exported as JSON artifacts
// and exposes them as forecast.Model implementations.
package model

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/goccy/go-json"

	"boxoffice/internal/forecast"
)

const (
	KindRandomForest = "random_forest"
	KindLinear       = "linear"
)

// Artifact is the on-disk form of a trained model.
type Artifact struct {
	Kind          string    `json:"kind"`
	SchemaVersion string    `json:"schema_version"`
	Features      []string  `json:"features"`
	Intercept     float64   `json:"intercept,omitempty"`
	Coefficients  []float64 `json:"coefficients,omitempty"`
	Trees         []Tree    `json:"trees,omitempty"`
}

// Tree is a flattened regression tree. Node 0 is the root; a node with
// Feature < 0 is a leaf.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Load reads and decodes the artifact at path.
func Load(path string) (forecast.Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	m, err := Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return m, nil
}

func Decode(r io.Reader) (forecast.Model, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return FromArtifact(a)
}

// FromArtifact validates a and builds the matching model.
func FromArtifact(a Artifact) (forecast.Model, error) {
	if a.Kind != KindRandomForest && a.Kind != KindLinear {
		return nil, fmt.Errorf("%w: unsupported kind %q", forecast.ErrModelType, a.Kind)
	}

	schema := forecast.Schema{Version: a.SchemaVersion, Fields: slices.Clone(a.Features)}
	if !schema.Equal(forecast.InputSchema) {
		return nil, fmt.Errorf("%w: artifact features (version %q, %d fields) do not match input schema %s",
			forecast.ErrModelSchema, a.SchemaVersion, len(a.Features), forecast.InputSchema.Version)
	}

	if a.Kind == KindLinear {
		l, err := newLinear(schema, a.Intercept, a.Coefficients)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	f, err := newForest(schema, a.Trees)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func checkInput(schema forecast.Schema, x forecast.Vector) error {
	if !x.Schema().Equal(schema) {
		return fmt.Errorf("%w: got %d fields, model expects %d (%s)",
			forecast.ErrModelSchema, x.Len(), schema.Len(), schema.Version)
	}
	return nil
}
