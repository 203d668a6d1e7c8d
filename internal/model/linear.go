package model

import (
	"fmt"

	"boxoffice/internal/forecast"
)

type Linear struct {
	schema       forecast.Schema
	intercept    float64
	coefficients []float64
}

func newLinear(schema forecast.Schema, intercept float64, coefficients []float64) (*Linear, error) {
	if len(coefficients) != schema.Len() {
		return nil, fmt.Errorf("%w: %d coefficients for %d features",
			forecast.ErrModelSchema, len(coefficients), schema.Len())
	}
	return &Linear{schema: schema, intercept: intercept, coefficients: coefficients}, nil
}

func (l *Linear) Predict(x forecast.Vector) (float64, error) {
	if err := checkInput(l.schema, x); err != nil {
		return 0, err
	}
	y := l.intercept
	for i, c := range l.coefficients {
		y += c * x.At(i)
	}
	return y, nil
}
