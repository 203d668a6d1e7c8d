package forecast

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// Model is a trained regression model over InputSchema vectors.
type Model interface {
	Predict(x Vector) (float64, error)
}

// modelMissing reports a nil model, including a nil pointer stored in the
// interface.
func modelMissing(m Model) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

type MonthlyPrediction struct {
	Month Month   `json:"month"`
	Value float64 `json:"value"`
}

// Sweep predicts revenue for every release month with the base features held
// fixed. The result has one entry per month in ascending month order.
func Sweep(base Vector, model Model) ([]MonthlyPrediction, error) {
	if modelMissing(model) {
		return nil, ErrModelNotInitialized
	}

	out := make([]MonthlyPrediction, 0, MonthCount)
	for m := Month(0); m < MonthCount; m++ {
		indicator, err := EncodeMonth(m)
		if err != nil {
			return nil, err
		}
		x, err := Assemble(base, indicator)
		if err != nil {
			return nil, err
		}

		y, err := model.Predict(x)
		if err != nil {
			if errors.Is(err, ErrModelSchema) {
				return nil, fmt.Errorf("predict %s: %w", m, err)
			}
			return nil, fmt.Errorf("%w: predict %s: %w", ErrModelSchema, m, err)
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("%w: predict %s: non-finite value %v", ErrModelSchema, m, y)
		}

		out = append(out, MonthlyPrediction{Month: m, Value: y})
	}
	return out, nil
}

// SelectBest returns the prediction with the highest value. Ties go to the
// lowest month index.
func SelectBest(preds []MonthlyPrediction) (MonthlyPrediction, error) {
	if len(preds) == 0 {
		return MonthlyPrediction{}, ErrEmptyInput
	}

	best := preds[0]
	for _, p := range preds[1:] {
		if p.Value > best.Value || (p.Value == best.Value && p.Month < best.Month) {
			best = p
		}
	}
	return best, nil
}
