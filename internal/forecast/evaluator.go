// Package forecast turns submitted film attributes into a box-office revenue
// forecast and picks the release month the model favours.
//
// The trained model and the common-word lexicon are injected once through
// NewEvaluator and never mutated afterwards, so an Evaluator can serve
// concurrent requests without locking.
package forecast

import (
	"go.uber.org/zap"
)

// Result is the outcome of one evaluation.
type Result struct {
	Month       Month               `json:"best_month"`
	Value       float64             `json:"predicted_revenue_millions"`
	Message     string              `json:"message"`
	Predictions []MonthlyPrediction `json:"predictions"`
}

type Evaluator struct {
	model   Model
	lexicon *Lexicon
	logger  *zap.Logger
}

type Option func(*Evaluator)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEvaluator(model Model, lexicon *Lexicon, opts ...Option) (*Evaluator, error) {
	if modelMissing(model) {
		return nil, ErrModelNotInitialized
	}
	if lexicon == nil {
		return nil, ErrLexiconNotLoaded
	}

	e := &Evaluator{model: model, lexicon: lexicon, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Evaluator) Lexicon() *Lexicon {
	if e == nil {
		return nil
	}
	return e.lexicon
}

// Evaluate runs feature construction, the month sweep, best-month selection
// and formatting for one form.
func (e *Evaluator) Evaluate(form Form) (Result, error) {
	if e == nil || modelMissing(e.model) {
		return Result{}, ErrModelNotInitialized
	}

	base, err := BuildFeatures(form, e.lexicon)
	if err != nil {
		return Result{}, err
	}

	preds, err := Sweep(base, e.model)
	if err != nil {
		return Result{}, err
	}

	best, err := SelectBest(preds)
	if err != nil {
		return Result{}, err
	}

	msg := FormatResult(best.Month.String(), best.Value)
	if e.logger != nil {
		e.logger.Info("forecast evaluated",
			zap.Stringer("best_month", best.Month),
			zap.Float64("predicted_revenue_millions", best.Value),
		)
	}

	return Result{
		Month:       best.Month,
		Value:       best.Value,
		Message:     msg,
		Predictions: preds,
	}, nil
}
