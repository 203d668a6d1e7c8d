package forecast

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEvaluatePicksDecember(t *testing.T) {
	e, err := NewEvaluator(&sumModel{}, testLexicon(), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	res, err := e.Evaluate(Form{
		"runtime":  "210",
		"synopsis": "mission+life+action",
		"action":   "on",
		"western":  "on",
	})
	require.NoError(t, err)

	// runtime 210 + action bucket 1 + two common words
	assert.Equal(t, Month(11), res.Month)
	assert.InDelta(t, 213+1.1, res.Value, 1e-9)
	assert.Equal(t, "This film is predicted to gross $214.10 million if released in: December", res.Message)
	assert.Len(t, res.Predictions, 12)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	e, err := NewEvaluator(&sumModel{}, testLexicon())
	require.NoError(t, err)

	form := Form{"runtime": "120", "synopsis": "life", "drama": "on"}
	first, err := e.Evaluate(form)
	require.NoError(t, err)
	second, err := e.Evaluate(form)
	require.NoError(t, err)
	assert.Equal(t, first.Message, second.Message)
}

func TestEvaluateTieGoesToJanuary(t *testing.T) {
	e, err := NewEvaluator(constModel(42), testLexicon())
	require.NoError(t, err)

	res, err := e.Evaluate(Form{"runtime": "90"})
	require.NoError(t, err)
	assert.Equal(t, Month(0), res.Month)
	assert.Contains(t, res.Message, "January")
}

func TestEvaluateValidationSkipsModel(t *testing.T) {
	model := &sumModel{}
	e, err := NewEvaluator(model, testLexicon())
	require.NoError(t, err)

	_, err = e.Evaluate(Form{"runtime": "not-a-number"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, model.calls)
}

func TestEvaluateBeforeInitialization(t *testing.T) {
	var e *Evaluator
	_, err := e.Evaluate(Form{"runtime": "100"})
	assert.ErrorIs(t, err, ErrModelNotInitialized)

	_, err = (&Evaluator{}).Evaluate(Form{"runtime": "100"})
	assert.ErrorIs(t, err, ErrModelNotInitialized)

	_, err = NewEvaluator(nil, testLexicon())
	assert.ErrorIs(t, err, ErrModelNotInitialized)

	_, err = NewEvaluator(constModel(1), nil)
	assert.ErrorIs(t, err, ErrLexiconNotLoaded)
}

func TestEvaluateConcurrent(t *testing.T) {
	e, err := NewEvaluator(constModel(3), testLexicon())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Evaluate(Form{"runtime": "100", "synopsis": "mission"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
