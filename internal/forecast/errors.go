package forecast

import (
	"errors"
	"fmt"
)

var (
	ErrModelNotInitialized = errors.New("prediction model not initialized")
	ErrModelType           = errors.New("prediction model type is incorrect")
	ErrModelSchema         = errors.New("prediction model rejected input vector")
	ErrValidation          = errors.New("invalid input")
	ErrEmptyInput          = errors.New("no predictions to select from")
	ErrLexiconNotLoaded    = errors.New("reference lexicon not loaded")
)

// ValidationError describes a rejected form field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Kind returns a stable identifier for the error taxonomy, used by the API
// layer in error responses. Unknown errors map to "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrModelNotInitialized):
		return "model_not_initialized"
	case errors.Is(err, ErrModelType):
		return "model_type"
	case errors.Is(err, ErrModelSchema):
		return "model_schema"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrLexiconNotLoaded):
		return "lexicon_not_loaded"
	default:
		return "internal"
	}
}
