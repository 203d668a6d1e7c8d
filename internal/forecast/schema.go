package forecast

import (
	"fmt"
	"slices"
)

// SchemaVersion identifies the column layout the regression model was trained on.
const SchemaVersion = "v1"

// Schema is an ordered, versioned list of named numeric fields.
type Schema struct {
	Version string
	Fields  []string
}

var (
	BaseSchema = Schema{
		Version: SchemaVersion,
		Fields: []string{
			"runtime",
			"Documentary",
			"action_adv_war_west",
			"horror_thriller",
			"family_animate",
			"scifi_fantasy",
			"hist_drama",
			"crime_mystery",
			"comedy_romance_music",
			"common_word_count",
		},
	}

	MonthSchema = Schema{
		Version: SchemaVersion,
		Fields:  monthFieldNames(),
	}

	// InputSchema is the 22-field layout passed to the prediction model.
	InputSchema = BaseSchema.Concat(MonthSchema)
)

func (s Schema) Len() int { return len(s.Fields) }

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	return slices.Index(s.Fields, name)
}

func (s Schema) Equal(o Schema) bool {
	return s.Version == o.Version && slices.Equal(s.Fields, o.Fields)
}

func (s Schema) Concat(o Schema) Schema {
	fields := make([]string, 0, len(s.Fields)+len(o.Fields))
	fields = append(fields, s.Fields...)
	fields = append(fields, o.Fields...)
	return Schema{Version: s.Version, Fields: fields}
}

// Vector is a set of values bound to a schema. The zero Vector has no schema
// and no values.
type Vector struct {
	schema Schema
	values []float64
}

// NewVector copies values and checks that their count matches the schema.
func NewVector(schema Schema, values []float64) (Vector, error) {
	if len(values) != schema.Len() {
		return Vector{}, fmt.Errorf("%w: schema %s has %d fields, got %d values",
			ErrModelSchema, schema.Version, schema.Len(), len(values))
	}
	return Vector{schema: schema, values: slices.Clone(values)}, nil
}

func (v Vector) Schema() Schema { return v.schema }

func (v Vector) Len() int { return len(v.values) }

// Values returns a copy of the ordered values.
func (v Vector) Values() []float64 { return slices.Clone(v.values) }

// At returns the value at position i without copying the vector.
func (v Vector) At(i int) float64 { return v.values[i] }

// Get looks a value up by field name.
func (v Vector) Get(name string) (float64, bool) {
	i := v.schema.Index(name)
	if i < 0 {
		return 0, false
	}
	return v.values[i], true
}

// Assemble concatenates a base feature vector and a month indicator into a
// model input vector, and checks the result against InputSchema.
func Assemble(base, month Vector) (Vector, error) {
	if !base.schema.Equal(BaseSchema) {
		return Vector{}, fmt.Errorf("%w: base vector does not match base schema %s", ErrModelSchema, BaseSchema.Version)
	}
	if !month.schema.Equal(MonthSchema) {
		return Vector{}, fmt.Errorf("%w: month vector does not match month schema %s", ErrModelSchema, MonthSchema.Version)
	}

	schema := base.schema.Concat(month.schema)
	if !schema.Equal(InputSchema) {
		return Vector{}, fmt.Errorf("%w: assembled schema does not match input schema %s", ErrModelSchema, InputSchema.Version)
	}

	values := make([]float64, 0, schema.Len())
	values = append(values, base.values...)
	values = append(values, month.values...)
	return NewVector(schema, values)
}
