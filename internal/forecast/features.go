package forecast

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Form is the raw submitted form: field name to value. Genre keys are "on"
// by presence alone.
type Form map[string]string

const (
	FieldRuntime  = "runtime"
	FieldSynopsis = "synopsis"
)

// FormFromValues keeps the first value of every key.
func FormFromValues(values url.Values) Form {
	form := make(Form, len(values))
	for k, vs := range values {
		if len(vs) == 0 {
			form[k] = ""
			continue
		}
		form[k] = vs[0]
	}
	return form
}

// Bucket merges raw genre flags into one boolean model feature.
type Bucket struct {
	Field  string
	Genres []string
}

// GenreBuckets lists the merged genre features in schema order. Documentary
// is a bucket of one.
var GenreBuckets = []Bucket{
	{Field: "Documentary", Genres: []string{"documentary"}},
	{Field: "action_adv_war_west", Genres: []string{"action", "adventure", "war", "western"}},
	{Field: "horror_thriller", Genres: []string{"horror", "thriller"}},
	{Field: "family_animate", Genres: []string{"family", "animated"}},
	{Field: "scifi_fantasy", Genres: []string{"sciencefiction", "fantasy"}},
	{Field: "hist_drama", Genres: []string{"history", "drama"}},
	{Field: "crime_mystery", Genres: []string{"crime", "mystery"}},
	{Field: "comedy_romance_music", Genres: []string{"comedy", "romance", "music"}},
}

// Genres returns the known genre vocabulary in bucket order.
func Genres() []string {
	var out []string
	for _, b := range GenreBuckets {
		out = append(out, b.Genres...)
	}
	return out
}

// IsGenre reports whether key names a genre in the vocabulary.
func IsGenre(key string) bool {
	for _, b := range GenreBuckets {
		if slices.Contains(b.Genres, key) {
			return true
		}
	}
	return false
}

// NewForm builds a form from structured input. Only vocabulary genres are
// set, so a genre entry can never overwrite the runtime or synopsis.
func NewForm(runtime, synopsis string, genres []string) Form {
	form := Form{FieldRuntime: runtime, FieldSynopsis: synopsis}
	for _, g := range genres {
		if IsGenre(g) {
			form[g] = "on"
		}
	}
	return form
}

// SelectedGenres returns the known genres present in the form. Keys outside
// the vocabulary are ignored.
func SelectedGenres(form Form) []string {
	var out []string
	for _, g := range Genres() {
		if _, ok := form[g]; ok {
			out = append(out, g)
		}
	}
	return out
}

// BuildFeatures maps the form onto the base feature vector.
func BuildFeatures(form Form, lex *Lexicon) (Vector, error) {
	if lex == nil {
		return Vector{}, ErrLexiconNotLoaded
	}

	raw := form[FieldRuntime]
	runtime, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Vector{}, &ValidationError{Field: FieldRuntime, Value: raw, Reason: "not an integer"}
	}

	values := make([]float64, 0, BaseSchema.Len())
	values = append(values, float64(runtime))
	for _, b := range GenreBuckets {
		values = append(values, bucketValue(form, b))
	}
	values = append(values, float64(lex.CountCommonWords(form[FieldSynopsis])))

	return NewVector(BaseSchema, values)
}

func bucketValue(form Form, b Bucket) float64 {
	for _, g := range b.Genres {
		if _, ok := form[g]; ok {
			return 1
		}
	}
	return 0
}
