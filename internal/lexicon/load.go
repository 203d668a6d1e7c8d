package lexicon

import (
	"context"
	"errors"
	"fmt"

	"boxoffice/internal/forecast"
)

var ErrEmpty = errors.New("lexicon is empty")

// Load builds the process lexicon from path when set, otherwise from the
// common_words table. An empty word set is an error.
func Load(ctx context.Context, path string, repo *Repo) (*forecast.Lexicon, error) {
	var (
		words []string
		err   error
	)
	switch {
	case path != "":
		words, err = LoadFile(path)
	case repo != nil:
		words, err = repo.Words(ctx)
	default:
		return nil, forecast.ErrLexiconNotLoaded
	}
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: no common words in %s", ErrEmpty, sourceName(path))
	}
	return forecast.NewLexicon(words), nil
}

func sourceName(path string) string {
	if path != "" {
		return path
	}
	return "database"
}
