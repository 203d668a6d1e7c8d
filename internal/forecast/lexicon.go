package forecast

import "strings"

// SpacePlaceholder is how the submitted form encodes spaces in the synopsis.
const SpacePlaceholder = "+"

// Lexicon is the read-only reference set of common words.
type Lexicon struct {
	words map[string]struct{}
}

func NewLexicon(words []string) *Lexicon {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return &Lexicon{words: set}
}

func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

// Contains is case-sensitive.
func (l *Lexicon) Contains(word string) bool {
	if l == nil {
		return false
	}
	_, ok := l.words[word]
	return ok
}

// CountCommonWords counts synopsis tokens found in the lexicon.
//
// Tokens come from splitting on single spaces after placeholder substitution,
// trimming and lower-casing. Repeated separators yield empty tokens, and an
// empty synopsis yields one empty token; these are compared against the
// lexicon like any other token.
func (l *Lexicon) CountCommonWords(text string) int {
	normalized := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(text, SpacePlaceholder, " ")))

	count := 0
	for _, token := range strings.Split(normalized, " ") {
		if l.Contains(token) {
			count++
		}
	}
	return count
}
