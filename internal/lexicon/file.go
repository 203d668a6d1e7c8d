// Package lexicon loads the reference set of common words used to score
// synopsis genericness.
package lexicon

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// LoadFile reads a word list. A .json file holds an array of strings; any
// other file is plain text with one word per line, where blank lines and
// lines starting with '#' are skipped.
func LoadFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var words []string
		if err := json.Unmarshal(b, &words); err != nil {
			return nil, fmt.Errorf("decode lexicon %s: %w", path, err)
		}
		return words, nil
	}

	var words []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan lexicon %s: %w", path, err)
	}
	return words, nil
}
