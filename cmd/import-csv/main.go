package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"boxoffice/internal/lexicon"
	"boxoffice/pkg/database"
	"boxoffice/pkg/utils"
)

func main() {
	in := flag.String("words", "data/common_words.csv", "input word list (.csv with a word column, .json array, or one word per line)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal("open db failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	words, err := readWords(*in)
	if err != nil {
		logger.Fatal("read words failed", zap.String("path", *in), zap.Error(err))
	}
	if len(words) == 0 {
		logger.Fatal("no words found", zap.String("path", *in))
	}

	repo := lexicon.NewRepo(db)
	if err := repo.Replace(ctx, words); err != nil {
		logger.Fatal("import words failed", zap.Error(err))
	}
	n, err := repo.Count(ctx)
	if err != nil {
		logger.Fatal("count words failed", zap.Error(err))
	}

	logger.Info("imported common words", zap.Int("words", n), zap.String("path", *in))
}

func readWords(path string) ([]string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return lexicon.LoadFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSVWords(f)
}

// readCSVWords takes the "word" column when the first row names one,
// otherwise the first column of every row.
func readCSVWords(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	col := 0
	var words []string
	if idx, ok := readHeader(first)["word"]; ok {
		col = idx
	} else if w := valueAt(first, col); w != "" {
		words = append(words, w)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if w := valueAt(row, col); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

func readHeader(row []string) map[string]int {
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header
}

func valueAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
