package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"boxoffice/internal/history"
	"boxoffice/pkg/database"
	"boxoffice/pkg/models"
	"boxoffice/pkg/utils"
)

const pageSize = 100

func main() {
	out := flag.String("out", "data/forecasts.csv", "output CSV path for stored forecasts")
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

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		logger.Fatal("create output dir failed", zap.Error(err))
	}
	f, err := os.Create(*out)
	if err != nil {
		logger.Fatal("create output failed", zap.String("path", *out), zap.Error(err))
	}
	defer f.Close()

	n, err := exportForecasts(ctx, history.NewRepo(db), f)
	if err != nil {
		logger.Fatal("export forecasts failed", zap.Error(err))
	}

	logger.Info("exported forecasts", zap.Int("forecasts", n), zap.String("path", *out))
}

var header = append([]string{"id", "created_at", "runtime", "genres", "synopsis", "best_month", "predicted_revenue_millions"}, monthColumns()...)

func monthColumns() []string {
	cols := make([]string, 12)
	for i := range cols {
		cols[i] = strings.ToLower(time.Month(i + 1).String())
	}
	return cols
}

func exportForecasts(ctx context.Context, repo *history.Repo, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	total := 0
	for offset := 0; ; offset += pageSize {
		page, err := repo.List(ctx, pageSize, offset)
		if err != nil {
			return total, err
		}
		for _, rec := range page {
			if err := cw.Write(row(rec)); err != nil {
				return total, err
			}
			total++
		}
		if len(page) < pageSize {
			break
		}
	}

	cw.Flush()
	return total, cw.Error()
}

func row(rec models.ForecastRecord) []string {
	r := []string{
		rec.ID,
		rec.CreatedAt.Format(time.RFC3339),
		strconv.Itoa(rec.Runtime),
		strings.Join(rec.Genres, "|"),
		rec.Synopsis,
		rec.BestMonthName,
		strconv.FormatFloat(rec.PredictedValue, 'f', 2, 64),
	}
	months := make([]string, 12)
	for _, p := range rec.Predictions {
		if p.Month >= 0 && p.Month < len(months) {
			months[p.Month] = strconv.FormatFloat(p.Value, 'f', -1, 64)
		}
	}
	return append(r, months...)
}
