package history

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"boxoffice/internal/forecast"
	"boxoffice/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Save(ctx context.Context, rec models.ForecastRecord) error {
	genresJSON, err := json.Marshal(rec.Genres)
	if err != nil {
		return fmt.Errorf("marshal genres: %w", err)
	}
	predsJSON, err := json.Marshal(rec.Predictions)
	if err != nil {
		return fmt.Errorf("marshal predictions: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO forecasts (id, created_at, runtime, genres, synopsis, best_month, predicted_value, message, predictions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt, rec.Runtime, string(genresJSON), rec.Synopsis,
		rec.BestMonth, rec.PredictedValue, rec.Message, string(predsJSON))
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, created_at, runtime, genres, synopsis, best_month, predicted_value, message, predictions
	FROM forecasts
`

func (r *Repo) GetByID(ctx context.Context, id string) (*models.ForecastRecord, error) {
	row := r.DB.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get forecast: %w", err)
	}
	return rec, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM forecasts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count forecasts: %w", err)
	}
	return total, nil
}

// List returns the newest forecasts first.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]models.ForecastRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}
	defer rows.Close()

	out := make([]models.ForecastRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.ForecastRecord, error) {
	var (
		rec       models.ForecastRecord
		genres    string
		predsJSON string
	)
	if err := s.Scan(&rec.ID, &rec.CreatedAt, &rec.Runtime, &genres, &rec.Synopsis,
		&rec.BestMonth, &rec.PredictedValue, &rec.Message, &predsJSON); err != nil {
		return nil, err
	}

	_ = json.Unmarshal([]byte(genres), &rec.Genres)
	_ = json.Unmarshal([]byte(predsJSON), &rec.Predictions)
	rec.BestMonthName = forecast.Month(rec.BestMonth).String()
	return &rec, nil
}

// RecordFromResult converts an evaluation into a storable record.
func RecordFromResult(id string, form forecast.Form, res forecast.Result) models.ForecastRecord {
	runtime, _ := strconv.Atoi(strings.TrimSpace(form[forecast.FieldRuntime]))
	genres := forecast.SelectedGenres(form)
	if genres == nil {
		genres = []string{}
	}

	preds := make([]models.MonthValue, 0, len(res.Predictions))
	for _, p := range res.Predictions {
		preds = append(preds, models.MonthValue{Month: int(p.Month), Value: p.Value})
	}

	return models.ForecastRecord{
		ID:             id,
		CreatedAt:      time.Now().UTC(),
		Runtime:        runtime,
		Genres:         genres,
		Synopsis:       form[forecast.FieldSynopsis],
		BestMonth:      int(res.Month),
		BestMonthName:  res.Month.String(),
		PredictedValue: res.Value,
		Message:        res.Message,
		Predictions:    preds,
	}
}
