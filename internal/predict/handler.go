// Package predict serves the forecast endpoints.
package predict

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"boxoffice/internal/forecast"
	"boxoffice/internal/history"
	"boxoffice/internal/metrics"
	"boxoffice/pkg/models"
)

// Recorder persists evaluated forecasts.
type Recorder interface {
	Save(ctx context.Context, rec models.ForecastRecord) error
}

// Broadcaster fans forecast events out to live subscribers.
type Broadcaster interface {
	Publish(ev models.ForecastEvent)
}

type Handler struct {
	Evaluator *forecast.Evaluator
	History   Recorder
	Feed      Broadcaster
	Logger    *zap.Logger
}

func NewHandler(ev *forecast.Evaluator, hist Recorder, feed Broadcaster, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Evaluator: ev, History: hist, Feed: feed, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/project", h.submitForm) // form posted by the project page
	rg.POST("/forecast", h.submitJSON)
	rg.GET("/genres", h.genres)
}

type forecastReq struct {
	Runtime  string   `json:"runtime"`
	Synopsis string   `json:"synopsis"`
	Genres   []string `json:"genres"`
}

type forecastResp struct {
	ID            string                       `json:"id"`
	Message       string                       `json:"message"`
	BestMonth     forecast.Month               `json:"best_month"`
	BestMonthName string                       `json:"best_month_name"`
	Value         float64                      `json:"predicted_revenue_millions"`
	Predictions   []forecast.MonthlyPrediction `json:"predictions"`
}

func (h *Handler) submitForm(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form", "kind": "validation"})
		return
	}
	h.evaluate(c, forecast.FormFromValues(c.Request.PostForm))
}

func (h *Handler) submitJSON(c *gin.Context) {
	var req forecastReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json", "kind": "validation"})
		return
	}

	h.evaluate(c, forecast.NewForm(req.Runtime, req.Synopsis, req.Genres))
}

func (h *Handler) evaluate(c *gin.Context, form forecast.Form) {
	start := time.Now()
	res, err := h.Evaluator.Evaluate(form)
	if err != nil {
		kind := forecast.Kind(err)
		metrics.RecordForecast(kind, "", time.Since(start))

		status := http.StatusInternalServerError
		if errors.Is(err, forecast.ErrValidation) {
			status = http.StatusBadRequest
		} else {
			h.Logger.Error("forecast failed", zap.String("kind", kind), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
		return
	}
	metrics.RecordForecast("ok", res.Month.String(), time.Since(start))

	id := uuid.NewString()
	rec := history.RecordFromResult(id, form, res)
	if h.History != nil {
		if err := h.History.Save(c.Request.Context(), rec); err != nil {
			metrics.HistoryWriteFailures.Inc()
			h.Logger.Warn("history write failed", zap.String("id", id), zap.Error(err))
		}
	}
	if h.Feed != nil {
		ev := models.ForecastEvent{
			Type:           models.ForecastCreatedEvent,
			ID:             id,
			BestMonth:      rec.BestMonthName,
			PredictedValue: forecast.RoundCents(res.Value),
			Genres:         rec.Genres,
			At:             rec.CreatedAt,
		}
		go h.Feed.Publish(ev)
	}

	c.JSON(http.StatusOK, forecastResp{
		ID:            id,
		Message:       res.Message,
		BestMonth:     res.Month,
		BestMonthName: res.Month.String(),
		Value:         res.Value,
		Predictions:   res.Predictions,
	})
}

func (h *Handler) genres(c *gin.Context) {
	buckets := make([]gin.H, 0, len(forecast.GenreBuckets))
	for _, b := range forecast.GenreBuckets {
		buckets = append(buckets, gin.H{"feature": b.Field, "genres": b.Genres})
	}
	c.JSON(http.StatusOK, gin.H{
		"genres":         forecast.Genres(),
		"buckets":        buckets,
		"schema_version": forecast.SchemaVersion,
	})
}
