package models

import "time"

const ForecastCreatedEvent = "forecast.created"

// ForecastEvent is pushed to live feed subscribers.
type ForecastEvent struct {
	Type           string    `json:"type"`
	ID             string    `json:"id"`
	BestMonth      string    `json:"best_month"`
	PredictedValue float64   `json:"predicted_revenue_millions"`
	Genres         []string  `json:"genres,omitempty"`
	At             time.Time `json:"at"`
}
