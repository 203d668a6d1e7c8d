package models

import "time"

// MonthValue is one entry of a month sweep.
type MonthValue struct {
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// ForecastRecord is a stored evaluation.
type ForecastRecord struct {
	ID             string       `json:"id"`
	CreatedAt      time.Time    `json:"created_at"`
	Runtime        int          `json:"runtime"`
	Genres         []string     `json:"genres"`
	Synopsis       string       `json:"synopsis"`
	BestMonth      int          `json:"best_month"`
	BestMonthName  string       `json:"best_month_name"`
	PredictedValue float64      `json:"predicted_revenue_millions"`
	Message        string       `json:"message"`
	Predictions    []MonthValue `json:"predictions"`
}
