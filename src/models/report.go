package models

import "time"

// -----------------------------------------------------------------------------
// Per-item and per-cycle results. Failures travel as values so that one
// instrument or category never aborts its siblings.
// -----------------------------------------------------------------------------

// MItemFailure records one instrument that produced no rows this cycle.
type MItemFailure struct {
	Ticker   string `json:"ticker"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// MCycleReport summarizes one ingestion cycle for logging and broadcast.
type MCycleReport struct {
	Pipeline          string         `json:"pipeline"` // "market" or "options"
	StartedAt         time.Time      `json:"started_at"`
	DurationSeconds   float64        `json:"duration_seconds"`
	RowsAppended      int            `json:"rows_appended"`
	CategoriesFetched []string       `json:"categories_fetched"`
	CategoriesSkipped []string       `json:"categories_skipped"`
	ItemFailures      []MItemFailure `json:"item_failures"`
}
