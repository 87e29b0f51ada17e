package models

import "time"

// MIndicatorPoint is one derived value aligned to a bar. A nil Value means
// the indicator is undefined at that position (e.g. not enough history for
// the rolling window); it is never approximated.
type MIndicatorPoint struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// -----------------------------------------------------------------------------

// MTickerSummary is the KPI view of one ticker over the queried window:
// latest close and percent change against the window's first open.
type MTickerSummary struct {
	Ticker     string    `json:"ticker"`
	LatestDate time.Time `json:"latest_date"`
	Close      float64   `json:"close"`
	ChangePct  float64   `json:"change_pct"`
}
