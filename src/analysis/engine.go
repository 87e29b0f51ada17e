package analysis

import (
	"fmt"

	"market-terminal/src/analysis/core"
	"market-terminal/src/logger"
	"market-terminal/src/models"
)

// Indicator modes accepted by Compute.
const (
	ModeRollingMean = "sma"
	ModePerformance = "performance"
)

// -----------------------------------------------------------------------------

// Engine derives indicator series from time-ordered market rows. It is a
// pure read-side computation: nothing is cached and nothing is persisted;
// every request recomputes from the rows it is given.
type Engine struct {
	Window int
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewEngine(cfg *models.MConfig) *Engine {
	return &Engine{
		Window: cfg.Analysis.RollingWindow,
		Logger: logger.NewLogger("Engine"),
	}
}

// -----------------------------------------------------------------------------

// Compute derives the selected indicator per ticker. Input rows must be
// ordered by Date ascending (the sink's query order); grouping by ticker
// happens here, before any window math — a rolling window across two
// tickers' concatenated bars would be silently wrong.
func (e *Engine) Compute(rows []models.MMarketRow, mode string) (map[string][]models.MIndicatorPoint, error) {
	switch mode {
	case ModeRollingMean:
		return e.RollingMeanByTicker(rows), nil
	case ModePerformance:
		return e.PerformanceByTicker(rows), nil
	}
	return nil, fmt.Errorf("unknown indicator mode %q", mode)
}

// -----------------------------------------------------------------------------

// RollingMeanByTicker computes the fixed-window rolling mean of Close for
// each ticker. Points without enough history carry a nil value.
func (e *Engine) RollingMeanByTicker(rows []models.MMarketRow) map[string][]models.MIndicatorPoint {
	results := make(map[string][]models.MIndicatorPoint)

	for ticker, group := range GroupByTicker(rows) {
		closes := make([]float64, len(group))
		for i, row := range group {
			closes[i] = *row.Close
		}

		means := core.RollingMean(closes, e.Window)

		points := make([]models.MIndicatorPoint, len(group))
		for i, row := range group {
			points[i] = models.MIndicatorPoint{Date: row.Date, Value: means[i]}
		}
		results[ticker] = points
	}

	return results
}

// -----------------------------------------------------------------------------

// PerformanceByTicker computes baseline-relative performance per ticker,
// anchored to the first bar's Open in the given window. A ticker whose
// baseline is null or zero is omitted with a warning; the others are
// unaffected.
func (e *Engine) PerformanceByTicker(rows []models.MMarketRow) map[string][]models.MIndicatorPoint {
	results := make(map[string][]models.MIndicatorPoint)

	for ticker, group := range GroupByTicker(rows) {
		points, err := e.performanceSeries(group)
		if err != nil {
			e.Logger.Warning("Performance undefined for %s: %v", ticker, err)
			continue
		}
		results[ticker] = points
	}

	return results
}

// -----------------------------------------------------------------------------

func (e *Engine) performanceSeries(group []models.MMarketRow) ([]models.MIndicatorPoint, error) {
	if len(group) == 0 {
		return nil, fmt.Errorf("empty series")
	}
	if group[0].Open == nil {
		return nil, fmt.Errorf("first bar has no open price")
	}

	closes := make([]float64, len(group))
	for i, row := range group {
		closes[i] = *row.Close
	}

	values, err := core.BaselinePerformance(*group[0].Open, closes)
	if err != nil {
		return nil, err
	}

	points := make([]models.MIndicatorPoint, len(group))
	for i, row := range group {
		v := values[i]
		points[i] = models.MIndicatorPoint{Date: row.Date, Value: &v}
	}
	return points, nil
}

// -----------------------------------------------------------------------------

// Summaries produces the per-ticker KPI view: latest close and percent
// change against the window's first open. Tickers with a degenerate
// baseline are omitted.
func (e *Engine) Summaries(rows []models.MMarketRow) map[string]models.MTickerSummary {
	results := make(map[string]models.MTickerSummary)

	for ticker, group := range GroupByTicker(rows) {
		first, latest := group[0], group[len(group)-1]
		if first.Open == nil {
			continue
		}

		change, err := core.ChangePercent(*latest.Close, *first.Open)
		if err != nil {
			e.Logger.Warning("Summary undefined for %s: %v", ticker, err)
			continue
		}

		results[ticker] = models.MTickerSummary{
			Ticker:     ticker,
			LatestDate: latest.Date,
			Close:      *latest.Close,
			ChangePct:  change,
		}
	}

	return results
}

// -----------------------------------------------------------------------------

// GroupByTicker splits rows by ticker, preserving their relative order.
// Rows with a null Close are not observations and are excluded; persisted
// rows never have one, but the engine does not rely on its callers for that.
func GroupByTicker(rows []models.MMarketRow) map[string][]models.MMarketRow {
	groups := make(map[string][]models.MMarketRow)
	for _, row := range rows {
		if row.Close == nil {
			continue
		}
		groups[row.Ticker] = append(groups[row.Ticker], row)
	}
	return groups
}
