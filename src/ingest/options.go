package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-terminal/src/interfaces"
	"market-terminal/src/logger"
	"market-terminal/src/models"
)

// -----------------------------------------------------------------------------
// Options Snapshot Normalizer: one raw chain (call leg + put leg, single
// nearest expiry) in, canonical option rows out. Same fixed-schema,
// null-fill, per-instrument-isolation rules as the market normalizer.
// -----------------------------------------------------------------------------

type optionField struct {
	name   string
	assign func(row *models.MOptionRow, raw models.MRawRow)
}

// OptionSchema maps provider contract fields onto the canonical Option Row.
// UnderlyingTicker, Type, Expiry and LastUpdated are stamped separately.
var OptionSchema = []optionField{
	{"contractSymbol", func(row *models.MOptionRow, raw models.MRawRow) {
		if s, ok := raw.Text("contractSymbol"); ok {
			row.ContractSymbol = s
		}
	}},
	{"strike", func(row *models.MOptionRow, raw models.MRawRow) { row.Strike = raw.Float("strike") }},
	{"lastPrice", func(row *models.MOptionRow, raw models.MRawRow) { row.LastPrice = raw.Float("lastPrice") }},
	{"impliedVolatility", func(row *models.MOptionRow, raw models.MRawRow) {
		row.ImpliedVolatility = raw.Float("impliedVolatility")
	}},
}

// -----------------------------------------------------------------------------

// NormalizeOptionChain converts one underlying's raw chain into canonical
// option rows. Each leg is tagged with its Type before combining; the
// underlying, the selected expiry and the ingestion time are stamped
// uniformly across the whole chain.
func NormalizeOptionChain(chain models.MRawChain, ingestedAt time.Time) ([]models.MOptionRow, error) {
	if chain.UnderlyingTicker == "" {
		return nil, fmt.Errorf("normalize options: empty underlying ticker")
	}

	var rows []models.MOptionRow
	rows = append(rows, normalizeLeg(chain.Calls, models.OptionCall, chain, ingestedAt)...)
	rows = append(rows, normalizeLeg(chain.Puts, models.OptionPut, chain, ingestedAt)...)

	return rows, nil
}

// -----------------------------------------------------------------------------

func normalizeLeg(leg models.MRawTable, optType models.MOptionType, chain models.MRawChain, ingestedAt time.Time) []models.MOptionRow {
	var rows []models.MOptionRow

	for _, rawRow := range leg.Rows {
		row := models.MOptionRow{
			UnderlyingTicker: chain.UnderlyingTicker,
			Type:             optType,
			Expiry:           chain.Expiry,
			LastUpdated:      ingestedAt,
		}

		for _, field := range OptionSchema {
			field.assign(&row, rawRow)
		}

		rows = append(rows, row)
	}

	return rows
}

// -----------------------------------------------------------------------------
// Options coordinator: per-underlying fetch/normalize loop with the same
// containment rules as the market coordinator, one append per cycle.
// -----------------------------------------------------------------------------

type OptionsCoordinator struct {
	Config *models.MConfig
	Source interfaces.IMarketSource
	DB     interfaces.IDatabase
	Logger *logger.Logger
	Clock  func() time.Time
}

// -----------------------------------------------------------------------------

func NewOptionsCoordinator(cfg *models.MConfig, source interfaces.IMarketSource, db interfaces.IDatabase) *OptionsCoordinator {
	return &OptionsCoordinator{
		Config: cfg,
		Source: source,
		DB:     db,
		Logger: logger.NewLogger("OptionsCoordinator"),
		Clock:  time.Now,
	}
}

// -----------------------------------------------------------------------------

// RunCycle scans the configured options universe once. Underlyings without
// listed expiries are skipped silently; fetch and parse failures are
// recorded and skipped; survivors are appended in a single batch.
func (c *OptionsCoordinator) RunCycle(ctx context.Context) (models.MCycleReport, error) {
	startedAt := c.Clock()
	report := models.MCycleReport{
		Pipeline:  "options",
		StartedAt: startedAt,
	}

	var batch []models.MOptionRow

	for _, ticker := range c.Config.Options.Tickers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		c.Logger.Info("Checking options for %s...", ticker)

		chain, err := c.Source.FetchOptionChain(ctx, ticker)
		if err != nil {
			if errors.Is(err, interfaces.ErrNoExpirations) {
				c.Logger.Info("No options found for %s", ticker)
				continue
			}
			c.Logger.Error("Error fetching %s: %v", ticker, err)
			report.ItemFailures = append(report.ItemFailures, models.MItemFailure{
				Ticker: ticker,
				Reason: err.Error(),
			})
			continue
		}

		rows, err := NormalizeOptionChain(chain, c.Clock())
		if err != nil {
			c.Logger.Error("Error processing chain for %s: %v", ticker, err)
			report.ItemFailures = append(report.ItemFailures, models.MItemFailure{
				Ticker: ticker,
				Reason: err.Error(),
			})
			continue
		}

		batch = append(batch, rows...)
	}

	if len(batch) == 0 {
		c.Logger.Warning("No options data retrieved")
		report.DurationSeconds = c.Clock().Sub(startedAt).Seconds()
		return report, nil
	}

	c.Logger.Info("Appending %d option contracts...", len(batch))
	if err := c.DB.AppendOptionRows(batch); err != nil {
		report.DurationSeconds = c.Clock().Sub(startedAt).Seconds()
		return report, fmt.Errorf("sink append failed: %w", err)
	}

	report.RowsAppended = len(batch)
	report.DurationSeconds = c.Clock().Sub(startedAt).Seconds()
	return report, nil
}
