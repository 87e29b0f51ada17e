package ingest

import (
	"context"
	"fmt"
	"time"

	"market-terminal/src/interfaces"
	"market-terminal/src/logger"
	"market-terminal/src/models"
	"market-terminal/src/utils"
)

// -----------------------------------------------------------------------------
// Batch Ingestion Coordinator: drives one market ingestion cycle across the
// configured universe. Failures are contained at their own scope: a dead
// category skips that category, a dead instrument skips that instrument,
// and everything that survived still reaches the sink in one append.
// -----------------------------------------------------------------------------

type Coordinator struct {
	Config *models.MConfig
	Source interfaces.IMarketSource
	DB     interfaces.IDatabase
	Hours  *utils.MarketHours
	Logger *logger.Logger

	// Clock is the ingestion timestamp source; injectable for tests.
	Clock func() time.Time
}

// -----------------------------------------------------------------------------

func NewCoordinator(cfg *models.MConfig, source interfaces.IMarketSource, db interfaces.IDatabase, hours *utils.MarketHours) *Coordinator {
	return &Coordinator{
		Config: cfg,
		Source: source,
		DB:     db,
		Hours:  hours,
		Logger: logger.NewLogger("Coordinator"),
		Clock:  time.Now,
	}
}

// -----------------------------------------------------------------------------

// RunCycle performs one full ingestion pass: fetch every category, normalize
// every instrument, append the accumulated batch. The returned error covers
// only cycle-level conditions (sink write failure); everything below that is
// recorded in the report and logged.
func (c *Coordinator) RunCycle(ctx context.Context) (models.MCycleReport, error) {
	startedAt := c.Clock()
	report := models.MCycleReport{
		Pipeline:  "market",
		StartedAt: startedAt,
	}

	var batch []models.MMarketRow

	for _, category := range c.Config.Universe {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if c.Hours != nil && category.ExchangeTraded && !c.Hours.AnyOpen(category.Tickers) {
			c.Logger.Info("Category %s: all markets closed, skipping", category.Name)
			report.CategoriesSkipped = append(report.CategoriesSkipped, category.Name)
			continue
		}

		c.Logger.Info("Fetching data for: %s...", category.Name)

		rawByTicker, err := c.Source.FetchCategoryBatch(ctx, category.Name, category.Tickers)
		if err != nil {
			c.Logger.Error("Batch fetch error for %s: %v", category.Name, err)
			report.CategoriesSkipped = append(report.CategoriesSkipped, category.Name)
			continue
		}
		if len(rawByTicker) == 0 {
			c.Logger.Warning("No data found for %s", category.Name)
			report.CategoriesSkipped = append(report.CategoriesSkipped, category.Name)
			continue
		}

		report.CategoriesFetched = append(report.CategoriesFetched, category.Name)
		ingestedAt := c.Clock()

		for _, ticker := range category.Tickers {
			raw, ok := rawByTicker[ticker]
			if !ok {
				report.ItemFailures = append(report.ItemFailures, models.MItemFailure{
					Ticker:   ticker,
					Category: category.Name,
					Reason:   "absent from batch",
				})
				continue
			}

			rows, err := NormalizeMarketRows(raw, ticker, models.MAssetType(category.Name), ingestedAt)
			if err != nil {
				c.Logger.Error("Error processing ticker %s: %v", ticker, err)
				report.ItemFailures = append(report.ItemFailures, models.MItemFailure{
					Ticker:   ticker,
					Category: category.Name,
					Reason:   err.Error(),
				})
				continue
			}

			batch = append(batch, rows...)
		}
	}

	if len(batch) == 0 {
		c.Logger.Warning("No data fetched to upload")
		report.DurationSeconds = c.Clock().Sub(startedAt).Seconds()
		return report, nil
	}

	c.Logger.Info("Appending %d market rows...", len(batch))
	if err := c.DB.AppendMarketRows(batch); err != nil {
		report.DurationSeconds = c.Clock().Sub(startedAt).Seconds()
		return report, fmt.Errorf("sink append failed: %w", err)
	}

	report.RowsAppended = len(batch)
	report.DurationSeconds = c.Clock().Sub(startedAt).Seconds()
	return report, nil
}
