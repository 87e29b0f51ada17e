package interfaces

import "market-terminal/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the tabular sink. Both row tables are
// pure history logs: appends only, no updates, no deletes.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize creates the tables if they do not exist yet.
	Initialize() error

	// -----------------------------------------------------------------------------

	// AppendMarketRows inserts one batch of market rows in a single transaction.
	AppendMarketRows(rows []models.MMarketRow) error

	// -----------------------------------------------------------------------------

	// AppendOptionRows inserts one batch of option snapshots in a single transaction.
	AppendOptionRows(rows []models.MOptionRow) error

	// -----------------------------------------------------------------------------

	// QueryMarketRows returns rows matching the filter, ordered by Date ASC.
	QueryMarketRows(filter models.MMarketFilter) ([]models.MMarketRow, error)

	// -----------------------------------------------------------------------------

	// QueryOptionRows returns the full snapshot history for one underlying,
	// ordered by LastUpdated ASC.
	QueryOptionRows(underlying string) ([]models.MOptionRow, error)

	// -----------------------------------------------------------------------------

	// DistinctAssetTypes lists the asset types present in the market table.
	DistinctAssetTypes() ([]models.MAssetType, error)

	// -----------------------------------------------------------------------------

	// DistinctUnderlyings lists the underlyings present in the options table.
	DistinctUnderlyings() ([]string, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
