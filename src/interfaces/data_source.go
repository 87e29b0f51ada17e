package interfaces

import (
	"context"
	"errors"

	"market-terminal/src/models"
)

// ErrNoExpirations marks an underlying with no listed option expiries.
// The options coordinator skips such instruments without recording a failure.
var ErrNoExpirations = errors.New("no listed option expirations")

// -----------------------------------------------------------------------------
// IMarketSource is the black-box upstream fetch capability. Results are raw
// and possibly ragged; normalization is entirely the caller's problem.
// -----------------------------------------------------------------------------

type IMarketSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchCategoryBatch performs one batched fetch covering all tickers of a
	// category. Tickers that individually failed are simply absent from the
	// returned map; an error means the whole batch produced nothing.
	FetchCategoryBatch(ctx context.Context, category string, tickers []string) (map[string]models.MRawTable, error)

	// -----------------------------------------------------------------------------

	// FetchOptionChain fetches both legs of the nearest listed expiry for one
	// underlying. Returns ErrNoExpirations when the instrument lists none.
	FetchOptionChain(ctx context.Context, ticker string) (models.MRawChain, error)
}
