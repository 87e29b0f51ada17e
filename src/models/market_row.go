package models

import "time"

// MAssetType is the asset class a ticker belongs to. The value matches the
// category name in the configured universe and is stored verbatim.
type MAssetType string

const (
	AssetStocks     MAssetType = "Stocks"
	AssetCrypto     MAssetType = "Crypto"
	AssetIndices    MAssetType = "Indices"
	AssetCurrencies MAssetType = "Currencies"
	AssetTreasury   MAssetType = "Treasury"
)

// -----------------------------------------------------------------------------

// MMarketRow is one timestamped bar for one instrument, in the canonical
// schema every normalized fetch is reduced to. Nil pointers are stored as
// SQL NULL. Date is timezone-naive (wall-clock reading carried as UTC).
type MMarketRow struct {
	Ticker      string     `json:"ticker"`
	AssetType   MAssetType `json:"asset_type"`
	Date        time.Time  `json:"date"`
	Open        *float64   `json:"open"`
	High        *float64   `json:"high"`
	Low         *float64   `json:"low"`
	Close       *float64   `json:"close"`
	Volume      *int64     `json:"volume"`
	LastUpdated time.Time  `json:"last_updated"`
}

// -----------------------------------------------------------------------------

// MMarketFilter selects market rows on the read side. Empty Tickers means
// every ticker of the asset type. Results are always ordered by Date ASC.
type MMarketFilter struct {
	AssetType MAssetType
	Tickers   []string
}
