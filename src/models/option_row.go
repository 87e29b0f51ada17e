package models

import "time"

// MOptionType marks which leg of the chain a contract belongs to.
type MOptionType string

const (
	OptionCall MOptionType = "Call"
	OptionPut  MOptionType = "Put"
)

// -----------------------------------------------------------------------------

// MOptionRow is one observation of one contract. Contracts accumulate
// snapshots over their lifetime; ContractSymbol is the dedup key and the
// row with the greatest LastUpdated wins on the read side.
type MOptionRow struct {
	UnderlyingTicker  string      `json:"underlying_ticker"`
	ContractSymbol    string      `json:"contract_symbol"`
	Type              MOptionType `json:"type"`
	Strike            *float64    `json:"strike"`
	Expiry            time.Time   `json:"expiry"`
	LastPrice         *float64    `json:"last_price"`
	ImpliedVolatility *float64    `json:"implied_volatility"`
	LastUpdated       time.Time   `json:"last_updated"`
}
