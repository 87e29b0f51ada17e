package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"market-terminal/src/interfaces"
	"market-terminal/src/models"
)

const optionsURL = "https://query1.finance.yahoo.com/v7/finance/options/%s"

// -----------------------------------------------------------------------------

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Options          []struct {
				ExpirationDate int64           `json:"expirationDate"`
				Calls          []optionContract `json:"calls"`
				Puts           []optionContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"optionChain"`
}

type optionContract struct {
	ContractSymbol    *string  `json:"contractSymbol"`
	Strike            *float64 `json:"strike"`
	LastPrice         *float64 `json:"lastPrice"`
	ImpliedVolatility *float64 `json:"impliedVolatility"`
	Volume            *int64   `json:"volume"`
	OpenInterest      *int64   `json:"openInterest"`
}

// -----------------------------------------------------------------------------

// FetchOptionChain fetches both legs of the nearest listed expiry for one
// underlying. Only the nearest expiry is fetched; it is the most liquid
// chain and keeps the snapshot volume bounded.
func (s *Source) FetchOptionChain(ctx context.Context, ticker string) (models.MRawChain, error) {
	if err := ctx.Err(); err != nil {
		return models.MRawChain{}, err
	}

	body, err := s.Network.Get(fmt.Sprintf(optionsURL, ticker), nil)
	if err != nil {
		return models.MRawChain{}, fmt.Errorf("network error for %s: %w", ticker, err)
	}

	return parseOptionChain(ticker, body)
}

// -----------------------------------------------------------------------------

func parseOptionChain(ticker string, body []byte) (models.MRawChain, error) {
	var resp optionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MRawChain{}, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.OptionChain.Error != nil {
		return models.MRawChain{}, fmt.Errorf("yahoo api error: %s - %s",
			resp.OptionChain.Error.Code, resp.OptionChain.Error.Description)
	}
	if len(resp.OptionChain.Result) == 0 {
		return models.MRawChain{}, fmt.Errorf("no result in options response for %s", ticker)
	}

	result := resp.OptionChain.Result[0]
	if len(result.ExpirationDates) == 0 {
		return models.MRawChain{}, fmt.Errorf("%s: %w", ticker, interfaces.ErrNoExpirations)
	}

	// Nearest expiry. Yahoo returns the chain for it by default.
	expiry := time.Unix(result.ExpirationDates[0], 0).UTC()

	chain := models.MRawChain{
		UnderlyingTicker: ticker,
		Expiry:           expiry,
	}

	if len(result.Options) == 0 {
		return models.MRawChain{}, fmt.Errorf("no chain data in options response for %s", ticker)
	}

	chain.Calls = contractsToTable(result.Options[0].Calls)
	chain.Puts = contractsToTable(result.Options[0].Puts)

	return chain, nil
}

// -----------------------------------------------------------------------------

var contractColumns = []string{
	"contractSymbol", "strike", "lastPrice", "impliedVolatility", "volume", "openInterest",
}

func contractsToTable(contracts []optionContract) models.MRawTable {
	table := models.MRawTable{Columns: contractColumns}

	for _, c := range contracts {
		row := models.MRawRow{
			"strike":            floatOrNil(c.Strike),
			"lastPrice":         floatOrNil(c.LastPrice),
			"impliedVolatility": floatOrNil(c.ImpliedVolatility),
			"volume":            intOrNil(c.Volume),
			"openInterest":      intOrNil(c.OpenInterest),
		}
		if c.ContractSymbol != nil {
			row["contractSymbol"] = *c.ContractSymbol
		} else {
			row["contractSymbol"] = nil
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}
