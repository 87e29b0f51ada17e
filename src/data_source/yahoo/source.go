package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"market-terminal/src/interfaces"
	"market-terminal/src/logger"
	"market-terminal/src/models"
)

const (
	chartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s"

	// One trading day of 15-minute bars per cycle.
	chartInterval = "15m"
	chartRange    = "1d"
)

// -----------------------------------------------------------------------------

// Source fetches quote and options data from the Yahoo Finance public API.
// Everything it returns is raw: provider column names, provider timezones,
// provider nulls.
type Source struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *Source {
	return &Source{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger("YahooSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *Source) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchCategoryBatch fetches all tickers of one category concurrently under a
// shared semaphore. A ticker whose fetch or parse fails is logged and left
// out of the result; the batch errors only when every ticker failed.
func (s *Source) FetchCategoryBatch(ctx context.Context, category string, tickers []string) (map[string]models.MRawTable, error) {
	if len(tickers) == 0 {
		return make(map[string]models.MRawTable), nil
	}

	results := make(map[string]models.MRawTable)
	var mu sync.Mutex
	var wg sync.WaitGroup
	failures := 0

	sem := make(chan struct{}, s.Config.Network.ConcurrentRequests)

	for _, ticker := range tickers {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			// Small delay to avoid rate limiting
			time.Sleep(10 * time.Millisecond)

			table, err := s.fetchChart(sym)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.Logger.Info("Error fetching symbol %s: %v", sym, err)
				failures++
				return
			}
			results[sym] = table
		}(ticker)
	}

	wg.Wait()

	s.Logger.Info("Yahoo: category %s fetched %d/%d symbols", category, len(results), len(tickers))

	if len(results) == 0 && failures > 0 {
		return nil, fmt.Errorf("batch fetch for category %s produced no data", category)
	}

	return results, nil
}

// -----------------------------------------------------------------------------

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				Timezone  string `json:"timezone"`
				Gmtoffset int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *Source) fetchChart(symbol string) (models.MRawTable, error) {
	params := map[string]string{
		"interval":       chartInterval,
		"range":          chartRange,
		"includePrePost": "false",
	}

	body, err := s.Network.Get(fmt.Sprintf(chartURL, symbol), params)
	if err != nil {
		return models.MRawTable{}, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	return parseChart(symbol, body)
}

// -----------------------------------------------------------------------------

// parseChart converts one chart response into a raw table. Column names are
// the provider's; timestamps carry the exchange's timezone offset.
func parseChart(symbol string, body []byte) (models.MRawTable, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MRawTable{}, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		return models.MRawTable{}, fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return models.MRawTable{}, fmt.Errorf("no result in response for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return models.MRawTable{}, fmt.Errorf("no timestamps in response for %s", symbol)
	}
	if len(result.Indicators.Quote) == 0 {
		return models.MRawTable{}, fmt.Errorf("no quote data in response for %s", symbol)
	}

	quote := result.Indicators.Quote[0]
	loc := time.FixedZone(result.Meta.Timezone, result.Meta.Gmtoffset)

	columns := []string{"Datetime"}
	if len(quote.Open) > 0 {
		columns = append(columns, "Open")
	}
	if len(quote.High) > 0 {
		columns = append(columns, "High")
	}
	if len(quote.Low) > 0 {
		columns = append(columns, "Low")
	}
	if len(quote.Close) > 0 {
		columns = append(columns, "Close")
	}
	if len(quote.Volume) > 0 {
		columns = append(columns, "Volume")
	}

	table := models.MRawTable{Columns: columns}

	for i, ts := range result.Timestamp {
		row := models.MRawRow{
			"Datetime": time.Unix(ts, 0).In(loc),
		}

		// Arrays can be ragged; bounds-check each one instead of failing
		// the whole symbol on a misaligned response.
		if i < len(quote.Open) {
			row["Open"] = floatOrNil(quote.Open[i])
		}
		if i < len(quote.High) {
			row["High"] = floatOrNil(quote.High[i])
		}
		if i < len(quote.Low) {
			row["Low"] = floatOrNil(quote.Low[i])
		}
		if i < len(quote.Close) {
			row["Close"] = floatOrNil(quote.Close[i])
		}
		if i < len(quote.Volume) {
			row["Volume"] = intOrNil(quote.Volume[i])
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// -----------------------------------------------------------------------------

func floatOrNil(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// -----------------------------------------------------------------------------

func intOrNil(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
