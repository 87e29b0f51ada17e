package utils

import (
	"sync"
	"time"

	"market-terminal/src/logger"
)

// MarketHours answers "is any of these instruments' home exchange open right
// now". Calendars are resolved once per ticker and cached; crypto and other
// always-on categories never consult this at all.
type MarketHours struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger

	// Now is the clock used for session checks; injectable for tests.
	Now func() time.Time

	mu sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketHours(tickers []string, l *logger.Logger) *MarketHours {
	mh := &MarketHours{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		Now:       time.Now,
	}
	mh.mapTickers(tickers)
	return mh
}

// -----------------------------------------------------------------------------

func (mh *MarketHours) mapTickers(tickers []string) {
	mh.mu.Lock()
	defer mh.mu.Unlock()

	for _, ticker := range tickers {
		if _, ok := mh.Calendars[ticker]; ok {
			continue
		}
		if cal := GetCalendar(ticker); cal != nil {
			mh.Calendars[ticker] = cal
		}
	}

	uniqueCals := make(map[*TradingCalendar]bool)
	for _, cal := range mh.Calendars {
		uniqueCals[cal] = true
	}
	mh.Logger.Info("MarketHours: Mapped %d tickers to %d unique calendars.", len(tickers), len(uniqueCals))
}

// -----------------------------------------------------------------------------

// AnyOpen reports whether at least one of the given tickers trades on an
// exchange that is open at this minute. Tickers without a mapped calendar
// fall back to NYSE hours via GetCalendar's default.
func (mh *MarketHours) AnyOpen(tickers []string) bool {
	now := mh.Now().UTC()

	mh.mu.RLock()
	defer mh.mu.RUnlock()

	checked := make(map[*TradingCalendar]bool)
	for _, ticker := range tickers {
		cal, ok := mh.Calendars[ticker]
		if !ok {
			continue
		}
		if checked[cal] {
			continue
		}
		checked[cal] = true

		if cal.IsOpenOnMinute(now) {
			return true
		}
	}

	return false
}
