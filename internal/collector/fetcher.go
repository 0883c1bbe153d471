package collector

import "TradeSentinel/internal/model"

// Fetcher defines the interface for fetching historical price data.
// Returning no bars is a valid "no signal" outcome, not an error.
type Fetcher interface {
	FetchDailyBars(symbol string, lookbackDays int) ([]model.OHLCV, error)
	Name() string
}
