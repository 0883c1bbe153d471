package collector

import (
	"errors"
	"fmt"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// ErrInsufficientHistory reports that a symbol does not yet have enough
// bars for a valid indicator snapshot. It is an expected no-signal
// outcome: callers skip the symbol for the pass and move on.
var ErrInsufficientHistory = errors.New("insufficient history for snapshot")

// Params are the indicator settings a Collector computes with.
type Params struct {
	LookbackDays int
	EMASpan      int
	RSIPeriod    int
	ATRPeriod    int
	SRWindow     int
}

// Collector fetches history for one symbol at a time and derives the
// indicator snapshot the strategy chain consumes.
type Collector struct {
	Fetcher Fetcher
	Params  Params
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, params Params) *Collector {
	return &Collector{Fetcher: fetcher, Params: params}
}

// Collect fetches the trailing lookback window of daily bars and computes
// the full snapshot. Returns ErrInsufficientHistory (wrapped) when any
// indicator has not warmed up or the level scan is undetermined; such a
// snapshot must not drive any strategy decision.
func (c *Collector) Collect(symbol string) (*model.Snapshot, error) {
	bars, err := c.Fetcher.FetchDailyBars(symbol, c.Params.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("collect %s: no bars returned: %w", symbol, ErrInsufficientHistory)
	}

	closes := calculator.Closes(bars)

	ema, emaOK := calculator.CalculateEMA(closes, c.Params.EMASpan)
	rsi, rsiOK := calculator.CalculateRSI(closes, c.Params.RSIPeriod)
	atr, atrOK := calculator.CalculateATR(bars, c.Params.ATRPeriod)
	if !emaOK || !rsiOK || !atrOK {
		return nil, fmt.Errorf("collect %s: indicators not warmed up (%d bars): %w",
			symbol, len(bars), ErrInsufficientHistory)
	}

	support, resistance, ok := calculator.FindLevels(closes, c.Params.SRWindow)
	if !ok {
		return nil, fmt.Errorf("collect %s: support/resistance undetermined (%d closes): %w",
			symbol, len(closes), ErrInsufficientHistory)
	}

	return &model.Snapshot{
		LatestClose: closes[len(closes)-1],
		EMA:         ema,
		RSI:         rsi,
		ATR:         atr,
		Support:     support,
		Resistance:  resistance,
	}, nil
}
