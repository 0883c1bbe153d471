package collector

import (
	"fmt"
	"time"

	"TradeSentinel/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// AlpacaFetcher retrieves daily bars from the Alpaca market data API. A
// fixed delay follows every request to respect upstream rate limits.
type AlpacaFetcher struct {
	client *marketdata.Client
	delay  time.Duration
}

func NewAlpacaFetcher(apiKey, apiSecret string, delay time.Duration) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		delay: delay,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchDailyBars(symbol string, lookbackDays int) ([]model.OHLCV, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	bars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	time.Sleep(f.delay)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}

	out := make([]model.OHLCV, len(bars))
	for i, b := range bars {
		out[i] = model.OHLCV{
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	return out, nil
}
