package calculator

import (
	"math"

	"TradeSentinel/internal/model"
)

// CalculateATR computes the average true range: the simple rolling mean of
// the true range over the last `period` bars. Returns false until at least
// `period` bars are available.
func CalculateATR(bars []model.OHLCV, period int) (float64, bool) {
	if period <= 0 || len(bars) < period {
		return 0, false
	}

	var sum float64
	for i := len(bars) - period; i < len(bars); i++ {
		sum += trueRange(bars, i)
	}
	return sum / float64(period), true
}

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|). The first
// bar has no previous close, so its range is just high-low.
func trueRange(bars []model.OHLCV, i int) float64 {
	b := bars[i]
	tr := b.High - b.Low
	if i == 0 {
		return tr
	}
	prev := bars[i-1].Close
	if hc := math.Abs(b.High - prev); hc > tr {
		tr = hc
	}
	if lc := math.Abs(b.Low - prev); lc > tr {
		tr = lc
	}
	return tr
}
