package calculator

import "TradeSentinel/internal/model"

// CalculateEMA computes the exponentially weighted moving average of the
// closes with the given span (alpha = 2/(span+1)) and returns its latest
// value. Weights accumulate from the start of the series, so early values
// track the cumulative mean until enough history builds up. Returns false
// when the series is empty or the span is not positive.
func CalculateEMA(closes []float64, span int) (float64, bool) {
	if span <= 0 || len(closes) == 0 {
		return 0, false
	}
	alpha := 2.0 / (float64(span) + 1.0)
	decay := 1.0 - alpha

	var num, den float64
	for _, c := range closes {
		num = num*decay + c
		den = den*decay + 1
	}
	return num / den, true
}

// Closes extracts the closing prices from a bar sequence.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
