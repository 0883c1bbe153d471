package calculator

import (
	"math"
	"sort"
)

// FindLevels scans a close-price series for local extrema and returns the
// detected support and resistance levels, each rounded to 2 decimals,
// deduplicated, and sorted ascending.
//
// An interior index i is a support candidate when closes[i] is the minimum
// of the window closes[i-w..i], and a resistance candidate when it is the
// maximum of closes[i..i+w]. Series shorter than 2w+1 are undetermined:
// FindLevels returns false, which is a valid "no signal" outcome rather
// than an error.
func FindLevels(closes []float64, window int) (support, resistance []float64, ok bool) {
	if window <= 0 || len(closes) < 2*window+1 {
		return nil, nil, false
	}

	seenSup := make(map[float64]bool)
	seenRes := make(map[float64]bool)

	for i := window; i < len(closes)-window; i++ {
		price := closes[i]

		if price == minOf(closes[i-window:i+1]) {
			if v := Round2(price); !seenSup[v] {
				seenSup[v] = true
				support = append(support, v)
			}
		}
		if price == maxOf(closes[i:i+window+1]) {
			if v := Round2(price); !seenRes[v] {
				seenRes[v] = true
				resistance = append(resistance, v)
			}
		}
	}

	sort.Float64s(support)
	sort.Float64s(resistance)
	return support, resistance, true
}

// Round2 rounds to 2 decimal places, matching brokerage price precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
