package calculator

// CalculateRSI computes the RSI over a trailing simple rolling window:
// close-to-close gains and losses are each averaged over the last `period`
// bars, then RSI = 100 - 100/(1+avgGain/avgLoss). The first bar has no
// prior close and contributes a zero delta.
//
// Returns false until the rolling window has filled (fewer than `period`
// closes), and for a flat window where both averages are zero. An
// undefined RSI is a no-signal outcome, not an error.
func CalculateRSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}

	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		if i == 0 {
			continue
		}
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta // make positive
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 0, false
		}
		return 100.0, true // saturates when there are no losses in the window
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), true
}
