package strategy

import "math"

// Sizer bounds buy quantities so a single symbol's notional exposure never
// exceeds a fixed fraction of portfolio value at the decision price.
type Sizer struct {
	Cap float64 // allocation cap fraction, e.g. 0.10
}

// BuyQty returns the number of whole shares that can be bought without
// pushing the position above the cap. Returns false when there is no
// capacity: the cap is already consumed or less than one share fits.
func (s Sizer) BuyQty(portfolioValue, price float64, qtyHeld int) (int, bool) {
	if price <= 0 {
		return 0, false
	}
	available := portfolioValue*s.Cap - price*float64(qtyHeld)
	if available <= 0 {
		return 0, false
	}
	qty := int(math.Floor(available / price))
	if qty < 1 {
		return 0, false
	}
	return qty, true
}
