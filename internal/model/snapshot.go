package model

// Snapshot holds the derived indicator state for one symbol at one
// evaluation. A Snapshot is only constructed when every indicator has
// enough history behind it; strategies may rely on all fields being set.
type Snapshot struct {
	LatestClose float64
	EMA         float64
	RSI         float64
	ATR         float64
	Support     []float64 // ascending, deduplicated
	Resistance  []float64 // ascending, deduplicated
}

// NearestSupportBelow returns the greatest support level strictly below
// the given price.
func (s *Snapshot) NearestSupportBelow(price float64) (float64, bool) {
	for i := len(s.Support) - 1; i >= 0; i-- {
		if s.Support[i] < price {
			return s.Support[i], true
		}
	}
	return 0, false
}

// NearestResistanceAbove returns the least resistance level strictly above
// the given price.
func (s *Snapshot) NearestResistanceAbove(price float64) (float64, bool) {
	for _, level := range s.Resistance {
		if level > price {
			return level, true
		}
	}
	return 0, false
}
