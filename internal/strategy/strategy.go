package strategy

import "TradeSentinel/internal/model"

// Input carries everything a strategy may consult when deciding on one
// symbol: the indicator snapshot plus the caller's position and account
// state. The snapshot is always valid (warm-up already checked upstream).
type Input struct {
	Symbol         string
	Snapshot       *model.Snapshot
	QtyHeld        int
	UnrealizedPL   float64 // fractional, only meaningful when PLKnown
	PLKnown        bool
	PortfolioValue float64
}

// Strategy evaluates one symbol and either proposes an order or declines
// with nil. Declining is the expected outcome, not an error.
type Strategy interface {
	Name() string
	Evaluate(in Input) model.OrderIntent
}

// Chain evaluates strategies in a fixed priority order: limit first (best
// price, no urgency), then stop and trailing-stop to protect open risk,
// and market last as the unconditional profit-lock / loss-cap net. The
// first strategy to return an intent wins; later ones are not consulted.
type Chain struct {
	strategies []Strategy
}

// NewChain builds the default four-strategy chain with the given
// allocation cap fraction for buy sizing.
func NewChain(allocationCap float64) *Chain {
	sizer := Sizer{Cap: allocationCap}
	return &Chain{
		strategies: []Strategy{
			LimitStrategy{Sizer: sizer},
			StopStrategy{},
			TrailingStopStrategy{},
			MarketStrategy{Sizer: sizer},
		},
	}
}

// Evaluate walks the chain and returns the first proposed intent, or nil
// when every strategy declines.
func (c *Chain) Evaluate(in Input) model.OrderIntent {
	for _, s := range c.strategies {
		if intent := s.Evaluate(in); intent != nil {
			return intent
		}
	}
	return nil
}
