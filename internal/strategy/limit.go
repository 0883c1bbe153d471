package strategy

import (
	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

const (
	levelDiscount     = 0.99 // place exits just under a level
	buySupportPremium = 1.01 // buy just over the support
)

// LimitStrategy places patient orders at levels derived from support and
// resistance. Holding: sell the full position just under the nearest
// resistance when momentum supports it (RSI >= 30, price at or above EMA).
// Flat: buy just above the nearest support when there is sizing capacity
// and the symbol is not overbought (RSI <= 60, price at or below EMA).
type LimitStrategy struct {
	Sizer Sizer
}

func (LimitStrategy) Name() string { return "limit" }

func (s LimitStrategy) Evaluate(in Input) model.OrderIntent {
	snap := in.Snapshot
	price := snap.LatestClose

	if in.QtyHeld > 0 {
		if snap.RSI < 30 {
			return nil
		}
		resistance, ok := snap.NearestResistanceAbove(price)
		if !ok || price < snap.EMA {
			return nil
		}
		return model.LimitOrder{
			Order: model.Order{
				Symbol:      in.Symbol,
				Qty:         in.QtyHeld,
				Side:        model.SideSell,
				TimeInForce: model.TIFDay,
			},
			LimitPrice: calculator.Round2(resistance * levelDiscount),
		}
	}

	qty, ok := s.Sizer.BuyQty(in.PortfolioValue, price, in.QtyHeld)
	if !ok {
		return nil
	}
	if snap.RSI > 60 {
		return nil
	}
	support, ok := snap.NearestSupportBelow(price)
	if !ok || price > snap.EMA {
		return nil
	}
	return model.LimitOrder{
		Order: model.Order{
			Symbol:      in.Symbol,
			Qty:         qty,
			Side:        model.SideBuy,
			TimeInForce: model.TIFDay,
		},
		LimitPrice: calculator.Round2(support * buySupportPremium),
	}
}
