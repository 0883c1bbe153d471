package strategy

import (
	"math"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

const (
	atrMultiplier   = 1.5
	minStopDistance = 0.02 // reject stops tighter than 2% of price
)

// StopStrategy protects a held position with a stop-loss below the nearest
// support, buffered by volatility. The stop sits at the lower of
// price - 1.5*ATR and 0.99*support; stops within 2% of the price are too
// tight to be meaningful and are rejected.
type StopStrategy struct{}

func (StopStrategy) Name() string { return "stop" }

func (StopStrategy) Evaluate(in Input) model.OrderIntent {
	if in.QtyHeld <= 0 {
		return nil
	}
	snap := in.Snapshot
	price := snap.LatestClose

	support, ok := snap.NearestSupportBelow(price)
	if !ok {
		return nil
	}

	buffer := atrMultiplier * snap.ATR
	stopPrice := calculator.Round2(math.Min(price-buffer, support*levelDiscount))
	if (price-stopPrice)/price < minStopDistance {
		return nil
	}

	return model.StopOrder{
		Order: model.Order{
			Symbol:      in.Symbol,
			Qty:         in.QtyHeld,
			Side:        model.SideSell,
			TimeInForce: model.TIFGTC,
		},
		StopPrice: stopPrice,
	}
}
