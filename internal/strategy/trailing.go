package strategy

import (
	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

const minTrailPercent = 2.0

// TrailingStopStrategy trails a winner instead of exiting outright: the
// position has not yet reached the 10% take-profit zone and momentum is
// still up (RSI >= 60), so let it run with a volatility-sized trail. Trails
// under 2% would trigger on ordinary noise and are rejected.
type TrailingStopStrategy struct{}

func (TrailingStopStrategy) Name() string { return "trailing_stop" }

func (TrailingStopStrategy) Evaluate(in Input) model.OrderIntent {
	if in.QtyHeld <= 0 {
		return nil
	}
	if in.PLKnown && in.UnrealizedPL >= takeProfitPL {
		return nil // leave the exit to the market strategy
	}
	snap := in.Snapshot
	if snap.RSI < 60 {
		return nil
	}

	price := snap.LatestClose
	trailPercent := calculator.Round2(atrMultiplier * snap.ATR / price * 100)
	if trailPercent < minTrailPercent {
		return nil
	}

	return model.TrailingStopOrder{
		Order: model.Order{
			Symbol:      in.Symbol,
			Qty:         in.QtyHeld,
			Side:        model.SideSell,
			TimeInForce: model.TIFGTC,
		},
		TrailPercent: trailPercent,
	}
}
