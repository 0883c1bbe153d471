package strategy

import "TradeSentinel/internal/model"

const (
	takeProfitPL = 0.10  // lock in gains at +10%
	stopLossPL   = -0.05 // cap losses at -5%
)

// MarketStrategy is the last-resort safety net. Holding: force a full exit
// at market once unrealized P/L crosses the take-profit or stop-loss
// bound, regardless of indicators. Flat: an oversold-momentum override
// (RSI < 30 and price under EMA) enters at market without the limit
// strategy's support-level requirement, sized by the allocation cap.
type MarketStrategy struct {
	Sizer Sizer
}

func (MarketStrategy) Name() string { return "market" }

func (s MarketStrategy) Evaluate(in Input) model.OrderIntent {
	snap := in.Snapshot

	if in.QtyHeld > 0 {
		if !in.PLKnown {
			return nil
		}
		if in.UnrealizedPL >= takeProfitPL || in.UnrealizedPL <= stopLossPL {
			return model.MarketOrder{
				Order: model.Order{
					Symbol:      in.Symbol,
					Qty:         in.QtyHeld,
					Side:        model.SideSell,
					TimeInForce: model.TIFDay,
				},
			}
		}
		return nil
	}

	if snap.RSI < 30 && snap.LatestClose < snap.EMA {
		if qty, ok := s.Sizer.BuyQty(in.PortfolioValue, snap.LatestClose, in.QtyHeld); ok {
			return model.MarketOrder{
				Order: model.Order{
					Symbol:      in.Symbol,
					Qty:         qty,
					Side:        model.SideBuy,
					TimeInForce: model.TIFDay,
				},
			}
		}
	}
	return nil
}
