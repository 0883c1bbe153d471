package broker

import (
	"fmt"
	"time"

	"TradeSentinel/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
)

const listOrdersLimit = 100

// AlpacaBroker adapts the Alpaca trading API to the Broker interface. A
// fixed delay is enforced after every call to respect upstream rate
// limits; decimal/float conversion happens only at this boundary.
type AlpacaBroker struct {
	client *alpaca.Client
	delay  time.Duration
}

// NewAlpacaBroker creates a broker against the given trading API base URL
// (paper or live).
func NewAlpacaBroker(apiKey, apiSecret, baseURL string, delay time.Duration) *AlpacaBroker {
	return &AlpacaBroker{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		delay: delay,
	}
}

func (b *AlpacaBroker) throttle() {
	time.Sleep(b.delay)
}

func (b *AlpacaBroker) GetAccount() (*Account, error) {
	acct, err := b.client.GetAccount()
	b.throttle()
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	pv, _ := acct.PortfolioValue.Float64()
	return &Account{
		PortfolioValue: pv,
		DaytradeCount:  int(acct.DaytradeCount),
	}, nil
}

func (b *AlpacaBroker) ListPositions() ([]Position, error) {
	positions, err := b.client.GetPositions()
	b.throttle()
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	out := make([]Position, 0, len(positions))
	for _, p := range positions {
		pos := Position{Symbol: p.Symbol, Qty: int(p.Qty.IntPart())}
		if p.UnrealizedPLPC != nil {
			pos.UnrealizedPL, _ = p.UnrealizedPLPC.Float64()
			pos.PLKnown = true
		}
		out = append(out, pos)
	}
	return out, nil
}

func (b *AlpacaBroker) ListOrders() ([]OrderRecord, error) {
	orders, err := b.client.GetOrders(alpaca.GetOrdersRequest{
		Status: "all",
		Limit:  listOrdersLimit,
	})
	b.throttle()
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]OrderRecord, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderRecord{
			Symbol:      o.Symbol,
			Side:        model.Side(o.Side),
			Status:      string(o.Status),
			SubmittedAt: o.SubmittedAt,
		})
	}
	return out, nil
}

func (b *AlpacaBroker) GetClock() (*Clock, error) {
	clock, err := b.client.GetClock()
	b.throttle()
	if err != nil {
		return nil, fmt.Errorf("get clock: %w", err)
	}
	return &Clock{
		Now:       clock.Timestamp,
		NextClose: clock.NextClose,
		IsOpen:    clock.IsOpen,
	}, nil
}

// SubmitOrder maps an order intent onto the wire request for its kind and
// places it. A brokerage rejection comes back as an error; the caller
// treats it as a no-op for that symbol this pass.
func (b *AlpacaBroker) SubmitOrder(intent model.OrderIntent) (*model.Receipt, error) {
	base := intent.Base()
	qty := decimal.NewFromInt(int64(base.Qty))
	req := alpaca.PlaceOrderRequest{
		Symbol:      base.Symbol,
		Qty:         &qty,
		Side:        alpaca.Side(base.Side),
		TimeInForce: alpaca.TimeInForce(base.TimeInForce),
	}

	switch o := intent.(type) {
	case model.LimitOrder:
		req.Type = alpaca.Limit
		price := decimal.NewFromFloat(o.LimitPrice).Round(2)
		req.LimitPrice = &price
	case model.StopOrder:
		req.Type = alpaca.Stop
		price := decimal.NewFromFloat(o.StopPrice).Round(2)
		req.StopPrice = &price
	case model.TrailingStopOrder:
		req.Type = alpaca.TrailingStop
		trail := decimal.NewFromFloat(o.TrailPercent).Round(2)
		req.TrailPercent = &trail
	case model.MarketOrder:
		req.Type = alpaca.Market
	default:
		return nil, fmt.Errorf("unsupported order kind: %s", intent.Kind())
	}

	order, err := b.client.PlaceOrder(req)
	b.throttle()
	if err != nil {
		return nil, fmt.Errorf("place %s order for %s: %w", intent.Kind(), base.Symbol, err)
	}

	return &model.Receipt{
		ID:          order.ID,
		Symbol:      order.Symbol,
		Qty:         base.Qty,
		Side:        string(base.Side),
		Kind:        string(intent.Kind()),
		Status:      string(order.Status),
		SubmittedAt: order.SubmittedAt,
	}, nil
}
