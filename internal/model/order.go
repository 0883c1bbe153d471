package model

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TimeInForce controls how long an order stays working.
type TimeInForce string

const (
	TIFDay TimeInForce = "day"
	TIFGTC TimeInForce = "gtc"
)

// OrderKind identifies the order variant.
type OrderKind string

const (
	KindLimit        OrderKind = "limit"
	KindStop         OrderKind = "stop"
	KindTrailingStop OrderKind = "trailing_stop"
	KindMarket       OrderKind = "market"
)

// OrderIntent is the strategy chain's output. Exactly one struct implements
// it per order kind, each carrying only the price field that kind needs, so
// an intent can never reach submission with a missing or extraneous field.
type OrderIntent interface {
	Base() Order
	Kind() OrderKind
}

// Order holds the fields common to every order variant.
type Order struct {
	Symbol      string
	Qty         int
	Side        Side
	TimeInForce TimeInForce
}

// Base returns the common order fields. Variants inherit it by embedding.
func (o Order) Base() Order { return o }

// LimitOrder executes at LimitPrice or better.
type LimitOrder struct {
	Order
	LimitPrice float64
}

func (LimitOrder) Kind() OrderKind { return KindLimit }

// StopOrder becomes a market order once the price touches StopPrice.
type StopOrder struct {
	Order
	StopPrice float64
}

func (StopOrder) Kind() OrderKind { return KindStop }

// TrailingStopOrder trails the high-water mark by TrailPercent.
type TrailingStopOrder struct {
	Order
	TrailPercent float64
}

func (TrailingStopOrder) Kind() OrderKind { return KindTrailingStop }

// MarketOrder executes immediately at the prevailing price.
type MarketOrder struct {
	Order
}

func (MarketOrder) Kind() OrderKind { return KindMarket }
