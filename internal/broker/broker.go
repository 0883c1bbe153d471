package broker

import (
	"time"

	"TradeSentinel/internal/model"
)

// Account is the brokerage account snapshot the engine sizes against.
type Account struct {
	PortfolioValue float64
	DaytradeCount  int // -1 when the brokerage did not report it
}

// Position is an open holding reported by the brokerage.
type Position struct {
	Symbol       string
	Qty          int
	UnrealizedPL float64 // fractional
	PLKnown      bool
}

// OrderRecord is a past or working order, used to classify a symbol's
// trade status for the current session.
type OrderRecord struct {
	Symbol      string
	Side        model.Side
	Status      string
	SubmittedAt time.Time
}

// Clock is the exchange clock: the brokerage's notion of now and the next
// market close, used by the close-proximity guard.
type Clock struct {
	Now       time.Time
	NextClose time.Time
	IsOpen    bool
}

// AccountProvider retrieves the account snapshot.
type AccountProvider interface {
	GetAccount() (*Account, error)
}

// PositionProvider lists current holdings. Failures degrade to zero
// holdings upstream; they are not fatal.
type PositionProvider interface {
	ListPositions() ([]Position, error)
}

// OrderStatusProvider lists recent orders across all statuses.
type OrderStatusProvider interface {
	ListOrders() ([]OrderRecord, error)
}

// MarketClock reports the exchange clock.
type MarketClock interface {
	GetClock() (*Clock, error)
}

// OrderSubmitter submits an order intent and returns its receipt.
type OrderSubmitter interface {
	SubmitOrder(intent model.OrderIntent) (*model.Receipt, error)
}

// Broker is the full brokerage gateway the engine drives.
type Broker interface {
	AccountProvider
	PositionProvider
	OrderStatusProvider
	MarketClock
	OrderSubmitter
}
