package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"TradeSentinel/internal/broker"
	"TradeSentinel/internal/collector"
	"TradeSentinel/internal/model"
	"TradeSentinel/internal/strategy"
)

// fakeBroker is a scripted in-memory brokerage for engine tests.
type fakeBroker struct {
	mu sync.Mutex

	account         broker.Account
	accountFailures int // fail this many GetAccount calls, then succeed

	positions    []broker.Position
	positionsErr error

	orders      []broker.OrderRecord
	listErr     error
	listCalls   int
	onList      func(call int)
	trackOrders bool // submitted orders show up as open in ListOrders

	clocks []broker.Clock // consumed one per GetClock call; last one sticks

	submitFailures int
	submitted      []model.OrderIntent
}

func (f *fakeBroker) GetAccount() (*broker.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accountFailures > 0 {
		f.accountFailures--
		return nil, errors.New("brokerage unavailable")
	}
	acct := f.account
	return &acct, nil
}

func (f *fakeBroker) ListPositions() ([]broker.Position, error) {
	if f.positionsErr != nil {
		return nil, f.positionsErr
	}
	return f.positions, nil
}

func (f *fakeBroker) ListOrders() ([]broker.OrderRecord, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	hook := f.onList
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]broker.OrderRecord, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeBroker) GetClock() (*broker.Clock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.clocks) == 0 {
		now := time.Now().UTC()
		return &broker.Clock{Now: now, NextClose: now.Add(5 * time.Hour), IsOpen: true}, nil
	}
	c := f.clocks[0]
	if len(f.clocks) > 1 {
		f.clocks = f.clocks[1:]
	}
	return &c, nil
}

func (f *fakeBroker) SubmitOrder(intent model.OrderIntent) (*model.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitFailures > 0 {
		f.submitFailures--
		return nil, errors.New("order rejected")
	}
	f.submitted = append(f.submitted, intent)
	base := intent.Base()
	now := time.Now().UTC()
	if f.trackOrders {
		f.orders = append(f.orders, broker.OrderRecord{
			Symbol: base.Symbol, Side: base.Side, Status: "new", SubmittedAt: now,
		})
	}
	return &model.Receipt{
		ID:          fmt.Sprintf("ord-%d", len(f.submitted)),
		Symbol:      base.Symbol,
		Qty:         base.Qty,
		Side:        string(base.Side),
		Kind:        string(intent.Kind()),
		Status:      "new",
		SubmittedAt: now,
	}, nil
}

// memRecorder collects receipts in memory.
type memRecorder struct {
	mu       sync.Mutex
	receipts []model.Receipt
}

func (m *memRecorder) RecordReceipt(r *model.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, *r)
	return nil
}

func (m *memRecorder) Close() error { return nil }

// descendingBars yields a strict daily downtrend: RSI pins at 0, the
// latest close sits under the EMA, and every detected level is above the
// latest price.
func descendingBars(n int, start float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := 0; i < n; i++ {
		c := start - float64(i)
		bars[i] = model.OHLCV{
			Time:   time.Now().UTC().AddDate(0, 0, -(n - i)),
			Open:   c + 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 500000,
		}
	}
	return bars
}

func testCollector(bars map[string][]model.OHLCV) *collector.Collector {
	return collector.NewCollector(
		&collector.MockFetcher{Bars: bars},
		collector.Params{LookbackDays: 30, EMASpan: 10, RSIPeriod: 14, ATRPeriod: 14, SRWindow: 5},
	)
}

func testConfig(universe ...string) Config {
	return Config{
		Universe:          universe,
		CloseGuard:        10 * time.Minute,
		AccountMaxRetries: 3,
		AccountRetryDelay: time.Millisecond,
	}
}

func newEngine(b *fakeBroker, col *collector.Collector, rec *memRecorder, cfg Config) *Engine {
	return New(b, col, strategy.NewChain(0.10), rec, nil, cfg)
}

func TestRun_DayTradeGuardRefusesToTrade(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"nonzero count", 2},
		{"unreported count", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBroker{account: broker.Account{PortfolioValue: 10000, DaytradeCount: tt.count}}
			e := newEngine(fb, testCollector(nil), &memRecorder{}, testConfig("AAPL"))

			if err := e.Run(context.Background()); err == nil {
				t.Fatal("expected a fatal day-trade guard error")
			}
			if len(fb.submitted) != 0 {
				t.Errorf("guard must prevent all orders, got %d", len(fb.submitted))
			}
		})
	}
}

func TestRun_AccountRetryExhaustionIsFatal(t *testing.T) {
	fb := &fakeBroker{accountFailures: 100}
	e := newEngine(fb, testCollector(nil), &memRecorder{}, testConfig("AAPL"))

	if err := e.Run(context.Background()); err == nil {
		t.Fatal("expected a fatal error after retry exhaustion")
	}
}

func TestRun_AccountRecoversWithinRetryBudget(t *testing.T) {
	bars := map[string][]model.OHLCV{"AAPL": descendingBars(30, 200)}
	fb := &fakeBroker{
		account:         broker.Account{PortfolioValue: 10000, DaytradeCount: 0},
		accountFailures: 2,
	}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(bars), rec, testConfig("AAPL"))

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRun_OversoldEntrySubmitsMarketBuyAndDrains(t *testing.T) {
	// 30-bar downtrend ending at 171: RSI 0, price under EMA, no support
	// below price. The chain falls through to the market entry, sized at
	// floor(10000 * 0.10 / 171) = 5 shares.
	bars := map[string][]model.OHLCV{"AAPL": descendingBars(30, 200)}
	fb := &fakeBroker{account: broker.Account{PortfolioValue: 10000, DaytradeCount: 0}}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(bars), rec, testConfig("AAPL"))

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(fb.submitted) != 1 {
		t.Fatalf("expected 1 order, got %d", len(fb.submitted))
	}
	intent := fb.submitted[0]
	if intent.Kind() != model.KindMarket {
		t.Errorf("kind = %s, want market", intent.Kind())
	}
	base := intent.Base()
	if base.Side != model.SideBuy || base.Qty != 5 || base.Symbol != "AAPL" {
		t.Errorf("unexpected order: %+v", base)
	}
	if len(rec.receipts) != 1 || rec.receipts[0].Symbol != "AAPL" {
		t.Errorf("receipt not recorded: %+v", rec.receipts)
	}
	if got := e.Receipts(); len(got) != 1 {
		t.Errorf("engine run log has %d receipts, want 1", len(got))
	}
}

func TestRun_HeldPositionForcedExitAtTakeProfit(t *testing.T) {
	// The position is +15%, past the +10% bound. Limit declines (RSI 0),
	// stop finds no support below price, trailing defers to the forced
	// exit, market sells the full position.
	bars := map[string][]model.OHLCV{"NVDA": descendingBars(30, 200)}
	fb := &fakeBroker{
		account: broker.Account{PortfolioValue: 50000, DaytradeCount: 0},
		positions: []broker.Position{
			{Symbol: "NVDA", Qty: 8, UnrealizedPL: 0.15, PLKnown: true},
		},
		trackOrders: true,
	}
	ctx, cancel := context.WithCancel(context.Background())
	// The sell keeps the symbol on the watchlist and the working order
	// makes later passes skip it, so end the session from the order query.
	fb.onList = func(call int) {
		if call >= 2 {
			cancel()
		}
	}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(bars), rec, testConfig())

	err := e.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if len(fb.submitted) != 1 {
		t.Fatalf("expected exactly 1 order, got %d", len(fb.submitted))
	}
	intent := fb.submitted[0]
	base := intent.Base()
	if intent.Kind() != model.KindMarket || base.Side != model.SideSell || base.Qty != 8 {
		t.Errorf("expected a full market exit, got %s %+v", intent.Kind(), base)
	}
}

func TestRun_CloseGuardDropsFlatSymbols(t *testing.T) {
	now := time.Now().UTC()
	fb := &fakeBroker{
		account: broker.Account{PortfolioValue: 10000, DaytradeCount: 0},
		clocks: []broker.Clock{
			{Now: now, NextClose: now.Add(4 * time.Minute), IsOpen: true},
		},
	}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(map[string][]model.OHLCV{
		"AAPL": descendingBars(30, 200),
		"MSFT": descendingBars(30, 200),
	}), rec, testConfig("AAPL", "MSFT"))

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(fb.submitted) != 0 {
		t.Errorf("flat symbols near the close must not trade, got %d orders", len(fb.submitted))
	}
}

func TestRun_BoughtTodayIsDropped(t *testing.T) {
	fb := &fakeBroker{
		account: broker.Account{PortfolioValue: 10000, DaytradeCount: 0},
		orders: []broker.OrderRecord{
			{Symbol: "AAPL", Side: model.SideBuy, Status: "filled", SubmittedAt: time.Now().UTC()},
		},
	}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(map[string][]model.OHLCV{
		"AAPL": descendingBars(30, 200),
	}), rec, testConfig("AAPL"))

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(fb.submitted) != 0 {
		t.Errorf("a symbol bought today must not trade again, got %d orders", len(fb.submitted))
	}
}

func TestRun_YesterdaysBuyDoesNotBlock(t *testing.T) {
	fb := &fakeBroker{
		account: broker.Account{PortfolioValue: 10000, DaytradeCount: 0},
		orders: []broker.OrderRecord{
			{Symbol: "AAPL", Side: model.SideBuy, Status: "filled",
				SubmittedAt: time.Now().UTC().AddDate(0, 0, -1)},
		},
	}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(map[string][]model.OHLCV{
		"AAPL": descendingBars(30, 200),
	}), rec, testConfig("AAPL"))

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(fb.submitted) != 1 {
		t.Errorf("expected yesterday's buy to be ignored, got %d orders", len(fb.submitted))
	}
}

func TestRun_InsufficientHistoryIsSkippedNotFatal(t *testing.T) {
	now := time.Now().UTC()
	fb := &fakeBroker{
		account: broker.Account{PortfolioValue: 10000, DaytradeCount: 0},
		// First pass evaluates normally, second pass hits the close guard
		// so the signal-less symbol drains.
		clocks: []broker.Clock{
			{Now: now, NextClose: now.Add(3 * time.Hour), IsOpen: true},
			{Now: now, NextClose: now.Add(5 * time.Minute), IsOpen: true},
		},
	}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(map[string][]model.OHLCV{
		"AAPL": descendingBars(6, 120),
	}), rec, testConfig("AAPL"))

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("insufficient history must not be fatal: %v", err)
	}
	if len(fb.submitted) != 0 {
		t.Errorf("expected no orders, got %d", len(fb.submitted))
	}
}

func TestRun_SubmissionRejectionIsRetriedNextPass(t *testing.T) {
	bars := map[string][]model.OHLCV{"AAPL": descendingBars(30, 200)}
	fb := &fakeBroker{
		account:        broker.Account{PortfolioValue: 10000, DaytradeCount: 0},
		submitFailures: 1,
	}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(bars), rec, testConfig("AAPL"))

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(fb.submitted) != 1 {
		t.Fatalf("expected the order to land on the second pass, got %d", len(fb.submitted))
	}
}

func TestRun_PositionListingFailureDegradesToFlat(t *testing.T) {
	bars := map[string][]model.OHLCV{"AAPL": descendingBars(30, 200)}
	fb := &fakeBroker{
		account:      broker.Account{PortfolioValue: 10000, DaytradeCount: 0},
		positionsErr: errors.New("positions endpoint down"),
	}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(bars), rec, testConfig("AAPL"))

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("position listing failure must not be fatal: %v", err)
	}
	// Treated as flat, so the oversold entry fires as a buy.
	if len(fb.submitted) != 1 || fb.submitted[0].Base().Side != model.SideBuy {
		t.Errorf("expected a single buy, got %+v", fb.submitted)
	}
}

func TestRun_HeldSymbolOutsideUniverseIsManaged(t *testing.T) {
	bars := map[string][]model.OHLCV{"XOM": descendingBars(30, 200)}
	fb := &fakeBroker{
		account: broker.Account{PortfolioValue: 50000, DaytradeCount: 0},
		positions: []broker.Position{
			{Symbol: "XOM", Qty: 3, UnrealizedPL: -0.08, PLKnown: true},
		},
		trackOrders: true,
	}
	ctx, cancel := context.WithCancel(context.Background())
	fb.onList = func(call int) {
		if call >= 2 {
			cancel()
		}
	}
	rec := &memRecorder{}
	e := newEngine(fb, testCollector(bars), rec, testConfig()) // empty universe

	e.Run(ctx)
	if len(fb.submitted) != 1 {
		t.Fatalf("expected the held symbol to be managed, got %d orders", len(fb.submitted))
	}
	base := fb.submitted[0].Base()
	if base.Symbol != "XOM" || base.Side != model.SideSell || base.Qty != 3 {
		t.Errorf("expected a 3-share XOM stop-loss exit, got %+v", base)
	}
}
