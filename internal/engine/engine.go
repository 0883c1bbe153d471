package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"TradeSentinel/internal/broker"
	"TradeSentinel/internal/collector"
	"TradeSentinel/internal/model"
	"TradeSentinel/internal/recorder"
	"TradeSentinel/internal/strategy"
)

// Notifier receives human-readable trade confirmations. Implementations
// must not block the trading loop on delivery.
type Notifier interface {
	Send(text string) error
}

// Config holds the per-session tunables of the trading loop.
type Config struct {
	Universe          []string
	CloseGuard        time.Duration
	AccountMaxRetries int
	AccountRetryDelay time.Duration
}

// tradeStatus classifies a symbol's standing against today's orders.
type tradeStatus int

const (
	statusClear tradeStatus = iota
	statusOpenOrder
	statusBoughtToday
	statusUnknown
)

// Engine runs one trading session: it owns the session watchlist and
// repeatedly evaluates every remaining symbol until the list drains.
type Engine struct {
	broker    broker.Broker
	collector *collector.Collector
	chain     *strategy.Chain
	recorder  recorder.Recorder
	notifier  Notifier
	cfg       Config

	mu        sync.Mutex
	account   *broker.Account
	watchlist map[string]*model.Entry
	receipts  []model.Receipt
}

// New creates an engine for a single session. The notifier may be nil.
func New(b broker.Broker, c *collector.Collector, chain *strategy.Chain,
	rec recorder.Recorder, n Notifier, cfg Config) *Engine {
	return &Engine{
		broker:    b,
		collector: c,
		chain:     chain,
		recorder:  rec,
		notifier:  n,
		cfg:       cfg,
	}
}

// Run executes the session until the watchlist empties or the context is
// cancelled. The returned error is fatal for the session: the account was
// unobtainable or the day-trade guard tripped. Recoverable per-symbol
// failures are logged and never surface here.
func (e *Engine) Run(ctx context.Context) error {
	log.Println("[INFO] session starting")

	account, err := broker.GetAccountWithRetry(e.broker, e.cfg.AccountMaxRetries, e.cfg.AccountRetryDelay)
	if err != nil {
		return fmt.Errorf("account unavailable: %w", err)
	}
	e.account = account

	if err := e.checkDayTrades(); err != nil {
		return err
	}

	e.watchlist = e.buildWatchlist()
	log.Printf("[INFO] session watchlist: %d symbols, portfolio value %.2f",
		len(e.watchlist), e.account.PortfolioValue)

	for len(e.watchlist) > 0 {
		select {
		case <-ctx.Done():
			log.Println("[WARN] session cancelled")
			return ctx.Err()
		default:
		}
		if err := e.pass(ctx); err != nil {
			return err
		}
	}

	log.Printf("[INFO] no more trades for today, session ending with %d receipts", len(e.receipts))
	e.notify(fmt.Sprintf("Session complete: %d orders submitted.", len(e.receipts)))
	return nil
}

// Receipts returns a copy of the receipts recorded so far this session.
func (e *Engine) Receipts() []model.Receipt {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Receipt, len(e.receipts))
	copy(out, e.receipts)
	return out
}

// checkDayTrades refuses to trade when the brokerage reports any recent
// day trades, or does not report the count at all. Pattern-day-trader
// flags are not worth a single session.
func (e *Engine) checkDayTrades() error {
	switch {
	case e.account.DaytradeCount < 0:
		return errors.New("day trade count unreported, refusing to trade")
	case e.account.DaytradeCount != 0:
		return fmt.Errorf("day trade count is %d, refusing to trade", e.account.DaytradeCount)
	}
	return nil
}

// buildWatchlist merges the configured universe with current holdings so
// open positions are always managed even if dropped from the config.
func (e *Engine) buildWatchlist() map[string]*model.Entry {
	wl := make(map[string]*model.Entry, len(e.cfg.Universe))
	for _, sym := range e.cfg.Universe {
		wl[sym] = &model.Entry{Symbol: sym}
	}

	positions, err := e.broker.ListPositions()
	if err != nil {
		log.Printf("[WARN] listing positions failed, assuming no holdings: %v", err)
		return wl
	}
	for _, p := range positions {
		wl[p.Symbol] = &model.Entry{
			Symbol:       p.Symbol,
			QtyHeld:      p.Qty,
			UnrealizedPL: p.UnrealizedPL,
			PLKnown:      p.PLKnown,
		}
	}
	return wl
}

// pass evaluates every remaining symbol once. It returns an error only
// when the post-submission account refresh exhausts its retries.
func (e *Engine) pass(ctx context.Context) error {
	closingSoon := e.closingSoon()

	for _, sym := range e.symbols() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		entry := e.watchlist[sym]

		if closingSoon && entry.QtyHeld < 1 {
			log.Printf("[INFO] %s: too close to market close, dropping", sym)
			delete(e.watchlist, sym)
			continue
		}

		switch e.tradeStatus(sym) {
		case statusOpenOrder:
			continue
		case statusUnknown:
			continue
		case statusBoughtToday:
			log.Printf("[INFO] %s: already bought today, dropping", sym)
			delete(e.watchlist, sym)
			continue
		}

		snap, err := e.collector.Collect(sym)
		if err != nil {
			if errors.Is(err, collector.ErrInsufficientHistory) {
				log.Printf("[INFO] %s: no signal: %v", sym, err)
			} else {
				log.Printf("[WARN] %s: snapshot failed: %v", sym, err)
			}
			continue
		}

		intent := e.chain.Evaluate(strategy.Input{
			Symbol:         sym,
			Snapshot:       snap,
			QtyHeld:        entry.QtyHeld,
			UnrealizedPL:   entry.UnrealizedPL,
			PLKnown:        entry.PLKnown,
			PortfolioValue: e.account.PortfolioValue,
		})
		if intent == nil {
			continue
		}

		receipt, err := e.broker.SubmitOrder(intent)
		if err != nil {
			log.Printf("[ERROR] %s: order submission failed: %v", sym, err)
			continue
		}
		e.recordReceipt(receipt)

		if intent.Base().Side == model.SideBuy {
			// Entered for the run; sells stay eligible on later passes.
			delete(e.watchlist, sym)
		}

		account, err := broker.GetAccountWithRetry(e.broker, e.cfg.AccountMaxRetries, e.cfg.AccountRetryDelay)
		if err != nil {
			return fmt.Errorf("account refresh after %s order: %w", sym, err)
		}
		e.account = account
	}
	return nil
}

// closingSoon reports whether the next market close is within the guard
// threshold. Clock failures degrade to "not closing": the guard only
// exists to avoid opening positions minutes before the bell.
func (e *Engine) closingSoon() bool {
	clock, err := e.broker.GetClock()
	if err != nil {
		log.Printf("[WARN] market clock unavailable: %v", err)
		return false
	}
	return clock.NextClose.Sub(clock.Now) <= e.cfg.CloseGuard
}

// tradeStatus scans today's orders for the symbol. An open order means
// wait for it; a buy submitted today means any sell now would be a day
// trade. Query failures read as statusUnknown and the symbol is retried
// next pass.
func (e *Engine) tradeStatus(symbol string) tradeStatus {
	orders, err := e.broker.ListOrders()
	if err != nil {
		log.Printf("[WARN] %s: order status query failed: %v", symbol, err)
		return statusUnknown
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, o := range orders {
		if o.Symbol != symbol {
			continue
		}
		if isOpenStatus(o.Status) {
			return statusOpenOrder
		}
		if o.Side == model.SideBuy && o.SubmittedAt.UTC().Truncate(24*time.Hour).Equal(today) {
			return statusBoughtToday
		}
	}
	return statusClear
}

// isOpenStatus reports whether an order is still working at the
// brokerage.
func isOpenStatus(status string) bool {
	switch status {
	case "new", "accepted", "pending_new", "partially_filled", "held":
		return true
	}
	return false
}

func (e *Engine) symbols() []string {
	syms := make([]string, 0, len(e.watchlist))
	for s := range e.watchlist {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

func (e *Engine) recordReceipt(r *model.Receipt) {
	e.mu.Lock()
	e.receipts = append(e.receipts, *r)
	e.mu.Unlock()

	log.Printf("[INFO] %s: submitted %s %s x%d (order %s, status %s)",
		r.Symbol, r.Side, r.Kind, r.Qty, r.ID, r.Status)

	if err := e.recorder.RecordReceipt(r); err != nil {
		log.Printf("[WARN] %s: recording receipt failed: %v", r.Symbol, err)
	}
	e.notify(fmt.Sprintf("Order submitted: %s %s %s x%d @ %s",
		r.Side, r.Kind, r.Symbol, r.Qty, r.SubmittedAt.Format("15:04:05 MST")))
}

func (e *Engine) notify(text string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Send(text); err != nil {
		log.Printf("[WARN] notification failed: %v", err)
	}
}
