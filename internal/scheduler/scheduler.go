package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"TradeSentinel/internal/engine"
	"TradeSentinel/internal/model"
	"TradeSentinel/internal/notifier"
	"TradeSentinel/internal/recorder"

	"github.com/robfig/cron/v3"
)

// SessionFactory builds a fresh engine and its session logbook. Each
// session gets its own watchlist and its own receipts file; long-lived
// state (sqlite, notifier) is shared inside the factory's closure.
type SessionFactory func() (*engine.Engine, recorder.Recorder, error)

// Scheduler starts trading sessions on a cron cadence and serves the
// Telegram command surface.
type Scheduler struct {
	Cron           *cron.Cron
	Factory        SessionFactory
	Notifier       *notifier.TelegramNotifier
	Ctx            context.Context
	SessionTimeout time.Duration

	mu           sync.Mutex
	running      bool
	lastRun      time.Time
	lastReceipts []model.Receipt
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, factory SessionFactory, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:           cron.New(cron.WithSeconds()),
		Factory:        factory,
		Notifier:       tn,
		Ctx:            ctx,
		SessionTimeout: 7 * time.Hour, // a full trading day, with slack
	}
}

// Register registers the session task.
func (s *Scheduler) Register(sessionCron string) error {
	if _, err := s.Cron.AddFunc(sessionCron, s.RunSession); err != nil {
		return fmt.Errorf("register session task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunSession executes one trading session. A session already in flight
// makes this a no-op: the loop drains symbols one at a time and two
// sessions would double-submit orders.
func (s *Scheduler) RunSession() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("[WARN] session already running, skipping trigger")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	eng, logbook, err := s.Factory()
	if err != nil {
		log.Printf("[ERROR] session setup: %v", err)
		s.trySend(fmt.Sprintf("❌ Session setup failed: %v", err))
		return
	}

	// The watchlist only fully drains while positions are flat; bound the
	// session so a working sell order cannot hold the loop overnight.
	ctx, cancel := context.WithTimeout(s.Ctx, s.SessionTimeout)
	defer cancel()

	runErr := eng.Run(ctx)
	receipts := eng.Receipts()

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastReceipts = receipts
	s.mu.Unlock()

	if err := logbook.Close(); err != nil {
		log.Printf("[ERROR] flush logbook: %v", err)
	}

	if runErr != nil && !isCancellation(runErr) {
		log.Printf("[ERROR] session aborted: %v", runErr)
		s.trySend(fmt.Sprintf("❌ Session aborted: %v", runErr))
		return
	}
	s.trySend(notifier.FormatSessionSummary(receipts))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		go s.RunSession()
		return "Session triggered."
	case "/status":
		s.mu.Lock()
		defer s.mu.Unlock()
		return notifier.FormatStatus(s.running, s.lastRun, len(s.lastReceipts))
	case "/log":
		s.mu.Lock()
		receipts := s.lastReceipts
		s.mu.Unlock()
		return notifier.FormatSessionSummary(receipts)
	default:
		return "Available commands:\n• /run\n• /status\n• /log"
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
