package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TradeSentinel/internal/broker"
	"TradeSentinel/internal/collector"
	"TradeSentinel/internal/config"
	"TradeSentinel/internal/engine"
	"TradeSentinel/internal/notifier"
	"TradeSentinel/internal/recorder"
	"TradeSentinel/internal/scheduler"
	"TradeSentinel/internal/strategy"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TradeSentinel starting...")

	// Local development convenience; the file is optional.
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		log.Fatalf("[FATAL] brokerage credentials: %v", err)
	}
	if creds.Paper {
		log.Println("[INFO] trading against the paper endpoint")
	} else {
		log.Println("[WARN] trading against the LIVE endpoint")
	}

	apiDelay := time.Duration(cfg.Trading.APIDelaySeconds) * time.Second

	// Init brokerage gateway and market data
	bkr := broker.NewAlpacaBroker(creds.APIKey, creds.APISecret, creds.BaseURL(), apiDelay)
	fetcher := collector.NewAlpacaFetcher(creds.APIKey, creds.APISecret, apiDelay)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, collector.Params{
		LookbackDays: cfg.Trading.LookbackDays,
		EMASpan:      cfg.Trading.EMASpan,
		RSIPeriod:    cfg.Trading.RSIPeriod,
		ATRPeriod:    cfg.Trading.ATRPeriod,
		SRWindow:     cfg.Trading.SRWindow,
	})

	chain := strategy.NewChain(cfg.Trading.AllocationCap)

	// Init Telegram notifier (optional)
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	} else {
		log.Println("[INFO] Telegram not configured, notifications disabled")
	}

	// Init long-lived recorder
	var shared recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			shared = recorder.NewNoopRecorder()
		} else {
			shared = sr
			defer sr.Close()
		}
	} else {
		shared = recorder.NewNoopRecorder()
	}

	engCfg := engine.Config{
		Universe:          cfg.Watchlist,
		CloseGuard:        time.Duration(cfg.Trading.CloseGuardMinutes) * time.Minute,
		AccountMaxRetries: cfg.Trading.AccountMaxRetries,
		AccountRetryDelay: time.Duration(cfg.Trading.AccountRetryDelaySeconds) * time.Second,
	}

	var en engine.Notifier
	if tn != nil {
		en = tn
	}

	// Each session writes a fresh logbook; sqlite accumulates across runs.
	factory := func() (*engine.Engine, recorder.Recorder, error) {
		logbook := recorder.NewLogbook(cfg.Logbook.Path)
		eng := engine.New(bkr, col, chain, recorder.Multi{logbook, shared}, en, engCfg)
		return eng, logbook, nil
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Single-shot mode: one session, then exit. Fatal session errors exit
	// non-zero so a supervisor notices.
	if os.Getenv("SINGLE_RUN") == "true" {
		eng, logbook, _ := factory()
		runErr := eng.Run(ctx)
		if err := logbook.Close(); err != nil {
			log.Printf("[ERROR] flush logbook: %v", err)
		}
		if runErr != nil {
			log.Fatalf("[FATAL] session aborted: %v", runErr)
		}
		log.Println("[INFO] single run complete")
		return
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, factory, tn)
	if err := sched.Register(cfg.Schedule.SessionCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, starting a session now")
		go sched.RunSession()
	}

	log.Println("[INFO] TradeSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] TradeSentinel stopped")
}
