package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalSentinel/internal/config"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/pricefeed"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/internal/store"
	"SignalSentinel/internal/tracker"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SignalSentinel starting...")

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

	// Init price feed chain, highest priority first
	var sources []pricefeed.Source
	for _, p := range cfg.PriceFeed.Providers {
		switch p {
		case "binance":
			sources = append(sources, pricefeed.NewBinanceSource(cfg.Proxy))
		case "bybit":
			sources = append(sources, pricefeed.NewBybitSource(cfg.Proxy))
		case "mock":
			sources = append(sources, &pricefeed.MockSource{Price: 1})
		}
	}
	feed := pricefeed.NewChain(sources...)
	log.Printf("[INFO] price providers: %v", cfg.PriceFeed.Providers)

	// Init store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using memory: %v", err)
			st = store.NewMemoryStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewMemoryStore()
	}

	// Init Telegram notifier and event sink
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	sink := notifier.NewTelegramSink(tn, cfg.Tracker.RiskyScoreThreshold)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracker
	tr := tracker.New(feed, st, sink, tracker.Config{
		PollInterval: time.Duration(cfg.Tracker.PollIntervalSec) * time.Second,
		FetchTimeout: time.Duration(cfg.PriceFeed.FetchTimeoutSec) * time.Second,
		Allocation: model.Allocation{
			TP1: cfg.Tracker.TP1Fraction,
			TP2: cfg.Tracker.TP2Fraction,
			TP3: cfg.Tracker.TP3Fraction,
		},
	})
	if err := tr.Start(ctx); err != nil {
		log.Fatalf("[FATAL] start tracker: %v", err)
	}
	defer tr.Stop()

	// Metrics endpoint
	if cfg.Metrics.Addr != "" {
		metrics.Serve(cfg.Metrics.Addr)
		log.Printf("[INFO] metrics on %s/metrics", cfg.Metrics.Addr)
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, tr, tn, cfg.Schedule.StatsWindowDays)
	if err := sched.RegisterAll(cfg.Schedule.DigestCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	log.Println("[INFO] SignalSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] SignalSentinel stopped")
}
