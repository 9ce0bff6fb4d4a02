package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"CryptoSim/internal/config"
	"CryptoSim/internal/engine"
	"CryptoSim/internal/feed"
	"CryptoSim/internal/notifier"
	"CryptoSim/internal/scheduler"
	"CryptoSim/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CryptoSim starting...")

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Display metadata is best-effort; configured names are kept on failure.
	symbols := cfg.Symbols
	gecko := feed.NewCoinGeckoClient(cfg.Feed.CoinGeckoURL, cfg.Proxy, cfg.Feed.Timeout)
	if coins, err := gecko.TopCoins(ctx); err != nil {
		log.Printf("[WARN] coin metadata unavailable: %v", err)
	} else {
		symbols = feed.Enrich(symbols, coins)
	}

	client := feed.NewCoinbaseClient(cfg.Feed.SpotBaseURL, cfg.Feed.ExchangeBaseURL, cfg.Proxy, cfg.Feed.Timeout)
	log.Printf("[INFO] data source: %s, tracking %d symbols", client.Name(), len(symbols))

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.SQLitePath, cfg.Storage.Dir)
	if err != nil {
		log.Printf("[WARN] open %s store failed, state will not survive restarts: %v", cfg.Storage.Driver, err)
		st = store.NewMemoryStore()
	}
	defer st.Close()

	eng, err := engine.New(client, st, engine.Options{
		Symbols:         symbols,
		Sync:            cfg.SyncOptions(),
		StartingBalance: cfg.Portfolio.StartingBalance,
	})
	if err != nil {
		log.Fatalf("[FATAL] init engine: %v", err)
	}

	var n notifier.Notifier = notifier.LogNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	sched := scheduler.NewScheduler(ctx, eng, n)
	if err := sched.RegisterAll(cfg.Schedule.CycleCron, cfg.Schedule.ReportCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	go sched.RunCycleNow()

	log.Println("[INFO] CryptoSim is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] CryptoSim stopped")
}
