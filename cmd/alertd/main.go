package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arunpanwar240-bot/apna-screener/config"
	"github.com/arunpanwar240-bot/apna-screener/internal/alert"
	"github.com/arunpanwar240-bot/apna-screener/internal/api"
	"github.com/arunpanwar240-bot/apna-screener/internal/cache"
	"github.com/arunpanwar240-bot/apna-screener/internal/logger"
	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/metrics"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
	"github.com/arunpanwar240-bot/apna-screener/internal/notification"
	"github.com/arunpanwar240-bot/apna-screener/internal/pipeline"
	"github.com/arunpanwar240-bot/apna-screener/internal/provider/dhan"
	"github.com/arunpanwar240-bot/apna-screener/internal/settings"
	sqlitestore "github.com/arunpanwar240-bot/apna-screener/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("alertd", slog.LevelInfo)
	log.Println("[alertd] starting...")

	cfg := config.Load()

	// ---- Runtime-mutable credentials ----
	creds := settings.Load(cfg.SettingsPath)
	if !creds.ProviderConfigured() {
		log.Println("[alertd] WARNING: Dhan credentials unset — configure via POST /api/v1/settings")
	}

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	health.SetProviderConfigured(creds.ProviderConfigured())
	health.SetTelegramConfigured(creds.TelegramConfigured())
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Shutdown plumbing ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Signal journal (SQLite) ----
	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	journal, err := sqlitestore.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[alertd] sqlite init failed: %v", err)
	}
	defer journal.Close()
	health.SetSQLiteOK(true)

	// ---- Bar cache (Redis, optional) ----
	barCache, err := cache.New(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		log.Printf("[alertd] WARNING: redis unavailable: %v (continuing without cache)", err)
		barCache = nil
	} else {
		defer barCache.Close()
		health.SetRedisConnected(true)
	}

	// ---- Provider & pipeline ----
	provider := dhan.New(dhan.Config{
		BaseURL:     cfg.ProviderBaseURL,
		Timeout:     cfg.ProviderTimeout,
		Credentials: creds.Provider,
	})
	pipe := pipeline.New(provider, barCache, prom)

	// ---- Notification channel ----
	notifier := notification.NewTelegramNotifier(creds.Telegram)

	// ---- Alert scheduler ----
	hub := api.NewHub()
	state := alert.NewState()
	scheduler := alert.New(alert.Config{
		Pipeline:    pipe,
		Notifier:    notifier,
		State:       state,
		Journal:     journal,
		Stream:      hub,
		Metrics:     prom,
		Health:      health,
		Interval:    cfg.TickInterval,
		NotifyDelay: cfg.NotifyDelay,
	})
	go scheduler.Run(ctx)

	// ---- API server ----
	handler := api.NewHandler(pipe, state, creds, notifier, journal, hub)
	apiSrv := api.NewServer(cfg.APIAddr, handler)
	apiSrv.Start()

	log.Printf("[alertd] tracking %d indices × %d notify timeframes (tick=%v)",
		len(model.Instruments()), len(model.NotifyTimeframes), cfg.TickInterval)
	log.Printf("[alertd] %s", markethours.StatusString(time.Now()))

	// ---- Wait for shutdown signal ----
	<-sigCh
	log.Println("[alertd] shutdown signal received, cleaning up...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	apiSrv.Stop(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)

	log.Println("[alertd] shutdown complete.")
}
