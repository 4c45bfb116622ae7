package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kyaraz/halkaarz/internal/config"
	"github.com/kyaraz/halkaarz/internal/database"
	"github.com/kyaraz/halkaarz/internal/fetch"
	"github.com/kyaraz/halkaarz/internal/httpapi"
	"github.com/kyaraz/halkaarz/internal/news"
	"github.com/kyaraz/halkaarz/internal/notify"
	"github.com/kyaraz/halkaarz/internal/registry"
	"github.com/kyaraz/halkaarz/internal/sched"
	"github.com/kyaraz/halkaarz/internal/scrape"
	"github.com/kyaraz/halkaarz/internal/store"
	"github.com/kyaraz/halkaarz/internal/stream"
	"github.com/kyaraz/halkaarz/internal/version"
)

// dedupWindow bounds how far back stored disclosure IDs are loaded to prime
// the news deduper on startup. Anything older is caught by the unique index.
const dedupWindow = 7 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "configs/tracker.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tracker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if lvl := logLevel(cfg.Logging.Level); lvl != slog.LevelInfo {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: lvl,
		}))
		slog.SetDefault(logger)
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	logger.Info("configuration loaded",
		"addr", addr,
		"scrape_workers", cfg.Scrape.Workers,
		"notify_enabled", cfg.Notify.Enabled,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	logger.Info("database connected")

	// Stores
	ipoStore := store.NewIPOStore(pool, logger)
	newsStore := store.NewNewsStore(pool, logger)
	spkStore := store.NewSPKStore(pool, logger)
	stateStore := store.NewStateStore(pool)
	deviceStore := store.NewDeviceStore(pool, logger)

	// Upstream clients. The KAP query endpoint refuses requests without the
	// Referer and X-Requested-With headers, and spk.gov.tr serves a chain Go
	// does not trust out of the box.
	halkarzClient := fetch.New(cfg.Scrape.HalkarzBaseURL,
		fetch.WithUserAgent(cfg.Scrape.UserAgent),
		fetch.WithTimeout(cfg.Scrape.Timeout),
		fetch.WithRetries(cfg.Scrape.Retries, time.Second),
		fetch.WithLogger(logger),
	)
	kapClient := fetch.New(cfg.Scrape.KAPBaseURL,
		fetch.WithUserAgent(cfg.Scrape.UserAgent),
		fetch.WithTimeout(cfg.Scrape.Timeout),
		fetch.WithRetries(cfg.Scrape.Retries, time.Second),
		fetch.WithHeader("Referer", cfg.Scrape.KAPBaseURL+"/tr/bildirim-sorgu"),
		fetch.WithHeader("X-Requested-With", "XMLHttpRequest"),
		fetch.WithLogger(logger),
	)
	spkSiteClient := fetch.New(cfg.Scrape.SPKBaseURL,
		fetch.WithUserAgent(cfg.Scrape.UserAgent),
		fetch.WithTimeout(cfg.Scrape.Timeout),
		fetch.WithRetries(cfg.Scrape.Retries, time.Second),
		fetch.WithInsecureTLS(),
		fetch.WithLogger(logger),
	)
	spkAPIClient := fetch.New(cfg.Scrape.SPKIssuanceURL,
		fetch.WithUserAgent(cfg.Scrape.UserAgent),
		fetch.WithTimeout(cfg.Scrape.Timeout),
		fetch.WithRetries(cfg.Scrape.Retries, time.Second),
		fetch.WithLogger(logger),
	)

	// Scrapers
	halkarz := scrape.NewHalkarz(halkarzClient, cfg.Scrape.Workers, logger)
	kap := scrape.NewKAP(kapClient, logger)
	spk := scrape.NewSPK(spkSiteClient, spkAPIClient, logger)

	// Offering registry (initial cache load)
	reg := registry.New(registry.Config{}, ipoStore, logger)
	if err := reg.Start(ctx); err != nil {
		logger.Error("failed to start registry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		reg.Stop(shutdownCtx)
	}()

	stats := reg.Stats()
	logger.Info("registry started", "offerings", stats.IPOs)

	// News dedup, primed from recently stored disclosures
	seen, err := newsStore.SeenDisclosureIDs(ctx, time.Now().Add(-dedupWindow))
	if err != nil {
		logger.Warn("could not prime news dedup", "error", err)
	}
	dedup := news.NewDedup(seen)

	// Push senders. Without credentials (or with notify disabled) both lanes
	// fall back to log-only so the rest of the pipeline behaves the same.
	var fcm notify.Sender = notify.NewLogSender(logger)
	if cfg.Notify.Enabled && cfg.Notify.FCMCredentials != "" {
		sender, err := notify.NewFCMSender(ctx, cfg.Notify.FCMCredentials, logger)
		if err != nil {
			logger.Error("failed to init fcm sender", "error", err)
			os.Exit(1)
		}
		fcm = sender
	}
	var expo notify.Sender = notify.NewLogSender(logger)
	if cfg.Notify.Enabled {
		expoClient := fetch.New(cfg.Notify.ExpoURL,
			fetch.WithTimeout(15*time.Second),
			fetch.WithRetries(2, time.Second),
			fetch.WithLogger(logger),
		)
		expo = notify.NewExpoSender(expoClient, logger)
	}
	dispatcher := notify.NewDispatcher(deviceStore, fcm, expo, cfg.Notify.SendDelay, logger)

	// Stream hub and event fan-out
	hub := stream.NewHub(logger)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-reg.Changes():
				hub.Broadcast(ev)
				dispatcher.Dispatch(ctx, ev)
			}
		}
	}()

	// Scheduler
	sch := sched.New(cfg.Jobs, sched.Deps{
		Halkarz:  halkarz,
		KAP:      kap,
		SPK:      spk,
		Registry: reg,
		IPOs:     ipoStore,
		News:     newsStore,
		Apps:     spkStore,
		State:    stateStore,
		Notifier: dispatcher,
		Dedup:    dedup,
	}, logger)
	if err := sch.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// HTTP API
	router := httpapi.NewRouter(httpapi.Deps{
		IPOs:     ipoStore,
		News:     newsStore,
		Devices:  deviceStore,
		Registry: reg,
		Hub:      hub,
		DB:       pool,
		Jobs:     sch,
	}, cfg.Server.RequestTimeout, logger)

	srv := httpapi.NewServer(cfg.Server, router, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	logger.Info("tracker running", "addr", addr)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if err := sch.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler shutdown", "error", err)
	}
	hub.Close()

	logger.Info("tracker stopped")
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
