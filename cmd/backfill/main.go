package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kyaraz/halkaarz/internal/config"
	"github.com/kyaraz/halkaarz/internal/database"
	"github.com/kyaraz/halkaarz/internal/fetch"
	"github.com/kyaraz/halkaarz/internal/news"
	"github.com/kyaraz/halkaarz/internal/notify"
	"github.com/kyaraz/halkaarz/internal/registry"
	"github.com/kyaraz/halkaarz/internal/sched"
	"github.com/kyaraz/halkaarz/internal/scrape"
	"github.com/kyaraz/halkaarz/internal/store"
	"github.com/kyaraz/halkaarz/internal/version"
)

// backfill runs the scrape sources once and exits. It shares the scheduler's
// job code so a manual run and a cron run behave identically.
func main() {
	configPath := flag.String("config", "configs/tracker.yaml", "path to config file")
	source := flag.String("source", "all", "source to backfill: all, halkarz, kap or spk")
	year := flag.Int("year", 0, "limit the SPK issuance fetch to this year (0 = current and previous)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting backfill",
		"version", version.Version,
		"commit", version.Commit,
		"source", *source,
		"year", *year,
	)

	switch *source {
	case "all", "halkarz", "kap", "spk":
	default:
		logger.Error("unknown source", "source", *source)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

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

	ipoStore := store.NewIPOStore(pool, logger)
	newsStore := store.NewNewsStore(pool, logger)
	spkStore := store.NewSPKStore(pool, logger)
	stateStore := store.NewStateStore(pool)
	deviceStore := store.NewDeviceStore(pool, logger)

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

	halkarz := scrape.NewHalkarz(halkarzClient, cfg.Scrape.Workers, logger)
	kap := scrape.NewKAP(kapClient, logger)
	spk := scrape.NewSPK(spkSiteClient, spkAPIClient, logger)

	reg := registry.New(registry.Config{}, ipoStore, logger)
	if err := reg.Start(ctx); err != nil {
		logger.Error("failed to start registry", "error", err)
		os.Exit(1)
	}

	seen, err := newsStore.SeenDisclosureIDs(ctx, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		logger.Warn("could not prime news dedup", "error", err)
	}

	// A backfill never pushes; both sender lanes log only.
	logOnly := notify.NewLogSender(logger)
	dispatcher := notify.NewDispatcher(deviceStore, logOnly, logOnly, 0, logger)

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
		Dedup:    news.NewDedup(seen),
	}, logger)

	switch *source {
	case "halkarz":
		err = sch.RunHalkarz(ctx)
	case "kap":
		err = sch.RunKAP(ctx)
	case "spk":
		err = sch.RunSPK(ctx, *year)
	default:
		err = sch.RunAll(ctx, *year)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	reg.Stop(stopCtx)

	if err != nil {
		logger.Error("backfill failed", "source", *source, "error", err)
		os.Exit(1)
	}
	logger.Info("backfill complete", "source", *source)
}
