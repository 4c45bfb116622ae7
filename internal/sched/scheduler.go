package sched

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kyaraz/halkaarz/internal/config"
	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/news"
	"github.com/kyaraz/halkaarz/internal/scrape"
	"github.com/kyaraz/halkaarz/internal/store"
)

// HalkarzSource fetches listing-site detail pages for tracked offerings.
// *scrape.HalkarzScraper satisfies it.
type HalkarzSource interface {
	FetchMatching(ctx context.Context, ipos []*model.IPO) (map[int64]*model.IPO, error)
}

// KAPSource queries the public disclosure platform. *scrape.KAPScraper
// satisfies it.
type KAPSource interface {
	IPODisclosures(ctx context.Context, daysBack int) ([]scrape.Disclosure, error)
	LatestDisclosures(ctx context.Context) ([]scrape.Disclosure, error)
	DisclosureDetail(ctx context.Context, index int64) (string, error)
}

// SPKSource reads the board's application list and issuance API.
// *scrape.SPKScraper satisfies it.
type SPKSource interface {
	Applications(ctx context.Context) ([]scrape.Application, error)
	IssuanceData(ctx context.Context, year int) ([]scrape.IssuanceRecord, error)
	RecentIssuances(ctx context.Context) ([]scrape.IssuanceRecord, error)
}

// Registry is the slice of the offering registry the jobs write through.
type Registry interface {
	Active() []model.IPO
	Upsert(ctx context.Context, scraped *model.IPO) (int64, bool, error)
	Update(ctx context.Context, id int64, scraped *model.IPO) error
	UpdateMatched(ctx context.Context, scraped *model.IPO) (bool, error)
	TransitionStatuses(ctx context.Context, today time.Time) (int, error)
	ArchiveExpired(ctx context.Context, today time.Time) (int, error)
	NotifyNews(item *model.NewsItem)
}

// IPOSource answers the reminder job's date queries. *store.IPOStore
// satisfies it.
type IPOSource interface {
	LastDayIPOs(ctx context.Context, day time.Time) ([]model.IPOSummary, error)
}

// NewsSink persists matched news items. *store.NewsStore satisfies it.
type NewsSink interface {
	InsertNews(ctx context.Context, items []model.NewsItem) (int, error)
}

// ApplicationSink reconciles the scraped application list. *store.SPKStore
// satisfies it.
type ApplicationSink interface {
	SyncApplications(ctx context.Context, scraped []model.SPKApplication) (store.ApplicationSyncResult, error)
}

// StateStore keeps scraper cursors and send markers. *store.StateStore
// satisfies it.
type StateStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Notifier delivers the time-driven pushes the event stream cannot carry.
// *notify.Dispatcher satisfies it.
type Notifier interface {
	SendReminder(ctx context.Context, ipo model.IPOSummary, window time.Duration) int
	SendLastDayWarning(ctx context.Context, ipo model.IPOSummary) int
}

// Deps collects every collaborator the jobs touch.
type Deps struct {
	Halkarz  HalkarzSource
	KAP      KAPSource
	SPK      SPKSource
	Registry Registry
	IPOs     IPOSource
	News     NewsSink
	Apps     ApplicationSink
	State    StateStore
	Notifier Notifier
	Dedup    *news.Dedup
}

// Scheduler owns the cron entries that drive every scrape, lifecycle and
// reminder job.
type Scheduler struct {
	cfg    config.JobsConfig
	deps   Deps
	logger *slog.Logger

	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
}

// New builds a scheduler around the given collaborators. Jobs are registered
// at Start, not here.
func New(cfg config.JobsConfig, deps Deps, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		cron:   cron.New(cron.WithSeconds()),
	}
}

// Start registers all jobs and starts the cron loop. The context bounds
// every job run; cancelling it aborts in-flight work.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.register(); err != nil {
		s.cancel()
		return err
	}

	s.cron.Start()
	s.started.Store(true)
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Running reports whether Start has been called and Stop has not.
func (s *Scheduler) Running() bool {
	return s.started.Load()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.started.Store(false)
	if s.cancel != nil {
		s.cancel()
	}

	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) register() error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"halkarz_sync", every(s.cfg.HalkarzInterval), s.syncHalkarz},
		{"kap_ipo_disclosures", every(s.cfg.KAPIPOInterval), s.syncKAPDisclosures},
		{"kap_news_poll", every(s.cfg.KAPNewsInterval), s.pollNews},
		{"spk_applications", every(s.cfg.SPKApplicationsInterval), s.syncApplications},
		{"spk_issuance", every(s.cfg.SPKIssuanceInterval), s.syncIssuances},
		{"status_transitions", every(s.cfg.StatusInterval), s.advanceStatuses},
		{"archive", s.cfg.ArchiveSpec, s.archiveExpired},
		{"last_day_reminders", every(s.cfg.ReminderInterval), s.runReminders},
	}

	for _, job := range jobs {
		running := new(atomic.Bool)
		if _, err := s.cron.AddFunc(job.spec, s.wrap(job.name, running, job.run)); err != nil {
			return fmt.Errorf("register %s job: %w", job.name, err)
		}
	}
	return nil
}

// wrap turns a job body into a cron entry: overlapping runs are skipped,
// panics are contained, outcomes are logged.
func (s *Scheduler) wrap(name string, running *atomic.Bool, run func(context.Context) error) func() {
	return func() {
		if !running.CompareAndSwap(false, true) {
			s.logger.Warn("previous run still in flight, skipping", "job", name)
			return
		}
		defer running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("job panicked", "job", name, "panic", r)
			}
		}()

		start := time.Now()
		if err := run(s.ctx); err != nil {
			s.logger.Error("job failed", "job", name, "elapsed", time.Since(start), "error", err)
			return
		}
		s.logger.Debug("job finished", "job", name, "elapsed", time.Since(start))
	}
}

// every renders an interval as a cron descriptor.
func every(d time.Duration) string {
	return "@every " + d.String()
}
