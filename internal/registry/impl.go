package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/scrape"
)

// Config holds registry tuning.
type Config struct {
	ReconcileInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconcileInterval: 5 * time.Minute,
	}
}

// registryImpl implements the Registry interface.
type registryImpl struct {
	cfg    Config
	store  Store
	logger *slog.Logger

	state *registryState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an offering registry over the given store.
func New(cfg Config, st Store, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = DefaultConfig().ReconcileInterval
	}

	return &registryImpl{
		cfg:    cfg,
		store:  st,
		logger: logger,
		state:  newState(),
	}
}

// Start loads the cache (blocking) and begins background reconciliation.
func (r *registryImpl) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	if err := r.initialSync(r.ctx); err != nil {
		r.cancel()
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.reconciliationLoop(r.ctx)
	}()

	r.logger.Info("ipo registry started", "ipos", r.state.stats().IPOs)
	return nil
}

// Stop gracefully shuts down.
func (r *registryImpl) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("ipo registry stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Upsert matches scraped data to a known offering and merges into it,
// creating the offering when nothing matches.
func (r *registryImpl) Upsert(ctx context.Context, scraped *model.IPO) (int64, bool, error) {
	if scraped.NormalizedName == "" {
		scraped.NormalizedName = scrape.NormalizeCompanyName(scraped.CompanyName)
	}
	if scraped.NormalizedName == "" {
		return 0, false, fmt.Errorf("upsert ipo: empty company name")
	}

	if id, ok := r.match(scraped); ok {
		return id, false, r.Update(ctx, id, scraped)
	}

	id, created, err := r.store.CreateIPO(ctx, scraped)
	if err != nil {
		return 0, false, err
	}
	if !created {
		// Lost a race with another source; merge into the winner.
		return id, false, r.Update(ctx, id, scraped)
	}

	stored, err := r.store.GetIPO(ctx, id)
	if err != nil {
		return id, true, err
	}
	r.state.upsert(*stored)

	sum := stored.Summary()
	r.state.notifyChange(model.Event{
		Type: model.EventIPOCreated,
		IPO:  &sum,
		At:   time.Now().UTC(),
	})
	r.logger.Info("new ipo", "id", id, "company", stored.CompanyName, "ticker", stored.Ticker)

	return id, true, r.applyRelations(ctx, stored, scraped)
}

// Update merges scraped data into one specific offering.
func (r *registryImpl) Update(ctx context.Context, id int64, scraped *model.IPO) error {
	cached, ok := r.state.get(id)
	if !ok {
		stored, err := r.store.GetIPO(ctx, id)
		if err != nil {
			return fmt.Errorf("update ipo %d: %w", id, err)
		}
		if stored.Archived {
			// Archived offerings never resurface through scrapes.
			return nil
		}
		cached = *stored
		cached.Brokers, cached.Allocations, cached.CeilingTracks = nil, nil, nil
		r.state.upsert(cached)
	}

	updated := cached
	fields := mergeIPO(&updated, scraped)
	if len(fields) > 0 {
		if err := r.store.UpdateFields(ctx, id, fields); err != nil {
			return err
		}
		updated.UpdatedAt = time.Now().UTC()
		r.state.upsert(updated)

		if newStatus, ok := fields["status"].(string); ok {
			sum := updated.Summary()
			r.state.notifyChange(model.Event{
				Type:      model.EventStatusChange,
				IPO:       &sum,
				OldStatus: cached.Status,
				NewStatus: newStatus,
				At:        time.Now().UTC(),
			})
		}
		r.logger.Debug("ipo updated", "id", id, "changed", len(fields))
	}

	return r.applyRelations(ctx, &updated, scraped)
}

// UpdateMatched merges scraped data into an existing match; unknown companies
// are skipped.
func (r *registryImpl) UpdateMatched(ctx context.Context, scraped *model.IPO) (bool, error) {
	if scraped.NormalizedName == "" {
		scraped.NormalizedName = scrape.NormalizeCompanyName(scraped.CompanyName)
	}
	id, ok := r.match(scraped)
	if !ok {
		return false, nil
	}
	return true, r.Update(ctx, id, scraped)
}

// match finds an existing offering for scraped data: exact normalized name
// first, then ticker, then fuzzy company-name containment.
func (r *registryImpl) match(scraped *model.IPO) (int64, bool) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	if id, ok := r.state.byName[scraped.NormalizedName]; ok {
		return id, true
	}
	if scraped.Ticker != "" {
		for id, ipo := range r.state.ipos {
			if ipo.Ticker == scraped.Ticker {
				return id, true
			}
		}
	}
	for id, ipo := range r.state.ipos {
		if scrape.CompanyNamesMatch(ipo.CompanyName, scraped.CompanyName) {
			return id, true
		}
	}
	return 0, false
}

// applyRelations persists consortium and allocation lists carried on scraped
// data. The first allocation list for an offering emits its event.
func (r *registryImpl) applyRelations(ctx context.Context, ipo *model.IPO, scraped *model.IPO) error {
	if len(scraped.Brokers) > 0 {
		if err := r.store.ReplaceBrokers(ctx, ipo.ID, scraped.Brokers); err != nil {
			return err
		}
	}
	if len(scraped.Allocations) == 0 {
		return nil
	}
	if err := r.store.ReplaceAllocations(ctx, ipo.ID, scraped.Allocations); err != nil {
		return err
	}
	first, err := r.store.MarkAllocationAnnounced(ctx, ipo.ID)
	if err != nil {
		return err
	}
	if first {
		ipo.AllocationAnnounced = true
		r.state.upsert(*ipo)

		sum := ipo.Summary()
		r.state.notifyChange(model.Event{
			Type: model.EventAllocationAnnounced,
			IPO:  &sum,
			At:   time.Now().UTC(),
		})
		r.logger.Info("allocation announced", "id", ipo.ID, "company", ipo.CompanyName)
	}
	return nil
}

// TransitionStatuses advances date-driven lifecycle statuses.
func (r *registryImpl) TransitionStatuses(ctx context.Context, today time.Time) (int, error) {
	transitions, err := r.store.TransitionStatuses(ctx, today)
	if err != nil {
		return 0, err
	}
	for _, tr := range transitions {
		if cached, ok := r.state.get(tr.IPO.ID); ok {
			cached.Status = tr.To
			if tr.To == model.StatusTrading {
				cached.CeilingTrackingActive = true
			}
			r.state.upsert(cached)
		}
		sum := tr.IPO
		r.state.notifyChange(model.Event{
			Type:      model.EventStatusChange,
			IPO:       &sum,
			OldStatus: tr.From,
			NewStatus: tr.To,
			At:        time.Now().UTC(),
		})
	}
	return len(transitions), nil
}

// ArchiveExpired drops long-trading offerings from listings and the cache.
func (r *registryImpl) ArchiveExpired(ctx context.Context, today time.Time) (int, error) {
	archived, err := r.store.ArchiveExpired(ctx, today)
	if err != nil {
		return 0, err
	}
	for _, sum := range archived {
		r.state.remove(sum.ID)
	}
	return len(archived), nil
}

// RecordCeilingTrack stores one post-listing trading day and maintains the
// offering's ceiling state.
func (r *registryImpl) RecordCeilingTrack(ctx context.Context, ticker string, day int, date time.Time, closePrice decimal.Decimal, hitCeiling bool) (*CeilingResult, error) {
	ipo, ok := r.state.findByTicker(ticker)
	if !ok {
		return nil, ErrUnknownTicker
	}

	price := closePrice
	now := time.Now().UTC()
	track := model.IPOCeilingTrack{
		IPOID:      ipo.ID,
		TradingDay: day,
		TradeDate:  model.Midnight(date),
		ClosePrice: &price,
		HitCeiling: hitCeiling,
	}

	res := &CeilingResult{
		Broken:   !hitCeiling && !ipo.CeilingBroken,
		Relocked: hitCeiling && ipo.CeilingBroken,
	}
	if res.Broken {
		track.CeilingBrokenAt = &now
	}
	track.Relocked = res.Relocked

	if err := r.store.UpsertCeilingTrack(ctx, &track); err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if day == 1 {
		ipo.FirstDayClosePrice = &price
		fields["first_day_close_price"] = price
	}
	if res.Broken {
		ipo.CeilingBroken = true
		ipo.CeilingBrokenAt = &now
		fields["ceiling_broken"] = true
		fields["ceiling_broken_at"] = now
	}
	if day >= model.CeilingTrackDays && ipo.CeilingTrackingActive {
		ipo.CeilingTrackingActive = false
		fields["ceiling_tracking_active"] = false
	}
	if len(fields) > 0 {
		if err := r.store.UpdateFields(ctx, ipo.ID, fields); err != nil {
			return nil, err
		}
		r.state.upsert(ipo)
	}

	res.IPO = ipo.Summary()
	res.Track = track
	if res.Broken {
		sum := res.IPO
		r.state.notifyChange(model.Event{
			Type: model.EventCeilingBroken,
			IPO:  &sum,
			At:   now,
		})
		r.logger.Info("ceiling broken", "ticker", ticker, "day", day)
	}
	return res, nil
}

// NotifyNews publishes a stored news item to event consumers.
func (r *registryImpl) NotifyNews(item *model.NewsItem) {
	r.state.notifyChange(model.Event{
		Type: model.EventNewsMatched,
		News: item,
		At:   time.Now().UTC(),
	})
}

// Get returns one cached offering by ID.
func (r *registryImpl) Get(id int64) (model.IPO, bool) {
	return r.state.get(id)
}

// FindByTicker returns one cached offering by its BIST code.
func (r *registryImpl) FindByTicker(ticker string) (model.IPO, bool) {
	return r.state.findByTicker(ticker)
}

// Active returns every cached offering, ordered by ID.
func (r *registryImpl) Active() []model.IPO {
	return r.state.active()
}

// Changes returns the event channel.
func (r *registryImpl) Changes() <-chan model.Event {
	return r.state.changes
}

// Stats reports cache size and last sync time.
func (r *registryImpl) Stats() Stats {
	return r.state.stats()
}
