package sched

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/news"
	"github.com/kyaraz/halkaarz/internal/scrape"
)

const (
	// kapLookbackDays bounds the offering disclosure query. Three days
	// covers weekends and the occasional missed run.
	kapLookbackDays = 3

	// stateKeyKAPCursor stores the highest disclosure index already merged,
	// so re-queried disclosures are not fetched twice.
	stateKeyKAPCursor = "kap_ipo_last_index"
)

// syncHalkarz refreshes tracked offerings from their listing-site detail
// pages. The listing site never creates offerings; disclosure monitoring
// does that.
func (s *Scheduler) syncHalkarz(ctx context.Context) error {
	active := s.deps.Registry.Active()
	if len(active) == 0 {
		return nil
	}
	ipos := make([]*model.IPO, len(active))
	for i := range active {
		ipos[i] = &active[i]
	}

	details, err := s.deps.Halkarz.FetchMatching(ctx, ipos)
	if err != nil {
		return fmt.Errorf("halkarz sync: %w", err)
	}
	for id, detail := range details {
		if err := s.deps.Registry.Update(ctx, id, detail); err != nil {
			s.logger.Warn("halkarz update failed", "ipo_id", id, "error", err)
		}
	}
	return nil
}

// syncKAPDisclosures walks recent offering-subject disclosures and merges
// each into the registry, creating newly approved offerings on first sight.
func (s *Scheduler) syncKAPDisclosures(ctx context.Context) error {
	disclosures, err := s.deps.KAP.IPODisclosures(ctx, kapLookbackDays)
	if err != nil {
		return fmt.Errorf("kap disclosures: %w", err)
	}

	cursor := s.kapCursor(ctx)
	maxIndex := cursor
	for _, d := range disclosures {
		if d.Index <= cursor {
			continue
		}
		if d.Index > maxIndex {
			maxIndex = d.Index
		}
		if d.CompanyName == "" || !scrape.IsIPORelated(d.Title) {
			continue
		}

		scraped := s.disclosureIPO(ctx, d)
		id, created, err := s.deps.Registry.Upsert(ctx, scraped)
		if err != nil {
			s.logger.Warn("disclosure upsert failed",
				"company", d.CompanyName, "disclosure", d.Index, "error", err)
			continue
		}
		if created {
			s.logger.Info("offering created from disclosure",
				"ipo_id", id, "company", d.CompanyName, "disclosure", d.Index)
		}
	}

	if maxIndex > cursor {
		if err := s.deps.State.Set(ctx, stateKeyKAPCursor, strconv.FormatInt(maxIndex, 10)); err != nil {
			s.logger.Warn("kap cursor write failed", "error", err)
		}
	}
	return nil
}

// kapCursor reads the disclosure cursor; a missing or unreadable cursor
// starts from zero and only costs re-fetched detail pages.
func (s *Scheduler) kapCursor(ctx context.Context) int64 {
	val, ok, err := s.deps.State.Get(ctx, stateKeyKAPCursor)
	if err != nil {
		s.logger.Warn("kap cursor read failed", "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	cursor, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		s.logger.Warn("kap cursor malformed", "value", val)
		return 0
	}
	return cursor
}

// disclosureIPO builds the sparse merge input for one disclosure: company
// and code from the query row, offering terms from the detail page text.
func (s *Scheduler) disclosureIPO(ctx context.Context, d scrape.Disclosure) *model.IPO {
	scraped := &model.IPO{}
	text, err := s.deps.KAP.DisclosureDetail(ctx, d.Index)
	if err != nil {
		s.logger.Warn("disclosure detail fetch failed", "disclosure", d.Index, "error", err)
	} else {
		scraped = scrape.ExtractIPOFields(text)
	}
	scraped.CompanyName = d.CompanyName
	scraped.Ticker = d.Ticker
	return scraped
}

// pollNews scans today's disclosures for positive-signal keywords, stores
// the matches and hands them to the event stream.
func (s *Scheduler) pollNews(ctx context.Context) error {
	disclosures, err := s.deps.KAP.LatestDisclosures(ctx)
	if err != nil {
		return fmt.Errorf("news poll: %w", err)
	}

	var items []model.NewsItem
	for _, d := range disclosures {
		if d.Ticker == "" || s.deps.Dedup.Seen(d.Index) {
			continue
		}
		keyword, ok := news.Match(d.Title)
		if !ok {
			continue
		}
		items = append(items, model.NewsItem{
			Ticker:         d.Ticker,
			DisclosureID:   d.Index,
			Title:          d.Title,
			MatchedKeyword: keyword,
			SessionType:    news.SessionTypeAt(d.PublishedAt),
			Sentiment:      "positive",
			SourceURL:      d.URL,
			PublishedAt:    d.PublishedAt,
		})
	}
	if len(items) == 0 {
		return nil
	}

	inserted, err := s.deps.News.InsertNews(ctx, items)
	if err != nil {
		return fmt.Errorf("news poll: %w", err)
	}
	for i := range items {
		s.deps.Registry.NotifyNews(&items[i])
	}
	s.logger.Info("positive news matched", "matched", len(items), "inserted", inserted)
	return nil
}

// syncApplications reconciles the board's pending application table.
func (s *Scheduler) syncApplications(ctx context.Context) error {
	apps, err := s.deps.SPK.Applications(ctx)
	if err != nil {
		return fmt.Errorf("spk applications: %w", err)
	}
	// An empty scrape is indistinguishable from a page layout change, and
	// syncing it would mark every pending application approved.
	if len(apps) == 0 {
		s.logger.Warn("spk application list came back empty, skipping sync")
		return nil
	}

	scraped := make([]model.SPKApplication, 0, len(apps))
	for _, app := range apps {
		scraped = append(scraped, model.SPKApplication{
			CompanyName:     app.CompanyName,
			ApplicationDate: app.ApplicationDate,
		})
	}
	if _, err := s.deps.Apps.SyncApplications(ctx, scraped); err != nil {
		return fmt.Errorf("spk applications: %w", err)
	}
	return nil
}

// syncIssuances pulls the issuance API and fills final offering terms,
// listing dates above all, into matching offerings.
func (s *Scheduler) syncIssuances(ctx context.Context) error {
	records, err := s.deps.SPK.RecentIssuances(ctx)
	if err != nil {
		return fmt.Errorf("spk issuance: %w", err)
	}
	s.applyIssuances(ctx, records)
	return nil
}

// applyIssuances merges issuance records into tracked offerings. The list
// reaches back through last year and is dominated by long-listed names, so
// unmatched records are expected and skipped.
func (s *Scheduler) applyIssuances(ctx context.Context, records []scrape.IssuanceRecord) {
	matched := 0
	for _, rec := range records {
		scraped := &model.IPO{
			CompanyName:    rec.CompanyName,
			Ticker:         rec.Ticker,
			TradingStart:   rec.TradingStart,
			IPOPrice:       rec.IPOPrice,
			MarketSegment:  rec.MarketSegment,
			LeadBroker:     rec.LeadBroker,
			OfferingSizeTL: rec.OfferingSizeTL,
			PublicFloatPct: rec.PublicFloatPct,
		}
		ok, err := s.deps.Registry.UpdateMatched(ctx, scraped)
		if err != nil {
			s.logger.Warn("issuance update failed", "ticker", rec.Ticker, "error", err)
			continue
		}
		if ok {
			matched++
		}
	}
	if matched > 0 {
		s.logger.Info("issuance data applied", "records", len(records), "matched", matched)
	}
}

// advanceStatuses runs the date-driven lifecycle moves.
func (s *Scheduler) advanceStatuses(ctx context.Context) error {
	moved, err := s.deps.Registry.TransitionStatuses(ctx, time.Now().In(scrape.Istanbul))
	if err != nil {
		return fmt.Errorf("status transitions: %w", err)
	}
	if moved > 0 {
		s.logger.Info("statuses advanced", "count", moved)
	}
	return nil
}

// archiveExpired retires offerings whose ceiling-watch window has lapsed.
func (s *Scheduler) archiveExpired(ctx context.Context) error {
	archived, err := s.deps.Registry.ArchiveExpired(ctx, time.Now().In(scrape.Istanbul))
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if archived > 0 {
		s.logger.Info("offerings archived", "count", archived)
	}
	return nil
}

// RunHalkarz triggers the listing sync outside the cron schedule.
func (s *Scheduler) RunHalkarz(ctx context.Context) error {
	return s.syncHalkarz(ctx)
}

// RunKAP triggers the offering disclosure sync outside the cron schedule.
func (s *Scheduler) RunKAP(ctx context.Context) error {
	return s.syncKAPDisclosures(ctx)
}

// RunSPK triggers the application and issuance syncs outside the cron
// schedule. A positive year narrows the issuance fetch to that year; zero
// fetches the current and previous year.
func (s *Scheduler) RunSPK(ctx context.Context, year int) error {
	var errs []error
	if err := s.syncApplications(ctx); err != nil {
		errs = append(errs, err)
	}
	if year > 0 {
		records, err := s.deps.SPK.IssuanceData(ctx, year)
		if err != nil {
			errs = append(errs, fmt.Errorf("spk issuance: %w", err))
		} else {
			s.applyIssuances(ctx, records)
		}
	} else if err := s.syncIssuances(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RunAll runs every scrape source once, sequentially: disclosures first so
// new offerings exist before the listing site and issuance data enrich them.
// The backfill command is the caller; scheduled runs use the cron entries.
func (s *Scheduler) RunAll(ctx context.Context, year int) error {
	var errs []error
	if err := s.RunKAP(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.RunHalkarz(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.RunSPK(ctx, year); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
