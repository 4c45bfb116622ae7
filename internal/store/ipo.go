package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyaraz/halkaarz/internal/model"
)

// IPOStore reads and writes offerings and their child tables.
type IPOStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIPOStore(pool *pgxpool.Pool, logger *slog.Logger) *IPOStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &IPOStore{pool: pool, logger: logger}
}

const ipoColumns = `id, company_name, normalized_name, ticker, logo_url, status, archived, archived_at,
	ipo_price, total_lots, offering_size_tl, capital_increase_lots, partner_sale_lots,
	subscription_start, subscription_end, subscription_hours, trading_start, spk_approval_date,
	distribution_method, public_float_pct, discount_pct, market_segment, lead_broker,
	lock_up_period_days, price_stability_days, min_application_lot, estimated_lots_per_person,
	description, sector, fund_usage, revenue_current_year, revenue_previous_year, gross_profit,
	kap_notification_url, prospectus_url, spk_bulletin_url, allocation_announced, total_applicants,
	ceiling_tracking_active, first_day_close_price, ceiling_broken, ceiling_broken_at,
	created_at, updated_at`

const ipoSummaryColumns = `id, company_name, ticker, logo_url, status, ipo_price, total_lots,
	offering_size_tl, subscription_start, subscription_end, trading_start,
	distribution_method, market_segment, lead_broker, public_float_pct, discount_pct, ceiling_broken`

func scanIPO(row pgx.Row) (*model.IPO, error) {
	var i model.IPO
	err := row.Scan(
		&i.ID, &i.CompanyName, &i.NormalizedName, &i.Ticker, &i.LogoURL, &i.Status, &i.Archived, &i.ArchivedAt,
		&i.IPOPrice, &i.TotalLots, &i.OfferingSizeTL, &i.CapitalIncreaseLots, &i.PartnerSaleLots,
		&i.SubscriptionStart, &i.SubscriptionEnd, &i.SubscriptionHours, &i.TradingStart, &i.SPKApprovalDate,
		&i.DistributionMethod, &i.PublicFloatPct, &i.DiscountPct, &i.MarketSegment, &i.LeadBroker,
		&i.LockUpPeriodDays, &i.PriceStabilityDays, &i.MinApplicationLot, &i.EstimatedLotsPerPerson,
		&i.Description, &i.Sector, &i.FundUsage, &i.RevenueCurrentYear, &i.RevenuePreviousYear, &i.GrossProfit,
		&i.KAPNotificationURL, &i.ProspectusURL, &i.SPKBulletinURL, &i.AllocationAnnounced, &i.TotalApplicants,
		&i.CeilingTrackingActive, &i.FirstDayClosePrice, &i.CeilingBroken, &i.CeilingBrokenAt,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func scanIPOSummary(row pgx.Row) (model.IPOSummary, error) {
	var s model.IPOSummary
	err := row.Scan(
		&s.ID, &s.CompanyName, &s.Ticker, &s.LogoURL, &s.Status, &s.IPOPrice, &s.TotalLots,
		&s.OfferingSizeTL, &s.SubscriptionStart, &s.SubscriptionEnd, &s.TradingStart,
		&s.DistributionMethod, &s.MarketSegment, &s.LeadBroker, &s.PublicFloatPct, &s.DiscountPct, &s.CeilingBroken,
	)
	return s, err
}

func collectSummaries(rows pgx.Rows) ([]model.IPOSummary, error) {
	defer rows.Close()
	var out []model.IPOSummary
	for rows.Next() {
		s, err := scanIPOSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListFilter narrows ListIPOs. Zero values mean no filter; Limit is clamped
// to 1..100 and defaults to 50. Status "archived" selects archived rows,
// which no other filter returns.
type ListFilter struct {
	Status string
	Year   int
	Limit  int
	Offset int
}

func (f ListFilter) normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// offeringDate orders listings by the most meaningful date the row has.
const offeringDate = `COALESCE(trading_start, subscription_start, created_at)`

// ListIPOs returns offerings newest first.
func (s *IPOStore) ListIPOs(ctx context.Context, f ListFilter) ([]model.IPOSummary, error) {
	f = f.normalize()

	var (
		where []string
		args  []any
	)
	switch f.Status {
	case "":
		where = append(where, "NOT archived")
	case "archived":
		where = append(where, "archived")
	default:
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)), "NOT archived")
	}
	if f.Year > 0 {
		args = append(args, f.Year)
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM %s) = $%d", offeringDate, len(args)))
	}
	args = append(args, f.Limit, f.Offset)

	query := fmt.Sprintf(`SELECT %s FROM ipos WHERE %s ORDER BY %s DESC, id DESC LIMIT $%d OFFSET $%d`,
		ipoSummaryColumns, strings.Join(where, " AND "), offeringDate, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ipos: %w", err)
	}
	out, err := collectSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("list ipos: %w", err)
	}
	return out, nil
}

// GetIPO loads one offering with its brokers, allocations and ceiling tracks.
func (s *IPOStore) GetIPO(ctx context.Context, id int64) (*model.IPO, error) {
	ipo, err := scanIPO(s.pool.QueryRow(ctx, `SELECT `+ipoColumns+` FROM ipos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ipo %d: %w", id, err)
	}

	if ipo.Brokers, err = s.listBrokers(ctx, id); err != nil {
		return nil, err
	}
	if ipo.Allocations, err = s.listAllocations(ctx, id); err != nil {
		return nil, err
	}
	if ipo.CeilingTracks, err = s.listCeilingTracks(ctx, id); err != nil {
		return nil, err
	}
	return ipo, nil
}

func (s *IPOStore) listBrokers(ctx context.Context, ipoID int64) ([]model.IPOBroker, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, ipo_id, broker_name, broker_type, application_url, phone, is_rejected
		FROM ipo_brokers WHERE ipo_id = $1 ORDER BY broker_name`, ipoID)
	if err != nil {
		return nil, fmt.Errorf("list brokers: %w", err)
	}
	defer rows.Close()

	var out []model.IPOBroker
	for rows.Next() {
		var b model.IPOBroker
		if err := rows.Scan(&b.ID, &b.IPOID, &b.BrokerName, &b.BrokerType, &b.ApplicationURL, &b.Phone, &b.IsRejected); err != nil {
			return nil, fmt.Errorf("list brokers: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *IPOStore) listAllocations(ctx context.Context, ipoID int64) ([]model.IPOAllocation, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, ipo_id, group_name, allocation_pct, allocated_lots, participant_count, avg_lot_per_person
		FROM ipo_allocations WHERE ipo_id = $1 ORDER BY group_name`, ipoID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var out []model.IPOAllocation
	for rows.Next() {
		var a model.IPOAllocation
		if err := rows.Scan(&a.ID, &a.IPOID, &a.GroupName, &a.AllocationPct, &a.AllocatedLots, &a.ParticipantCount, &a.AvgLotPerPerson); err != nil {
			return nil, fmt.Errorf("list allocations: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *IPOStore) listCeilingTracks(ctx context.Context, ipoID int64) ([]model.IPOCeilingTrack, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, ipo_id, trading_day, trade_date, close_price, hit_ceiling, ceiling_broken_at, relocked
		FROM ipo_ceiling_tracks WHERE ipo_id = $1 ORDER BY trading_day`, ipoID)
	if err != nil {
		return nil, fmt.Errorf("list ceiling tracks: %w", err)
	}
	defer rows.Close()

	var out []model.IPOCeilingTrack
	for rows.Next() {
		var t model.IPOCeilingTrack
		if err := rows.Scan(&t.ID, &t.IPOID, &t.TradingDay, &t.TradeDate, &t.ClosePrice, &t.HitCeiling, &t.CeilingBrokenAt, &t.Relocked); err != nil {
			return nil, fmt.Errorf("list ceiling tracks: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Sections loads the three home screen buckets: announced offerings newest
// approval first, open subscriptions closing soonest first, recent listings
// newest first.
func (s *IPOStore) Sections(ctx context.Context) (*model.Sections, error) {
	var (
		sections model.Sections
		err      error
	)
	sections.Announced, err = s.querySummaries(ctx, fmt.Sprintf(
		`SELECT %s FROM ipos WHERE NOT archived AND status = $1
		 ORDER BY COALESCE(spk_approval_date, created_at) DESC, id DESC`, ipoSummaryColumns),
		model.StatusNewlyApproved)
	if err != nil {
		return nil, fmt.Errorf("sections announced: %w", err)
	}
	sections.InSubscription, err = s.querySummaries(ctx, fmt.Sprintf(
		`SELECT %s FROM ipos WHERE NOT archived AND status = $1
		 ORDER BY subscription_end ASC NULLS LAST, id`, ipoSummaryColumns),
		model.StatusInDistribution)
	if err != nil {
		return nil, fmt.Errorf("sections in_subscription: %w", err)
	}
	sections.RecentlyTrading, err = s.querySummaries(ctx, fmt.Sprintf(
		`SELECT %s FROM ipos WHERE NOT archived AND status = ANY($1)
		 ORDER BY COALESCE(trading_start, subscription_end) DESC NULLS LAST, id DESC`, ipoSummaryColumns),
		[]string{model.StatusAwaitingTrading, model.StatusTrading})
	if err != nil {
		return nil, fmt.Errorf("sections recently_trading: %w", err)
	}
	return &sections, nil
}

func (s *IPOStore) querySummaries(ctx context.Context, query string, args ...any) ([]model.IPOSummary, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

// CreateIPO inserts a new offering keyed on its normalized company name.
// When another source already created the company the existing row is left
// untouched and its ID returned with created=false; merging fresher fields
// into it is the caller's job.
func (s *IPOStore) CreateIPO(ctx context.Context, ipo *model.IPO) (int64, bool, error) {
	if ipo.NormalizedName == "" {
		return 0, false, fmt.Errorf("create ipo: empty normalized name")
	}
	if ipo.Status == "" {
		ipo.Status = model.StatusNewlyApproved
	}

	var id int64
	err := s.pool.QueryRow(ctx, `INSERT INTO ipos (
			company_name, normalized_name, ticker, logo_url, status,
			ipo_price, total_lots, offering_size_tl, capital_increase_lots, partner_sale_lots,
			subscription_start, subscription_end, subscription_hours, trading_start, spk_approval_date,
			distribution_method, public_float_pct, discount_pct, market_segment, lead_broker,
			lock_up_period_days, price_stability_days, min_application_lot, estimated_lots_per_person,
			description, sector, fund_usage, revenue_current_year, revenue_previous_year, gross_profit,
			kap_notification_url, prospectus_url, spk_bulletin_url
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33
		) ON CONFLICT (normalized_name) DO NOTHING RETURNING id`,
		ipo.CompanyName, ipo.NormalizedName, ipo.Ticker, ipo.LogoURL, ipo.Status,
		ipo.IPOPrice, ipo.TotalLots, ipo.OfferingSizeTL, ipo.CapitalIncreaseLots, ipo.PartnerSaleLots,
		ipo.SubscriptionStart, ipo.SubscriptionEnd, ipo.SubscriptionHours, ipo.TradingStart, ipo.SPKApprovalDate,
		ipo.DistributionMethod, ipo.PublicFloatPct, ipo.DiscountPct, ipo.MarketSegment, ipo.LeadBroker,
		ipo.LockUpPeriodDays, ipo.PriceStabilityDays, ipo.MinApplicationLot, ipo.EstimatedLotsPerPerson,
		ipo.Description, ipo.Sector, ipo.FundUsage, ipo.RevenueCurrentYear, ipo.RevenuePreviousYear, ipo.GrossProfit,
		ipo.KAPNotificationURL, ipo.ProspectusURL, ipo.SPKBulletinURL,
	).Scan(&id)
	if err == nil {
		s.logger.Info("ipo created", "id", id, "company", ipo.CompanyName)
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("create ipo %q: %w", ipo.CompanyName, err)
	}

	err = s.pool.QueryRow(ctx, `SELECT id FROM ipos WHERE normalized_name = $1`, ipo.NormalizedName).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("create ipo %q: resolve conflict: %w", ipo.CompanyName, err)
	}
	return id, false, nil
}

var ipoUpdateColumns = map[string]bool{
	"company_name": true, "ticker": true, "logo_url": true, "status": true,
	"archived": true, "archived_at": true,
	"ipo_price": true, "total_lots": true, "offering_size_tl": true,
	"capital_increase_lots": true, "partner_sale_lots": true,
	"subscription_start": true, "subscription_end": true, "subscription_hours": true,
	"trading_start": true, "spk_approval_date": true,
	"distribution_method": true, "public_float_pct": true, "discount_pct": true,
	"market_segment": true, "lead_broker": true,
	"lock_up_period_days": true, "price_stability_days": true,
	"min_application_lot": true, "estimated_lots_per_person": true,
	"description": true, "sector": true, "fund_usage": true,
	"revenue_current_year": true, "revenue_previous_year": true, "gross_profit": true,
	"kap_notification_url": true, "prospectus_url": true, "spk_bulletin_url": true,
	"allocation_announced": true, "total_applicants": true,
	"ceiling_tracking_active": true, "first_day_close_price": true,
	"ceiling_broken": true, "ceiling_broken_at": true,
}

// UpdateFields applies a partial update. The caller decides which columns
// change; scraped values must never blank out fields another source filled,
// so only send a column when it carries real data.
func (s *IPOStore) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	query, args, err := buildUpdate("ipos", "id", id, ipoUpdateColumns, fields)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update ipo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceBrokers swaps the full consortium list for an offering.
func (s *IPOStore) ReplaceBrokers(ctx context.Context, ipoID int64, brokers []model.IPOBroker) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace brokers: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ipo_brokers WHERE ipo_id = $1`, ipoID); err != nil {
		return fmt.Errorf("replace brokers: %w", err)
	}
	if len(brokers) > 0 {
		b := &pgx.Batch{}
		for _, br := range brokers {
			b.Queue(`INSERT INTO ipo_brokers (ipo_id, broker_name, broker_type, application_url, phone, is_rejected)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (ipo_id, broker_name) DO NOTHING`,
				ipoID, br.BrokerName, br.BrokerType, br.ApplicationURL, br.Phone, br.IsRejected)
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("replace brokers: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// ReplaceAllocations swaps the published distribution results.
func (s *IPOStore) ReplaceAllocations(ctx context.Context, ipoID int64, allocs []model.IPOAllocation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace allocations: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ipo_allocations WHERE ipo_id = $1`, ipoID); err != nil {
		return fmt.Errorf("replace allocations: %w", err)
	}
	if len(allocs) > 0 {
		b := &pgx.Batch{}
		for _, a := range allocs {
			b.Queue(`INSERT INTO ipo_allocations (ipo_id, group_name, allocation_pct, allocated_lots, participant_count, avg_lot_per_person)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (ipo_id, group_name) DO NOTHING`,
				ipoID, a.GroupName, a.AllocationPct, a.AllocatedLots, a.ParticipantCount, a.AvgLotPerPerson)
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("replace allocations: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// MarkAllocationAnnounced flips the announcement flag once. Returns true the
// first time so the caller can emit the event exactly once.
func (s *IPOStore) MarkAllocationAnnounced(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ipos SET allocation_announced = TRUE, updated_at = now() WHERE id = $1 AND NOT allocation_announced`, id)
	if err != nil {
		return false, fmt.Errorf("mark allocation announced %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpsertCeilingTrack records one trading day, keyed on (ipo, trading day).
// Re-submissions update the close; the first ceiling_broken_at ever set wins.
func (s *IPOStore) UpsertCeilingTrack(ctx context.Context, t *model.IPOCeilingTrack) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO ipo_ceiling_tracks
			(ipo_id, trading_day, trade_date, close_price, hit_ceiling, ceiling_broken_at, relocked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ipo_id, trading_day) DO UPDATE SET
			trade_date        = EXCLUDED.trade_date,
			close_price       = EXCLUDED.close_price,
			hit_ceiling       = EXCLUDED.hit_ceiling,
			ceiling_broken_at = COALESCE(ipo_ceiling_tracks.ceiling_broken_at, EXCLUDED.ceiling_broken_at),
			relocked          = EXCLUDED.relocked`,
		t.IPOID, t.TradingDay, t.TradeDate, t.ClosePrice, t.HitCeiling, t.CeilingBrokenAt, t.Relocked)
	if err != nil {
		return fmt.Errorf("upsert ceiling track ipo %d day %d: %w", t.IPOID, t.TradingDay, err)
	}
	return nil
}

// StatusTransition is one applied lifecycle move.
type StatusTransition struct {
	IPO  model.IPOSummary
	From string
	To   string
}

// TransitionStatuses advances every offering whose published dates say it
// should be further along. Moves are forward-only; entering trading also arms
// ceiling tracking.
func (s *IPOStore) TransitionStatuses(ctx context.Context, today time.Time) ([]StatusTransition, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+ipoColumns+` FROM ipos WHERE NOT archived`)
	if err != nil {
		return nil, fmt.Errorf("transition statuses: %w", err)
	}
	var ipos []*model.IPO
	for rows.Next() {
		ipo, err := scanIPO(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("transition statuses: %w", err)
		}
		ipos = append(ipos, ipo)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transition statuses: %w", err)
	}

	var (
		out []StatusTransition
		b   = &pgx.Batch{}
	)
	for _, ipo := range ipos {
		next, moved := model.NextStatus(ipo, today)
		if !moved {
			continue
		}
		if next == model.StatusTrading {
			b.Queue(`UPDATE ipos SET status = $1, ceiling_tracking_active = TRUE, updated_at = now() WHERE id = $2`, next, ipo.ID)
		} else {
			b.Queue(`UPDATE ipos SET status = $1, updated_at = now() WHERE id = $2`, next, ipo.ID)
		}
		sum := ipo.Summary()
		from := sum.Status
		sum.Status = next
		out = append(out, StatusTransition{IPO: sum, From: from, To: next})
	}
	if len(out) == 0 {
		return nil, nil
	}
	if err := s.pool.SendBatch(ctx, b).Close(); err != nil {
		return nil, fmt.Errorf("transition statuses: %w", err)
	}
	for _, tr := range out {
		s.logger.Info("status advanced", "id", tr.IPO.ID, "company", tr.IPO.CompanyName, "from", tr.From, "to", tr.To)
	}
	return out, nil
}

// ArchiveExpired drops offerings from public listings once they have traded
// past the archive cutoff and returns what it archived.
func (s *IPOStore) ArchiveExpired(ctx context.Context, today time.Time) ([]model.IPOSummary, error) {
	cutoff := model.Midnight(today).AddDate(0, 0, -model.ArchiveAfterDays)
	rows, err := s.pool.Query(ctx, `UPDATE ipos
		SET archived = TRUE, archived_at = now(), ceiling_tracking_active = FALSE, updated_at = now()
		WHERE NOT archived AND trading_start IS NOT NULL AND trading_start <= $1
		RETURNING `+ipoSummaryColumns, cutoff)
	if err != nil {
		return nil, fmt.Errorf("archive expired: %w", err)
	}
	out, err := collectSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("archive expired: %w", err)
	}
	for _, sum := range out {
		s.logger.Info("ipo archived", "id", sum.ID, "company", sum.CompanyName)
	}
	return out, nil
}

// ActiveIPOs loads every non-archived offering without relations, newest
// last, for the registry's cache.
func (s *IPOStore) ActiveIPOs(ctx context.Context) ([]*model.IPO, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+ipoColumns+` FROM ipos WHERE NOT archived ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("active ipos: %w", err)
	}
	defer rows.Close()

	var out []*model.IPO
	for rows.Next() {
		ipo, err := scanIPO(rows)
		if err != nil {
			return nil, fmt.Errorf("active ipos: %w", err)
		}
		out = append(out, ipo)
	}
	return out, rows.Err()
}

// LastDayIPOs returns open subscriptions whose window closes on the given
// calendar day.
func (s *IPOStore) LastDayIPOs(ctx context.Context, day time.Time) ([]model.IPOSummary, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM ipos WHERE NOT archived AND status = $1 AND subscription_end = $2::date ORDER BY id`,
		ipoSummaryColumns),
		model.StatusInDistribution, model.Midnight(day))
	if err != nil {
		return nil, fmt.Errorf("last day ipos: %w", err)
	}
	out, err := collectSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("last day ipos: %w", err)
	}
	return out, nil
}
