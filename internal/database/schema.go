package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema. Every statement is idempotent so the migration
// can run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w\n%s", err, stmt)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ipos (
		id                        BIGSERIAL PRIMARY KEY,
		company_name              TEXT NOT NULL,
		normalized_name           TEXT NOT NULL UNIQUE,
		ticker                    TEXT NOT NULL DEFAULT '',
		logo_url                  TEXT NOT NULL DEFAULT '',
		status                    TEXT NOT NULL DEFAULT 'newly_approved',
		archived                  BOOLEAN NOT NULL DEFAULT FALSE,
		archived_at               TIMESTAMPTZ,
		ipo_price                 NUMERIC(12,2),
		total_lots                BIGINT,
		offering_size_tl          NUMERIC(18,2),
		capital_increase_lots     BIGINT,
		partner_sale_lots         BIGINT,
		subscription_start        DATE,
		subscription_end          DATE,
		subscription_hours        TEXT NOT NULL DEFAULT '',
		trading_start             DATE,
		spk_approval_date         DATE,
		distribution_method       TEXT NOT NULL DEFAULT '',
		public_float_pct          NUMERIC(5,2),
		discount_pct              NUMERIC(5,2),
		market_segment            TEXT NOT NULL DEFAULT '',
		lead_broker               TEXT NOT NULL DEFAULT '',
		lock_up_period_days       INTEGER,
		price_stability_days      INTEGER,
		min_application_lot       INTEGER,
		estimated_lots_per_person NUMERIC(12,2),
		description               TEXT NOT NULL DEFAULT '',
		sector                    TEXT NOT NULL DEFAULT '',
		fund_usage                TEXT NOT NULL DEFAULT '',
		revenue_current_year      NUMERIC(18,2),
		revenue_previous_year     NUMERIC(18,2),
		gross_profit              NUMERIC(18,2),
		kap_notification_url      TEXT NOT NULL DEFAULT '',
		prospectus_url            TEXT NOT NULL DEFAULT '',
		spk_bulletin_url          TEXT NOT NULL DEFAULT '',
		allocation_announced      BOOLEAN NOT NULL DEFAULT FALSE,
		total_applicants          BIGINT,
		ceiling_tracking_active   BOOLEAN NOT NULL DEFAULT FALSE,
		first_day_close_price     NUMERIC(12,2),
		ceiling_broken            BOOLEAN NOT NULL DEFAULT FALSE,
		ceiling_broken_at         TIMESTAMPTZ,
		created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at                TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ipos_status ON ipos (status) WHERE NOT archived`,
	`CREATE INDEX IF NOT EXISTS idx_ipos_ticker ON ipos (ticker) WHERE ticker <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_ipos_trading_start ON ipos (trading_start)`,

	`CREATE TABLE IF NOT EXISTS ipo_brokers (
		id              BIGSERIAL PRIMARY KEY,
		ipo_id          BIGINT NOT NULL REFERENCES ipos(id) ON DELETE CASCADE,
		broker_name     TEXT NOT NULL,
		broker_type     TEXT NOT NULL DEFAULT '',
		application_url TEXT NOT NULL DEFAULT '',
		phone           TEXT NOT NULL DEFAULT '',
		is_rejected     BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (ipo_id, broker_name)
	)`,

	`CREATE TABLE IF NOT EXISTS ipo_allocations (
		id                 BIGSERIAL PRIMARY KEY,
		ipo_id             BIGINT NOT NULL REFERENCES ipos(id) ON DELETE CASCADE,
		group_name         TEXT NOT NULL,
		allocation_pct     NUMERIC(5,2),
		allocated_lots     BIGINT,
		participant_count  BIGINT,
		avg_lot_per_person NUMERIC(12,2),
		UNIQUE (ipo_id, group_name)
	)`,

	`CREATE TABLE IF NOT EXISTS ipo_ceiling_tracks (
		id                BIGSERIAL PRIMARY KEY,
		ipo_id            BIGINT NOT NULL REFERENCES ipos(id) ON DELETE CASCADE,
		trading_day       INTEGER NOT NULL,
		trade_date        DATE NOT NULL,
		close_price       NUMERIC(12,2),
		hit_ceiling       BOOLEAN NOT NULL,
		ceiling_broken_at TIMESTAMPTZ,
		relocked          BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (ipo_id, trading_day)
	)`,

	`CREATE TABLE IF NOT EXISTS news_items (
		id              BIGSERIAL PRIMARY KEY,
		ticker          TEXT NOT NULL DEFAULT '',
		disclosure_id   BIGINT NOT NULL UNIQUE,
		price_at_time   NUMERIC(12,2),
		title           TEXT NOT NULL,
		detail          TEXT NOT NULL DEFAULT '',
		matched_keyword TEXT NOT NULL DEFAULT '',
		session_type    TEXT NOT NULL,
		sentiment       TEXT NOT NULL DEFAULT 'positive',
		raw_text        TEXT NOT NULL DEFAULT '',
		source_url      TEXT NOT NULL DEFAULT '',
		published_at    TIMESTAMPTZ NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_news_published_at ON news_items (published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_news_ticker ON news_items (ticker) WHERE ticker <> ''`,

	`CREATE TABLE IF NOT EXISTS spk_applications (
		id                    BIGSERIAL PRIMARY KEY,
		company_name          TEXT NOT NULL UNIQUE,
		existing_capital      NUMERIC(18,2),
		new_capital           NUMERIC(18,2),
		capital_increase_paid NUMERIC(18,2),
		capital_increase_free NUMERIC(18,2),
		existing_share_sale   NUMERIC(18,2),
		additional_share_sale NUMERIC(18,2),
		sale_price            NUMERIC(12,2),
		application_date      DATE,
		notes                 TEXT NOT NULL DEFAULT '',
		status                TEXT NOT NULL DEFAULT 'pending',
		first_seen_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS devices (
		id                        UUID PRIMARY KEY,
		device_key                TEXT NOT NULL UNIQUE,
		fcm_token                 TEXT NOT NULL DEFAULT '',
		expo_token                TEXT NOT NULL DEFAULT '',
		platform                  TEXT NOT NULL DEFAULT '',
		app_version               TEXT NOT NULL DEFAULT '',
		notifications_enabled     BOOLEAN NOT NULL DEFAULT TRUE,
		notify_new_ipo            BOOLEAN NOT NULL DEFAULT TRUE,
		notify_subscription_start BOOLEAN NOT NULL DEFAULT TRUE,
		notify_last_day           BOOLEAN NOT NULL DEFAULT TRUE,
		notify_result             BOOLEAN NOT NULL DEFAULT TRUE,
		notify_ceiling_break      BOOLEAN NOT NULL DEFAULT TRUE,
		notify_first_trading_day  BOOLEAN NOT NULL DEFAULT TRUE,
		remind_30min              BOOLEAN NOT NULL DEFAULT FALSE,
		remind_1h                 BOOLEAN NOT NULL DEFAULT TRUE,
		remind_2h                 BOOLEAN NOT NULL DEFAULT FALSE,
		remind_4h                 BOOLEAN NOT NULL DEFAULT FALSE,
		created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at                TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS device_alerts (
		device_id       UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		ipo_id          BIGINT NOT NULL REFERENCES ipos(id) ON DELETE CASCADE,
		notify_last_day BOOLEAN NOT NULL DEFAULT TRUE,
		notify_result   BOOLEAN NOT NULL DEFAULT TRUE,
		notify_ceiling  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (device_id, ipo_id)
	)`,

	`CREATE TABLE IF NOT EXISTS scraper_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}
