package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyaraz/halkaarz/internal/model"
)

// SPKStore tracks the board application watch list.
type SPKStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewSPKStore(pool *pgxpool.Pool, logger *slog.Logger) *SPKStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SPKStore{pool: pool, logger: logger}
}

const spkColumns = `id, company_name, existing_capital, new_capital, capital_increase_paid,
	capital_increase_free, existing_share_sale, additional_share_sale, sale_price,
	application_date, notes, status, first_seen_at, updated_at`

func scanApplication(row pgx.Row) (model.SPKApplication, error) {
	var a model.SPKApplication
	err := row.Scan(
		&a.ID, &a.CompanyName, &a.ExistingCapital, &a.NewCapital, &a.CapitalIncreasePaid,
		&a.CapitalIncreaseFree, &a.ExistingShareSale, &a.AdditionalShareSale, &a.SalePrice,
		&a.ApplicationDate, &a.Notes, &a.Status, &a.FirstSeenAt, &a.UpdatedAt,
	)
	return a, err
}

// ApplicationSyncResult summarizes one reconciliation of the published list.
type ApplicationSyncResult struct {
	Created  int
	Updated  int
	Approved int
}

// SyncApplications reconciles the scraped application table against stored
// rows. New companies are inserted as pending, date changes are applied, and
// pending companies that left the list are marked approved. Rows that already
// moved past pending are never touched, so an approval or deletion survives a
// page glitch that briefly re-lists the company.
func (s *SPKStore) SyncApplications(ctx context.Context, scraped []model.SPKApplication) (ApplicationSyncResult, error) {
	var res ApplicationSyncResult

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("sync applications: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT id, company_name, application_date, status FROM spk_applications`)
	if err != nil {
		return res, fmt.Errorf("sync applications: %w", err)
	}
	type existing struct {
		id     int64
		date   *time.Time
		status string
	}
	byName := make(map[string]existing)
	for rows.Next() {
		var (
			e    existing
			name string
		)
		if err := rows.Scan(&e.id, &name, &e.date, &e.status); err != nil {
			rows.Close()
			return res, fmt.Errorf("sync applications: %w", err)
		}
		byName[name] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("sync applications: %w", err)
	}

	seen := make(map[string]bool, len(scraped))
	for _, app := range scraped {
		if app.CompanyName == "" {
			continue
		}
		seen[app.CompanyName] = true

		e, ok := byName[app.CompanyName]
		if !ok {
			if _, err := tx.Exec(ctx, `INSERT INTO spk_applications (company_name, application_date, status)
				VALUES ($1, $2, $3) ON CONFLICT (company_name) DO NOTHING`,
				app.CompanyName, app.ApplicationDate, model.ApplicationPending); err != nil {
				return res, fmt.Errorf("sync applications: insert %q: %w", app.CompanyName, err)
			}
			res.Created++
			continue
		}
		if e.status != model.ApplicationPending {
			continue
		}
		if !sameDay(e.date, app.ApplicationDate) {
			if _, err := tx.Exec(ctx, `UPDATE spk_applications SET application_date = $1, updated_at = now() WHERE id = $2`,
				app.ApplicationDate, e.id); err != nil {
				return res, fmt.Errorf("sync applications: update %q: %w", app.CompanyName, err)
			}
			res.Updated++
		}
	}

	for name, e := range byName {
		if seen[name] || e.status != model.ApplicationPending {
			continue
		}
		if _, err := tx.Exec(ctx, `UPDATE spk_applications SET status = $1, updated_at = now() WHERE id = $2`,
			model.ApplicationApproved, e.id); err != nil {
			return res, fmt.Errorf("sync applications: approve %q: %w", name, err)
		}
		res.Approved++
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("sync applications: %w", err)
	}
	if res.Created+res.Updated+res.Approved > 0 {
		s.logger.Info("spk applications synced",
			"created", res.Created, "updated", res.Updated, "approved", res.Approved)
	}
	return res, nil
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return model.Midnight(*a).Equal(model.Midnight(*b))
}

// ListApplications returns the watch list, optionally filtered by status,
// newest application first.
func (s *SPKStore) ListApplications(ctx context.Context, status string) ([]model.SPKApplication, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = s.pool.Query(ctx,
			`SELECT `+spkColumns+` FROM spk_applications ORDER BY application_date DESC NULLS LAST, id DESC`)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+spkColumns+` FROM spk_applications WHERE status = $1 ORDER BY application_date DESC NULLS LAST, id DESC`, status)
	}
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []model.SPKApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
