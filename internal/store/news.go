package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyaraz/halkaarz/internal/model"
)

// NewsStore persists filtered disclosures.
type NewsStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewNewsStore(pool *pgxpool.Pool, logger *slog.Logger) *NewsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsStore{pool: pool, logger: logger}
}

const newsColumns = `id, ticker, disclosure_id, price_at_time, title, detail, matched_keyword,
	session_type, sentiment, raw_text, source_url, published_at, created_at`

func scanNews(row pgx.Row) (model.NewsItem, error) {
	var n model.NewsItem
	err := row.Scan(
		&n.ID, &n.Ticker, &n.DisclosureID, &n.PriceAtTime, &n.Title, &n.Detail, &n.MatchedKeyword,
		&n.SessionType, &n.Sentiment, &n.RawText, &n.SourceURL, &n.PublishedAt, &n.CreatedAt,
	)
	return n, err
}

// InsertNews batch-inserts matched disclosures and reports how many were new.
// The unique index on disclosure_id absorbs anything the poll loop already
// handled; conflicts are counted, not errors.
func (s *NewsStore) InsertNews(ctx context.Context, items []model.NewsItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, n := range items {
		sentiment := n.Sentiment
		if sentiment == "" {
			sentiment = "positive"
		}
		b.Queue(`INSERT INTO news_items
				(ticker, disclosure_id, price_at_time, title, detail, matched_keyword,
				 session_type, sentiment, raw_text, source_url, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (disclosure_id) DO NOTHING`,
			n.Ticker, n.DisclosureID, n.PriceAtTime, n.Title, n.Detail, n.MatchedKeyword,
			n.SessionType, sentiment, n.RawText, n.SourceURL, n.PublishedAt)
	}

	br := s.pool.SendBatch(ctx, b)
	defer br.Close()

	inserted := 0
	for range items {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert news: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if dup := len(items) - inserted; dup > 0 {
		s.logger.Debug("duplicate disclosures skipped", "count", dup)
	}
	return inserted, nil
}

// LatestNews returns the newest items, default 20, capped at 100.
func (s *NewsStore) LatestNews(ctx context.Context, limit int) ([]model.NewsItem, error) {
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+newsColumns+` FROM news_items ORDER BY published_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("latest news: %w", err)
	}
	return collectNews(rows)
}

// NewsFilter narrows ListNews. Zero values mean no filter.
type NewsFilter struct {
	Ticker      string
	SessionType string
	Limit       int
	Offset      int
}

// ListNews returns filtered items newest first.
func (s *NewsStore) ListNews(ctx context.Context, f NewsFilter) ([]model.NewsItem, error) {
	if f.Limit <= 0 {
		f.Limit = defaultNewsLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := []string{"TRUE"}
	var args []any
	if f.Ticker != "" {
		args = append(args, strings.ToUpper(f.Ticker))
		where = append(where, fmt.Sprintf("ticker = $%d", len(args)))
	}
	if f.SessionType != "" {
		args = append(args, f.SessionType)
		where = append(where, fmt.Sprintf("session_type = $%d", len(args)))
	}
	args = append(args, f.Limit, f.Offset)

	query := fmt.Sprintf(`SELECT %s FROM news_items WHERE %s ORDER BY published_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		newsColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return collectNews(rows)
}

func collectNews(rows pgx.Rows) ([]model.NewsItem, error) {
	defer rows.Close()
	var out []model.NewsItem
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// SeenDisclosureIDs returns the disclosure IDs stored since the given time,
// used to prime the poll loop's dedup set after a restart.
func (s *NewsStore) SeenDisclosureIDs(ctx context.Context, since time.Time) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT disclosure_id FROM news_items WHERE created_at >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("seen disclosure ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("seen disclosure ids: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
