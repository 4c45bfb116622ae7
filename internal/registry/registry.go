package registry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/store"
)

// ChangeBufferSize is the capacity of the event channel.
const ChangeBufferSize = 1000

// Lookup failures for scrape paths that target a specific offering.
var (
	ErrUnknownIPO    = errors.New("registry: unknown ipo")
	ErrUnknownTicker = errors.New("registry: unknown ticker")
)

// Registry is the in-memory view of every live offering. Scrape jobs write
// through it so that persistence, the cache and event fan-out stay in one
// place; consumers read the cache without touching the database.
type Registry interface {
	// Start loads the cache from the store (blocking) and begins background
	// reconciliation.
	Start(ctx context.Context) error

	// Stop gracefully shuts down.
	Stop(ctx context.Context) error

	// Upsert matches scraped data to a known offering by company name or
	// ticker and merges into it, creating a new offering when nothing
	// matches. Returns the offering ID and whether it was created.
	Upsert(ctx context.Context, scraped *model.IPO) (int64, bool, error)

	// Update merges scraped data into one specific offering.
	Update(ctx context.Context, id int64, scraped *model.IPO) error

	// UpdateMatched merges scraped data into an existing match and reports
	// whether one was found. Unknown companies are skipped, not created.
	UpdateMatched(ctx context.Context, scraped *model.IPO) (bool, error)

	// TransitionStatuses advances date-driven lifecycle statuses and emits a
	// status_change event per move.
	TransitionStatuses(ctx context.Context, today time.Time) (int, error)

	// ArchiveExpired drops long-trading offerings from the cache and all
	// public listings.
	ArchiveExpired(ctx context.Context, today time.Time) (int, error)

	// RecordCeilingTrack stores one post-listing trading day for the ticker
	// and flips the offering's ceiling state when the streak ends.
	RecordCeilingTrack(ctx context.Context, ticker string, day int, date time.Time, closePrice decimal.Decimal, hitCeiling bool) (*CeilingResult, error)

	// NotifyNews publishes a stored news item to event consumers.
	NotifyNews(item *model.NewsItem)

	// Get returns one cached offering by ID.
	Get(id int64) (model.IPO, bool)

	// FindByTicker returns one cached offering by its BIST code.
	FindByTicker(ticker string) (model.IPO, bool)

	// Active returns every cached offering, ordered by ID.
	Active() []model.IPO

	// Changes returns the event channel. The buffer drops oldest on
	// overflow, so a slow consumer never blocks a scrape job.
	Changes() <-chan model.Event

	// Stats reports cache size and the last successful sync for health
	// checks.
	Stats() Stats
}

// Stats is a point-in-time snapshot of the cache.
type Stats struct {
	IPOs       int
	LastSyncAt time.Time
}

// CeilingResult is the outcome of recording one ceiling day.
type CeilingResult struct {
	IPO      model.IPOSummary
	Track    model.IPOCeilingTrack
	Broken   bool // this submission ended the streak
	Relocked bool // closed at the limit again after a break
}

// Store is the persistence surface the registry writes through.
// *store.IPOStore satisfies it.
type Store interface {
	ActiveIPOs(ctx context.Context) ([]*model.IPO, error)
	GetIPO(ctx context.Context, id int64) (*model.IPO, error)
	CreateIPO(ctx context.Context, ipo *model.IPO) (int64, bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	ReplaceBrokers(ctx context.Context, ipoID int64, brokers []model.IPOBroker) error
	ReplaceAllocations(ctx context.Context, ipoID int64, allocs []model.IPOAllocation) error
	MarkAllocationAnnounced(ctx context.Context, id int64) (bool, error)
	UpsertCeilingTrack(ctx context.Context, t *model.IPOCeilingTrack) error
	TransitionStatuses(ctx context.Context, today time.Time) ([]store.StatusTransition, error)
	ArchiveExpired(ctx context.Context, today time.Time) ([]model.IPOSummary, error)
}
