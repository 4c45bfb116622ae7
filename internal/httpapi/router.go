package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/registry"
	"github.com/kyaraz/halkaarz/internal/store"
)

// IPOReader serves the offering read endpoints. *store.IPOStore satisfies it.
type IPOReader interface {
	Sections(ctx context.Context) (*model.Sections, error)
	ListIPOs(ctx context.Context, f store.ListFilter) ([]model.IPOSummary, error)
	GetIPO(ctx context.Context, id int64) (*model.IPO, error)
}

// NewsReader serves the news read endpoints. *store.NewsStore satisfies it.
type NewsReader interface {
	LatestNews(ctx context.Context, limit int) ([]model.NewsItem, error)
	ListNews(ctx context.Context, f store.NewsFilter) ([]model.NewsItem, error)
}

// DeviceStore handles device registration, preference updates and per-offering
// alerts. *store.DeviceStore satisfies it.
type DeviceStore interface {
	RegisterDevice(ctx context.Context, d *model.Device) (*model.Device, bool, error)
	GetDevice(ctx context.Context, deviceKey string) (*model.Device, error)
	UpdateDevice(ctx context.Context, deviceKey string, fields map[string]any) (*model.Device, error)
	UpsertAlert(ctx context.Context, a model.DeviceAlert) error
	DeleteAlert(ctx context.Context, deviceID uuid.UUID, ipoID int64) error
}

// CeilingRegistry accepts end-of-day ceiling submissions and reports cache
// health. registry.Registry satisfies it.
type CeilingRegistry interface {
	RecordCeilingTrack(ctx context.Context, ticker string, day int, date time.Time, closePrice decimal.Decimal, hitCeiling bool) (*registry.CeilingResult, error)
	Stats() registry.Stats
}

// StreamHub upgrades websocket clients. *stream.Hub satisfies it.
type StreamHub interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
	ClientCount() int
}

// Pinger reports database liveness. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobRunner reports whether the cron layer is up. *sched.Scheduler satisfies
// it.
type JobRunner interface {
	Running() bool
}

// Deps collects every collaborator the handlers touch.
type Deps struct {
	IPOs     IPOReader
	News     NewsReader
	Devices  DeviceStore
	Registry CeilingRegistry
	Hub      StreamHub
	DB       Pinger
	Jobs     JobRunner
}

type api struct {
	deps   Deps
	logger *slog.Logger
}

// NewRouter wires the public API. requestTimeout bounds every REST handler;
// the websocket route sits outside the timeout group because the middleware
// would sever long-lived connections.
func NewRouter(deps Deps, requestTimeout time.Duration, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	a := &api{deps: deps, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.respondError(w, r, notFound("no such route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.respondError(w, r, &Error{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed", Message: "method not allowed"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/ipos/sections", a.getSections)
			r.Get("/ipos", a.listIPOs)
			r.Get("/ipos/{id}", a.getIPO)

			r.Get("/news/latest", a.latestNews)
			r.Get("/news", a.listNews)

			r.Post("/devices", a.registerDevice)
			r.Patch("/devices/{deviceKey}", a.updateDevice)
			r.Post("/devices/{deviceKey}/alerts", a.upsertAlert)
			r.Delete("/devices/{deviceKey}/alerts/{ipoID}", a.deleteAlert)

			r.Post("/ceiling-track", a.recordCeilingTrack)
		})

		r.Get("/stream", a.deps.Hub.ServeWS)
	})

	r.Get("/health", a.health)

	return r
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
