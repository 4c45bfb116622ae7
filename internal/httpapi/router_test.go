package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/registry"
	"github.com/kyaraz/halkaarz/internal/store"
)

type fakeIPOReader struct {
	sections  *model.Sections
	list      []model.IPOSummary
	byID      map[int64]*model.IPO
	gotFilter store.ListFilter
	err       error
}

func (f *fakeIPOReader) Sections(ctx context.Context) (*model.Sections, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.sections == nil {
		return &model.Sections{}, nil
	}
	return f.sections, nil
}

func (f *fakeIPOReader) ListIPOs(ctx context.Context, filter store.ListFilter) ([]model.IPOSummary, error) {
	f.gotFilter = filter
	return f.list, f.err
}

func (f *fakeIPOReader) GetIPO(ctx context.Context, id int64) (*model.IPO, error) {
	if f.err != nil {
		return nil, f.err
	}
	ipo, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return ipo, nil
}

type fakeNewsReader struct {
	items     []model.NewsItem
	gotLimit  int
	gotFilter store.NewsFilter
	err       error
}

func (f *fakeNewsReader) LatestNews(ctx context.Context, limit int) ([]model.NewsItem, error) {
	f.gotLimit = limit
	return f.items, f.err
}

func (f *fakeNewsReader) ListNews(ctx context.Context, filter store.NewsFilter) ([]model.NewsItem, error) {
	f.gotFilter = filter
	return f.items, f.err
}

// fakeDeviceStore mirrors the database defaults on create: every notify_*
// flag on, only the 1h reminder window on.
type fakeDeviceStore struct {
	devices    map[string]*model.Device
	updKey     string
	updFields  map[string]any
	alertGot   *model.DeviceAlert
	alertErr   error
	deletedIPO int64
	deleteErr  error
}

func (f *fakeDeviceStore) RegisterDevice(ctx context.Context, d *model.Device) (*model.Device, bool, error) {
	_, exists := f.devices[d.DeviceKey]
	out := *d
	if exists {
		out.ID = f.devices[d.DeviceKey].ID
	} else {
		out.ID = uuid.New()
		out.NotificationsEnabled = true
		out.NotifyNewIPO = true
		out.NotifySubscriptionStart = true
		out.NotifyLastDay = true
		out.NotifyResult = true
		out.NotifyCeilingBreak = true
		out.NotifyFirstTradingDay = true
		out.Remind1H = true
	}
	f.devices[d.DeviceKey] = &out
	return &out, !exists, nil
}

func (f *fakeDeviceStore) GetDevice(ctx context.Context, deviceKey string) (*model.Device, error) {
	d, ok := f.devices[deviceKey]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (f *fakeDeviceStore) UpdateDevice(ctx context.Context, deviceKey string, fields map[string]any) (*model.Device, error) {
	f.updKey, f.updFields = deviceKey, fields
	d, ok := f.devices[deviceKey]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (f *fakeDeviceStore) UpsertAlert(ctx context.Context, a model.DeviceAlert) error {
	f.alertGot = &a
	return f.alertErr
}

func (f *fakeDeviceStore) DeleteAlert(ctx context.Context, deviceID uuid.UUID, ipoID int64) error {
	f.deletedIPO = ipoID
	return f.deleteErr
}

type ceilingCall struct {
	ticker string
	day    int
	date   time.Time
	close  decimal.Decimal
	hit    bool
}

type fakeCeilingRegistry struct {
	got   *ceilingCall
	res   *registry.CeilingResult
	err   error
	stats registry.Stats
}

func (f *fakeCeilingRegistry) RecordCeilingTrack(ctx context.Context, ticker string, day int, date time.Time, closePrice decimal.Decimal, hitCeiling bool) (*registry.CeilingResult, error) {
	f.got = &ceilingCall{ticker: ticker, day: day, date: date, close: closePrice, hit: hitCeiling}
	if f.err != nil {
		return nil, f.err
	}
	if f.res != nil {
		return f.res, nil
	}
	return &registry.CeilingResult{}, nil
}

func (f *fakeCeilingRegistry) Stats() registry.Stats { return f.stats }

type fakeHub struct {
	served  bool
	clients int
}

func (f *fakeHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	f.served = true
	w.WriteHeader(http.StatusOK)
}

func (f *fakeHub) ClientCount() int { return f.clients }

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeJobs struct{ running bool }

func (f *fakeJobs) Running() bool { return f.running }

type testAPI struct {
	ipos    *fakeIPOReader
	news    *fakeNewsReader
	devices *fakeDeviceStore
	reg     *fakeCeilingRegistry
	hub     *fakeHub
	db      *fakePinger
	jobs    *fakeJobs
	srv     *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	a := &testAPI{
		ipos:    &fakeIPOReader{byID: map[int64]*model.IPO{}},
		news:    &fakeNewsReader{},
		devices: &fakeDeviceStore{devices: map[string]*model.Device{}},
		reg:     &fakeCeilingRegistry{},
		hub:     &fakeHub{},
		db:      &fakePinger{},
		jobs:    &fakeJobs{running: true},
	}
	handler := NewRouter(Deps{
		IPOs:     a.ipos,
		News:     a.news,
		Devices:  a.devices,
		Registry: a.reg,
		Hub:      a.hub,
		DB:       a.db,
		Jobs:     a.jobs,
	}, 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.srv = httptest.NewServer(handler)
	t.Cleanup(a.srv.Close)
	return a
}

// do issues one request against the test server. A string body is sent raw,
// anything else is marshalled to JSON.
func (a *testAPI) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, data
}

func decodeErrorBody(t *testing.T, data []byte) (code, message, requestID string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal error envelope: %v (%s)", err, data)
	}
	return body.Error.Code, body.Error.Message, body.RequestID
}

func TestRouter_UnknownRoute(t *testing.T) {
	a := newTestAPI(t)

	resp, data := a.do(t, http.MethodGet, "/api/v2/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	code, _, requestID := decodeErrorBody(t, data)
	if code != "not_found" {
		t.Errorf("error code = %q, want %q", code, "not_found")
	}
	if requestID == "" {
		t.Error("request_id missing from error envelope")
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	a := newTestAPI(t)

	resp, data := a.do(t, http.MethodDelete, "/api/v1/ipos", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
	if code, _, _ := decodeErrorBody(t, data); code != "method_not_allowed" {
		t.Errorf("error code = %q, want %q", code, "method_not_allowed")
	}
}

func TestRouter_StreamRouteReachesHub(t *testing.T) {
	a := newTestAPI(t)

	resp, _ := a.do(t, http.MethodGet, "/api/v1/stream", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !a.hub.served {
		t.Error("hub.ServeWS not reached")
	}
}

func TestHealth_AllUp(t *testing.T) {
	a := newTestAPI(t)
	a.reg.stats = registry.Stats{IPOs: 4, LastSyncAt: time.Now()}
	a.hub.clients = 2

	resp, data := a.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
		IPOs       int               `json:"ipos"`
		Clients    int               `json:"stream_clients"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal health body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want %q", body.Status, "ok")
	}
	if body.Components["database"] != "ok" || body.Components["scheduler"] != "ok" {
		t.Errorf("components = %v, want both ok", body.Components)
	}
	if body.IPOs != 4 {
		t.Errorf("ipos = %d, want 4", body.IPOs)
	}
	if body.Clients != 2 {
		t.Errorf("stream_clients = %d, want 2", body.Clients)
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	a := newTestAPI(t)
	a.db.err = context.DeadlineExceeded

	resp, data := a.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal health body: %v", err)
	}
	if body.Status != "down" {
		t.Errorf("status = %q, want %q", body.Status, "down")
	}
	if body.Components["database"] != "down" {
		t.Errorf("components[database] = %q, want %q", body.Components["database"], "down")
	}
	if body.Components["scheduler"] != "ok" {
		t.Errorf("components[scheduler] = %q, want %q", body.Components["scheduler"], "ok")
	}
}

func TestHealth_SchedulerDown(t *testing.T) {
	a := newTestAPI(t)
	a.jobs.running = false

	resp, data := a.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	var body struct {
		Components map[string]string `json:"components"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal health body: %v", err)
	}
	if body.Components["scheduler"] != "down" {
		t.Errorf("components[scheduler] = %q, want %q", body.Components["scheduler"], "down")
	}
}
