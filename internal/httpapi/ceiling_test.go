package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/registry"
)

func TestRecordCeilingTrack(t *testing.T) {
	a := newTestAPI(t)
	a.reg.res = &registry.CeilingResult{
		IPO:    model.IPOSummary{ID: 42, Ticker: "TACTR"},
		Track:  model.IPOCeilingTrack{IPOID: 42, TradingDay: 3, HitCeiling: false},
		Broken: true,
	}

	resp, data := a.do(t, http.MethodPost, "/api/v1/ceiling-track", map[string]any{
		"ticker":      "TACTR",
		"trading_day": 3,
		"trade_date":  "2026-03-06",
		"close_price": "24.75",
		"hit_ceiling": false,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body ceilingTrackResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Status != "ok" || body.Ticker != "TACTR" || body.TradingDay != 3 {
		t.Errorf("response = %+v, want ok TACTR day 3", body)
	}
	if body.HitCeiling {
		t.Error("hit_ceiling = true, want false")
	}
	if !body.CeilingBroken {
		t.Error("ceiling_broken = false, want true")
	}

	got := a.reg.got
	if got == nil {
		t.Fatal("registry not called")
	}
	if got.ticker != "TACTR" || got.day != 3 || got.hit {
		t.Errorf("call = %+v, want TACTR day 3 hit false", got)
	}
	wantDate := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !got.date.Equal(wantDate) {
		t.Errorf("trade date = %v, want %v", got.date, wantDate)
	}
	if !got.close.Equal(decimal.RequireFromString("24.75")) {
		t.Errorf("close price = %v, want 24.75", got.close)
	}
}

func TestRecordCeilingTrack_UnknownTicker(t *testing.T) {
	a := newTestAPI(t)
	a.reg.err = registry.ErrUnknownTicker

	resp, data := a.do(t, http.MethodPost, "/api/v1/ceiling-track", map[string]any{
		"ticker":      "YOKBU",
		"trading_day": 1,
		"trade_date":  "2026-03-06",
		"close_price": "10.00",
		"hit_ceiling": true,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if code, _, _ := decodeErrorBody(t, data); code != "not_found" {
		t.Errorf("error code = %q, want %q", code, "not_found")
	}
}

func TestRecordCeilingTrack_MalformedDate(t *testing.T) {
	a := newTestAPI(t)

	resp, _ := a.do(t, http.MethodPost, "/api/v1/ceiling-track", map[string]any{
		"ticker":      "TACTR",
		"trading_day": 1,
		"trade_date":  "06.03.2026",
		"close_price": "10.00",
		"hit_ceiling": true,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if a.reg.got != nil {
		t.Error("registry called despite malformed date")
	}
}

func TestRecordCeilingTrack_MissingPrice(t *testing.T) {
	a := newTestAPI(t)

	resp, _ := a.do(t, http.MethodPost, "/api/v1/ceiling-track", map[string]any{
		"ticker":      "TACTR",
		"trading_day": 1,
		"trade_date":  "2026-03-06",
		"hit_ceiling": true,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
