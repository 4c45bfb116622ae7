package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type ceilingTrackRequest struct {
	Ticker     string          `json:"ticker"`
	TradingDay int             `json:"trading_day"`
	TradeDate  string          `json:"trade_date"`
	ClosePrice decimal.Decimal `json:"close_price"`
	HitCeiling bool            `json:"hit_ceiling"`
}

type ceilingTrackResponse struct {
	Status        string `json:"status"`
	Ticker        string `json:"ticker"`
	TradingDay    int    `json:"trading_day"`
	HitCeiling    bool   `json:"hit_ceiling"`
	CeilingBroken bool   `json:"ceiling_broken"`
	Relocked      bool   `json:"relocked,omitempty"`
}

// recordCeilingTrack ingests one end-of-day close from the price pipeline.
// The first close below the daily limit ends the ceiling streak and fans out
// a ceiling_broken event to subscribed devices and stream clients.
func (a *api) recordCeilingTrack(w http.ResponseWriter, r *http.Request) {
	var req ceilingTrackRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		a.respondError(w, r, apiErr)
		return
	}
	if req.Ticker == "" {
		a.respondError(w, r, badRequest("ticker is required"))
		return
	}
	if req.TradingDay <= 0 {
		a.respondError(w, r, badRequest("trading_day must be positive"))
		return
	}
	if !req.ClosePrice.IsPositive() {
		a.respondError(w, r, badRequest("close_price must be positive"))
		return
	}
	tradeDate, err := time.Parse("2006-01-02", req.TradeDate)
	if err != nil {
		a.respondError(w, r, badRequest("trade_date must be YYYY-MM-DD"))
		return
	}

	res, err := a.deps.Registry.RecordCeilingTrack(r.Context(),
		req.Ticker, req.TradingDay, tradeDate, req.ClosePrice, req.HitCeiling)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ceilingTrackResponse{
		Status:        "ok",
		Ticker:        res.IPO.Ticker,
		TradingDay:    res.Track.TradingDay,
		HitCeiling:    res.Track.HitCeiling,
		CeilingBroken: res.Broken,
		Relocked:      res.Relocked,
	})
}
