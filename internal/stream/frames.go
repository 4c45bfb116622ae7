package stream

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
)

// frame is the wire form of one event as sent to connected clients.
type frame struct {
	Type      string     `json:"type"`
	At        time.Time  `json:"at"`
	IPO       *ipoFrame  `json:"ipo,omitempty"`
	News      *newsFrame `json:"news,omitempty"`
	OldStatus string     `json:"old_status,omitempty"`
	NewStatus string     `json:"new_status,omitempty"`
}

type ipoFrame struct {
	ID                 int64            `json:"id"`
	CompanyName        string           `json:"company_name"`
	Ticker             string           `json:"ticker,omitempty"`
	LogoURL            string           `json:"logo_url,omitempty"`
	Status             string           `json:"status"`
	IPOPrice           *decimal.Decimal `json:"ipo_price,omitempty"`
	TotalLots          *int64           `json:"total_lots,omitempty"`
	OfferingSizeTL     *decimal.Decimal `json:"offering_size_tl,omitempty"`
	SubscriptionStart  *time.Time       `json:"subscription_start,omitempty"`
	SubscriptionEnd    *time.Time       `json:"subscription_end,omitempty"`
	TradingStart       *time.Time       `json:"trading_start,omitempty"`
	DistributionMethod string           `json:"distribution_method,omitempty"`
	MarketSegment      string           `json:"market_segment,omitempty"`
	LeadBroker         string           `json:"lead_broker,omitempty"`
	PublicFloatPct     *decimal.Decimal `json:"public_float_pct,omitempty"`
	DiscountPct        *decimal.Decimal `json:"discount_pct,omitempty"`
	CeilingBroken      bool             `json:"ceiling_broken"`
}

type newsFrame struct {
	ID             int64            `json:"id"`
	Ticker         string           `json:"ticker"`
	Title          string           `json:"title"`
	MatchedKeyword string           `json:"matched_keyword,omitempty"`
	SessionType    string           `json:"session_type"`
	Sentiment      string           `json:"sentiment"`
	PriceAtTime    *decimal.Decimal `json:"price_at_time,omitempty"`
	SourceURL      string           `json:"source_url,omitempty"`
	PublishedAt    time.Time        `json:"published_at"`
}

func newFrame(ev model.Event) frame {
	f := frame{
		Type:      ev.Type,
		At:        ev.At,
		OldStatus: ev.OldStatus,
		NewStatus: ev.NewStatus,
	}
	if ev.IPO != nil {
		f.IPO = newIPOFrame(ev.IPO)
	}
	if ev.News != nil {
		f.News = newNewsFrame(ev.News)
	}
	return f
}

func newIPOFrame(s *model.IPOSummary) *ipoFrame {
	return &ipoFrame{
		ID:                 s.ID,
		CompanyName:        s.CompanyName,
		Ticker:             s.Ticker,
		LogoURL:            s.LogoURL,
		Status:             s.Status,
		IPOPrice:           s.IPOPrice,
		TotalLots:          s.TotalLots,
		OfferingSizeTL:     s.OfferingSizeTL,
		SubscriptionStart:  s.SubscriptionStart,
		SubscriptionEnd:    s.SubscriptionEnd,
		TradingStart:       s.TradingStart,
		DistributionMethod: s.DistributionMethod,
		MarketSegment:      s.MarketSegment,
		LeadBroker:         s.LeadBroker,
		PublicFloatPct:     s.PublicFloatPct,
		DiscountPct:        s.DiscountPct,
		CeilingBroken:      s.CeilingBroken,
	}
}

func newNewsFrame(n *model.NewsItem) *newsFrame {
	return &newsFrame{
		ID:             n.ID,
		Ticker:         n.Ticker,
		Title:          n.Title,
		MatchedKeyword: n.MatchedKeyword,
		SessionType:    n.SessionType,
		Sentiment:      n.Sentiment,
		PriceAtTime:    n.PriceAtTime,
		SourceURL:      n.SourceURL,
		PublishedAt:    n.PublishedAt,
	}
}
