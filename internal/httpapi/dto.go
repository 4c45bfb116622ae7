package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
)

// Wire types for the mobile clients. List endpoints always render JSON
// arrays, never null, so converters allocate empty slices.

type ipoSummaryResponse struct {
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

type sectionsResponse struct {
	Announced       []ipoSummaryResponse `json:"announced"`
	InSubscription  []ipoSummaryResponse `json:"in_subscription"`
	RecentlyTrading []ipoSummaryResponse `json:"recently_trading"`
}

type brokerResponse struct {
	ID             int64  `json:"id"`
	BrokerName     string `json:"broker_name"`
	BrokerType     string `json:"broker_type,omitempty"`
	ApplicationURL string `json:"application_url,omitempty"`
	Phone          string `json:"phone,omitempty"`
	IsRejected     bool   `json:"is_rejected"`
}

type allocationResponse struct {
	ID               int64            `json:"id"`
	GroupName        string           `json:"group_name"`
	AllocationPct    *decimal.Decimal `json:"allocation_pct,omitempty"`
	AllocatedLots    *int64           `json:"allocated_lots,omitempty"`
	ParticipantCount *int64           `json:"participant_count,omitempty"`
	AvgLotPerPerson  *decimal.Decimal `json:"avg_lot_per_person,omitempty"`
}

type ceilingDayResponse struct {
	ID              int64            `json:"id"`
	TradingDay      int              `json:"trading_day"`
	TradeDate       time.Time        `json:"trade_date"`
	ClosePrice      *decimal.Decimal `json:"close_price,omitempty"`
	HitCeiling      bool             `json:"hit_ceiling"`
	CeilingBrokenAt *time.Time       `json:"ceiling_broken_at,omitempty"`
	Relocked        bool             `json:"relocked"`
}

type ipoDetailResponse struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	Ticker      string `json:"ticker,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	Status      string `json:"status"`

	IPOPrice            *decimal.Decimal `json:"ipo_price,omitempty"`
	TotalLots           *int64           `json:"total_lots,omitempty"`
	OfferingSizeTL      *decimal.Decimal `json:"offering_size_tl,omitempty"`
	CapitalIncreaseLots *int64           `json:"capital_increase_lots,omitempty"`
	PartnerSaleLots     *int64           `json:"partner_sale_lots,omitempty"`

	SubscriptionStart *time.Time `json:"subscription_start,omitempty"`
	SubscriptionEnd   *time.Time `json:"subscription_end,omitempty"`
	SubscriptionHours string     `json:"subscription_hours,omitempty"`
	TradingStart      *time.Time `json:"trading_start,omitempty"`
	SPKApprovalDate   *time.Time `json:"spk_approval_date,omitempty"`

	DistributionMethod string           `json:"distribution_method,omitempty"`
	PublicFloatPct     *decimal.Decimal `json:"public_float_pct,omitempty"`
	DiscountPct        *decimal.Decimal `json:"discount_pct,omitempty"`

	MarketSegment string `json:"market_segment,omitempty"`
	LeadBroker    string `json:"lead_broker,omitempty"`

	LockUpPeriodDays       *int             `json:"lock_up_period_days,omitempty"`
	PriceStabilityDays     *int             `json:"price_stability_days,omitempty"`
	MinApplicationLot      *int             `json:"min_application_lot,omitempty"`
	EstimatedLotsPerPerson *decimal.Decimal `json:"estimated_lots_per_person,omitempty"`

	CompanyDescription  string           `json:"company_description,omitempty"`
	Sector              string           `json:"sector,omitempty"`
	FundUsage           string           `json:"fund_usage,omitempty"`
	RevenueCurrentYear  *decimal.Decimal `json:"revenue_current_year,omitempty"`
	RevenuePreviousYear *decimal.Decimal `json:"revenue_previous_year,omitempty"`
	GrossProfit         *decimal.Decimal `json:"gross_profit,omitempty"`

	KAPNotificationURL string `json:"kap_notification_url,omitempty"`
	ProspectusURL      string `json:"prospectus_url,omitempty"`
	SPKBulletinURL     string `json:"spk_bulletin_url,omitempty"`

	AllocationAnnounced bool   `json:"allocation_announced"`
	TotalApplicants     *int64 `json:"total_applicants,omitempty"`

	CeilingTrackingActive bool             `json:"ceiling_tracking_active"`
	FirstDayClosePrice    *decimal.Decimal `json:"first_day_close_price,omitempty"`
	CeilingBroken         bool             `json:"ceiling_broken"`
	CeilingBrokenAt       *time.Time       `json:"ceiling_broken_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Brokers       []brokerResponse     `json:"brokers"`
	Allocations   []allocationResponse `json:"allocations"`
	CeilingTracks []ceilingDayResponse `json:"ceiling_tracks"`
}

type newsResponse struct {
	ID             int64            `json:"id"`
	Ticker         string           `json:"ticker"`
	DisclosureID   int64            `json:"disclosure_id"`
	PriceAtTime    *decimal.Decimal `json:"price_at_time,omitempty"`
	Title          string           `json:"title"`
	Detail         string           `json:"detail,omitempty"`
	MatchedKeyword string           `json:"matched_keyword,omitempty"`
	SessionType    string           `json:"session_type"`
	Sentiment      string           `json:"sentiment"`
	SourceURL      string           `json:"source_url,omitempty"`
	PublishedAt    time.Time        `json:"published_at"`
	CreatedAt      time.Time        `json:"created_at"`
}

// deviceResponse never echoes push tokens back to the client.
type deviceResponse struct {
	ID         uuid.UUID `json:"id"`
	DeviceKey  string    `json:"device_key"`
	Platform   string    `json:"platform,omitempty"`
	AppVersion string    `json:"app_version,omitempty"`

	NotificationsEnabled    bool `json:"notifications_enabled"`
	NotifyNewIPO            bool `json:"notify_new_ipo"`
	NotifySubscriptionStart bool `json:"notify_subscription_start"`
	NotifyLastDay           bool `json:"notify_last_day"`
	NotifyResult            bool `json:"notify_result"`
	NotifyCeilingBreak      bool `json:"notify_ceiling_break"`
	NotifyFirstTradingDay   bool `json:"notify_first_trading_day"`

	Remind30Min bool `json:"remind_30min"`
	Remind1H    bool `json:"remind_1h"`
	Remind2H    bool `json:"remind_2h"`
	Remind4H    bool `json:"remind_4h"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newIPOSummaryResponse(s model.IPOSummary) ipoSummaryResponse {
	return ipoSummaryResponse{
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

func newIPOSummaryList(in []model.IPOSummary) []ipoSummaryResponse {
	out := make([]ipoSummaryResponse, 0, len(in))
	for _, s := range in {
		out = append(out, newIPOSummaryResponse(s))
	}
	return out
}

func newIPODetailResponse(i *model.IPO) ipoDetailResponse {
	out := ipoDetailResponse{
		ID:          i.ID,
		CompanyName: i.CompanyName,
		Ticker:      i.Ticker,
		LogoURL:     i.LogoURL,
		Status:      i.Status,

		IPOPrice:            i.IPOPrice,
		TotalLots:           i.TotalLots,
		OfferingSizeTL:      i.OfferingSizeTL,
		CapitalIncreaseLots: i.CapitalIncreaseLots,
		PartnerSaleLots:     i.PartnerSaleLots,

		SubscriptionStart: i.SubscriptionStart,
		SubscriptionEnd:   i.SubscriptionEnd,
		SubscriptionHours: i.SubscriptionHours,
		TradingStart:      i.TradingStart,
		SPKApprovalDate:   i.SPKApprovalDate,

		DistributionMethod: i.DistributionMethod,
		PublicFloatPct:     i.PublicFloatPct,
		DiscountPct:        i.DiscountPct,

		MarketSegment: i.MarketSegment,
		LeadBroker:    i.LeadBroker,

		LockUpPeriodDays:       i.LockUpPeriodDays,
		PriceStabilityDays:     i.PriceStabilityDays,
		MinApplicationLot:      i.MinApplicationLot,
		EstimatedLotsPerPerson: i.EstimatedLotsPerPerson,

		CompanyDescription:  i.Description,
		Sector:              i.Sector,
		FundUsage:           i.FundUsage,
		RevenueCurrentYear:  i.RevenueCurrentYear,
		RevenuePreviousYear: i.RevenuePreviousYear,
		GrossProfit:         i.GrossProfit,

		KAPNotificationURL: i.KAPNotificationURL,
		ProspectusURL:      i.ProspectusURL,
		SPKBulletinURL:     i.SPKBulletinURL,

		AllocationAnnounced: i.AllocationAnnounced,
		TotalApplicants:     i.TotalApplicants,

		CeilingTrackingActive: i.CeilingTrackingActive,
		FirstDayClosePrice:    i.FirstDayClosePrice,
		CeilingBroken:         i.CeilingBroken,
		CeilingBrokenAt:       i.CeilingBrokenAt,

		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,

		Brokers:       make([]brokerResponse, 0, len(i.Brokers)),
		Allocations:   make([]allocationResponse, 0, len(i.Allocations)),
		CeilingTracks: make([]ceilingDayResponse, 0, len(i.CeilingTracks)),
	}
	for _, b := range i.Brokers {
		out.Brokers = append(out.Brokers, brokerResponse{
			ID:             b.ID,
			BrokerName:     b.BrokerName,
			BrokerType:     b.BrokerType,
			ApplicationURL: b.ApplicationURL,
			Phone:          b.Phone,
			IsRejected:     b.IsRejected,
		})
	}
	for _, a := range i.Allocations {
		out.Allocations = append(out.Allocations, allocationResponse{
			ID:               a.ID,
			GroupName:        a.GroupName,
			AllocationPct:    a.AllocationPct,
			AllocatedLots:    a.AllocatedLots,
			ParticipantCount: a.ParticipantCount,
			AvgLotPerPerson:  a.AvgLotPerPerson,
		})
	}
	for _, t := range i.CeilingTracks {
		out.CeilingTracks = append(out.CeilingTracks, ceilingDayResponse{
			ID:              t.ID,
			TradingDay:      t.TradingDay,
			TradeDate:       t.TradeDate,
			ClosePrice:      t.ClosePrice,
			HitCeiling:      t.HitCeiling,
			CeilingBrokenAt: t.CeilingBrokenAt,
			Relocked:        t.Relocked,
		})
	}
	return out
}

func newNewsResponse(n model.NewsItem) newsResponse {
	return newsResponse{
		ID:             n.ID,
		Ticker:         n.Ticker,
		DisclosureID:   n.DisclosureID,
		PriceAtTime:    n.PriceAtTime,
		Title:          n.Title,
		Detail:         n.Detail,
		MatchedKeyword: n.MatchedKeyword,
		SessionType:    n.SessionType,
		Sentiment:      n.Sentiment,
		SourceURL:      n.SourceURL,
		PublishedAt:    n.PublishedAt,
		CreatedAt:      n.CreatedAt,
	}
}

func newNewsList(in []model.NewsItem) []newsResponse {
	out := make([]newsResponse, 0, len(in))
	for _, n := range in {
		out = append(out, newNewsResponse(n))
	}
	return out
}

func newDeviceResponse(d *model.Device) deviceResponse {
	return deviceResponse{
		ID:         d.ID,
		DeviceKey:  d.DeviceKey,
		Platform:   d.Platform,
		AppVersion: d.AppVersion,

		NotificationsEnabled:    d.NotificationsEnabled,
		NotifyNewIPO:            d.NotifyNewIPO,
		NotifySubscriptionStart: d.NotifySubscriptionStart,
		NotifyLastDay:           d.NotifyLastDay,
		NotifyResult:            d.NotifyResult,
		NotifyCeilingBreak:      d.NotifyCeilingBreak,
		NotifyFirstTradingDay:   d.NotifyFirstTradingDay,

		Remind30Min: d.Remind30Min,
		Remind1H:    d.Remind1H,
		Remind2H:    d.Remind2H,
		Remind4H:    d.Remind4H,

		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
