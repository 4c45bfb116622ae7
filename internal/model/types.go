package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// IPOs
// -----------------------------------------------------------------------------

// IPO is a single public offering tracked from SPK approval through the first
// weeks of trading. Fields arrive incrementally from different sources, so
// most of them stay nil until the relevant announcement is published.
type IPO struct {
	ID             int64
	CompanyName    string // full legal name as announced
	NormalizedName string // folded matching key for cross-source dedup
	Ticker         string // BIST code, empty until assigned
	LogoURL        string

	Status     string // lifecycle status, see Status* constants
	Archived   bool   // dropped from all public listings when set
	ArchivedAt *time.Time

	// Price and size.
	IPOPrice            *decimal.Decimal // final offer price in TL
	TotalLots           *int64           // total lots offered to the public
	OfferingSizeTL      *decimal.Decimal // total offering value in TL
	CapitalIncreaseLots *int64           // lots from new share issuance
	PartnerSaleLots     *int64           // lots sold by existing shareholders

	// Timeline.
	SubscriptionStart *time.Time
	SubscriptionEnd   *time.Time
	SubscriptionHours string // e.g. "10:00 - 17:00", as announced
	TradingStart      *time.Time
	SPKApprovalDate   *time.Time

	// Distribution.
	DistributionMethod string           // see Distribution* constants
	PublicFloatPct     *decimal.Decimal // free float percentage
	DiscountPct        *decimal.Decimal // retail price discount, if any

	MarketSegment string // BIST market the shares list on
	LeadBroker    string // lead underwriter

	// Offering terms published in the prospectus.
	LockUpPeriodDays       *int
	PriceStabilityDays     *int
	MinApplicationLot      *int
	EstimatedLotsPerPerson *decimal.Decimal

	// Company background.
	Description         string
	Sector              string
	FundUsage           string // announced use of proceeds
	RevenueCurrentYear  *decimal.Decimal
	RevenuePreviousYear *decimal.Decimal
	GrossProfit         *decimal.Decimal

	// Source links.
	KAPNotificationURL string
	ProspectusURL      string
	SPKBulletinURL     string

	// Distribution results.
	AllocationAnnounced bool
	TotalApplicants     *int64

	// First-days ceiling tracking.
	CeilingTrackingActive bool
	FirstDayClosePrice    *decimal.Decimal
	CeilingBroken         bool // the first close below the daily limit ends the streak
	CeilingBrokenAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Loaded on demand for detail views; nil in list results.
	Brokers       []IPOBroker
	Allocations   []IPOAllocation
	CeilingTracks []IPOCeilingTrack
}

// IPOSummary is the reduced list form served in section and list endpoints
// and carried in stream events.
type IPOSummary struct {
	ID                 int64
	CompanyName        string
	Ticker             string
	LogoURL            string
	Status             string
	IPOPrice           *decimal.Decimal
	TotalLots          *int64
	OfferingSizeTL     *decimal.Decimal
	SubscriptionStart  *time.Time
	SubscriptionEnd    *time.Time
	TradingStart       *time.Time
	DistributionMethod string
	MarketSegment      string
	LeadBroker         string
	PublicFloatPct     *decimal.Decimal
	DiscountPct        *decimal.Decimal
	CeilingBroken      bool
}

// Summary converts a full record to its list form.
func (i *IPO) Summary() IPOSummary {
	return IPOSummary{
		ID:                 i.ID,
		CompanyName:        i.CompanyName,
		Ticker:             i.Ticker,
		LogoURL:            i.LogoURL,
		Status:             i.Status,
		IPOPrice:           i.IPOPrice,
		TotalLots:          i.TotalLots,
		OfferingSizeTL:     i.OfferingSizeTL,
		SubscriptionStart:  i.SubscriptionStart,
		SubscriptionEnd:    i.SubscriptionEnd,
		TradingStart:       i.TradingStart,
		DistributionMethod: i.DistributionMethod,
		MarketSegment:      i.MarketSegment,
		LeadBroker:         i.LeadBroker,
		PublicFloatPct:     i.PublicFloatPct,
		DiscountPct:        i.DiscountPct,
		CeilingBroken:      i.CeilingBroken,
	}
}

// Sections buckets live offerings for the home screen. Archived offerings
// appear in none of them.
type Sections struct {
	Announced       []IPOSummary
	InSubscription  []IPOSummary
	RecentlyTrading []IPOSummary
}

// IPOBroker is one distribution consortium member for an offering. Rejected
// members stay listed so clients can warn users who applied through them.
type IPOBroker struct {
	ID             int64
	IPOID          int64
	BrokerName     string
	BrokerType     string // "banka" for banks, "araci_kurum" otherwise
	ApplicationURL string
	Phone          string
	IsRejected     bool
}

// Allocation groups as published in distribution results.
const (
	AllocationRetail       = "bireysel"
	AllocationHighDemand   = "yuksek_basvurulu"
	AllocationDomesticInst = "kurumsal_yurtici"
	AllocationForeignInst  = "kurumsal_yurtdisi"
)

// IPOAllocation is the announced share of one investor group.
type IPOAllocation struct {
	ID               int64
	IPOID            int64
	GroupName        string // one of the Allocation* constants
	AllocationPct    *decimal.Decimal
	AllocatedLots    *int64
	ParticipantCount *int64
	AvgLotPerPerson  *decimal.Decimal
}

// IPOCeilingTrack records one trading day of the post-listing ceiling streak.
// Unique per (IPOID, TradingDay).
type IPOCeilingTrack struct {
	ID              int64
	IPOID           int64
	TradingDay      int // 1-based, tracked for the first 14 days
	TradeDate       time.Time
	ClosePrice      *decimal.Decimal
	HitCeiling      bool
	CeilingBrokenAt *time.Time
	Relocked        bool // closed at the limit again after a broken day
}

// Distribution methods used in Turkish offerings.
const (
	DistributionEqual        = "esit"
	DistributionProportional = "oransal"
	DistributionMixed        = "karma"
)

// -----------------------------------------------------------------------------
// News
// -----------------------------------------------------------------------------

// News session classification relative to BIST trading hours.
const (
	SessionInSession  = "in_session"
	SessionOffSession = "off_session"
)

// NewsItem is a company disclosure that passed the positive-keyword filter.
type NewsItem struct {
	ID             int64
	Ticker         string
	DisclosureID   int64 // upstream disclosure index, unique
	PriceAtTime    *decimal.Decimal
	Title          string
	Detail         string
	MatchedKeyword string // first filter keyword that matched
	SessionType    string // SessionInSession or SessionOffSession
	Sentiment      string // currently always "positive"
	RawText        string
	SourceURL      string
	PublishedAt    time.Time
	CreatedAt      time.Time
}

// -----------------------------------------------------------------------------
// SPK applications
// -----------------------------------------------------------------------------

// SPK application statuses. An application starts pending and moves to
// approved when it leaves the published list. Deleted rows are kept so they
// are never re-imported.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
	ApplicationDeleted  = "deleted"
)

// SPKApplication is one row of the board application list, tracked so that a
// company surfaces before its offering is formally approved.
type SPKApplication struct {
	ID                  int64
	CompanyName         string
	ExistingCapital     *decimal.Decimal
	NewCapital          *decimal.Decimal
	CapitalIncreasePaid *decimal.Decimal
	CapitalIncreaseFree *decimal.Decimal
	ExistingShareSale   *decimal.Decimal
	AdditionalShareSale *decimal.Decimal
	SalePrice           *decimal.Decimal
	ApplicationDate     *time.Time
	Notes               string
	Status              string
	FirstSeenAt         time.Time
	UpdatedAt           time.Time
}

// -----------------------------------------------------------------------------
// Devices
// -----------------------------------------------------------------------------

// Device is a registered mobile client with its push tokens and notification
// preferences. DeviceKey is chosen by the client and stable across installs;
// ID is assigned by the server on first registration.
type Device struct {
	ID         uuid.UUID
	DeviceKey  string
	FCMToken   string
	ExpoToken  string
	Platform   string // "ios" or "android"
	AppVersion string

	NotificationsEnabled    bool // master switch, gates every other preference
	NotifyNewIPO            bool
	NotifySubscriptionStart bool
	NotifyLastDay           bool
	NotifyResult            bool
	NotifyCeilingBreak      bool
	NotifyFirstTradingDay   bool

	// Last-day reminder windows before the subscription close.
	Remind30Min bool
	Remind1H    bool
	Remind2H    bool
	Remind4H    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeviceAlert narrows notifications for one offering on one device.
// Unique per (DeviceID, IPOID).
type DeviceAlert struct {
	DeviceID      uuid.UUID
	IPOID         int64
	NotifyLastDay bool
	NotifyResult  bool
	NotifyCeiling bool
	CreatedAt     time.Time
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

// Event types fanned out to the stream hub and the push dispatcher.
const (
	EventIPOCreated          = "ipo_created"
	EventStatusChange        = "status_change"
	EventAllocationAnnounced = "allocation_announced"
	EventCeilingBroken       = "ceiling_broken"
	EventNewsMatched         = "news_matched"
)

// Event is a single change observed by the registry or the news pipeline.
// IPO is set for offering events, News for news_matched; OldStatus/NewStatus
// accompany status_change.
type Event struct {
	Type      string
	IPO       *IPOSummary
	News      *NewsItem
	OldStatus string
	NewStatus string
	At        time.Time
}
