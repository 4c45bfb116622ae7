package registry

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
)

// mergeIPO folds scraped values into dst and returns the database columns
// that changed. Scraped data only ever fills or corrects: an empty string or
// nil pointer never blanks a field another source filled, and the lifecycle
// status can only move forward.
func mergeIPO(dst, src *model.IPO) map[string]any {
	fields := make(map[string]any)

	str := func(col string, cur *string, val string) {
		if val == "" || val == *cur {
			return
		}
		*cur = val
		fields[col] = val
	}
	dec := func(col string, cur **decimal.Decimal, val *decimal.Decimal) {
		if val == nil || (*cur != nil && (*cur).Equal(*val)) {
			return
		}
		v := *val
		*cur = &v
		fields[col] = v
	}
	i64 := func(col string, cur **int64, val *int64) {
		if val == nil || (*cur != nil && **cur == *val) {
			return
		}
		v := *val
		*cur = &v
		fields[col] = v
	}
	num := func(col string, cur **int, val *int) {
		if val == nil || (*cur != nil && **cur == *val) {
			return
		}
		v := *val
		*cur = &v
		fields[col] = v
	}
	day := func(col string, cur **time.Time, val *time.Time) {
		if val == nil {
			return
		}
		d := model.Midnight(*val)
		if *cur != nil && model.Midnight(**cur).Equal(d) {
			return
		}
		*cur = &d
		fields[col] = d
	}

	// The company name fills once; the normalized key identifies the row and
	// never changes here.
	if dst.CompanyName == "" && src.CompanyName != "" {
		dst.CompanyName = src.CompanyName
		fields["company_name"] = src.CompanyName
	}

	str("ticker", &dst.Ticker, src.Ticker)
	str("logo_url", &dst.LogoURL, src.LogoURL)

	if src.Status != "" && model.StatusForward(dst.Status, src.Status) {
		dst.Status = src.Status
		fields["status"] = src.Status
	}

	dec("ipo_price", &dst.IPOPrice, src.IPOPrice)
	i64("total_lots", &dst.TotalLots, src.TotalLots)
	dec("offering_size_tl", &dst.OfferingSizeTL, src.OfferingSizeTL)
	i64("capital_increase_lots", &dst.CapitalIncreaseLots, src.CapitalIncreaseLots)
	i64("partner_sale_lots", &dst.PartnerSaleLots, src.PartnerSaleLots)

	day("subscription_start", &dst.SubscriptionStart, src.SubscriptionStart)
	day("subscription_end", &dst.SubscriptionEnd, src.SubscriptionEnd)
	str("subscription_hours", &dst.SubscriptionHours, src.SubscriptionHours)
	day("trading_start", &dst.TradingStart, src.TradingStart)
	day("spk_approval_date", &dst.SPKApprovalDate, src.SPKApprovalDate)

	str("distribution_method", &dst.DistributionMethod, src.DistributionMethod)
	dec("public_float_pct", &dst.PublicFloatPct, src.PublicFloatPct)
	dec("discount_pct", &dst.DiscountPct, src.DiscountPct)
	str("market_segment", &dst.MarketSegment, src.MarketSegment)
	str("lead_broker", &dst.LeadBroker, src.LeadBroker)

	num("lock_up_period_days", &dst.LockUpPeriodDays, src.LockUpPeriodDays)
	num("price_stability_days", &dst.PriceStabilityDays, src.PriceStabilityDays)
	num("min_application_lot", &dst.MinApplicationLot, src.MinApplicationLot)
	dec("estimated_lots_per_person", &dst.EstimatedLotsPerPerson, src.EstimatedLotsPerPerson)

	str("description", &dst.Description, src.Description)
	str("sector", &dst.Sector, src.Sector)
	str("fund_usage", &dst.FundUsage, src.FundUsage)
	dec("revenue_current_year", &dst.RevenueCurrentYear, src.RevenueCurrentYear)
	dec("revenue_previous_year", &dst.RevenuePreviousYear, src.RevenuePreviousYear)
	dec("gross_profit", &dst.GrossProfit, src.GrossProfit)

	str("kap_notification_url", &dst.KAPNotificationURL, src.KAPNotificationURL)
	str("prospectus_url", &dst.ProspectusURL, src.ProspectusURL)
	str("spk_bulletin_url", &dst.SPKBulletinURL, src.SPKBulletinURL)

	i64("total_applicants", &dst.TotalApplicants, src.TotalApplicants)

	return fields
}
