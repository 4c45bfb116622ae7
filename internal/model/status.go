package model

import "time"

// Lifecycle statuses in order. Transitions only ever move forward: scrapers
// may deliver dates out of order, and a status must never regress because an
// upstream page was republished with stale data.
const (
	StatusNewlyApproved   = "newly_approved"   // SPK approval published, dates pending
	StatusInDistribution  = "in_distribution"  // subscription window open
	StatusAwaitingTrading = "awaiting_trading" // subscription closed, not yet listed
	StatusTrading         = "trading"          // listed on the exchange
)

// ArchiveAfterDays is how many calendar days after the first trading day an
// offering stays in public listings, roughly 25 trading days.
const ArchiveAfterDays = 37

// CeilingTrackDays is how many trading days the post-listing ceiling streak
// is recorded for.
const CeilingTrackDays = 14

// Home screen sections.
const (
	SectionAnnounced       = "announced"
	SectionInSubscription  = "in_subscription"
	SectionRecentlyTrading = "recently_trading"
)

var statusRank = map[string]int{
	StatusNewlyApproved:   0,
	StatusInDistribution:  1,
	StatusAwaitingTrading: 2,
	StatusTrading:         3,
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// StatusForward reports whether moving from cur to next advances the
// lifecycle. Unknown statuses never advance.
func StatusForward(cur, next string) bool {
	c, okc := statusRank[cur]
	n, okn := statusRank[next]
	return okc && okn && n > c
}

// SectionFor maps a lifecycle status to its home screen section.
func SectionFor(status string) (string, bool) {
	switch status {
	case StatusNewlyApproved:
		return SectionAnnounced, true
	case StatusInDistribution:
		return SectionInSubscription, true
	case StatusAwaitingTrading, StatusTrading:
		return SectionRecentlyTrading, true
	default:
		return "", false
	}
}

// NextStatus returns the status the offering should hold on the given day
// based on its published dates, and whether that is a forward move from the
// current status. today is compared at calendar-day granularity.
func NextStatus(ipo *IPO, today time.Time) (string, bool) {
	day := Midnight(today)

	target := ipo.Status
	switch {
	case ipo.TradingStart != nil && !day.Before(Midnight(*ipo.TradingStart)):
		target = StatusTrading
	case ipo.SubscriptionEnd != nil && day.After(Midnight(*ipo.SubscriptionEnd)):
		target = StatusAwaitingTrading
	case ipo.SubscriptionStart != nil && ipo.SubscriptionEnd != nil &&
		!day.Before(Midnight(*ipo.SubscriptionStart)) && !day.After(Midnight(*ipo.SubscriptionEnd)):
		target = StatusInDistribution
	}

	cur, curOK := statusRank[ipo.Status]
	next, nextOK := statusRank[target]
	if !curOK || !nextOK || next <= cur {
		return ipo.Status, false
	}
	return target, true
}

// ShouldArchive reports whether the offering has been trading long enough to
// drop from public listings.
func ShouldArchive(ipo *IPO, today time.Time) bool {
	if ipo.Archived || ipo.TradingStart == nil {
		return false
	}
	cutoff := Midnight(today).AddDate(0, 0, -ArchiveAfterDays)
	return !Midnight(*ipo.TradingStart).After(cutoff)
}

// Midnight truncates t to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
