package news

import (
	"strings"
	"sync"
	"time"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/scrape"
)

// Trading hours on Borsa Istanbul. Disclosures published inside them get a
// different alert wording than the ones landing after close.
const (
	sessionOpenHour  = 10
	sessionCloseHour = 18
	sessionCloseMin  = 10
)

// Match scans a disclosure title for a positive-signal pattern and reports
// the first one found. Input is folded the same way the patterns are, so
// callers can pass raw Turkish text.
func Match(text string) (keyword string, ok bool) {
	folded := scrape.FoldTurkish(text)
	for _, kw := range positiveKeywords {
		if strings.Contains(folded, kw) {
			return kw, true
		}
	}
	return "", false
}

// SessionTypeAt classifies a publication time against exchange hours:
// weekdays between 10:00 and 18:10 Istanbul time count as in-session.
func SessionTypeAt(t time.Time) string {
	local := t.In(scrape.Istanbul)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return model.SessionOffSession
	}
	mins := local.Hour()*60 + local.Minute()
	if mins >= sessionOpenHour*60 && mins < sessionCloseHour*60+sessionCloseMin {
		return model.SessionInSession
	}
	return model.SessionOffSession
}

// Dedup remembers which disclosure IDs the poll loop already handled. It is
// primed from the database at startup; the unique index on disclosure_id
// backstops anything that slips through after a restart.
type Dedup struct {
	mu   sync.Mutex
	seen map[int64]struct{}
}

// NewDedup builds a set primed with already-stored disclosure IDs.
func NewDedup(ids []int64) *Dedup {
	d := &Dedup{seen: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		d.seen[id] = struct{}{}
	}
	return d
}

// Seen marks an ID as handled and reports whether it had been seen before.
func (d *Dedup) Seen(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

// Len reports how many disclosure IDs are tracked.
func (d *Dedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
