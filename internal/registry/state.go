package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/kyaraz/halkaarz/internal/model"
)

// registryState holds the thread-safe offering cache.
type registryState struct {
	mu sync.RWMutex

	// All live (non-archived) offerings indexed by ID.
	ipos map[int64]*model.IPO

	// Normalized company name -> ID, the cross-source match key.
	byName map[string]int64

	// Last successful sync against the store.
	lastSyncAt time.Time

	// Output channel for the stream hub and push dispatcher.
	changes chan model.Event
}

func newState() *registryState {
	return &registryState{
		ipos:    make(map[int64]*model.IPO),
		byName:  make(map[string]int64),
		changes: make(chan model.Event, ChangeBufferSize),
	}
}

// get returns an offering by ID (read-locked).
func (s *registryState) get(id int64) (model.IPO, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ipo, ok := s.ipos[id]
	if !ok {
		return model.IPO{}, false
	}
	return *ipo, true
}

// findByTicker scans for an offering by BIST code (read-locked). The cache
// holds tens of rows, a scan is fine.
func (s *registryState) findByTicker(ticker string) (model.IPO, bool) {
	if ticker == "" {
		return model.IPO{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ipo := range s.ipos {
		if ipo.Ticker == ticker {
			return *ipo, true
		}
	}
	return model.IPO{}, false
}

// active returns a copy of every cached offering ordered by ID (read-locked).
func (s *registryState) active() []model.IPO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.IPO, 0, len(s.ipos))
	for _, ipo := range s.ipos {
		result = append(result, *ipo)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// upsert adds or replaces an offering (write-locked). Relations are stripped;
// the cache serves list lookups, detail views load from the store.
func (s *registryState) upsert(ipo model.IPO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertLocked(ipo)
}

// upsertLocked adds or replaces an offering (caller must hold write lock).
func (s *registryState) upsertLocked(ipo model.IPO) {
	ipo.Brokers, ipo.Allocations, ipo.CeilingTracks = nil, nil, nil
	s.ipos[ipo.ID] = &ipo
	if ipo.NormalizedName != "" {
		s.byName[ipo.NormalizedName] = ipo.ID
	}
}

// remove drops an offering from the cache (write-locked).
func (s *registryState) remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ipo, ok := s.ipos[id]; ok {
		delete(s.byName, ipo.NormalizedName)
		delete(s.ipos, id)
	}
}

// replaceAll swaps the whole cache for a fresh store snapshot (write-locked).
func (s *registryState) replaceAll(ipos []*model.IPO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ipos = make(map[int64]*model.IPO, len(ipos))
	s.byName = make(map[string]int64, len(ipos))
	for _, ipo := range ipos {
		s.upsertLocked(*ipo)
	}
	s.lastSyncAt = time.Now()
}

// stats returns cache size and last sync time (read-locked).
func (s *registryState) stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{IPOs: len(s.ipos), LastSyncAt: s.lastSyncAt}
}

// notifyChange sends an event to the changes channel (non-blocking).
func (s *registryState) notifyChange(ev model.Event) {
	select {
	case s.changes <- ev:
	default:
		// Channel full, drop oldest by consuming one and retrying.
		select {
		case <-s.changes:
			s.changes <- ev
		default:
		}
	}
}
