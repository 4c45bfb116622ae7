// Package registry implements the offering registry component.
//
// The registry:
//   - Loads live offerings from the store on startup
//   - Merges sparse scraped records into stored offerings (fill-or-correct,
//     statuses only move forward)
//   - Matches records across sources by normalized company name, ticker,
//     then fuzzy name containment
//   - Emits events (created, status change, allocation, ceiling, news) to
//     the stream hub and push dispatcher
//   - Periodically reconciles its cache against the store
package registry
