// Package store persists the tracker's state in PostgreSQL.
//
// It is split into one repository per aggregate:
//
//   - IPOStore: offerings with their brokers, allocations and ceiling tracks
//   - NewsStore: filtered disclosures
//   - DeviceStore: registered mobile clients and per-offering alerts
//   - SPKStore: the board application watch list
//   - StateStore: scraper cursors and one-shot markers
//
// All SQL is explicit. Writes that can race with other scrape sources go
// through ON CONFLICT upserts keyed on the natural identity of the row
// (normalized company name, disclosure ID, device key), so every job stays
// safe to re-run.
package store
