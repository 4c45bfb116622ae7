// Package news filters company disclosures down to the ones worth pushing
// to users: positive-signal keyword matching, trading-session classification
// and disclosure-level dedup for the high-frequency poll loop.
//
// Only positive matches are surfaced. The keyword list is ordered, matching
// stops at the first hit, and the matched pattern is stored with the item so
// the client can show why a disclosure was flagged.
package news
