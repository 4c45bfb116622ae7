// Package fetch provides the shared HTTP client used by every scraper.
//
// Upstream hosts:
//   - https://halkarz.com (WordPress REST API + detail pages)
//   - https://www.kap.org.tr (disclosure query API + detail pages)
//   - https://spk.gov.tr (application list, incomplete TLS chain)
//   - https://ws.spk.gov.tr (issuance data JSON API)
//
// Requests carry browser-profile headers; Turkish sites reject obvious bots.
package fetch
