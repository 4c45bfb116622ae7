// Package scrape collects offering data from the three upstream sources:
// the halkarz.com listing site, the KAP disclosure platform and the SPK
// application and issuance feeds. Scrapers return sparse records with only
// the fields the source actually published; merging into stored offerings
// happens in the registry.
//
// All free-text parsing folds Turkish characters to ASCII first, so the
// extraction patterns and label matching work the same whether the source
// writes "Halka Arz Fiyatı" or "halka arz fiyati".
package scrape
