// Package model defines shared data types used across the halkaarz service.
//
// Conventions:
//   - Money: shopspring decimal in TL (prices Numeric(12,2), offering sizes Numeric(18,2))
//   - Calendar dates (subscription window, trading start) are time.Time values
//     truncated to midnight, nil when the upstream source has not published them
//   - IDs: int64 database keys; devices additionally carry a server-assigned uuid
package model
