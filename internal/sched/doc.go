// Package sched implements the cron job layer.
//
// The scheduler wires every recurring task onto one cron runner:
//   - scrape syncs for the listing site, the disclosure platform and the
//     board's application and issuance feeds
//   - the positive-news poll feeding the store and the event stream
//   - date-driven lifecycle transitions and nightly archiving
//   - last-day subscription reminders and eve-of-close warnings
//
// Jobs skip their run when the previous one is still in flight, recover
// panics, and log outcomes instead of aborting the process.
package sched
