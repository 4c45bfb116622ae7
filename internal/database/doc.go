// Package database provides PostgreSQL connection pool management and the
// idempotent schema migration run at startup.
//
// A single pool serves every store; shopspring decimal support is registered
// on each new connection so NUMERIC columns scan directly into money fields.
package database
