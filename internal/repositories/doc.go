// Package repositories implements SQLite persistence for the state marquee owns.
//
// The remote API owns movies, projections, seats, tickets and users. Locally there is only
// the auth context: [SessionRepository] stores one row per login, for the CLI ("cli") or for a
// browser cookie ("web").
//
// Rows are soft deleted via deleted_at and excluded from queries by default.
//
// Sequence numbers provide stable, human-readable ordering (session #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
