// Package tasks runs long administrative operations against the cinema API with progress reporting.
//
// # Ticket Report
//
// [ReportEngine.Run] builds the admin ticket report:
//
//  1. Lists users (optionally narrowed to a set of usernames)
//  2. Fetches each user's tickets with a bounded worker pool, paced by a rate limiter
//  3. Totals tickets and revenue per user and overall, keeping per-user failures
//  4. Optionally writes one ticket export per user plus a report.json manifest
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on a caller-owned channel. Sends never block:
// a full channel drops the update.
package tasks
