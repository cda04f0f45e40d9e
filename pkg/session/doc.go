// Package session holds per-user conversation state and the stores that
// keep it.
//
// A Session carries the user's variables, the current topic, the accepted
// input flag and a bounded history of turns. Variables that were never set
// resolve to a configured default, or to the unset value when no default
// exists.
//
// Two stores are provided:
//
//   - MemoryStore keeps sessions in process memory.
//   - SQLiteStore persists a snapshot of each session after every turn.
//     It works with the pure Go driver (modernc.org/sqlite, driver name
//     "sqlite") or the cgo driver (github.com/mattn/go-sqlite3, driver name
//     "sqlite3").
//
// A Pruner removes sessions that have been idle longer than a TTL, and a
// Scheduler runs it on a cron schedule.
package session
