// Package sync orchestrates one synchronization pass: it owns the
// session state (journal, backup store, tool registry, version-control
// cache, temp dir) and drives each candidate through the classify,
// compare, merge, backup, overwrite pipeline.
//
// Candidates are processed strictly one at a time. Each mutation is
// journaled before it executes, so an interrupt at any point leaves a
// valid, runnable rollback script behind. Concurrent invocations against
// the same repository are unsupported.
package sync
