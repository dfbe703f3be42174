// Package types defines the shared data model for dotsync: sync candidates,
// classification and comparison results, merge outcomes, backup records, and
// the filesystem interface every component operates through.
//
// Keeping these types free of behavior dependencies lets the leaf packages
// (classify, compare, backup, merge) stay independent of each other and of
// the session orchestration in pkg/sync.
package types
