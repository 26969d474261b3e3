// Package reconcile orchestrates a matching run: it loads provider tracks
// and library files from the store, excludes tracks matched by earlier runs,
// executes the strategy pipeline under the cross-process database lock, and
// persists the new matches. Runs are idempotent; repeating one against an
// unchanged store produces zero new matches.
package reconcile
