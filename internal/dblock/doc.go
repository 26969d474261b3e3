// Package dblock provides a cross-process lock guarding exclusive access to
// the database. The lock is a marker file created with O_EXCL that records
// the holder's PID, command, hostname, and acquisition time. Waiters poll
// with backoff until the marker disappears or its holder is found dead, in
// which case the stale marker is reclaimed. A flock on a sidecar file
// serializes the reclaim itself so two waiters cannot both take over.
package dblock
