package dblock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"
)

const (
	pollInitial = 50 * time.Millisecond
	pollMax     = time.Second
)

// Marker is the lock file payload. Unknown fields written by newer builds
// are ignored on read.
type Marker struct {
	PID        int       `json:"pid"`
	Command    string    `json:"command"`
	Hostname   string    `json:"hostname"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Lock is a cross-process mutex over the database file. It is not
// reentrant: acquiring a Lock twice from the same process deadlocks the
// second caller until the first releases.
type Lock struct {
	path  string
	guard *flock.Flock

	mu   sync.Mutex
	held bool
}

// New builds a lock for the database at dbPath. The marker lives alongside
// the database; the flock sidecar only serializes stale-marker takeover.
func New(dbPath string) *Lock {
	lockPath := dbPath + ".lock"
	return &Lock{
		path:  lockPath,
		guard: flock.New(lockPath + ".guard"),
	}
}

// Path returns the marker file path.
func (l *Lock) Path() string { return l.path }

// Held reports whether this process currently holds the lock.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Acquire takes the lock, waiting up to timeout for the current holder to
// release it. A marker whose recorded PID no longer maps to a live process,
// or that cannot be parsed at all, is treated as leftover from a crash and
// reclaimed immediately instead of waiting out the timeout.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	interval := pollInitial

	for {
		acquired, err := l.tryCreate()
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		holder, markerErr := l.readMarker()
		if markerErr != nil || !pidAlive(holder.PID) {
			if err := l.reclaimStale(); err != nil {
				return err
			}
			continue
		}

		if time.Now().After(deadline) {
			return &TimeoutError{Path: l.path, Timeout: timeout, Holder: holder}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		if interval *= 2; interval > pollMax {
			interval = pollMax
		}
	}
}

// Release removes the marker. Releasing a lock that is not held is a no-op.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock marker: %w", err)
	}
	return nil
}

// WithLock acquires the lock, runs fn, and releases even when fn fails.
func (l *Lock) WithLock(ctx context.Context, timeout time.Duration, fn func() error) error {
	if err := l.Acquire(ctx, timeout); err != nil {
		return err
	}
	defer func() {
		_ = l.Release()
	}()
	return fn()
}

// tryCreate attempts the atomic O_EXCL creation that constitutes ownership.
func (l *Lock) tryCreate() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create lock marker: %w", err)
	}

	hostname, _ := os.Hostname()
	marker := Marker{
		PID:        os.Getpid(),
		Command:    filepath.Base(os.Args[0]),
		Hostname:   hostname,
		AcquiredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(marker)
	if err != nil {
		file.Close()
		_ = os.Remove(l.path)
		return false, fmt.Errorf("encode lock marker: %w", err)
	}
	if _, err := file.Write(payload); err != nil {
		file.Close()
		_ = os.Remove(l.path)
		return false, fmt.Errorf("write lock marker: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(l.path)
		return false, fmt.Errorf("close lock marker: %w", err)
	}

	l.mu.Lock()
	l.held = true
	l.mu.Unlock()
	return true, nil
}

// readMarker parses the current marker. A missing file is not an error to
// the caller's logic; the next tryCreate settles the race.
func (l *Lock) readMarker() (*Marker, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read lock marker: %w", err)
	}
	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("parse lock marker: %w", err)
	}
	return &marker, nil
}

// reclaimStale removes a marker left by a dead or unidentifiable holder.
// The flock ensures only one waiter performs the removal; everyone then
// falls back to the normal O_EXCL race.
func (l *Lock) reclaimStale() error {
	locked, err := l.guard.TryLock()
	if err != nil {
		return fmt.Errorf("guard stale lock takeover: %w", err)
	}
	if !locked {
		// Another waiter is mid-takeover; let it finish.
		return nil
	}
	defer func() {
		_ = l.guard.Unlock()
	}()

	// Re-check under the guard: the marker may have been reclaimed and
	// rewritten by a live process since we last looked.
	holder, markerErr := l.readMarker()
	if markerErr == nil && pidAlive(holder.PID) {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale lock marker: %w", err)
	}
	return nil
}

// pidAlive probes the PID with signal 0. EPERM means the process exists but
// belongs to another user, which still counts as alive.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
