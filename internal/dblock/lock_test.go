package dblock_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"harmonia/internal/dblock"
)

func dbPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "harmonia.db")
}

func TestAcquireRelease(t *testing.T) {
	lock := dblock.New(dbPath(t))
	ctx := context.Background()

	if err := lock.Acquire(ctx, time.Second); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !lock.Held() {
		t.Fatal("expected lock to report held")
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if lock.Held() {
		t.Fatal("expected lock to report released")
	}
}

func TestAcquireTimesOutAgainstLiveHolder(t *testing.T) {
	path := dbPath(t)
	holder := dblock.New(path)
	ctx := context.Background()

	if err := holder.Acquire(ctx, time.Second); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer holder.Release()

	waiter := dblock.New(path)
	err := waiter.Acquire(ctx, 150*time.Millisecond)
	if err == nil {
		waiter.Release()
		t.Fatal("expected second Acquire to time out")
	}
	if !errors.Is(err, dblock.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	var timeoutErr *dblock.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %T", err)
	}
	if timeoutErr.Holder == nil || timeoutErr.Holder.PID != os.Getpid() {
		t.Fatalf("timeout error should identify the holder: %+v", timeoutErr.Holder)
	}
}

func TestAcquireReclaimsStaleMarker(t *testing.T) {
	path := dbPath(t)
	lock := dblock.New(path)

	// A process that has already exited gives us a PID that is known dead.
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("spawn helper: %v", err)
	}
	marker, err := json.Marshal(dblock.Marker{
		PID:        cmd.Process.Pid,
		Command:    "harmonia",
		Hostname:   "elsewhere",
		AcquiredAt: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("encode marker: %v", err)
	}
	if err := os.WriteFile(lock.Path(), marker, 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	start := time.Now()
	if err := lock.Acquire(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("Acquire should reclaim a dead holder's marker: %v", err)
	}
	defer lock.Release()
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("stale reclaim should not wait out the timeout, took %s", elapsed)
	}
}

func TestAcquireDiscardsMalformedMarker(t *testing.T) {
	path := dbPath(t)
	lock := dblock.New(path)

	if err := os.WriteFile(lock.Path(), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	if err := lock.Acquire(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("Acquire should discard a malformed marker: %v", err)
	}
	defer lock.Release()
}

func TestMarkerIgnoresUnknownFields(t *testing.T) {
	path := dbPath(t)
	holder := dblock.New(path)
	ctx := context.Background()

	payload := []byte(`{"pid": 1, "command": "harmonia", "hostname": "h", "acquired_at": "2026-01-02T15:04:05Z", "build": "future"}`)
	if err := os.WriteFile(holder.Path(), payload, 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	// PID 1 is alive, so the waiter must treat the marker as valid and
	// report it in the timeout, despite the extra field.
	err := holder.Acquire(ctx, 150*time.Millisecond)
	var timeoutErr *dblock.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %v", err)
	}
	if timeoutErr.Holder == nil || timeoutErr.Holder.PID != 1 {
		t.Fatalf("expected holder pid 1, got %+v", timeoutErr.Holder)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	lock := dblock.New(dbPath(t))

	if err := lock.Release(); err != nil {
		t.Fatalf("Release without acquisition should be a no-op: %v", err)
	}
	if err := lock.Acquire(context.Background(), time.Second); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("double Release should be a no-op: %v", err)
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	path := dbPath(t)
	lock := dblock.New(path)
	ctx := context.Background()

	wantErr := errors.New("boom")
	if err := lock.WithLock(ctx, time.Second, func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error to surface, got %v", err)
	}

	// The lock must be free again for the next caller.
	other := dblock.New(path)
	if err := other.Acquire(ctx, 200*time.Millisecond); err != nil {
		t.Fatalf("lock should be free after WithLock: %v", err)
	}
	other.Release()
}
