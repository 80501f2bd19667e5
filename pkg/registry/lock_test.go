// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"upack-cli/internal/testutil"
)

func TestLock_AcquiresWhenNoLockExists(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	r := New(root)

	if err := r.Lock(context.Background(), "unit test"); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if !r.Locked() {
		t.Error("Locked() = false after successful Lock")
	}

	data, err := os.ReadFile(filepath.Join(root, ".lock"))
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 || lines[0] != "unit test" {
		t.Errorf("lock file content = %q, want reason on line 1", data)
	}
	if lines[1] == "" {
		t.Error("lock file has no token on line 2")
	}

	if err := r.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".lock")); !errors.Is(err, os.ErrNotExist) {
		t.Error("lock file still exists after Unlock")
	}
	if r.Locked() {
		t.Error("Locked() = true after Unlock")
	}
}

func TestLock_CreatesMissingRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "does", "not", "exist")
	r := New(root)

	if err := r.Lock(context.Background(), ""); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	defer r.Unlock()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("registry root not created: %v", err)
	}
}

func TestLock_DefaultReason(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	r := New(root)

	if err := r.Lock(context.Background(), ""); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	defer r.Unlock()

	reason, _, err := readLockFile(filepath.Join(root, ".lock"))
	if err != nil {
		t.Fatalf("readLockFile() error = %v", err)
	}
	if reason == "" {
		t.Error("empty reason was written verbatim, want a default")
	}
}

func TestLock_SecondAcquireOnSameInstanceFails(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())
	if err := r.Lock(context.Background(), "first"); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	defer r.Unlock()

	if err := r.Lock(context.Background(), "second"); err == nil {
		t.Error("second Lock() on the same instance should fail")
	}
}

func TestLock_StaleLockIsSeized(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// A lock file left behind by a crashed holder, one tick past stale.
	writeStaleLock(t, root, "crashed holder", "dead-token", base)

	clock := testutil.NewFakeClock(base.Add(staleAfter + time.Millisecond))
	r := New(root, WithClock(clock))

	if err := r.Lock(context.Background(), "new holder"); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	defer r.Unlock()

	reason, token, err := readLockFile(filepath.Join(root, ".lock"))
	if err != nil {
		t.Fatalf("readLockFile() error = %v", err)
	}
	if reason != "new holder" {
		t.Errorf("reason = %q, want %q", reason, "new holder")
	}
	if token == "dead-token" {
		t.Error("stale token survived acquisition")
	}
}

func TestLock_FreshLockBlocksUntilCancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// A lock exactly at the staleness boundary is still considered fresh.
	writeStaleLock(t, root, "other process", "other-token", base)

	clock := testutil.NewFakeClock(base.Add(staleAfter))
	r := New(root, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Lock(ctx, "blocked")
	}()

	select {
	case err := <-done:
		t.Fatalf("Lock() returned %v while a fresh lock existed", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Lock() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Lock() did not return after cancellation")
	}

	if r.Locked() {
		t.Error("Locked() = true after cancelled acquisition")
	}
}

func TestLock_WaiterAcquiresAfterRelease(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	clock := testutil.NewFakeClock(time.Now())

	holder := New(root, WithClock(clock))
	if err := holder.Lock(context.Background(), "holder"); err != nil {
		t.Fatalf("holder Lock() error = %v", err)
	}

	waiter := New(root, WithClock(clock))
	done := make(chan error, 1)
	go func() {
		done <- waiter.Lock(context.Background(), "waiter")
	}()

	// The waiter must stay blocked while the holder's lock is fresh.
	select {
	case err := <-done:
		t.Fatalf("waiter acquired while holder held the lock: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if err := holder.Unlock(); err != nil {
		t.Fatalf("holder Unlock() error = %v", err)
	}

	// Drive the waiter's poll loop until it wins.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("waiter Lock() error = %v", err)
			}
			if !waiter.Locked() {
				t.Error("waiter.Locked() = false after acquisition")
			}
			waiter.Unlock()
			return
		case <-deadline:
			t.Fatal("waiter did not acquire the lock after release")
		default:
			clock.Advance(pollInterval)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestUnlock_NoopWhenNotHeld(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())
	if err := r.Unlock(); err != nil {
		t.Errorf("Unlock() without Lock error = %v, want nil", err)
	}
}

func TestUnlock_SeizedLockIsLeftAlone(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	r := New(root)
	if err := r.Lock(context.Background(), "original"); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	// Another process expired us and took over: replace the token.
	if err := writeLockFile(filepath.Join(root, ".lock"), "seized", "someone-else"); err != nil {
		t.Fatalf("overwrite lock file: %v", err)
	}

	if err := r.Unlock(); err != nil {
		t.Errorf("Unlock() after seizure error = %v, want nil", err)
	}

	// The seizing process's lock must survive.
	reason, token, err := readLockFile(filepath.Join(root, ".lock"))
	if err != nil {
		t.Fatalf("readLockFile() error = %v", err)
	}
	if reason != "seized" || token != "someone-else" {
		t.Errorf("lock file = %q/%q, want untouched seized lock", reason, token)
	}
	if r.Locked() {
		t.Error("Locked() = true after Unlock, local state must clear regardless")
	}
}

func TestUnlock_MissingFileIsNotAnError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	r := New(root)
	if err := r.Lock(context.Background(), "x"); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	if err := os.Remove(filepath.Join(root, ".lock")); err != nil {
		t.Fatalf("remove lock file: %v", err)
	}
	if err := r.Unlock(); err != nil {
		t.Errorf("Unlock() with missing file error = %v, want nil", err)
	}
}

func TestRefresh_TouchesHeldLock(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := testutil.NewFakeClock(base)
	r := New(root, WithClock(clock))

	if err := r.Lock(context.Background(), "long operation"); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	defer r.Unlock()

	clock.Advance(8 * time.Second)
	if err := r.Refresh(); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	fi, err := os.Stat(filepath.Join(root, ".lock"))
	if err != nil {
		t.Fatalf("stat lock file: %v", err)
	}
	if want := base.Add(8 * time.Second); !fi.ModTime().Equal(want) {
		t.Errorf("lock mtime = %v, want %v", fi.ModTime(), want)
	}
}

func TestRefresh_NoopWhenNotHeld(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())
	if err := r.Refresh(); err != nil {
		t.Errorf("Refresh() without Lock error = %v, want nil", err)
	}
}

// writeStaleLock plants a lock file with a pinned modification time.
func writeStaleLock(t *testing.T, root, reason, token string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(root, ".lock")
	if err := writeLockFile(path, reason, token); err != nil {
		t.Fatalf("write lock file: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("set lock mtime: %v", err)
	}
}
