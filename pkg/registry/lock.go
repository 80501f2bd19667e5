// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// lockFileName is the well-known lock file inside a registry root.
	lockFileName = ".lock"

	// staleAfter is the age past which a lock file is presumed abandoned
	// by a crashed holder. Any legitimate holder either finishes or calls
	// Refresh well inside this window.
	staleAfter = 10 * time.Second

	// pollInterval is the delay between acquisition attempts while a fresh
	// lock belonging to someone else is observed.
	pollInterval = 500 * time.Millisecond

	// defaultLockReason is written when the caller gives no reason.
	defaultLockReason = "Locked by upack"
)

func (r *Registry) lockPath() string {
	return filepath.Join(r.root, lockFileName)
}

// Lock acquires the registry's advisory cross-process lock, blocking until
// no unexpired lock owned by someone else exists. The lock file carries two
// lines: a human-readable reason and a random token identifying this
// session.
//
// Acquisition polls: while a lock file younger than the staleness window
// exists, Lock waits one poll interval and re-checks, honoring ctx
// cancellation at every iteration. Once no fresh lock is observed the file
// is written and immediately read back; losing that read-back race (another
// process wrote in between) restarts the loop. There is no iteration cap —
// a caller that needs a deadline bounds ctx itself.
func (r *Registry) Lock(ctx context.Context, reason string) error {
	if r.lockToken != "" {
		return errors.New("acquire registry lock: already held by this instance")
	}
	if reason == "" {
		reason = defaultLockReason
	}
	token := uuid.NewString()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("acquire registry lock: %w", err)
		}

		// A readable lock file younger than the staleness window belongs to
		// a live holder: wait and re-check. A stat failure or an unreadable
		// file is treated the same as no lock.
		if fi, err := os.Stat(r.lockPath()); err == nil {
			age := r.clock.Since(fi.ModTime())
			if age <= staleAfter {
				if err := r.waitPoll(ctx); err != nil {
					return err
				}
				continue
			}
			slog.Debug("seizing stale registry lock", "path", r.lockPath(), "age", age)
		}

		if err := os.MkdirAll(r.root, 0o755); err != nil {
			return fmt.Errorf("create registry root: %w", err)
		}

		// Write, then read back. Contention (another process holding the
		// file open, or winning the race between our check and our write)
		// shows up as an I/O error or a mismatched read-back; both restart
		// the loop, where the winner's fresh lock is then observed.
		if err := writeLockFile(r.lockPath(), reason, token); err != nil {
			continue
		}
		gotReason, gotToken, err := readLockFile(r.lockPath())
		if err != nil || gotReason != reason || gotToken != token {
			continue
		}

		r.lockToken = token
		return nil
	}
}

// Refresh re-touches the held lock's timestamp so a long operation stays
// inside the staleness window. It is a no-op when the lock is not held.
func (r *Registry) Refresh() error {
	if r.lockToken == "" {
		return nil
	}
	now := r.clock.Now()
	if err := os.Chtimes(r.lockPath(), now, now); err != nil {
		return fmt.Errorf("refresh registry lock: %w", err)
	}
	return nil
}

// Unlock releases the lock held by this instance. The lock file is deleted
// only when its token still matches ours; a mismatch means the lock expired
// and was seized by someone else, which is not an error. Local state is
// cleared unconditionally, so Unlock is a no-op when not holding.
func (r *Registry) Unlock() error {
	if r.lockToken == "" {
		return nil
	}
	held := r.lockToken
	r.lockToken = ""

	_, token, err := readLockFile(r.lockPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("release registry lock: %w", err)
	}
	if token != held {
		return nil
	}

	if err := os.Remove(r.lockPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release registry lock: %w", err)
	}
	return nil
}

// Locked reports whether this instance currently holds the lock.
func (r *Registry) Locked() bool { return r.lockToken != "" }

// waitPoll sleeps one poll interval on the registry's clock, returning
// early on ctx cancellation.
func (r *Registry) waitPoll(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("acquire registry lock: %w", ctx.Err())
	case <-r.clock.After(pollInterval):
		return nil
	}
}

// writeLockFile writes the two-line lock file: reason, then token.
func writeLockFile(path, reason, token string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(reason + "\n" + token + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readLockFile reads the two-line lock file back.
func readLockFile(path string) (reason, token string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return "", "", fmt.Errorf("lock file %s is malformed", path)
	}
	return lines[0], lines[1], nil
}
