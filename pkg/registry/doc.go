// SPDX-License-Identifier: MPL-2.0

// Package registry implements the local universal-package registry: a
// directory (the registry root) holding the installed-package list, an
// advisory cross-process lock file, and a cache of downloaded package
// archives.
//
// The registry is data only. It records what was installed, where, by what,
// and why; it never reconciles those records against what is actually on
// disk. The installed-package list is rewritten whole on every mutation, so
// callers that read-modify-write must bracket the sequence with Lock and
// Unlock — the store itself enforces no isolation.
//
// The lock is advisory: it works only because every participant checks and
// writes the same well-known file. A lock file older than ten seconds is
// presumed abandoned by a crashed holder and is overwritten.
//
// The package cache is deliberately unlocked. Every cache entry has a
// deterministic, unique path derived from (group, name, version), entries
// are disposable, and two writers racing on the same entry is accepted.
package registry
