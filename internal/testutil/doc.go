// SPDX-License-Identifier: MPL-2.0

// Package testutil provides shared test infrastructure.
//
// Its main export is the Clock abstraction: production code takes a
// testutil.Clock where it needs to observe time or wait, and tests inject a
// FakeClock to drive behavior like lock-file staleness deterministically,
// without real sleeps.
package testutil
