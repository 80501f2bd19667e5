// SPDX-License-Identifier: MPL-2.0

// Package upackver implements the universal-package version model.
//
// A version has the form major.minor.patch[-prerelease][+build], where the
// numeric components are arbitrary-precision and the whole value carries a
// strict total order (see Version.Compare). A VersionRange expresses a
// constraint over versions: the wildcard "*", an exact version, or a
// bounded/half-bounded interval with inclusive or exclusive edges.
//
// Values in this package are immutable once constructed and are compared by
// value only.
package upackver
