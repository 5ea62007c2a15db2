// Package release tags and publishes versions of the mbedtargets module.
//
// It is the engine behind cmd/mbedrelease, run by CI after a merge. Git
// commands go through a [Runner] so the sequence can be rehearsed with
// [DryRunner] or checked in tests.
package release
