// Package integration is a helper for running integration tests.
//
// Integration tests talk to the live openSUSE endpoints. They only run when
// the test binary is built with the "integration" build tag:
//
//	go test -tags integration ./...
//
// Without the tag, [http.DefaultTransport] is replaced with one that refuses
// to dial, so unit tests can't reach the network by accident.
package integration

import "testing"

// Skip will skip the current test or benchmark if this package was built
// without the "integration" build tag.
//
// This should be used as an annotation at the top of the function, like
// (*testing.T).Parallel().
func Skip(t testing.TB) {
	t.Helper()
	if skip {
		t.Skip("skipping integration test: integration tag not provided")
	}
}
