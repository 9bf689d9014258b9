package testutil

import "testing"

// Given, When and Then nest subtests so scenario names read as a sentence in
// `go test -v` output, e.g. "Given_0xFOO_has_no_flags/When_looked_up/Then_902".

func Given(t *testing.T, precondition string, steps func(t *testing.T)) bool {
	t.Helper()
	return t.Run("Given "+precondition, steps)
}

func When(t *testing.T, action string, steps func(t *testing.T)) bool {
	t.Helper()
	return t.Run("When "+action, steps)
}

func Then(t *testing.T, outcome string, check func(t *testing.T)) bool {
	t.Helper()
	return t.Run("Then "+outcome, check)
}
