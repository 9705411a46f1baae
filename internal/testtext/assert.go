// Package testtext provides a multi-line text assertion helper for
// tests that compare generated documents (introspection XML, rendered
// config) against a fixed expected value. Grounded on
// srgg-blecli/internal/testutils/textassert.go, trimmed to the options
// BzPeri's own tests exercise.
package testtext

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
)

// TestingT is the subset of *testing.T Asserter needs, matching
// testify's own reporter interfaces so a fake can stand in for *testing.T
// in tests that check the failure path itself.
type TestingT interface {
	Helper()
	Errorf(format string, args ...interface{})
}

// Asserter compares actual text against expected text and reports a
// unified diff on mismatch instead of testify's default
// side-by-side string dump, which is unreadable past a few lines of
// XML or YAML.
type Asserter struct {
	t         TestingT
	trimSpace bool
}

// New returns an Asserter reporting failures through t.
func New(t TestingT) *Asserter {
	return &Asserter{t: t}
}

// TrimSpace makes Equal ignore leading/trailing whitespace on the
// whole document before comparing, useful when the generator and the
// fixture disagree only on a trailing newline.
func (a *Asserter) TrimSpace() *Asserter {
	a.trimSpace = true
	return a
}

// Equal fails the test with a unified diff if actual and expected
// differ.
func (a *Asserter) Equal(actual, expected string) {
	a.t.Helper()

	normActual, normExpected := actual, expected
	if a.trimSpace {
		normActual = strings.TrimSpace(normActual)
		normExpected = strings.TrimSpace(normExpected)
	}
	if normActual == normExpected {
		return
	}

	edits := myers.ComputeEdits("", normExpected, normActual)
	unified := gotextdiff.ToUnified("expected", "actual", normExpected, edits)
	a.t.Errorf("text assertion failed, unified diff:\n%s", fmt.Sprint(unified))
}
