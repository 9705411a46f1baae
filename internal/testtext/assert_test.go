package testtext

import (
	"strings"
	"testing"
)

func TestEqualPassesOnIdenticalText(t *testing.T) {
	a := New(t)
	a.Equal("line one\nline two\n", "line one\nline two\n")
}

func TestEqualIgnoresSurroundingWhitespaceWithTrimSpace(t *testing.T) {
	a := New(t).TrimSpace()
	a.Equal("\n  body  \n", "  body  ")
}

// fakeT records Errorf calls instead of failing the real test, so the
// mismatch path can be asserted directly.
type fakeT struct {
	errors []string
}

func (f *fakeT) Helper() {}
func (f *fakeT) Errorf(format string, args ...interface{}) {
	f.errors = append(f.errors, format)
}

func TestEqualReportsUnifiedDiffOnMismatch(t *testing.T) {
	fake := &fakeT{}
	a := New(fake)
	a.Equal("actual line\n", "expected line\n")

	if len(fake.errors) != 1 {
		t.Fatalf("expected exactly one Errorf call, got %d", len(fake.errors))
	}
	if !strings.Contains(fake.errors[0], "unified diff") {
		t.Fatalf("expected diff message, got %q", fake.errors[0])
	}
}
