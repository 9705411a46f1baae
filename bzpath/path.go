// Package bzpath provides the typed object-path and UUID primitives
// every other BzPeri package builds on.
package bzpath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned when an object-path segment is malformed.
var ErrInvalidPath = errors.New("bzpath: invalid object path segment")

// ObjectPath is a validated D-Bus object path: a non-empty sequence of
// ASCII identifier segments joined by '/', prefixed with '/'.
type ObjectPath string

// Root is the D-Bus root path "/".
const Root ObjectPath = "/"

// New validates and returns p as an ObjectPath. p must already be in
// canonical "/a/b/c" form; use Append to build one segment at a time.
func New(p string) (ObjectPath, error) {
	if p == "" || p[0] != '/' {
		return "", fmt.Errorf("%w: %q must start with '/'", ErrInvalidPath, p)
	}
	if p == "/" {
		return Root, nil
	}
	for _, seg := range strings.Split(p[1:], "/") {
		if !isValidSegment(seg) {
			return "", fmt.Errorf("%w: segment %q in %q", ErrInvalidPath, seg, p)
		}
	}
	return ObjectPath(p), nil
}

// Append returns a new path with segment appended as a child element.
// segment must match [A-Za-z0-9_]+; it must not itself contain '/'.
func (p ObjectPath) Append(segment string) (ObjectPath, error) {
	if !isValidSegment(segment) {
		return "", fmt.Errorf("%w: segment %q", ErrInvalidPath, segment)
	}
	if p == Root || p == "" {
		return ObjectPath("/" + segment), nil
	}
	return p + "/" + ObjectPath(segment), nil
}

// MustAppend is like Append but panics on error; it exists for use in
// configurators and tests where the segment is a compile-time literal.
func (p ObjectPath) MustAppend(segment string) ObjectPath {
	out, err := p.Append(segment)
	if err != nil {
		panic(err)
	}
	return out
}

// Segments splits the path into its identifier elements.
func (p ObjectPath) Segments() []string {
	s := string(p)
	if s == "" || s == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(s, "/"), "/")
}

// Parent returns the path with its final segment removed, and false if
// p has no parent (p is the root).
func (p ObjectPath) Parent() (ObjectPath, bool) {
	segs := p.Segments()
	if len(segs) <= 1 {
		return Root, len(segs) == 1
	}
	return ObjectPath("/" + strings.Join(segs[:len(segs)-1], "/")), true
}

// Base returns the final segment of the path, or "" for the root.
func (p ObjectPath) Base() string {
	segs := p.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

func isValidSegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
