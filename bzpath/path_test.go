package bzpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRejectsSlash(t *testing.T) {
	root, err := New("/com/bzperi")
	require.NoError(t, err)

	_, err = root.Append("a/b")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestAppendRejectsNonIdentifier(t *testing.T) {
	root := Root
	_, err := root.Append("battery-level")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestAppendBuildsChildPath(t *testing.T) {
	root, err := New("/com/bzperi")
	require.NoError(t, err)

	svc := root.MustAppend("battery")
	char := svc.MustAppend("level")

	assert.Equal(t, ObjectPath("/com/bzperi/battery"), svc)
	assert.Equal(t, ObjectPath("/com/bzperi/battery/level"), char)
}

func TestParentAndBase(t *testing.T) {
	p := ObjectPath("/com/bzperi/battery/level")
	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Equal(t, ObjectPath("/com/bzperi/battery"), parent)
	assert.Equal(t, "level", p.Base())

	_, ok = Root.Parent()
	assert.False(t, ok)
}

func TestNewRejectsMissingLeadingSlash(t *testing.T) {
	_, err := New("com/bzperi")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
