package adapter

import (
	"testing"

	"github.com/jy1655/BzPeri/bzpath"
	"github.com/stretchr/testify/assert"
)

func TestSetPropertyRejectsReadOnlyPropertyWithoutTouchingBus(t *testing.T) {
	c := &Controller{conn: nil, path: bzpath.ObjectPath("/org/bluez/hci0")}
	for _, name := range []string{
		"Address", "AddressType", "Name", "Class", "UUIDs",
		"Modalias", "Roles", "ExperimentalFeatures",
	} {
		err := c.SetProperty(name, "whatever")
		assert.ErrorContains(t, err, "read-only", name)
	}
}

func TestSetPropertyAllowsDiscoveringThroughToTheBus(t *testing.T) {
	assert.False(t, readOnlyProperties["Discovering"])
}

func TestSetConnectableIsAlwaysUnsupported(t *testing.T) {
	c := &Controller{conn: nil, path: bzpath.ObjectPath("/org/bluez/hci0")}
	assert.ErrorIs(t, c.SetConnectable(true), ErrNotSupported)
}

func TestPathReturnsDiscoveredPath(t *testing.T) {
	c := &Controller{path: bzpath.ObjectPath("/org/bluez/hci0")}
	assert.Equal(t, bzpath.ObjectPath("/org/bluez/hci0"), c.Path())
}
