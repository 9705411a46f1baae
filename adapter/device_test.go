package adapter

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func devicePath() dbus.ObjectPath {
	return dbus.ObjectPath("/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF")
}

func TestInterfacesAddedWithConnectedTrueTracksDevice(t *testing.T) {
	var events []bool
	tr := NewDeviceTracker(func(path dbus.ObjectPath, connected bool) {
		events = append(events, connected)
	})

	tr.HandleSignal(&dbus.Signal{
		Name: "org.freedesktop.DBus.ObjectManager.InterfacesAdded",
		Path: devicePath(),
		Body: []interface{}{
			devicePath(),
			map[string]map[string]dbus.Variant{
				deviceInterface: {"Connected": dbus.MakeVariant(true)},
			},
		},
	})

	assert.True(t, tr.IsConnected(devicePath()))
	assert.Equal(t, 1, tr.Count())
	assert.Equal(t, []bool{true}, events)
}

func TestInterfacesRemovedDropsDevice(t *testing.T) {
	tr := NewDeviceTracker(nil)
	tr.setConnected(devicePath(), true)

	tr.HandleSignal(&dbus.Signal{
		Name: "org.freedesktop.DBus.ObjectManager.InterfacesRemoved",
		Path: devicePath(),
		Body: []interface{}{
			devicePath(),
			[]string{"org.freedesktop.DBus.Properties", deviceInterface},
		},
	})

	assert.False(t, tr.IsConnected(devicePath()))
	assert.Equal(t, 0, tr.Count())
}

func TestPropertiesChangedTogglesConnected(t *testing.T) {
	tr := NewDeviceTracker(nil)
	tr.setConnected(devicePath(), true)

	tr.HandleSignal(&dbus.Signal{
		Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
		Path: devicePath(),
		Body: []interface{}{
			deviceInterface,
			map[string]dbus.Variant{"Connected": dbus.MakeVariant(false)},
			[]string{},
		},
	})

	assert.False(t, tr.IsConnected(devicePath()))
}

func TestPropertiesChangedIgnoresOtherInterfaces(t *testing.T) {
	tr := NewDeviceTracker(nil)
	tr.setConnected(devicePath(), true)

	tr.HandleSignal(&dbus.Signal{
		Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
		Path: devicePath(),
		Body: []interface{}{
			"org.bluez.GattCharacteristic1",
			map[string]dbus.Variant{"Value": dbus.MakeVariant([]byte{1})},
			[]string{},
		},
	})

	assert.True(t, tr.IsConnected(devicePath()))
}

func TestHandleSignalIgnoresUnrelatedSignal(t *testing.T) {
	tr := NewDeviceTracker(nil)
	tr.HandleSignal(&dbus.Signal{Name: "org.freedesktop.DBus.NameOwnerChanged"})
	assert.Equal(t, 0, tr.Count())
}
