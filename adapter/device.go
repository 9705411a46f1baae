package adapter

import (
	"sync"

	"github.com/deckarep/golang-set/v2"
	"github.com/godbus/dbus/v5"
)

const deviceInterface = "org.bluez.Device1"

// DeviceTracker maintains the set of central object paths currently
// connected to this peripheral. Generalized from
// bleadapter/interfaceAdded.go's HandleDeviceAdded,
// bleadapter/interfaceRemoved.go's HandleInterfaceRemoved, and
// bleadapter/propertiesChanged.go's HandleDevicePropertyChanged, which
// only ever logged and forwarded to a ClearBlade platform publish
// call; DeviceTracker instead keeps the live membership itself so a
// server can answer "who is connected" without re-walking the bus.
type DeviceTracker struct {
	mu        sync.Mutex
	connected mapset.Set[dbus.ObjectPath]
	onChange  func(path dbus.ObjectPath, connected bool)
}

// NewDeviceTracker returns an empty tracker. onChange, if non-nil, is
// invoked every time a device's Connected state flips.
func NewDeviceTracker(onChange func(path dbus.ObjectPath, connected bool)) *DeviceTracker {
	return &DeviceTracker{
		connected: mapset.NewSet[dbus.ObjectPath](),
		onChange:  onChange,
	}
}

// Connected reports the object paths of every currently connected
// device, in no particular order.
func (d *DeviceTracker) Connected() []dbus.ObjectPath {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected.ToSlice()
}

// Count reports how many devices are currently connected.
func (d *DeviceTracker) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected.Cardinality()
}

// IsConnected reports whether path is currently tracked as connected.
func (d *DeviceTracker) IsConnected(path dbus.ObjectPath) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected.Contains(path)
}

// HandleSignal dispatches one manager signal to the matching handler.
// Unrelated signals (NameOwnerChanged, non-Device1 InterfacesAdded,
// PropertiesChanged for a GATT object) are ignored, mirroring
// bleadapter/propertiesChanged.go's HandlePropertyChanged switch.
func (d *DeviceTracker) HandleSignal(signal *dbus.Signal) {
	switch signal.Name {
	case "org.freedesktop.DBus.ObjectManager.InterfacesAdded":
		d.handleInterfacesAdded(signal)
	case "org.freedesktop.DBus.ObjectManager.InterfacesRemoved":
		d.handleInterfacesRemoved(signal)
	case "org.freedesktop.DBus.Properties.PropertiesChanged":
		d.handlePropertiesChanged(signal)
	}
}

func (d *DeviceTracker) handleInterfacesAdded(signal *dbus.Signal) {
	if len(signal.Body) != 2 {
		return
	}
	// signal.Path is the ObjectManager's own path; the added object's
	// path is the first body argument.
	path, ok := signal.Body[0].(dbus.ObjectPath)
	if !ok {
		return
	}
	ifaces, ok := signal.Body[1].(map[string]map[string]dbus.Variant)
	if !ok {
		return
	}
	props, ok := ifaces[deviceInterface]
	if !ok {
		return
	}
	connected := false
	if v, ok := props["Connected"]; ok {
		connected, _ = v.Value().(bool)
	}
	if connected {
		d.setConnected(path, true)
	}
}

func (d *DeviceTracker) handleInterfacesRemoved(signal *dbus.Signal) {
	if len(signal.Body) != 2 {
		return
	}
	path, ok := signal.Body[0].(dbus.ObjectPath)
	if !ok {
		return
	}
	removed, ok := signal.Body[1].([]string)
	if !ok {
		return
	}
	for _, iface := range removed {
		if iface == deviceInterface {
			d.setConnected(path, false)
			return
		}
	}
}

func (d *DeviceTracker) handlePropertiesChanged(signal *dbus.Signal) {
	if len(signal.Body) != 3 {
		return
	}
	iface, ok := signal.Body[0].(string)
	if !ok || iface != deviceInterface {
		return
	}
	changed, ok := signal.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}
	v, ok := changed["Connected"]
	if !ok {
		return
	}
	connected, _ := v.Value().(bool)
	d.setConnected(signal.Path, connected)
}

func (d *DeviceTracker) setConnected(path dbus.ObjectPath, connected bool) {
	d.mu.Lock()
	var changed bool
	if connected {
		changed = !d.connected.Contains(path)
		d.connected.Add(path)
	} else {
		changed = d.connected.Contains(path)
		d.connected.Remove(path)
	}
	d.mu.Unlock()
	if changed && d.onChange != nil {
		d.onChange(path, connected)
	}
}
