// Package dbusx is the only BzPeri package that imports godbus
// directly: it owns the system bus connection, exports the gatt.Tree
// as live D-Bus objects, and translates PropertiesChanged and
// ObjectManager signals at the wire boundary.
package dbusx

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
	"github.com/jy1655/BzPeri/bzpath"
	"github.com/jy1655/BzPeri/gatt"
)

// Publisher owns a system-bus connection carrying a single well-known
// name and the gatt.Tree exported under it. Generalized from the
// teacher's Connection (ble/base.go), which only ever read the bus;
// Publisher also claims a name and exports objects onto it.
type Publisher struct {
	conn    *dbus.Conn
	busName string
	tree    *gatt.Tree
	props   map[bzpath.ObjectPath]*prop.Properties
}

// Open connects to the system bus and claims busName exclusively.
func Open(busName string) (*Publisher, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("dbusx: connect to system bus: %w", err)
	}
	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("dbusx: request name %s: %w", busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("dbusx: name %s already owned on the bus", busName)
	}
	return &Publisher{
		conn:    conn,
		busName: busName,
		props:   make(map[bzpath.ObjectPath]*prop.Properties),
	}, nil
}

// Conn returns the underlying connection, passed to gatt method
// handlers as their opaque gatt.BusHandle.
func (p *Publisher) Conn() *dbus.Conn { return p.conn }

// BusObject returns a handle to a BlueZ object on the system bus, for
// calling into org.bluez methods (adapter/advertising/GATT managers).
func (p *Publisher) BusObject(path bzpath.ObjectPath) dbus.BusObject {
	return p.conn.Object("org.bluez", dbus.ObjectPath(path))
}

// Close releases the bus name and closes the connection.
func (p *Publisher) Close() error {
	p.conn.ReleaseName(p.busName)
	return p.conn.Close()
}
