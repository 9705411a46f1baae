// Package adapter drives the local BlueZ adapter object: selecting
// which hciN to use, toggling its power/discoverable/pairable
// properties, tracking connected devices, and managing advertising.
package adapter

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/jy1655/BzPeri/bzpath"
)

const adapterInterface = "org.bluez.Adapter1"

// ErrNotSupported is returned by Controller methods that cover a
// legacy capability BzPeri deliberately does not implement.
var ErrNotSupported = errors.New("adapter: not supported")

// readOnlyProperties may never be set through Controller.SetProperty;
// BlueZ itself computes them.
var readOnlyProperties = map[string]bool{
	"Address": true, "AddressType": true, "Name": true, "Class": true, "UUIDs": true,
	"Modalias": true, "Roles": true, "ExperimentalFeatures": true,
}

// Controller owns the object path of one BlueZ adapter and exposes
// its Adapter1 properties. Generalized from ble/adapter.go's Adapter
// interface, which only ever read cached properties locally; Controller
// issues real org.freedesktop.DBus.Properties.{Get,Set} calls so a
// write actually reaches bluetoothd.
type Controller struct {
	conn *dbus.Conn
	path bzpath.ObjectPath
}

// Discover finds an object exposing org.bluez.Adapter1 under BlueZ's
// ObjectManager tree, mirroring ble/base.go's findObject but walking a
// live GetManagedObjects call instead of a cache built at
// connection-open time. The result is iterated as a Go map, so when
// several adapters are present which one is returned is not defined.
func Discover(conn *dbus.Conn) (*Controller, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	call := conn.Object("org.bluez", "/").Call("org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("adapter: GetManagedObjects: %w", call.Err)
	}
	if err := call.Store(&objects); err != nil {
		return nil, fmt.Errorf("adapter: decode GetManagedObjects: %w", err)
	}
	for path, ifaces := range objects {
		if _, ok := ifaces[adapterInterface]; ok {
			return &Controller{conn: conn, path: bzpath.ObjectPath(path)}, nil
		}
	}
	return nil, fmt.Errorf("adapter: no %s object found on the bus", adapterInterface)
}

// Path returns the adapter's object path, e.g. "/org/bluez/hci0".
func (c *Controller) Path() bzpath.ObjectPath { return c.path }

// GetProperty reads a single Adapter1 property.
func (c *Controller) GetProperty(name string) (dbus.Variant, error) {
	var v dbus.Variant
	call := c.conn.Object("org.bluez", dbus.ObjectPath(c.path)).Call(
		"org.freedesktop.DBus.Properties.Get", 0, adapterInterface, name,
	)
	if call.Err != nil {
		return v, fmt.Errorf("adapter: Get %s: %w", name, call.Err)
	}
	if err := call.Store(&v); err != nil {
		return v, fmt.Errorf("adapter: decode %s: %w", name, err)
	}
	return v, nil
}

// SetProperty writes a single Adapter1 property. It rejects any
// property BlueZ only ever computes (Address, Class, UUIDs, ...).
func (c *Controller) SetProperty(name string, value interface{}) error {
	if readOnlyProperties[name] {
		return fmt.Errorf("adapter: %s is read-only", name)
	}
	call := c.conn.Object("org.bluez", dbus.ObjectPath(c.path)).Call(
		"org.freedesktop.DBus.Properties.Set", 0, adapterInterface, name, dbus.MakeVariant(value),
	)
	if call.Err != nil {
		return fmt.Errorf("adapter: Set %s: %w", name, call.Err)
	}
	return nil
}

// Powered reports whether the adapter radio is on.
func (c *Controller) Powered() (bool, error) {
	v, err := c.GetProperty("Powered")
	if err != nil {
		return false, err
	}
	b, _ := v.Value().(bool)
	return b, nil
}

// SetPowered turns the adapter radio on or off.
func (c *Controller) SetPowered(on bool) error { return c.SetProperty("Powered", on) }

// SetDiscoverable toggles LE discoverability.
func (c *Controller) SetDiscoverable(on bool) error { return c.SetProperty("Discoverable", on) }

// SetPairable toggles pairability.
func (c *Controller) SetPairable(on bool) error { return c.SetProperty("Pairable", on) }

// SetConnectable covers the legacy BR/EDR "connectable" toggle.
// BzPeri targets current BlueZ only, which has no Adapter1 property
// for it, so this always fails without making a bus call.
func (c *Controller) SetConnectable(bool) error { return ErrNotSupported }
