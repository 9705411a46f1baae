package dbusx

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/jy1655/BzPeri/bzpath"
	"github.com/jy1655/BzPeri/gatt"
)

// addMatch/removeMatch are a direct port of ble/discover.go's helpers
// of the same name, generalized from the two discovery-only match
// rules to any rule a caller names.
func (p *Publisher) addMatch(rule string) error {
	return p.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err
}

func (p *Publisher) removeMatch(rule string) error {
	return p.conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, rule).Err
}

// SignalSubscription bundles a raw signal channel with the match rules
// that feed it, so callers can cleanly unwind both together.
type SignalSubscription struct {
	Signals chan *dbus.Signal
	pub     *Publisher
	rules   []string
}

// managerSignalRules are the match rules SubscribeManagerSignals
// registers, scoped to org.bluez so this process never receives
// ObjectManager/Properties traffic from unrelated services sharing
// the system bus, and to arg0='org.bluez' so NameOwnerChanged only
// fires for bluetoothd itself.
var managerSignalRules = []string{
	"type='signal',sender='org.bluez',interface='org.freedesktop.DBus.ObjectManager',member='InterfacesAdded'",
	"type='signal',sender='org.bluez',interface='org.freedesktop.DBus.ObjectManager',member='InterfacesRemoved'",
	"type='signal',sender='org.bluez',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged'",
	"type='signal',sender='org.freedesktop.DBus',member='NameOwnerChanged',arg0='org.bluez'",
}

// SubscribeManagerSignals registers the four managerSignalRules:
// InterfacesAdded/InterfacesRemoved and PropertiesChanged sent by
// org.bluez, which the device tracker uses to follow connecting and
// disconnecting devices, and NameOwnerChanged for org.bluez, which the
// recoverer uses to notice bluetoothd restarting.
func (p *Publisher) SubscribeManagerSignals() (*SignalSubscription, error) {
	rules := managerSignalRules
	sub := &SignalSubscription{Signals: make(chan *dbus.Signal, 32), pub: p}
	p.conn.Signal(sub.Signals)
	for _, rule := range rules {
		if err := p.addMatch(rule); err != nil {
			sub.Close()
			return nil, fmt.Errorf("dbusx: add match %q: %w", rule, err)
		}
		sub.rules = append(sub.rules, rule)
	}
	return sub, nil
}

// Close removes every match rule this subscription registered and
// stops delivery to Signals.
func (s *SignalSubscription) Close() {
	for _, rule := range s.rules {
		s.pub.removeMatch(rule)
	}
	s.pub.conn.RemoveSignal(s.Signals)
	close(s.Signals)
}

// EmitPropertiesChanged re-reads propName on ifaceName at path from the
// tree and stores it in the exported property table, which emits
// PropertiesChanged for properties marked EmitsChange. bzserver calls
// it for each dispatched update entry, after the interface's
// UpdatedValue hook, so gatt itself never imports godbus.
func (p *Publisher) EmitPropertiesChanged(path bzpath.ObjectPath, ifaceName, propName string) error {
	props, ok := p.props[path]
	if !ok {
		return fmt.Errorf("dbusx: no exported properties at %s", path)
	}
	iface, err := p.tree.FindInterface(path, ifaceName)
	if err != nil {
		return err
	}
	prop, ok := iface.Property(propName)
	if !ok {
		return fmt.Errorf("%w: %s on %s", gatt.ErrUnknownProperty, propName, path)
	}
	v, err := prop.Get()
	if err != nil {
		return err
	}
	// SetMust is the server-side setter; Set is the remote-caller
	// D-Bus method and rejects properties that are not Writable.
	props.SetMust(ifaceName, propName, toRaw(v))
	return nil
}
