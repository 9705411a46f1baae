package gatt

import (
	"github.com/jy1655/BzPeri/bzpath"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// InterfaceKind tags which of the five polymorphic D-Bus interface
// variants an Interface value implements.
type InterfaceKind int

const (
	KindGattService InterfaceKind = iota
	KindGattCharacteristic
	KindGattDescriptor
	KindObjectManager
	KindAdvertisement
)

func (k InterfaceKind) String() string {
	switch k {
	case KindGattService:
		return "org.bluez.GattService1"
	case KindGattCharacteristic:
		return "org.bluez.GattCharacteristic1"
	case KindGattDescriptor:
		return "org.bluez.GattDescriptor1"
	case KindObjectManager:
		return "org.freedesktop.DBus.ObjectManager"
	case KindAdvertisement:
		return "org.bluez.LEAdvertisement1"
	default:
		return "unknown"
	}
}

// BusHandle is an opaque reference to the D-Bus connection a method
// handler may need (e.g. to emit a signal); gatt never dereferences it.
// Package dbusx supplies the concrete *dbus.Conn.
type BusHandle interface{}

// Invocation is how a Method handler completes an inbound D-Bus call:
// exactly one of Return or Error must be called.
type Invocation interface {
	Return(results ...Value)
	Error(name, message string)
}

// MethodHandler implements one GATT/D-Bus method. It receives the bus
// handle, the object path the call targeted, the method name, the
// decoded arguments, and the invocation to complete.
type MethodHandler func(conn BusHandle, path bzpath.ObjectPath, method string, args []Value, inv Invocation)

// Method is one callable operation on an Interface.
type Method struct {
	Name         string
	InSignature  []string
	OutSignature string
	Handler      MethodHandler
}

// PropertyFlags mirrors the D-Bus property access/change-notification
// flags BlueZ exposes on a GATT object.
type PropertyFlags struct {
	Read        bool
	Write       bool
	EmitsChange bool
}

// PropertyGetter returns a property's current value, or a typed error
// to surface to the D-Bus caller.
type PropertyGetter func() (Value, error)

// PropertySetter accepts a new property value, returning a typed error
// on rejection.
type PropertySetter func(Value) error

// Property is one named, typed attribute on an Interface.
type Property struct {
	Name      string
	Signature string
	Flags     PropertyFlags
	Get       PropertyGetter
	Set       PropertySetter
}

// Signal is metadata about a signal an Interface may emit; gatt only
// records its shape for introspection — emission happens in dbusx.
type Signal struct {
	Name      string
	Signature []string
}

// Interface is a named D-Bus interface attached to a Node. Methods,
// Properties, and Signals preserve insertion order so introspection
// XML and GetManagedObjects output are deterministic.
type Interface struct {
	Name       string
	Kind       InterfaceKind
	Methods    *orderedmap.OrderedMap[string, *Method]
	Properties *orderedmap.OrderedMap[string, *Property]
	Signals    *orderedmap.OrderedMap[string, *Signal]

	// UpdatedValue, when set, is invoked by the update queue's
	// dispatcher when a pushed entry names this interface's object
	// path. Only characteristics/descriptors with an OnUpdatedValue
	// handler configured ever set it.
	UpdatedValue func(conn BusHandle) error
}

func newInterface(kind InterfaceKind) *Interface {
	return &Interface{
		Name:       kind.String(),
		Kind:       kind,
		Methods:    orderedmap.New[string, *Method](),
		Properties: orderedmap.New[string, *Property](),
		Signals:    orderedmap.New[string, *Signal](),
	}
}

func (i *Interface) addMethod(m *Method) {
	i.Methods.Set(m.Name, m)
}

func (i *Interface) addProperty(p *Property) {
	i.Properties.Set(p.Name, p)
}

func (i *Interface) addSignal(s *Signal) {
	i.Signals.Set(s.Name, s)
}

// Property looks up a property by name.
func (i *Interface) Property(name string) (*Property, bool) {
	return i.Properties.Get(name)
}

// Method looks up a method by name.
func (i *Interface) Method(name string) (*Method, bool) {
	return i.Methods.Get(name)
}

// snapshotProperties returns the interface's current property values
// (read in declaration order into an unordered map), for
// GetManagedObjects.
func (i *Interface) snapshotProperties() map[string]Value {
	out := make(map[string]Value, i.Properties.Len())
	for pair := i.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		if prop.Get == nil {
			continue
		}
		v, err := prop.Get()
		if err != nil {
			continue
		}
		out[prop.Name] = v
	}
	return out
}
