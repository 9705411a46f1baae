package gatt

import "github.com/jy1655/BzPeri/bzpath"

// ServiceData is the mutable backing store for a GattService1
// interface.
type ServiceData struct {
	UUID    bzpath.GattUUID
	Primary bool
}

// NewServiceInterface builds the org.bluez.GattService1 interface
// wired to data.
func NewServiceInterface(data *ServiceData) *Interface {
	iface := newInterface(KindGattService)
	iface.addProperty(&Property{
		Name:      "UUID",
		Signature: "s",
		Flags:     PropertyFlags{Read: true},
		Get:       func() (Value, error) { return String(data.UUID.String()), nil },
	})
	iface.addProperty(&Property{
		Name:      "Primary",
		Signature: "b",
		Flags:     PropertyFlags{Read: true},
		Get:       func() (Value, error) { return Bool(data.Primary), nil },
	})
	return iface
}
