package gatt

import (
	"fmt"

	"github.com/jy1655/BzPeri/bzpath"
)

// AdvertisementType selects between a connectable peripheral
// advertisement and a broadcast-only one.
type AdvertisementType string

const (
	AdvertisementTypePeripheral AdvertisementType = "peripheral"
	AdvertisementTypeBroadcast  AdvertisementType = "broadcast"
)

// AdvertisementInclude names an optional field BlueZ may append to the
// advertising payload on the application's behalf.
type AdvertisementInclude string

const (
	IncludeTxPower     AdvertisementInclude = "tx-power"
	IncludeAppearance  AdvertisementInclude = "appearance"
	IncludeLocalName   AdvertisementInclude = "local-name"
)

// AdvertisementData is the mutable backing store for a
// LEAdvertisement1 interface. ServiceUUIDs, LocalName, and Includes
// together must fit BlueZ's 31-byte advertising payload budget; bzserver
// checks that with the adapter package's FitServiceUUIDsToBudget and
// ValidateAdvertisingBudget before building the interface, not here.
type AdvertisementData struct {
	Type         AdvertisementType
	ServiceUUIDs []bzpath.GattUUID
	Includes     []AdvertisementInclude
	LocalName    string
	Appearance   uint16
	Duration     uint16
	Timeout      uint16
	Discoverable bool

	OnRelease func()
}

// NewAdvertisementInterface builds the org.bluez.LEAdvertisement1
// interface wired to data.
func NewAdvertisementInterface(data *AdvertisementData) (*Interface, error) {
	if data.Type != AdvertisementTypePeripheral && data.Type != AdvertisementTypeBroadcast {
		return nil, fmt.Errorf("gatt: unknown advertisement type %q", data.Type)
	}

	iface := newInterface(KindAdvertisement)

	iface.addProperty(&Property{
		Name: "Type", Signature: "s", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return String(string(data.Type)), nil },
	})
	iface.addProperty(&Property{
		Name: "ServiceUUIDs", Signature: "as", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) {
			vs := make([]Value, len(data.ServiceUUIDs))
			for i, u := range data.ServiceUUIDs {
				vs[i] = String(u.String())
			}
			return Array(vs), nil
		},
	})
	iface.addProperty(&Property{
		Name: "Includes", Signature: "as", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) {
			vs := make([]Value, len(data.Includes))
			for i, inc := range data.Includes {
				vs[i] = String(string(inc))
			}
			return Array(vs), nil
		},
	})
	iface.addProperty(&Property{
		Name: "LocalName", Signature: "s", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) {
			if data.LocalName == "" {
				return Value{}, ErrUnknownProperty
			}
			return String(data.LocalName), nil
		},
	})
	iface.addProperty(&Property{
		Name: "Appearance", Signature: "q", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return Uint16(data.Appearance), nil },
	})
	iface.addProperty(&Property{
		Name: "Duration", Signature: "q", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return Uint16(data.Duration), nil },
	})
	iface.addProperty(&Property{
		Name: "Timeout", Signature: "q", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return Uint16(data.Timeout), nil },
	})
	iface.addProperty(&Property{
		Name: "Discoverable", Signature: "b", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return Bool(data.Discoverable), nil },
	})

	iface.addMethod(&Method{
		Name: "Release",
		Handler: func(conn BusHandle, path bzpath.ObjectPath, method string, args []Value, inv Invocation) {
			if data.OnRelease != nil {
				data.OnRelease()
			}
			inv.Return()
		},
	})

	return iface, nil
}
