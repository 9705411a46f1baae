package gatt

import (
	"fmt"

	"github.com/jy1655/BzPeri/bzpath"
)

// DescriptorFlag is one of the access-policy flags BlueZ accepts for
// org.bluez.GattDescriptor1.
type DescriptorFlag string

const (
	DescriptorFlagRead                      DescriptorFlag = "read"
	DescriptorFlagWrite                     DescriptorFlag = "write"
	DescriptorFlagEncryptRead               DescriptorFlag = "encrypt-read"
	DescriptorFlagEncryptWrite              DescriptorFlag = "encrypt-write"
	DescriptorFlagEncryptAuthenticatedRead  DescriptorFlag = "encrypt-authenticated-read"
	DescriptorFlagEncryptAuthenticatedWrite DescriptorFlag = "encrypt-authenticated-write"
	DescriptorFlagSecureRead                DescriptorFlag = "secure-read"
	DescriptorFlagSecureWrite               DescriptorFlag = "secure-write"
)

var validDescriptorFlags = map[DescriptorFlag]bool{
	DescriptorFlagRead: true, DescriptorFlagWrite: true,
	DescriptorFlagEncryptRead: true, DescriptorFlagEncryptWrite: true,
	DescriptorFlagEncryptAuthenticatedRead: true, DescriptorFlagEncryptAuthenticatedWrite: true,
	DescriptorFlagSecureRead: true, DescriptorFlagSecureWrite: true,
}

// DescriptorData is the mutable backing store for a GattDescriptor1
// interface.
type DescriptorData struct {
	UUID               bzpath.GattUUID
	CharacteristicPath bzpath.ObjectPath
	Flags              []DescriptorFlag
	Value              []byte

	OnRead         ReadHandler
	OnWrite        WriteHandler
	OnUpdatedValue UpdatedValueHandler
	UserData       interface{}
}

func (d *DescriptorData) hasFlag(f DescriptorFlag) bool {
	for _, flag := range d.Flags {
		if flag == f {
			return true
		}
	}
	return false
}

// ValidateDescriptorFlags rejects unknown flag strings.
func ValidateDescriptorFlags(flags []DescriptorFlag) error {
	for _, f := range flags {
		if !validDescriptorFlags[f] {
			return fmt.Errorf("gatt: unknown descriptor flag %q", f)
		}
	}
	return nil
}

// NewDescriptorInterface builds the org.bluez.GattDescriptor1
// interface wired to data.
func NewDescriptorInterface(data *DescriptorData) (*Interface, error) {
	if err := ValidateDescriptorFlags(data.Flags); err != nil {
		return nil, err
	}

	iface := newInterface(KindGattDescriptor)
	if data.OnUpdatedValue != nil {
		iface.UpdatedValue = func(conn BusHandle) error { return data.OnUpdatedValue(conn, data.UserData) }
	}
	flagStrings := make([]Value, len(data.Flags))
	for i, f := range data.Flags {
		flagStrings[i] = String(string(f))
	}

	iface.addProperty(&Property{
		Name: "UUID", Signature: "s", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return String(data.UUID.String()), nil },
	})
	iface.addProperty(&Property{
		Name: "Characteristic", Signature: "o", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return ObjectPath(data.CharacteristicPath), nil },
	})
	iface.addProperty(&Property{
		Name: "Flags", Signature: "as", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return Array(flagStrings), nil },
	})
	iface.addProperty(&Property{
		Name: "Value", Signature: "ay", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) {
			if data.OnRead != nil {
				b, err := data.OnRead(data.UserData)
				if err != nil {
					return Value{}, err
				}
				data.Value = b
			}
			return Bytes(data.Value), nil
		},
	})

	iface.addMethod(&Method{
		Name: "ReadValue", InSignature: []string{"a{sv}"}, OutSignature: "ay",
		Handler: func(conn BusHandle, path bzpath.ObjectPath, method string, args []Value, inv Invocation) {
			if !data.hasFlag(DescriptorFlagRead) {
				inv.Error("org.bluez.Error.NotPermitted", "descriptor is not readable")
				return
			}
			if data.OnRead != nil {
				b, err := data.OnRead(data.UserData)
				if err != nil {
					inv.Error("org.bluez.Error.Failed", err.Error())
					return
				}
				data.Value = b
			}
			inv.Return(Bytes(data.Value))
		},
	})
	iface.addMethod(&Method{
		Name: "WriteValue", InSignature: []string{"ay", "a{sv}"}, OutSignature: "",
		Handler: func(conn BusHandle, path bzpath.ObjectPath, method string, args []Value, inv Invocation) {
			if !data.hasFlag(DescriptorFlagWrite) {
				inv.Error("org.bluez.Error.NotPermitted", "descriptor is not writable")
				return
			}
			if len(args) == 0 {
				inv.Error("org.bluez.Error.InvalidArguments", "missing value argument")
				return
			}
			b, ok := args[0].AsBytes()
			if !ok {
				inv.Error("org.bluez.Error.InvalidArguments", "value argument is not a byte array")
				return
			}
			if data.OnWrite != nil {
				if err := data.OnWrite(b, data.UserData); err != nil {
					inv.Error("org.bluez.Error.Failed", err.Error())
					return
				}
			}
			data.Value = b
			inv.Return()
		},
	})

	return iface, nil
}
