package gatt

import (
	"fmt"

	"github.com/jy1655/BzPeri/bzpath"
)

// CharacteristicFlag is one of the access-policy flags BlueZ accepts
// for org.bluez.GattCharacteristic1.
type CharacteristicFlag string

const (
	FlagRead                      CharacteristicFlag = "read"
	FlagWrite                     CharacteristicFlag = "write"
	FlagWriteWithoutResponse       CharacteristicFlag = "write-without-response"
	FlagNotify                    CharacteristicFlag = "notify"
	FlagIndicate                  CharacteristicFlag = "indicate"
	FlagAuthenticatedSignedWrites CharacteristicFlag = "authenticated-signed-writes"
	FlagEncryptRead               CharacteristicFlag = "encrypt-read"
	FlagEncryptWrite              CharacteristicFlag = "encrypt-write"
	FlagEncryptAuthenticatedRead  CharacteristicFlag = "encrypt-authenticated-read"
	FlagEncryptAuthenticatedWrite CharacteristicFlag = "encrypt-authenticated-write"
	FlagSecureRead                CharacteristicFlag = "secure-read"
	FlagSecureWrite               CharacteristicFlag = "secure-write"
)

var validCharacteristicFlags = map[CharacteristicFlag]bool{
	FlagRead: true, FlagWrite: true, FlagWriteWithoutResponse: true,
	FlagNotify: true, FlagIndicate: true, FlagAuthenticatedSignedWrites: true,
	FlagEncryptRead: true, FlagEncryptWrite: true, FlagEncryptAuthenticatedRead: true,
	FlagEncryptAuthenticatedWrite: true, FlagSecureRead: true, FlagSecureWrite: true,
}

// ReadHandler supplies the current value of a characteristic or
// descriptor when a remote client calls ReadValue.
type ReadHandler func(userData interface{}) ([]byte, error)

// WriteHandler accepts a value written by a remote client.
type WriteHandler func(data []byte, userData interface{}) error

// UpdatedValueHandler runs when the update queue's dispatcher pops an
// entry for this characteristic/descriptor, just before bzserver emits
// PropertiesChanged for it through the D-Bus publisher. The handler
// itself does not need to emit anything; it is supplied by the
// application and may refresh backing state before the value is
// re-read.
type UpdatedValueHandler func(conn BusHandle, userData interface{}) error

// CharacteristicData is the mutable backing store for a
// GattCharacteristic1 interface.
type CharacteristicData struct {
	UUID        bzpath.GattUUID
	ServicePath bzpath.ObjectPath
	Flags       []CharacteristicFlag
	Value       []byte
	Notifying   bool

	OnRead         ReadHandler
	OnWrite        WriteHandler
	OnUpdatedValue UpdatedValueHandler
	UserData       interface{}
}

func (d *CharacteristicData) hasFlag(f CharacteristicFlag) bool {
	for _, flag := range d.Flags {
		if flag == f {
			return true
		}
	}
	return false
}

// ValidateCharacteristicFlags rejects unknown flag strings.
func ValidateCharacteristicFlags(flags []CharacteristicFlag) error {
	for _, f := range flags {
		if !validCharacteristicFlags[f] {
			return fmt.Errorf("gatt: unknown characteristic flag %q", f)
		}
	}
	return nil
}

// NewCharacteristicInterface builds the org.bluez.GattCharacteristic1
// interface wired to data. It enforces the invariant that any
// characteristic advertising notify/indicate must have an invokable
// OnUpdatedValue handler.
func NewCharacteristicInterface(data *CharacteristicData) (*Interface, error) {
	if err := ValidateCharacteristicFlags(data.Flags); err != nil {
		return nil, err
	}
	if (data.hasFlag(FlagNotify) || data.hasFlag(FlagIndicate)) && data.OnUpdatedValue == nil {
		return nil, fmt.Errorf("gatt: characteristic %s advertises notify/indicate but has no OnUpdatedValue handler", data.UUID)
	}

	iface := newInterface(KindGattCharacteristic)
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
		Name: "Service", Signature: "o", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return ObjectPath(data.ServicePath), nil },
	})
	iface.addProperty(&Property{
		Name: "Flags", Signature: "as", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return Array(flagStrings), nil },
	})
	iface.addProperty(&Property{
		Name: "Value", Signature: "ay", Flags: PropertyFlags{Read: true, EmitsChange: true},
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
	iface.addProperty(&Property{
		Name: "Notifying", Signature: "b", Flags: PropertyFlags{Read: true},
		Get: func() (Value, error) { return Bool(data.Notifying), nil },
	})

	iface.addMethod(&Method{
		Name: "ReadValue", InSignature: []string{"a{sv}"}, OutSignature: "ay",
		Handler: func(conn BusHandle, path bzpath.ObjectPath, method string, args []Value, inv Invocation) {
			if !data.hasFlag(FlagRead) {
				inv.Error("org.bluez.Error.NotPermitted", "characteristic is not readable")
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
			if !data.hasFlag(FlagWrite) && !data.hasFlag(FlagWriteWithoutResponse) {
				inv.Error("org.bluez.Error.NotPermitted", "characteristic is not writable")
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
	iface.addMethod(&Method{
		Name: "StartNotify",
		Handler: func(conn BusHandle, path bzpath.ObjectPath, method string, args []Value, inv Invocation) {
			if !data.hasFlag(FlagNotify) && !data.hasFlag(FlagIndicate) {
				inv.Error("org.bluez.Error.NotSupported", "characteristic does not support notifications")
				return
			}
			data.Notifying = true
			inv.Return()
		},
	})
	iface.addMethod(&Method{
		Name: "StopNotify",
		Handler: func(conn BusHandle, path bzpath.ObjectPath, method string, args []Value, inv Invocation) {
			data.Notifying = false
			inv.Return()
		},
	})

	return iface, nil
}
