package dbusx

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/jy1655/BzPeri/bzpath"
)

// RegisterApplication calls org.bluez.GattManager1.RegisterApplication
// for the tree rooted at rootPath on the named adapter object
// (typically "/org/bluez/hci0"). Grounded on
// other_examples/BrooksWimer-SyncSonicPi__gatt_server.go's
// RegisterApplication method.
func (p *Publisher) RegisterApplication(adapterPath, rootPath bzpath.ObjectPath) error {
	call := p.BusObject(adapterPath).Call(
		"org.bluez.GattManager1.RegisterApplication", 0,
		dbus.ObjectPath(rootPath), map[string]dbus.Variant{},
	)
	if call.Err != nil {
		return fmt.Errorf("dbusx: RegisterApplication: %w", call.Err)
	}
	return nil
}

// UnregisterApplication calls GattManager1.UnregisterApplication.
func (p *Publisher) UnregisterApplication(adapterPath, rootPath bzpath.ObjectPath) error {
	call := p.BusObject(adapterPath).Call(
		"org.bluez.GattManager1.UnregisterApplication", 0,
		dbus.ObjectPath(rootPath),
	)
	if call.Err != nil {
		return fmt.Errorf("dbusx: UnregisterApplication: %w", call.Err)
	}
	return nil
}

// RegisterAdvertisement calls
// org.bluez.LEAdvertisingManager1.RegisterAdvertisement for the
// advertisement object at advPath.
func (p *Publisher) RegisterAdvertisement(adapterPath, advPath bzpath.ObjectPath) error {
	call := p.BusObject(adapterPath).Call(
		"org.bluez.LEAdvertisingManager1.RegisterAdvertisement", 0,
		dbus.ObjectPath(advPath), map[string]dbus.Variant{},
	)
	if call.Err != nil {
		return fmt.Errorf("dbusx: RegisterAdvertisement: %w", call.Err)
	}
	return nil
}

// UnregisterAdvertisement calls
// LEAdvertisingManager1.UnregisterAdvertisement.
func (p *Publisher) UnregisterAdvertisement(adapterPath, advPath bzpath.ObjectPath) error {
	call := p.BusObject(adapterPath).Call(
		"org.bluez.LEAdvertisingManager1.UnregisterAdvertisement", 0,
		dbus.ObjectPath(advPath),
	)
	if call.Err != nil {
		return fmt.Errorf("dbusx: UnregisterAdvertisement: %w", call.Err)
	}
	return nil
}
