package dbusx

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
	"github.com/jy1655/BzPeri/bzpath"
	"github.com/jy1655/BzPeri/gatt"
)

// syncInvocation adapts gatt.Invocation's Return/Error calls into a
// plain struct a godbus-exported method can read back synchronously,
// since reflection-exported methods must return their result in the
// same call that received the request.
type syncInvocation struct {
	results []gatt.Value
	errName string
	errMsg  string
}

func (s *syncInvocation) Return(results ...gatt.Value) { s.results = results }
func (s *syncInvocation) Error(name, message string)   { s.errName, s.errMsg = name, message }

func (s *syncInvocation) dbusError() *dbus.Error {
	if s.errName == "" {
		return nil
	}
	return dbus.NewError(s.errName, []interface{}{s.errMsg})
}

// PublishTree exports every node of tree onto the bus: method tables
// for whichever of the five Interface variants the node holds,
// property tables shared across all interfaces at a path, and an
// Introspectable handler backed by gatt's XML generator. Grounded on
// other_examples/mikoaf-mikoafble__gatts_linux.go's prop.Export +
// bus.Export(obj, path, iface) pairing, generalized from one fixed set
// of exported objects to a walk over an arbitrary tree.
func (p *Publisher) PublishTree(tree *gatt.Tree) error {
	p.tree = tree
	var exportErr error
	tree.Walk(func(path bzpath.ObjectPath, n *gatt.Node) {
		if exportErr != nil {
			return
		}
		exportErr = p.exportNode(path, n)
	})
	return exportErr
}

func (p *Publisher) exportNode(path bzpath.ObjectPath, n *gatt.Node) error {
	objPath := dbus.ObjectPath(path)

	if err := p.conn.Export(&introspectable{tree: p.tree, path: path}, objPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return err
	}

	propSpec := make(map[string]map[string]*prop.Prop)
	for _, iface := range n.Interfaces() {
		switch iface.Kind {
		case gatt.KindGattCharacteristic:
			if err := p.conn.Export(&characteristicExport{pub: p, path: path}, objPath, iface.Name); err != nil {
				return err
			}
		case gatt.KindGattDescriptor:
			if err := p.conn.Export(&descriptorExport{pub: p, path: path}, objPath, iface.Name); err != nil {
				return err
			}
		case gatt.KindAdvertisement:
			if err := p.conn.Export(&advertisementExport{pub: p, path: path}, objPath, iface.Name); err != nil {
				return err
			}
		case gatt.KindObjectManager:
			if err := p.conn.Export(&objectManagerExport{tree: p.tree}, objPath, iface.Name); err != nil {
				return err
			}
		case gatt.KindGattService:
			// GattService1 has no methods; properties only.
		}
		propSpec[iface.Name] = propsFor(iface)
	}
	if len(propSpec) > 0 {
		props, err := prop.Export(p.conn, objPath, propSpec)
		if err != nil {
			return err
		}
		p.props[path] = props
	}
	return nil
}

func propsFor(iface *gatt.Interface) map[string]*prop.Prop {
	out := make(map[string]*prop.Prop, iface.Properties.Len())
	for pair := iface.Properties.Oldest(); pair != nil; pair = pair.Next() {
		property := pair.Value
		var value interface{}
		if property.Get != nil {
			if v, err := property.Get(); err == nil {
				value = toRaw(v)
			}
		}
		emit := prop.EmitFalse
		if property.Flags.EmitsChange {
			emit = prop.EmitTrue
		}
		out[property.Name] = &prop.Prop{
			Value:    value,
			Writable: property.Flags.Write,
			Emit:     emit,
		}
	}
	return out
}

type introspectable struct {
	tree *gatt.Tree
	path bzpath.ObjectPath
}

func (i *introspectable) Introspect() (string, *dbus.Error) {
	xml, err := i.tree.IntrospectXML(i.path)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return xml, nil
}

type characteristicExport struct {
	pub  *Publisher
	path bzpath.ObjectPath
}

func (c *characteristicExport) ReadValue(options map[string]dbus.Variant) ([]byte, *dbus.Error) {
	inv := &syncInvocation{}
	if _, err := c.pub.tree.CallMethod(c.pub, c.path, "org.bluez.GattCharacteristic1", "ReadValue", []gatt.Value{fromRaw(options)}, inv); err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	if err := inv.dbusError(); err != nil {
		return nil, err
	}
	if len(inv.results) == 0 {
		return nil, nil
	}
	b, _ := inv.results[0].AsBytes()
	return b, nil
}

func (c *characteristicExport) WriteValue(value []byte, options map[string]dbus.Variant) *dbus.Error {
	inv := &syncInvocation{}
	args := []gatt.Value{gatt.Bytes(value), fromRaw(options)}
	if _, err := c.pub.tree.CallMethod(c.pub, c.path, "org.bluez.GattCharacteristic1", "WriteValue", args, inv); err != nil {
		return dbus.MakeFailedError(err)
	}
	return inv.dbusError()
}

func (c *characteristicExport) StartNotify() *dbus.Error {
	inv := &syncInvocation{}
	if _, err := c.pub.tree.CallMethod(c.pub, c.path, "org.bluez.GattCharacteristic1", "StartNotify", nil, inv); err != nil {
		return dbus.MakeFailedError(err)
	}
	return inv.dbusError()
}

func (c *characteristicExport) StopNotify() *dbus.Error {
	inv := &syncInvocation{}
	if _, err := c.pub.tree.CallMethod(c.pub, c.path, "org.bluez.GattCharacteristic1", "StopNotify", nil, inv); err != nil {
		return dbus.MakeFailedError(err)
	}
	return inv.dbusError()
}

type descriptorExport struct {
	pub  *Publisher
	path bzpath.ObjectPath
}

func (d *descriptorExport) ReadValue(options map[string]dbus.Variant) ([]byte, *dbus.Error) {
	inv := &syncInvocation{}
	if _, err := d.pub.tree.CallMethod(d.pub, d.path, "org.bluez.GattDescriptor1", "ReadValue", []gatt.Value{fromRaw(options)}, inv); err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	if err := inv.dbusError(); err != nil {
		return nil, err
	}
	if len(inv.results) == 0 {
		return nil, nil
	}
	b, _ := inv.results[0].AsBytes()
	return b, nil
}

func (d *descriptorExport) WriteValue(value []byte, options map[string]dbus.Variant) *dbus.Error {
	inv := &syncInvocation{}
	args := []gatt.Value{gatt.Bytes(value), fromRaw(options)}
	if _, err := d.pub.tree.CallMethod(d.pub, d.path, "org.bluez.GattDescriptor1", "WriteValue", args, inv); err != nil {
		return dbus.MakeFailedError(err)
	}
	return inv.dbusError()
}

type advertisementExport struct {
	pub  *Publisher
	path bzpath.ObjectPath
}

func (a *advertisementExport) Release() *dbus.Error {
	inv := &syncInvocation{}
	if _, err := a.pub.tree.CallMethod(a.pub, a.path, "org.bluez.LEAdvertisement1", "Release", nil, inv); err != nil {
		return dbus.MakeFailedError(err)
	}
	return inv.dbusError()
}

type objectManagerExport struct {
	tree *gatt.Tree
}

func (o *objectManagerExport) GetManagedObjects() (map[dbus.ObjectPath]map[string]map[string]dbus.Variant, *dbus.Error) {
	objects := o.tree.GetManagedObjects()
	out := make(map[dbus.ObjectPath]map[string]map[string]dbus.Variant, len(objects))
	for path, ifaces := range objects {
		ifaceOut := make(map[string]map[string]dbus.Variant, len(ifaces))
		for ifaceName, props := range ifaces {
			propOut := make(map[string]dbus.Variant, len(props))
			for name, v := range props {
				inner, ok := v.AsVariant()
				if !ok {
					inner = v
				}
				propOut[name] = dbus.MakeVariant(toRaw(inner))
			}
			ifaceOut[ifaceName] = propOut
		}
		out[dbus.ObjectPath(path)] = ifaceOut
	}
	return out, nil
}
