package configure

import (
	"fmt"

	"github.com/jy1655/BzPeri/bzpath"
	"github.com/jy1655/BzPeri/gatt"
)

// Application is the closure-built description of a GATT server: an
// ordered list of services, each with an ordered list of
// characteristics and descriptors. It carries no D-Bus state of its
// own — Build turns it into a gatt.Tree once a root path is known.
type Application struct {
	Services []*ServiceBuilder
}

func newApplication() *Application {
	return &Application{}
}

// Service appends a new service description. uuid accepts any form
// ParseUUID understands; fn configures the service in place.
func (a *Application) Service(uuid string, fn func(*ServiceBuilder)) {
	sb := &ServiceBuilder{uuid: bzpath.MustParseUUID(uuid), primary: true}
	fn(sb)
	a.Services = append(a.Services, sb)
}

// ServiceBuilder configures one GattService1 and its characteristics.
type ServiceBuilder struct {
	uuid            bzpath.GattUUID
	primary         bool
	characteristics []*CharacteristicBuilder
}

// Primary overrides the service's Primary property (default true).
func (s *ServiceBuilder) Primary(primary bool) *ServiceBuilder {
	s.primary = primary
	return s
}

// Characteristic appends a characteristic description under this
// service.
func (s *ServiceBuilder) Characteristic(uuid string, fn func(*CharacteristicBuilder)) *ServiceBuilder {
	cb := &CharacteristicBuilder{uuid: bzpath.MustParseUUID(uuid)}
	fn(cb)
	s.characteristics = append(s.characteristics, cb)
	return s
}

// CharacteristicBuilder configures one GattCharacteristic1 and its
// descriptors.
type CharacteristicBuilder struct {
	uuid        bzpath.GattUUID
	flags       []gatt.CharacteristicFlag
	value       []byte
	onRead      gatt.ReadHandler
	onWrite     gatt.WriteHandler
	onUpdated   gatt.UpdatedValueHandler
	userData    interface{}
	dataName    string
	descriptors []*DescriptorBuilder
}

func (c *CharacteristicBuilder) Flags(flags ...gatt.CharacteristicFlag) *CharacteristicBuilder {
	c.flags = flags
	return c
}

func (c *CharacteristicBuilder) InitialValue(v []byte) *CharacteristicBuilder {
	c.value = v
	return c
}

func (c *CharacteristicBuilder) OnRead(h gatt.ReadHandler) *CharacteristicBuilder {
	c.onRead = h
	return c
}

func (c *CharacteristicBuilder) OnWrite(h gatt.WriteHandler) *CharacteristicBuilder {
	c.onWrite = h
	return c
}

func (c *CharacteristicBuilder) OnUpdatedValue(h gatt.UpdatedValueHandler) *CharacteristicBuilder {
	c.onUpdated = h
	return c
}

func (c *CharacteristicBuilder) UserData(v interface{}) *CharacteristicBuilder {
	c.userData = v
	return c
}

// DataName routes this characteristic's reads and writes through the
// host's semantic-name-keyed data callbacks (e.g. "battery/level",
// "text/string") instead of a per-characteristic OnRead/OnWrite
// closure. It is ignored wherever OnRead/OnWrite are also set — those
// take precedence.
func (c *CharacteristicBuilder) DataName(name string) *CharacteristicBuilder {
	c.dataName = name
	return c
}

func (c *CharacteristicBuilder) Descriptor(uuid string, fn func(*DescriptorBuilder)) *CharacteristicBuilder {
	db := &DescriptorBuilder{uuid: bzpath.MustParseUUID(uuid)}
	fn(db)
	c.descriptors = append(c.descriptors, db)
	return c
}

// DescriptorBuilder configures one GattDescriptor1.
type DescriptorBuilder struct {
	uuid     bzpath.GattUUID
	flags    []gatt.DescriptorFlag
	value    []byte
	onRead   gatt.ReadHandler
	onWrite  gatt.WriteHandler
	userData interface{}
}

func (d *DescriptorBuilder) Flags(flags ...gatt.DescriptorFlag) *DescriptorBuilder {
	d.flags = flags
	return d
}

func (d *DescriptorBuilder) InitialValue(v []byte) *DescriptorBuilder {
	d.value = v
	return d
}

func (d *DescriptorBuilder) OnRead(h gatt.ReadHandler) *DescriptorBuilder {
	d.onRead = h
	return d
}

func (d *DescriptorBuilder) OnWrite(h gatt.WriteHandler) *DescriptorBuilder {
	d.onWrite = h
	return d
}

// ServiceUUIDs returns the UUID of every top-level service in
// declaration order, for advertisement payload construction.
func (a *Application) ServiceUUIDs() []bzpath.GattUUID {
	uuids := make([]bzpath.GattUUID, len(a.Services))
	for i, sb := range a.Services {
		uuids[i] = sb.uuid
	}
	return uuids
}

// DataGetter and DataSetter are the host-supplied semantic-name-keyed
// data callbacks a characteristic's DataName binds to: see
// bzserver.Config's DataGetter/DataSetter fields.
type DataGetter func(name string) ([]byte, bool)
type DataSetter func(name string, data []byte) bool

// Build materializes the Application's description into tree, rooted
// at rootID. Services, characteristics, and descriptors are attached
// as serviceN/charN/descN segments in declaration order, mirroring
// bluez-peripheral's conventional numbered object paths. getter and
// setter back any characteristic configured with DataName instead of
// an explicit OnRead/OnWrite.
func (a *Application) Build(tree *gatt.Tree, rootID gatt.NodeID, getter DataGetter, setter DataSetter) error {
	for si, sb := range a.Services {
		svcSeg := fmt.Sprintf("service%d", si)
		svcID, err := tree.AddChild(rootID, svcSeg, true)
		if err != nil {
			return err
		}
		sdata := &gatt.ServiceData{UUID: sb.uuid, Primary: sb.primary}
		if err := tree.AddInterface(svcID, gatt.NewServiceInterface(sdata)); err != nil {
			return err
		}
		svcPath, err := tree.PathOf(svcID)
		if err != nil {
			return err
		}

		for ci, cb := range sb.characteristics {
			charSeg := fmt.Sprintf("char%d", ci)
			charID, err := tree.AddChild(svcID, charSeg, true)
			if err != nil {
				return err
			}
			cdata := &gatt.CharacteristicData{
				UUID:           cb.uuid,
				ServicePath:    svcPath,
				Flags:          cb.flags,
				Value:          cb.value,
				OnRead:         cb.onRead,
				OnWrite:        cb.onWrite,
				OnUpdatedValue: cb.onUpdated,
				UserData:       cb.userData,
			}
			if cdata.OnRead == nil && cb.dataName != "" {
				cdata.OnRead = dataNameReader(cb.dataName, getter)
			}
			if cdata.OnWrite == nil && cb.dataName != "" {
				cdata.OnWrite = dataNameWriter(cb.dataName, setter)
			}
			ciface, err := gatt.NewCharacteristicInterface(cdata)
			if err != nil {
				return fmt.Errorf("configure: service %d characteristic %d: %w", si, ci, err)
			}
			if err := tree.AddInterface(charID, ciface); err != nil {
				return err
			}
			charPath, err := tree.PathOf(charID)
			if err != nil {
				return err
			}

			for di, db := range cb.descriptors {
				descSeg := fmt.Sprintf("desc%d", di)
				descID, err := tree.AddChild(charID, descSeg, true)
				if err != nil {
					return err
				}
				ddata := &gatt.DescriptorData{
					UUID:               db.uuid,
					CharacteristicPath: charPath,
					Flags:              db.flags,
					Value:              db.value,
					OnRead:             db.onRead,
					OnWrite:            db.onWrite,
					UserData:           db.userData,
				}
				diface, err := gatt.NewDescriptorInterface(ddata)
				if err != nil {
					return fmt.Errorf("configure: service %d characteristic %d descriptor %d: %w", si, ci, di, err)
				}
				if err := tree.AddInterface(descID, diface); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// dataNameReader adapts a semantic-name-keyed getter into a
// gatt.ReadHandler for one fixed name.
func dataNameReader(name string, getter DataGetter) gatt.ReadHandler {
	return func(interface{}) ([]byte, error) {
		if getter == nil {
			return nil, fmt.Errorf("configure: %q has no data getter configured", name)
		}
		b, ok := getter(name)
		if !ok {
			return nil, fmt.Errorf("configure: no value available for %q", name)
		}
		return b, nil
	}
}

// dataNameWriter adapts a semantic-name-keyed setter into a
// gatt.WriteHandler for one fixed name.
func dataNameWriter(name string, setter DataSetter) gatt.WriteHandler {
	return func(data []byte, _ interface{}) error {
		if setter == nil || !setter(name, data) {
			return fmt.Errorf("configure: write to %q rejected", name)
		}
		return nil
	}
}
