// Package deviceinfo is a reference application built on the
// configure DSL: a read-only Device Information service, a Battery
// service with notified level updates, and a read/write/notify Text
// service for exercising the full characteristic lifecycle end to
// end. Grounded on the Service/Characteristic shapes in
// paypal-gatt/characteristic.go, whose ReadHandler/WriteHandler/
// NotifyHandler are plain closures over captured state; the battery
// and text characteristics here instead route through DataName so
// the host's semantic-name-keyed data callbacks are what actually
// back them.
package deviceinfo

import (
	"sync"

	"github.com/jy1655/BzPeri/bzpath"
	"github.com/jy1655/BzPeri/bzserver"
	"github.com/jy1655/BzPeri/configure"
	"github.com/jy1655/BzPeri/gatt"
)

const (
	deviceInfoServiceUUID = "180A"
	manufacturerNameUUID  = "2A29"

	batteryServiceUUID = "180F"
	batteryLevelUUID   = "2A19"

	textServiceUUID = "e95d6100-251d-470a-a062-fa1922dfa9a8"
	textCharUUID    = "e95d6101-251d-470a-a062-fa1922dfa9a8"

	// BatteryLevelName and TextName are the semantic names the
	// battery and text characteristics are registered under with
	// bzserver.Config's DataGetter/DataSetter.
	BatteryLevelName = "battery/level"
	TextName         = "text/string"
)

// noopUpdatedValue satisfies the notify/indicate invariant
// NewCharacteristicInterface enforces. The Value property already
// re-reads OnRead on every Get, so the dispatcher's
// CallUpdatedValue step has nothing left to do before
// EmitPropertiesChanged picks up the new value.
func noopUpdatedValue(conn gatt.BusHandle, userData interface{}) error { return nil }

// Register adds the device information, battery, and text services to
// registry and returns a Store the host process can use to push
// battery-level and text updates onto srv after Start succeeds. The
// battery and text characteristics are registered with DataName, so
// their reads and writes both flow through whatever DataGetter/
// DataSetter the bzserver.Config they are eventually Start()ed with
// supplies.
func Register(registry *configure.Registry, manufacturer string) *Store {
	store := &Store{}

	registry.Register(func(app *configure.Application) error {
		app.Service(deviceInfoServiceUUID, func(s *configure.ServiceBuilder) {
			s.Characteristic(manufacturerNameUUID, func(c *configure.CharacteristicBuilder) {
				c.Flags(gatt.FlagRead).InitialValue([]byte(manufacturer))
			})
		})

		app.Service(batteryServiceUUID, func(s *configure.ServiceBuilder) {
			s.Characteristic(batteryLevelUUID, func(c *configure.CharacteristicBuilder) {
				c.Flags(gatt.FlagRead, gatt.FlagNotify).
					DataName(BatteryLevelName).
					OnUpdatedValue(noopUpdatedValue)
			})
		})

		app.Service(textServiceUUID, func(s *configure.ServiceBuilder) {
			s.Characteristic(textCharUUID, func(c *configure.CharacteristicBuilder) {
				c.Flags(gatt.FlagRead, gatt.FlagWrite, gatt.FlagNotify).
					DataName(TextName).
					OnUpdatedValue(noopUpdatedValue)
			})
		})
		return nil
	})

	return store
}

// Store pushes battery-level and text updates, written through a
// host-supplied setter, onto a running bzserver.Server's update
// queue so remote centrals are notified of the change.
type Store struct {
	mu     sync.Mutex
	setter configure.DataSetter

	srv             *bzserver.Server
	batteryCharPath bzpath.ObjectPath
	textCharPath    bzpath.ObjectPath
}

// Bind records the running server, the object paths Register's tree
// assigned to the battery level and text characteristics, and the
// setter SetBatteryLevel/SetText write through before notifying.
// deviceinfo's services are always registered first, second, and
// third in declaration order, giving predictable "service0"/
// "service1"/"service2" paths under the configure DSL's numbering
// scheme. setter should be the same func backing the Config that was
// passed to Start, typically Config.DataSetter itself.
func (s *Store) Bind(srv *bzserver.Server, rootPath bzpath.ObjectPath, setter configure.DataSetter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.srv = srv
	s.setter = setter
	s.batteryCharPath = rootPath.MustAppend("service1").MustAppend("char0")
	s.textCharPath = rootPath.MustAppend("service2").MustAppend("char0")
}

// SetBatteryLevel writes pct through the bound setter under the name
// BatteryLevelName and, if bound to a running server, queues a
// notification.
func (s *Store) SetBatteryLevel(pct byte) {
	s.mu.Lock()
	setter, path := s.setter, s.batteryCharPath
	s.mu.Unlock()
	if setter != nil {
		setter(BatteryLevelName, []byte{pct})
	}
	s.notify(path)
}

// SetText writes text through the bound setter under the name
// TextName, mirroring what a remote WriteValue does, and queues a
// notification.
func (s *Store) SetText(text string) {
	s.mu.Lock()
	setter, path := s.setter, s.textCharPath
	s.mu.Unlock()
	if setter != nil {
		setter(TextName, []byte(text))
	}
	s.notify(path)
}

func (s *Store) notify(path bzpath.ObjectPath) {
	if s.srv == nil || path == "" {
		return
	}
	s.srv.Push(path, "org.bluez.GattCharacteristic1", "Value")
}
