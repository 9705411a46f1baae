// Package bzserver ties the tree, publisher, adapter controller, and
// update dispatcher into one run-state/health-tracked process, the
// direct generalization of bleadapter/bleadapter.go's BleAdapter.Start.
package bzserver

import (
	"fmt"
	"time"

	defaults "github.com/mcuadros/go-defaults"
	"github.com/jy1655/BzPeri/bzpath"
)

// Config describes one BzPeri process. Unlike the teacher, which reads
// ClearBlade platform collections for adapter/filter configuration
// (bleadapter.go's getAdapterConfig/getDeviceFilters), BzPeri's caller
// supplies a config struct directly; defaults are filled in with
// github.com/mcuadros/go-defaults struct tags the way srgg-blecli's
// test helpers use the same library.
type Config struct {
	ServiceName          string        `default:"bzperi"`
	AdvertisingName      string        `default:"BzPeri"`
	AdvertisingShortName string        `default:"BzPeri"`
	EnableBondable       bool          `default:"true"`
	InitTimeout          time.Duration `default:"30s"`

	PreferredAdapter string

	DataGetter func(name string) ([]byte, bool)
	DataSetter func(name string, data []byte) bool
}

// NewConfig returns a Config with every default-tagged field filled
// in; callers override what they need before calling Validate.
func NewConfig() *Config {
	c := &Config{}
	defaults.SetDefaults(c)
	return c
}

// Validate checks the fields that must hold before configurator
// application runs: a legal service name, non-nil advertising names,
// an init timeout within [100ms, 60s], and non-nil data callbacks.
func (c *Config) Validate() error {
	if err := bzpath.ValidateServiceName(c.ServiceName); err != nil {
		return err
	}
	// AdvertisingName/AdvertisingShortName may be empty, meaning "do
	// not rename the adapter"; Go strings are never nil, so there is
	// nothing further to reject here.
	if c.InitTimeout < 100*time.Millisecond || c.InitTimeout > 60*time.Second {
		return fmt.Errorf("bzserver: init_timeout %s out of range [100ms, 60s]", c.InitTimeout)
	}
	if c.DataGetter == nil {
		return fmt.Errorf("bzserver: data getter callback is required")
	}
	if c.DataSetter == nil {
		return fmt.Errorf("bzserver: data setter callback is required")
	}
	return nil
}

// BusName returns the well-known D-Bus name this config will request.
func (c *Config) BusName() string { return bzpath.DerivedBusName(c.ServiceName) }

// RootPath returns the root object path this config's tree is built under.
func (c *Config) RootPath() bzpath.ObjectPath { return bzpath.DerivedRootPath(c.ServiceName) }
