// Command bzperi hosts a BzPeri GATT peripheral advertising a Device
// Information, Battery, and Text service, generalized from the
// teacher's single-purpose main.go (ClearBlade device client launcher)
// into a standalone peripheral process with its own CLI surface.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jy1655/BzPeri/bzserver"
	"github.com/jy1655/BzPeri/configure"
	"github.com/jy1655/BzPeri/internal/blelog"
	"github.com/jy1655/BzPeri/samples/deviceinfo"
)

const initialBatteryLevel byte = 100

var (
	flagServiceName     string
	flagAdvertisingName string
	flagManufacturer    string
	flagLogLevel        string
	flagLogFile         string
	flagConfigFile      string
	flagMQTTBroker      string
	flagMQTTTopic       string
)

func main() {
	root := &cobra.Command{
		Use:   "bzperi",
		Short: "Host a BlueZ GATT peripheral advertising sample services",
		RunE:  run,
	}
	root.Flags().StringVar(&flagServiceName, "service-name", "bzperi", "dotted service name, e.g. bzperi.myapp")
	root.Flags().StringVar(&flagAdvertisingName, "advertising-name", "BzPeri", "adapter alias advertised to centrals")
	root.Flags().StringVar(&flagManufacturer, "manufacturer", "BzPeri Project", "Manufacturer Name String value")
	root.Flags().StringVar(&flagLogLevel, "log-level", "WARN", "DEBUG, WARN, or ERROR")
	root.Flags().StringVar(&flagLogFile, "log-file", "", "rotating log file path (optional, stderr always receives output)")
	root.Flags().StringVar(&flagConfigFile, "config", "", "YAML config file overriding the flags above (optional)")
	root.Flags().StringVar(&flagMQTTBroker, "mqtt-broker", "", "MQTT broker URL bridging the text characteristic (optional)")
	root.Flags().StringVar(&flagMQTTTopic, "mqtt-topic", "bzperi/text", "MQTT topic bridged to the text characteristic")

	if err := root.Execute(); err != nil {
		color.Red("bzperi: %v", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagConfigFile != "" {
		fc, err := loadFileConfig(flagConfigFile)
		if err != nil {
			return err
		}
		applyFileConfig(fc)
	}

	if err := blelog.Setup(blelog.Level(flagLogLevel), logFile()); err != nil {
		return err
	}

	registry := configure.NewRegistry()
	store := deviceinfo.Register(registry, flagManufacturer)

	cfg := bzserver.NewConfig()
	cfg.ServiceName = flagServiceName
	cfg.AdvertisingName = flagAdvertisingName
	cfg.AdvertisingShortName = flagAdvertisingName
	values := newValueStore()
	values.Set(deviceinfo.BatteryLevelName, []byte{initialBatteryLevel})
	values.Set(deviceinfo.TextName, nil)
	cfg.DataGetter = values.Get
	cfg.DataSetter = values.Set

	srv := bzserver.New(registry)
	if err := srv.Start(cfg); err != nil {
		return err
	}
	store.Bind(srv, cfg.RootPath(), configure.DataSetter(values.Set))
	color.Green("bzperi: advertising as %s (%s)", flagAdvertisingName, cfg.BusName())

	var bridge *textBridge
	if flagMQTTBroker != "" {
		b, err := connectTextBridge(flagMQTTBroker, flagMQTTTopic, store)
		if err != nil {
			color.Yellow("bzperi: mqtt bridge disabled: %v", err)
		} else {
			bridge = b
			defer bridge.Close()
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	level := initialBatteryLevel

	for {
		select {
		case <-stop:
			color.Cyan("bzperi: shutting down")
			srv.TriggerShutdown()
			srv.WaitUntilStopped()
			return nil
		case <-ticker.C:
			level--
			if level == 0 {
				level = 100
			}
			store.SetBatteryLevel(level)
			if bridge != nil {
				bridge.Publish("tick")
			}
		}
	}
}

func applyFileConfig(fc *fileConfig) {
	if fc.ServiceName != "" {
		flagServiceName = fc.ServiceName
	}
	if fc.AdvertisingName != "" {
		flagAdvertisingName = fc.AdvertisingName
	}
	if fc.Manufacturer != "" {
		flagManufacturer = fc.Manufacturer
	}
	if fc.LogLevel != "" {
		flagLogLevel = fc.LogLevel
	}
	if fc.LogFile != "" {
		flagLogFile = fc.LogFile
	}
	if fc.MQTTBroker != "" {
		flagMQTTBroker = fc.MQTTBroker
	}
	if fc.MQTTTopic != "" {
		flagMQTTTopic = fc.MQTTTopic
	}
}

func logFile() *blelog.FileConfig {
	if flagLogFile == "" {
		return nil
	}
	return &blelog.FileConfig{Path: flagLogFile}
}

// valueStore backs bzserver.Config's DataGetter/DataSetter callbacks
// with a plain in-memory map; a real deployment would persist this to
// disk or a backend service instead.
type valueStore struct {
	data map[string][]byte
}

func newValueStore() *valueStore { return &valueStore{data: make(map[string][]byte)} }

func (v *valueStore) Get(name string) ([]byte, bool) {
	b, ok := v.data[name]
	return b, ok
}

func (v *valueStore) Set(name string, data []byte) bool {
	v.data[name] = data
	return true
}
