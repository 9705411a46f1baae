package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape --config loads, mirroring the
// subset of bzserver.Config and this command's own flags a deployment
// typically wants to pin in one file rather than pass on every
// invocation. AdvertisingShortName is decoded but applyFileConfig does
// not apply it; the short name always follows the advertising name.
type fileConfig struct {
	ServiceName          string `yaml:"service_name"`
	AdvertisingName      string `yaml:"advertising_name"`
	AdvertisingShortName string `yaml:"advertising_short_name"`
	Manufacturer         string `yaml:"manufacturer"`
	LogLevel             string `yaml:"log_level"`
	LogFile              string `yaml:"log_file"`
	MQTTBroker           string `yaml:"mqtt_broker"`
	MQTTTopic            string `yaml:"mqtt_topic"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}
