package main

import (
	"fmt"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jy1655/BzPeri/internal/blelog"
	"github.com/jy1655/BzPeri/samples/deviceinfo"
)

var mqttLog = blelog.New("cmd.mqtt")

// textBridge connects the text characteristic to an MQTT topic:
// messages published to the topic update the characteristic through
// Store.SetText, which notifies subscribed centrals. Writes by a
// central to the characteristic are not forwarded to the topic; the
// only outbound traffic is what Publish sends. Grounded on
// bleadapter/mqtt.go's client-options-and-Publish shape, generalized
// from a fire-and-forget publish helper into a connected, subscribed
// client.
type textBridge struct {
	client mqtt.Client
	topic  string
}

// connectTextBridge dials broker and subscribes to topic, calling
// store.SetText for every message received on it.
func connectTextBridge(broker, topic string, store *deviceinfo.Store) (*textBridge, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID()).SetCleanSession(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("cmd: connect to mqtt broker %s: %w", broker, token.Error())
	}

	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		store.SetText(string(msg.Payload()))
	})
	if token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("cmd: subscribe to %s: %w", topic, token.Error())
	}

	mqttLog.Debugf("bridging text characteristic with mqtt topic %s on %s", topic, broker)
	return &textBridge{client: client, topic: topic}, nil
}

// Publish sends value to the bridged topic as a non-retained QoS 0
// message. The sample host uses it for its periodic heartbeat.
func (b *textBridge) Publish(value string) {
	b.client.Publish(b.topic, 0, false, value)
}

// Close disconnects the bridge's MQTT client.
func (b *textBridge) Close() {
	b.client.Disconnect(250)
}

func clientID() string {
	return fmt.Sprintf("bzperi-%d", os.Getpid())
}
