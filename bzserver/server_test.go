package bzserver

import (
	"testing"

	"github.com/jy1655/BzPeri/configure"
	"github.com/jy1655/BzPeri/updatequeue"
	"github.com/stretchr/testify/assert"
)

func TestNewServerStartsUninitialized(t *testing.T) {
	s := New(configure.NewRegistry())
	assert.Equal(t, StateUninitialized, s.RunState())
	assert.False(t, s.IsRunning())
}

func TestConnectedDevicesIsEmptyBeforeStart(t *testing.T) {
	s := New(configure.NewRegistry())
	assert.Empty(t, s.ConnectedDevices())
}

func TestPushEnqueuesOntoQueue(t *testing.T) {
	s := New(configure.NewRegistry())
	s.Push("/com/bzperi/service0/char0", "org.bluez.GattCharacteristic1", "Value")
	e, ok := s.queue.PopBack()
	assert.True(t, ok)
	assert.Equal(t, updatequeue.Entry{
		Path: "/com/bzperi/service0/char0", Interface: "org.bluez.GattCharacteristic1", Property: "Value",
	}, e)
}

func TestTriggerShutdownIsNoopWhenNotRunning(t *testing.T) {
	s := New(configure.NewRegistry())
	s.TriggerShutdown()
	assert.Equal(t, StateUninitialized, s.RunState())
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	s := New(configure.NewRegistry())
	err := s.Start(NewConfig())
	assert.Error(t, err)
	assert.Equal(t, HealthFailedInit, s.Health())
}
