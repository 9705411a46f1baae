package gatt

import (
	"testing"

	"github.com/jy1655/BzPeri/bzpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdvertisementInterfaceRejectsUnknownType(t *testing.T) {
	_, err := NewAdvertisementInterface(&AdvertisementData{Type: "bogus"})
	assert.Error(t, err)
}

func TestAdvertisementReleaseInvokesCallback(t *testing.T) {
	released := false
	data := &AdvertisementData{
		Type:      AdvertisementTypePeripheral,
		OnRelease: func() { released = true },
	}
	iface, err := NewAdvertisementInterface(data)
	require.NoError(t, err)

	m, ok := iface.Method("Release")
	require.True(t, ok)
	m.Handler(nil, "", "Release", nil, &fakeInvocation{})
	assert.True(t, released)
}

func TestAdvertisementServiceUUIDsProperty(t *testing.T) {
	data := &AdvertisementData{
		Type:         AdvertisementTypePeripheral,
		ServiceUUIDs: []bzpath.GattUUID{bzpath.MustParseUUID("180F")},
	}
	iface, err := NewAdvertisementInterface(data)
	require.NoError(t, err)

	prop, ok := iface.Property("ServiceUUIDs")
	require.True(t, ok)
	v, err := prop.Get()
	require.NoError(t, err)
	arr, ok := v.AsArray()
	require.True(t, ok)
	require.Len(t, arr, 1)
	s, _ := arr[0].AsString()
	assert.Equal(t, "0000180F-0000-1000-8000-00805F9B34FB", s)
}
