package gatt

import (
	"testing"

	"github.com/jy1655/BzPeri/bzpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCharacteristicInterfaceRejectsUnknownFlag(t *testing.T) {
	_, err := NewCharacteristicInterface(&CharacteristicData{
		UUID:  bzpath.MustParseUUID("2A19"),
		Flags: []CharacteristicFlag{"bogus"},
	})
	assert.Error(t, err)
}

func TestNewCharacteristicInterfaceRequiresUpdateHandlerForNotify(t *testing.T) {
	_, err := NewCharacteristicInterface(&CharacteristicData{
		UUID:  bzpath.MustParseUUID("2A19"),
		Flags: []CharacteristicFlag{FlagNotify},
	})
	assert.Error(t, err)

	_, err = NewCharacteristicInterface(&CharacteristicData{
		UUID:           bzpath.MustParseUUID("2A19"),
		Flags:          []CharacteristicFlag{FlagNotify},
		OnUpdatedValue: func(conn BusHandle, userData interface{}) error { return nil },
	})
	assert.NoError(t, err)
}

func TestReadValueRejectsWhenNotReadable(t *testing.T) {
	data := &CharacteristicData{
		UUID:  bzpath.MustParseUUID("2A19"),
		Flags: []CharacteristicFlag{FlagWrite},
	}
	iface, err := NewCharacteristicInterface(data)
	require.NoError(t, err)

	m, ok := iface.Method("ReadValue")
	require.True(t, ok)
	inv := &fakeInvocation{}
	m.Handler(nil, "", "ReadValue", nil, inv)
	assert.Empty(t, inv.results)
	assert.Equal(t, "org.bluez.Error.NotPermitted", inv.errName)
}

func TestWriteValueUpdatesCachedValue(t *testing.T) {
	var written []byte
	data := &CharacteristicData{
		UUID:  bzpath.MustParseUUID("2A19"),
		Flags: []CharacteristicFlag{FlagWrite},
		OnWrite: func(b []byte, userData interface{}) error {
			written = b
			return nil
		},
	}
	iface, err := NewCharacteristicInterface(data)
	require.NoError(t, err)

	m, ok := iface.Method("WriteValue")
	require.True(t, ok)
	inv := &fakeInvocation{}
	m.Handler(nil, "", "WriteValue", []Value{Bytes([]byte{1, 2, 3})}, inv)
	assert.Empty(t, inv.errName, inv.errMsg)
	assert.Equal(t, []byte{1, 2, 3}, written)
	assert.Equal(t, []byte{1, 2, 3}, data.Value)
}

func TestStartStopNotifyTogglesNotifyingFlag(t *testing.T) {
	data := &CharacteristicData{
		UUID:           bzpath.MustParseUUID("2A19"),
		Flags:          []CharacteristicFlag{FlagNotify},
		OnUpdatedValue: func(conn BusHandle, userData interface{}) error { return nil },
	}
	iface, err := NewCharacteristicInterface(data)
	require.NoError(t, err)

	start, _ := iface.Method("StartNotify")
	stop, _ := iface.Method("StopNotify")

	start.Handler(nil, "", "StartNotify", nil, &fakeInvocation{})
	assert.True(t, data.Notifying)

	stop.Handler(nil, "", "StopNotify", nil, &fakeInvocation{})
	assert.False(t, data.Notifying)
}

func TestValuePropertyConsultsOnReadBeforeReturning(t *testing.T) {
	calls := 0
	data := &CharacteristicData{
		UUID:  bzpath.MustParseUUID("2A19"),
		Flags: []CharacteristicFlag{FlagRead},
		Value: []byte{0},
		OnRead: func(userData interface{}) ([]byte, error) {
			calls++
			return []byte{byte(calls)}, nil
		},
	}
	iface, err := NewCharacteristicInterface(data)
	require.NoError(t, err)

	prop, ok := iface.Property("Value")
	require.True(t, ok)

	v, err := prop.Get()
	require.NoError(t, err)
	b, _ := v.AsBytes()
	assert.Equal(t, []byte{1}, b)

	v, err = prop.Get()
	require.NoError(t, err)
	b, _ = v.AsBytes()
	assert.Equal(t, []byte{2}, b)
}

func TestStartNotifyRejectsWhenUnsupported(t *testing.T) {
	data := &CharacteristicData{
		UUID:  bzpath.MustParseUUID("2A19"),
		Flags: []CharacteristicFlag{FlagRead},
	}
	iface, err := NewCharacteristicInterface(data)
	require.NoError(t, err)

	start, _ := iface.Method("StartNotify")
	inv := &fakeInvocation{}
	start.Handler(nil, "", "StartNotify", nil, inv)
	assert.Equal(t, "org.bluez.Error.NotSupported", inv.errName)
	assert.False(t, data.Notifying)
}
