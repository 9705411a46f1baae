package gatt

import (
	"testing"

	"github.com/jy1655/BzPeri/bzpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptorInterfaceRejectsUnknownFlag(t *testing.T) {
	_, err := NewDescriptorInterface(&DescriptorData{
		UUID:  bzpath.MustParseUUID("2904"),
		Flags: []DescriptorFlag{"bogus"},
	})
	assert.Error(t, err)
}

func TestDescriptorReadValueReturnsCachedValue(t *testing.T) {
	data := &DescriptorData{
		UUID:  bzpath.MustParseUUID("2904"),
		Flags: []DescriptorFlag{DescriptorFlagRead},
		Value: []byte{7},
	}
	iface, err := NewDescriptorInterface(data)
	require.NoError(t, err)

	m, _ := iface.Method("ReadValue")
	inv := &fakeInvocation{}
	m.Handler(nil, "", "ReadValue", nil, inv)
	require.Len(t, inv.results, 1)
	b, ok := inv.results[0].AsBytes()
	require.True(t, ok)
	assert.Equal(t, []byte{7}, b)
}

func TestDescriptorWriteValueRejectsWhenNotWritable(t *testing.T) {
	data := &DescriptorData{
		UUID:  bzpath.MustParseUUID("2904"),
		Flags: []DescriptorFlag{DescriptorFlagRead},
	}
	iface, err := NewDescriptorInterface(data)
	require.NoError(t, err)

	m, _ := iface.Method("WriteValue")
	inv := &fakeInvocation{}
	m.Handler(nil, "", "WriteValue", []Value{Bytes([]byte{1})}, inv)
	assert.Equal(t, "org.bluez.Error.NotPermitted", inv.errName)
}
