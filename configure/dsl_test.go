package configure

import (
	"testing"

	"github.com/jy1655/BzPeri/bzpath"
	"github.com/jy1655/BzPeri/gatt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationBuildWiresServiceAndCharacteristic(t *testing.T) {
	app := newApplication()
	app.Service("180F", func(s *ServiceBuilder) {
		s.Characteristic("2A19", func(c *CharacteristicBuilder) {
			c.Flags(gatt.FlagRead).InitialValue([]byte{99})
		})
	})

	root, err := bzpath.New("/com/bzperi")
	require.NoError(t, err)
	tree := gatt.NewTree(root)

	require.NoError(t, app.Build(tree, tree.RootID(), nil, nil))

	charPath := root.MustAppend("service0").MustAppend("char0")
	iface, err := tree.FindInterface(charPath, "org.bluez.GattCharacteristic1")
	require.NoError(t, err)
	prop, ok := iface.Property("Value")
	require.True(t, ok)
	v, err := prop.Get()
	require.NoError(t, err)
	b, ok := v.AsBytes()
	require.True(t, ok)
	assert.Equal(t, []byte{99}, b)
}

func TestApplicationBuildPropagatesCharacteristicError(t *testing.T) {
	app := newApplication()
	app.Service("180F", func(s *ServiceBuilder) {
		s.Characteristic("2A19", func(c *CharacteristicBuilder) {
			c.Flags(gatt.FlagNotify) // missing OnUpdatedValue
		})
	})

	root, err := bzpath.New("/com/bzperi")
	require.NoError(t, err)
	tree := gatt.NewTree(root)

	err = app.Build(tree, tree.RootID(), nil, nil)
	assert.Error(t, err)
}

type fakeInvocation struct {
	results []gatt.Value
	errName string
	errMsg  string
}

func (f *fakeInvocation) Return(results ...gatt.Value) { f.results = results }
func (f *fakeInvocation) Error(name, message string)  { f.errName, f.errMsg = name, message }

func TestApplicationBuildRoutesDataNameThroughGetterAndSetter(t *testing.T) {
	app := newApplication()
	app.Service("1234", func(s *ServiceBuilder) {
		s.Characteristic("5678", func(c *CharacteristicBuilder) {
			c.Flags(gatt.FlagRead, gatt.FlagWrite).DataName("text/string")
		})
	})

	root, err := bzpath.New("/com/bzperi")
	require.NoError(t, err)
	tree := gatt.NewTree(root)

	var written []byte
	getter := DataGetter(func(name string) ([]byte, bool) {
		if name == "text/string" {
			return []byte("Hi"), true
		}
		return nil, false
	})
	setter := DataSetter(func(name string, data []byte) bool {
		if name != "text/string" {
			return false
		}
		written = data
		return true
	})
	require.NoError(t, app.Build(tree, tree.RootID(), getter, setter))

	charPath := root.MustAppend("service0").MustAppend("char0")
	iface, err := tree.FindInterface(charPath, "org.bluez.GattCharacteristic1")
	require.NoError(t, err)

	readMethod, ok := iface.Method("ReadValue")
	require.True(t, ok)
	readInv := &fakeInvocation{}
	readMethod.Handler(nil, charPath, "ReadValue", nil, readInv)
	require.Empty(t, readInv.errName, readInv.errMsg)
	require.Len(t, readInv.results, 1)
	b, ok := readInv.results[0].AsBytes()
	require.True(t, ok)
	assert.Equal(t, []byte("Hi"), b)

	writeMethod, ok := iface.Method("WriteValue")
	require.True(t, ok)
	writeInv := &fakeInvocation{}
	writeMethod.Handler(nil, charPath, "WriteValue", []gatt.Value{gatt.Bytes([]byte("Hi"))}, writeInv)
	require.Empty(t, writeInv.errName, writeInv.errMsg)
	assert.Equal(t, []byte("Hi"), written)
}

func TestApplicationBuildWiresDescriptor(t *testing.T) {
	app := newApplication()
	app.Service("180F", func(s *ServiceBuilder) {
		s.Characteristic("2A19", func(c *CharacteristicBuilder) {
			c.Flags(gatt.FlagRead)
			c.Descriptor("2904", func(d *DescriptorBuilder) {
				d.Flags(gatt.DescriptorFlagRead).InitialValue([]byte{1, 0})
			})
		})
	})

	root, err := bzpath.New("/com/bzperi")
	require.NoError(t, err)
	tree := gatt.NewTree(root)
	require.NoError(t, app.Build(tree, tree.RootID(), nil, nil))

	descPath := root.MustAppend("service0").MustAppend("char0").MustAppend("desc0")
	_, err = tree.FindInterface(descPath, "org.bluez.GattDescriptor1")
	assert.NoError(t, err)
}
