package configure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryApplyRunsInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	var order []int
	r.Register(func(a *Application) error { order = append(order, 1); return nil })
	r.Register(func(a *Application) error { order = append(order, 2); return nil })

	app, err := r.Apply()
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, []int{1, 2}, order)
}

func TestRegistryClearEmptiesRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(func(a *Application) error { return nil })
	assert.Equal(t, 1, r.Count())

	r.Clear()
	assert.Equal(t, 0, r.Count())
}

func TestRegistryApplySnapshotsBeforeRunning(t *testing.T) {
	r := NewRegistry()
	innerRan := false
	r.Register(func(a *Application) error {
		r.Register(func(a *Application) error { innerRan = true; return nil }) // registered mid-apply, must not run this pass
		return nil
	})

	_, err := r.Apply()
	require.NoError(t, err)
	assert.False(t, innerRan)
	assert.Equal(t, 2, r.Count())
}

func TestRegistryApplyStopsAtFirstError(t *testing.T) {
	r := NewRegistry()
	var ran []int
	r.Register(func(a *Application) error { ran = append(ran, 1); return errors.New("boom") })
	r.Register(func(a *Application) error { ran = append(ran, 2); return nil })

	app, err := r.Apply()
	assert.Error(t, err)
	assert.Nil(t, app)
	assert.Equal(t, []int{1}, ran)
}
