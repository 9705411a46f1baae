package bzserver

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateTrackerStartsUninitialized(t *testing.T) {
	tr := newStateTracker()
	assert.Equal(t, StateUninitialized, tr.RunState())
	assert.Equal(t, HealthOk, tr.Health())
}

func TestSetHealthNeverLowers(t *testing.T) {
	tr := newStateTracker()
	tr.setHealth(HealthFailedRun)
	tr.setHealth(HealthOk)
	assert.Equal(t, HealthFailedRun, tr.Health())
}

func TestSetHealthRaisesOnWorseTransition(t *testing.T) {
	tr := newStateTracker()
	tr.setHealth(HealthFailedInit)
	tr.setHealth(HealthFailedRun)
	assert.Equal(t, HealthFailedRun, tr.Health())
}

func TestWaitUntilReturnsImmediatelyWhenAlreadyAtTarget(t *testing.T) {
	tr := newStateTracker()
	tr.setRun(StateRunning)
	assert.True(t, tr.waitUntil(StateRunning, time.Second))
}

func TestWaitUntilUnblocksOnTransition(t *testing.T) {
	tr := newStateTracker()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		tr.setRun(StateRunning)
	}()
	assert.True(t, tr.waitUntil(StateRunning, time.Second))
	wg.Wait()
}

func TestWaitUntilTimesOutWithoutTransition(t *testing.T) {
	tr := newStateTracker()
	assert.False(t, tr.waitUntil(StateRunning, 10*time.Millisecond))
}

func TestRunStateStrings(t *testing.T) {
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Stopped", StateStopped.String())
}

func TestHealthStrings(t *testing.T) {
	assert.Equal(t, "Ok", HealthOk.String())
	assert.Equal(t, "FailedInit", HealthFailedInit.String())
}
