package updatequeue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDrainsEntriesAtTick(t *testing.T) {
	q := New()
	q.PushFront(Entry{Property: "a"})
	q.PushFront(Entry{Property: "b"})

	var mu sync.Mutex
	var delivered []string
	sink := func(e Entry) error {
		mu.Lock()
		delivered = append(delivered, e.Property)
		mu.Unlock()
		return nil
	}

	d := NewDispatcher(q, sink, time.Millisecond, nil)
	d.Start()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 2
	}, time.Second, time.Millisecond)

	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, delivered)
}

func TestDispatcherCallsOnErrForFailedSink(t *testing.T) {
	q := New()
	q.PushFront(Entry{Property: "bad"})

	var mu sync.Mutex
	var errs int
	sink := func(e Entry) error { return assert.AnError }
	onErr := func(e Entry, err error) {
		mu.Lock()
		errs++
		mu.Unlock()
	}

	d := NewDispatcher(q, sink, time.Millisecond, onErr)
	d.Start()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return errs == 1
	}, time.Second, time.Millisecond)

	d.Stop()
}
