package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	p := Policy{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2}
	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	p := Policy{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2}
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("org.bluez.Error.NotReady: not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsAtMaxRetries(t *testing.T) {
	calls := 0
	p := Policy{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2, MaxRetries: 2}
	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("org.bluez.Error.Failed: always fails")
	})
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Policy{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2}
	err := p.Do(ctx, func() error { return errors.New("should not matter") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelayNeverExceedsMax(t *testing.T) {
	p := Policy{Initial: time.Millisecond, Max: 10 * time.Millisecond, Multiplier: 4}
	for n := 0; n < 10; n++ {
		d := p.delay(n)
		assert.LessOrEqual(t, d, 13*time.Millisecond) // Max scaled by the 1.3x jitter ceiling
	}
}

func TestDoStopsRetryingOnTerminalError(t *testing.T) {
	calls := 0
	p := Policy{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2, MaxRetries: 5}
	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("org.bluez.Error.NotSupported: characteristic does not support notify")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsRetryableMatchesTheRetryableTaxonomy(t *testing.T) {
	cases := []string{
		"org.bluez.Error.InProgress: another operation in progress",
		"org.bluez.Error.Failed: operation failed",
		"org.freedesktop.DBus.Error.NotReady",
		"org.freedesktop.DBus.Error.Timeout: no reply within specified time",
		"org.freedesktop.DBus.Error.NoReply",
		"org.freedesktop.DBus.Error.ServiceUnknown",
		"org.freedesktop.DBus.Error.NameHasNoOwner",
		"write: connection refused",
		"dial unix: resource busy",
	}
	for _, msg := range cases {
		assert.True(t, IsRetryable(errors.New(msg)), msg)
	}
}

func TestIsRetryableRejectsTheTerminalTaxonomy(t *testing.T) {
	cases := []string{
		"org.bluez.Error.NotPermitted: permission denied",
		"org.bluez.Error.NotSupported",
		"org.bluez.Error.InvalidArguments: invalid args",
		"org.bluez.Error.AlreadyExists",
	}
	for _, msg := range cases {
		assert.False(t, IsRetryable(errors.New(msg)), msg)
	}
}

func TestIsRetryableRejectsUnrecognizedErrors(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("something unexpected happened")))
}

func TestIsRetryableRejectsNil(t *testing.T) {
	assert.False(t, IsRetryable(nil))
}
