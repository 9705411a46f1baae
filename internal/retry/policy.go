// Package retry implements the exponential-backoff-with-jitter policy
// used everywhere BzPeri must retry a D-Bus call against BlueZ:
// adapter re-initialization after bluetoothd restarts, advertisement
// re-registration, and GattManager1 registration racing bluetoothd
// startup.
package retry

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// Policy describes a bounded exponential backoff. The teacher only
// ever sleeps a fixed one minute between retries (main.go); that fits
// a single long-lived poll loop but not the several independent retry
// sites BzPeri needs, so this generalizes it into a reusable,
// jittered schedule.
type Policy struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	MaxRetries int // 0 means unlimited
}

// Default is the standard schedule for D-Bus call retries: 3 attempts,
// starting at 100ms and doubling up to a 5s ceiling.
var Default = Policy{
	Initial:    100 * time.Millisecond,
	Max:        5 * time.Second,
	Multiplier: 2,
	MaxRetries: 3,
}

// delay returns the backoff duration after attempt n (0-indexed) fails:
// min(Max, Initial*Multiplier^n) scaled by a uniform jitter in
// [0.7, 1.3], floored at 1ms to avoid synchronized retries across
// multiple BzPeri processes on the same host.
func (p Policy) delay(n int) time.Duration {
	d := float64(p.Initial)
	for i := 0; i < n; i++ {
		d *= p.Multiplier
		if d >= float64(p.Max) {
			d = float64(p.Max)
			break
		}
	}
	jitter := 0.7 + rand.Float64()*0.6
	out := time.Duration(d * jitter)
	if out < time.Millisecond {
		out = time.Millisecond
	}
	return out
}

// retryableSubstrings and terminalSubstrings classify a D-Bus error by
// substring match against its lowercased message, the BlueZ/D-Bus
// error-name taxonomy: Timeout/InProgress/NotReady/Failed and the
// standard D-Bus connection errors are retryable, while
// PermissionDenied/NotSupported/InvalidArgs/AlreadyExists are never
// retried.
var (
	retryableSubstrings = []string{
		"timeout", "inprogress", "notready", "failed",
		"noreply", "no reply",
		"disconnected",
		"serviceunknown", "service unknown",
		"namehasnoowner", "name has no owner",
		"busy",
		"wouldblock", "would block",
		"timedout", "timed out",
		"connectionrefused", "connection refused",
		"notconnected", "not connected",
	}
	terminalSubstrings = []string{
		"permissiondenied", "permission denied",
		"notsupported", "not supported",
		"invalidargs", "invalid args", "invalid arguments",
		"alreadyexists", "already exists",
	}
)

// IsRetryable reports whether err should be retried, per the
// retryable/terminal D-Bus error taxonomy. A terminal match always
// wins over a retryable one; an error matching neither list is not
// retried, since an unrecognized error is assumed to be a programming
// or permanent-state error rather than a transient one.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range terminalSubstrings {
		if strings.Contains(msg, s) {
			return false
		}
	}
	for _, s := range retryableSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// Do calls fn until it succeeds, returns a non-retryable error, ctx is
// cancelled, or the policy's retry budget is exhausted. It returns the
// last error from fn, or ctx.Err() if the context was cancelled first.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; p.MaxRetries == 0 || attempt < p.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}
	return lastErr
}
