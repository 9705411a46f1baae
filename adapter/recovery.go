package adapter

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/jy1655/BzPeri/internal/blelog"
	"github.com/jy1655/BzPeri/internal/retry"
)

var recoveryLog = blelog.New("adapter.recovery")

// DefaultPreRecoveryDelay and DefaultRetryBackoff are the wait times
// between BlueZ vanishing and the first reinit attempt, and between
// that attempt failing and the single backoff retry.
const (
	DefaultPreRecoveryDelay = 5 * time.Second
	DefaultRetryBackoff     = 15 * time.Second
)

// Recoverer watches NameOwnerChanged for org.bluez and drives reinit
// when bluetoothd restarts out from under the process, generalized
// from ble/discover.go's discoverLoop select-on-signals shape (that
// loop only ever cared about InterfacesAdded/Removed; Recoverer adds
// the NameOwnerChanged case the teacher never wired up).
type Recoverer struct {
	policy  retry.Policy
	reinit  func(ctx context.Context) error
	busName string

	// PreRecoveryDelay and RetryBackoff default to
	// DefaultPreRecoveryDelay/DefaultRetryBackoff; tests may lower
	// them before the first signal arrives.
	PreRecoveryDelay time.Duration
	RetryBackoff     time.Duration
}

// NewRecoverer returns a Recoverer that calls reinit whenever busName
// (normally "org.bluez") loses its bus owner, after the standard
// pre-recovery delay and single backoff retry.
func NewRecoverer(busName string, policy retry.Policy, reinit func(ctx context.Context) error) *Recoverer {
	return &Recoverer{
		policy:           policy,
		reinit:           reinit,
		busName:          busName,
		PreRecoveryDelay: DefaultPreRecoveryDelay,
		RetryBackoff:     DefaultRetryBackoff,
	}
}

// Run processes signals from signals until ctx is cancelled or the
// channel is closed. It is meant to run in its own goroutine alongside
// a DeviceTracker fed from the same subscription; callers that need to
// fan one subscription out to both should call HandleSignal directly
// from their own loop instead.
func (r *Recoverer) Run(ctx context.Context, signals <-chan *dbus.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-signals:
			if !ok {
				return
			}
			r.HandleSignal(ctx, s)
		}
	}
}

// HandleSignal processes one signal, scheduling recovery if it is a
// NameOwnerChanged for this Recoverer's busName reporting that the
// name has no owner: that is the signal BlueZ vanishing produces, the
// name reappearing with a new owner is not something to recover from.
func (r *Recoverer) HandleSignal(ctx context.Context, s *dbus.Signal) {
	if s.Name != "org.freedesktop.DBus.NameOwnerChanged" {
		return
	}
	if len(s.Body) != 3 {
		return
	}
	name, ok := s.Body[0].(string)
	if !ok || name != r.busName {
		return
	}
	newOwner, _ := s.Body[2].(string)
	if newOwner != "" {
		// Name acquired or handed off to a new owner, not vanished.
		return
	}

	recoveryLog.Warnf("%s lost its bus owner, bluetoothd may have stopped; scheduling recovery", r.busName)
	go r.recover(ctx)
}

// recover waits out the pre-recovery delay, then reinitializes once
// (itself retried under the configured policy for transient bus
// errors); on failure it waits the retry backoff and makes one
// further policy-retried attempt before giving up.
func (r *Recoverer) recover(ctx context.Context) {
	if !sleepCtx(ctx, r.preRecoveryDelay()) {
		return
	}
	if err := r.policy.Do(ctx, func() error { return r.reinit(ctx) }); err == nil {
		recoveryLog.Warnf("%s recovered", r.busName)
		return
	}

	recoveryLog.Warnf("%s recovery attempt failed, retrying once after %s", r.busName, r.retryBackoff())
	if !sleepCtx(ctx, r.retryBackoff()) {
		return
	}
	if err := r.policy.Do(ctx, func() error { return r.reinit(ctx) }); err != nil {
		recoveryLog.Errorf("reinit after bluetoothd restart failed: %v", err)
	}
}

func (r *Recoverer) preRecoveryDelay() time.Duration {
	if r.PreRecoveryDelay > 0 {
		return r.PreRecoveryDelay
	}
	return DefaultPreRecoveryDelay
}

func (r *Recoverer) retryBackoff() time.Duration {
	if r.RetryBackoff > 0 {
		return r.RetryBackoff
	}
	return DefaultRetryBackoff
}

// sleepCtx waits for d or ctx cancellation, returning false if ctx was
// cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
