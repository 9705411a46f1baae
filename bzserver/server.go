package bzserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/jy1655/BzPeri/adapter"
	"github.com/jy1655/BzPeri/bzpath"
	"github.com/jy1655/BzPeri/configure"
	"github.com/jy1655/BzPeri/dbusx"
	"github.com/jy1655/BzPeri/gatt"
	"github.com/jy1655/BzPeri/internal/blelog"
	"github.com/jy1655/BzPeri/internal/retry"
	"github.com/jy1655/BzPeri/updatequeue"
)

var serverLog = blelog.New("bzserver")

const (
	dispatchPeriod       = 10 * time.Millisecond
	advertisementSegment = "advertisement0"
)

// advertisingRetryPolicy is the aggressive schedule used only for
// RegisterAdvertisement, which BlueZ may reject with InProgress while
// another registration races it.
var advertisingRetryPolicy = retry.Policy{
	Initial: 2 * time.Second, Max: 30 * time.Second, Multiplier: 2, MaxRetries: 5,
}

// Server owns every live resource a running BzPeri process needs: the
// GATT tree, the D-Bus publisher, the adapter controller, device and
// recovery watchers, and the update queue and its dispatcher, tied
// together by the run-state/health pair Start/TriggerShutdown/
// WaitUntilStopped/IsRunning expose. Generalized from
// bleadapter/bleadapter.go's BleAdapter, whose Start ran one infinite
// for-loop with no separate shutdown or health surface.
type Server struct {
	registry *configure.Registry
	tracker  *stateTracker
	config   *Config

	tree       *gatt.Tree
	publisher  *dbusx.Publisher
	controller *adapter.Controller
	devices    *adapter.DeviceTracker
	recoverer  *adapter.Recoverer

	queue      *updatequeue.Queue
	dispatcher *updatequeue.Dispatcher

	advPath bzpath.ObjectPath

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Server that will apply every configurator currently
// registered in registry once Start runs.
func New(registry *configure.Registry) *Server {
	return &Server{
		registry: registry,
		tracker:  newStateTracker(),
		queue:    updatequeue.New(),
	}
}

// RunState reports the server's current lifecycle stage.
func (s *Server) RunState() RunState { return s.tracker.RunState() }

// Health reports the worst health transition observed so far.
func (s *Server) Health() Health { return s.tracker.Health() }

// IsRunning reports whether the run-state is currently Running.
func (s *Server) IsRunning() bool { return s.tracker.RunState() == StateRunning }

// ConnectedDevices returns the object paths of every central currently
// connected to this peripheral.
func (s *Server) ConnectedDevices() []bzpath.ObjectPath {
	if s.devices == nil {
		return nil
	}
	raw := s.devices.Connected()
	out := make([]bzpath.ObjectPath, len(raw))
	for i, p := range raw {
		out[i] = bzpath.ObjectPath(p)
	}
	return out
}

// Push enqueues a characteristic/descriptor property change; the
// dispatcher emits it as PropertiesChanged on its next tick.
func (s *Server) Push(path bzpath.ObjectPath, iface, property string) {
	s.queue.PushFront(updatequeue.Entry{Path: path, Interface: iface, Property: property})
}

// Start validates cfg, builds the tree from every registered
// configurator, claims the bus name, selects and configures a BlueZ
// adapter, registers the application and an advertisement, and
// subscribes to BlueZ's manager signals, retrying each fallible step
// under the shared budget of cfg.InitTimeout. It returns nil iff the
// run-state reached Running within that budget.
func (s *Server) Start(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		s.tracker.setHealth(HealthFailedInit)
		return err
	}
	s.config = cfg
	s.tracker.setRun(StateInitializing)

	if err := s.initialize(cfg); err != nil {
		s.tracker.setHealth(HealthFailedInit)
		s.tracker.setRun(StateStopped)
		return err
	}

	s.dispatcher = updatequeue.NewDispatcher(s.queue, s.emitUpdate, dispatchPeriod, s.onDispatchError)
	s.dispatcher.Start()

	s.tracker.setRun(StateRunning)
	serverLog.Debugf("reached Running as %s", cfg.BusName())
	return nil
}

func (s *Server) initialize(cfg *Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.InitTimeout)
	defer cancel()

	app, err := s.registry.Apply()
	if err != nil {
		return fmt.Errorf("bzserver: apply configurators: %w", err)
	}
	s.tree = gatt.NewTree(cfg.RootPath())
	if err := app.Build(s.tree, s.tree.RootID(), configure.DataGetter(cfg.DataGetter), configure.DataSetter(cfg.DataSetter)); err != nil {
		return fmt.Errorf("bzserver: build tree: %w", err)
	}

	if err := s.addAdvertisement(app, cfg); err != nil {
		return err
	}

	var pub *dbusx.Publisher
	if err := retry.Default.Do(ctx, func() error {
		var openErr error
		pub, openErr = dbusx.Open(cfg.BusName())
		return openErr
	}); err != nil {
		return fmt.Errorf("bzserver: acquire bus name: %w", err)
	}
	s.publisher = pub

	if err := pub.PublishTree(s.tree); err != nil {
		return fmt.Errorf("bzserver: publish tree: %w", err)
	}

	var ctrl *adapter.Controller
	if err := retry.Default.Do(ctx, func() error {
		var discoverErr error
		ctrl, discoverErr = adapter.Discover(pub.Conn())
		return discoverErr
	}); err != nil {
		return fmt.Errorf("bzserver: select adapter: %w", err)
	}
	s.controller = ctrl

	if err := s.configureAdapter(ctx, cfg, ctrl); err != nil {
		return err
	}

	if err := retry.Default.Do(ctx, func() error {
		return pub.RegisterApplication(ctrl.Path(), s.tree.RootPath())
	}); err != nil {
		return fmt.Errorf("bzserver: register application: %w", err)
	}

	if err := advertisingRetryPolicy.Do(ctx, func() error {
		return ctrl.Advertise(pub, s.advPath)
	}); err != nil {
		return fmt.Errorf("bzserver: register advertisement: %w", err)
	}

	sub, err := pub.SubscribeManagerSignals()
	if err != nil {
		return fmt.Errorf("bzserver: subscribe manager signals: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.devices = adapter.NewDeviceTracker(func(path dbus.ObjectPath, connected bool) {
		serverLog.Debugf("device %s connected=%v", path, connected)
	})
	s.recoverer = adapter.NewRecoverer("org.bluez", retry.Default, s.reinitialize)

	s.wg.Add(1)
	go s.signalLoop(runCtx, sub)

	return nil
}

func (s *Server) addAdvertisement(app *configure.Application, cfg *Config) error {
	advID, err := s.tree.AddChild(s.tree.RootID(), advertisementSegment, false)
	if err != nil {
		return fmt.Errorf("bzserver: add advertisement node: %w", err)
	}
	advData := &gatt.AdvertisementData{
		Type:         gatt.AdvertisementTypePeripheral,
		ServiceUUIDs: app.ServiceUUIDs(),
		Includes:     []gatt.AdvertisementInclude{gatt.IncludeLocalName},
		LocalName:    cfg.AdvertisingShortName,
	}
	// The GATT tree above already has every service attached by
	// app.ServiceUUIDs(); only the AD payload itself is budget
	// constrained, so custom 128-bit UUIDs are dropped from
	// advertising (not from the tree) when they don't fit.
	advData.ServiceUUIDs = adapter.FitServiceUUIDsToBudget(advData)
	if err := adapter.ValidateAdvertisingBudget(advData); err != nil {
		return fmt.Errorf("bzserver: %w", err)
	}
	advIface, err := gatt.NewAdvertisementInterface(advData)
	if err != nil {
		return err
	}
	if err := s.tree.AddInterface(advID, advIface); err != nil {
		return err
	}
	s.advPath, err = s.tree.PathOf(advID)
	return err
}

func (s *Server) configureAdapter(ctx context.Context, cfg *Config, ctrl *adapter.Controller) error {
	if err := retry.Default.Do(ctx, func() error { return ctrl.SetPowered(true) }); err != nil {
		return fmt.Errorf("bzserver: power on adapter: %w", err)
	}
	if cfg.AdvertisingName != "" {
		if err := retry.Default.Do(ctx, func() error {
			return ctrl.SetProperty("Alias", cfg.AdvertisingName)
		}); err != nil {
			return fmt.Errorf("bzserver: set adapter alias: %w", err)
		}
	}
	if cfg.EnableBondable {
		if err := retry.Default.Do(ctx, func() error { return ctrl.SetPairable(true) }); err != nil {
			return fmt.Errorf("bzserver: set adapter pairable: %w", err)
		}
	}
	return nil
}

// signalLoop fans out every manager signal to the device tracker and
// the BlueZ-restart recoverer until ctx is cancelled.
func (s *Server) signalLoop(ctx context.Context, sub *dbusx.SignalSubscription) {
	defer s.wg.Done()
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sub.Signals:
			if !ok {
				return
			}
			s.devices.HandleSignal(sig)
			s.recoverer.HandleSignal(ctx, sig)
		}
	}
}

// reinitialize re-runs application and advertisement registration
// after bluetoothd restarts, without rebuilding the tree or
// re-claiming the bus name (both survive a bluetoothd-only restart).
func (s *Server) reinitialize(ctx context.Context) error {
	ctrl, err := adapter.Discover(s.publisher.Conn())
	if err != nil {
		return fmt.Errorf("bzserver: reinit: select adapter: %w", err)
	}
	s.controller = ctrl
	if err := s.configureAdapter(ctx, s.config, ctrl); err != nil {
		return err
	}
	if err := s.publisher.RegisterApplication(ctrl.Path(), s.tree.RootPath()); err != nil {
		return fmt.Errorf("bzserver: reinit: register application: %w", err)
	}
	if err := ctrl.Advertise(s.publisher, s.advPath); err != nil {
		return fmt.Errorf("bzserver: reinit: register advertisement: %w", err)
	}
	return nil
}

func (s *Server) emitUpdate(e updatequeue.Entry) error {
	if err := s.tree.CallUpdatedValue(s.publisher.Conn(), e.Path, e.Interface); err != nil {
		return err
	}
	return s.publisher.EmitPropertiesChanged(e.Path, e.Interface, e.Property)
}

func (s *Server) onDispatchError(e updatequeue.Entry, err error) {
	serverLog.Warnf("dropped update for %s.%s: %v", e.Path, e.Interface, err)
}

// TriggerShutdown is non-blocking: it marks the run-state Stopping,
// stops the dispatcher and signal loop, unregisters advertising, and
// releases the bus name.
func (s *Server) TriggerShutdown() {
	if s.tracker.RunState() != StateRunning {
		return
	}
	s.tracker.setRun(StateStopping)

	go func() {
		if s.dispatcher != nil {
			s.dispatcher.Stop()
		}
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		if s.controller != nil && s.publisher != nil {
			if err := s.controller.StopAdvertising(s.publisher, s.advPath); err != nil {
				serverLog.Warnf("unregister advertisement: %v", err)
			}
		}
		if s.publisher != nil {
			if err := s.publisher.Close(); err != nil {
				serverLog.Warnf("close bus connection: %v", err)
			}
		}
		s.tracker.setRun(StateStopped)
	}()
}

// WaitUntilStopped blocks until the run-state reaches Stopped, then
// reports whether health stayed Ok throughout.
func (s *Server) WaitUntilStopped() bool {
	s.tracker.waitUntil(StateStopped, 0)
	return s.tracker.Health() == HealthOk
}
