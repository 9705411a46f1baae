// Package configure provides the fluent DSL applications use to
// describe a GATT application before it is registered with BlueZ, and
// the Registry type that collects those descriptions.
package configure

import "sync"

// Configurator mutates an Application under construction and reports
// any error of its own. It is a closure that calls the Application,
// ServiceBuilder, and CharacteristicBuilder methods, which mutate the
// Application directly; invalid characteristic flags surface later,
// from Application.Build.
type Configurator func(*Application) error

// Registry collects Configurators registered from possibly many
// goroutines and applies them, in registration order, to a fresh
// Application. It generalizes the teacher's package-level
// uuidFilters/publishTopic variables into an explicit, lockable
// collection point rather than ad hoc globals.
type Registry struct {
	mu  sync.Mutex
	fns []Configurator
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends fn to the registry.
func (r *Registry) Register(fn Configurator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns = append(r.fns, fn)
}

// Count returns the number of registered configurators.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fns)
}

// Clear removes every registered configurator.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns = nil
}

// Apply snapshots the current configurator list under lock, then runs
// each of them against a fresh Application outside the lock so a
// configurator registering more configurators cannot deadlock. It
// stops at, and returns, the first error — later configurators never
// run once one fails, since a partially built Application would
// otherwise be handed back as if it were complete.
func (r *Registry) Apply() (*Application, error) {
	r.mu.Lock()
	snapshot := make([]Configurator, len(r.fns))
	copy(snapshot, r.fns)
	r.mu.Unlock()

	app := newApplication()
	for _, fn := range snapshot {
		if err := fn(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}
