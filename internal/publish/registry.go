package publish

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentPublishes = 4

// Registry manages publication sinks
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]Sink
}

// NewRegistry creates a new sink registry
func NewRegistry() *Registry {
	return &Registry{
		sinks: make(map[string]Sink),
	}
}

// Register adds a sink to the registry
func (r *Registry) Register(name string, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[name] = sink
}

// Get retrieves a sink by name
func (r *Registry) Get(name string) Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sinks[name]
}

// List returns all registered sink names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered sinks
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sinks)
}

// PublishAll pushes pub to every sink concurrently. A failing sink does not
// stop the others; all failures are joined into the returned error.
func (r *Registry) PublishAll(ctx context.Context, pub *Publication) error {
	r.mu.RLock()
	sinks := make(map[string]Sink, len(r.sinks))
	for name, sink := range r.sinks {
		sinks[name] = sink
	}
	r.mu.RUnlock()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(maxConcurrentPublishes)

	for name, sink := range sinks {
		g.Go(func() error {
			if err := sink.Publish(ctx, pub); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("sink %s: %w", name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return errors.Join(errs...)
}

// HealthCheckAll checks health of all registered sinks
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make(map[string]error)
	for name, sink := range r.sinks {
		results[name] = sink.HealthCheck(ctx)
	}
	return results
}

// Unregister removes a sink from the registry
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, name)
}
