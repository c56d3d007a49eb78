package collector

import (
	"fmt"
	"slices"
	"sync"

	"github.com/newthinker/tradelab/internal/core"
)

// Registry manages collector plugins
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
}

// NewRegistry creates a new collector registry
func NewRegistry(collectors ...Collector) *Registry {
	r := &Registry{
		collectors: make(map[string]Collector),
	}
	for _, c := range collectors {
		r.Register(c)
	}
	return r
}

// Register adds a collector to the registry
func (r *Registry) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[c.Name()] = c
}

// Get retrieves a collector by name
func (r *Registry) Get(name string) (Collector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[name]
	if !ok {
		return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("unknown source %q", name))
	}
	return c, nil
}

// Names returns the registered collector names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
