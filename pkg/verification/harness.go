package verification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateHarness is returned when a module/name pair is registered twice.
var ErrDuplicateHarness = errors.New("harness already registered")

// Harness is one bounded check. Check returns nil when the property holds.
type Harness struct {
	Module string
	Name   string
	Check  func(ctx context.Context) error
}

// ID is "module/name".
func (h Harness) ID() string {
	return h.Module + "/" + h.Name
}

// Registry holds harnesses by ID.
type Registry struct {
	mu        sync.RWMutex
	harnesses map[string]Harness
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		harnesses: make(map[string]Harness),
	}
}

// Register adds harnesses, rejecting any ID already present.
func (r *Registry) Register(hs ...Harness) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range hs {
		if h.Check == nil {
			return fmt.Errorf("harness %s: nil check", h.ID())
		}
		if _, ok := r.harnesses[h.ID()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateHarness, h.ID())
		}
		r.harnesses[h.ID()] = h
	}
	return nil
}

// All returns every harness sorted by module, then name.
func (r *Registry) All() []Harness {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Harness, 0, len(r.harnesses))
	for _, h := range r.harnesses {
		out = append(out, h)
	}
	sortHarnesses(out)
	return out
}

// Module returns the harnesses of one module, sorted by name.
func (r *Registry) Module(module string) []Harness {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Harness
	for _, h := range r.harnesses {
		if h.Module == module {
			out = append(out, h)
		}
	}
	sortHarnesses(out)
	return out
}

// Modules lists the distinct module names.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, h := range r.harnesses {
		seen[h.Module] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func sortHarnesses(hs []Harness) {
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].Module != hs[j].Module {
			return hs[i].Module < hs[j].Module
		}
		return hs[i].Name < hs[j].Name
	})
}
