package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/ports"
)

var (
	// ErrDuplicateTool is returned when two tools map to the same name.
	ErrDuplicateTool = errors.New("duplicate tool")
	// ErrUnknownTool is returned when no tool is registered under a name.
	ErrUnknownTool = errors.New("unknown tool")
)

// Tool is the callable unit exposed for one elicitable type. A call takes a
// channel and returns a validated value or a classified error; it carries no
// other caller-owned state.
type Tool struct {
	Name        string
	TypeName    string
	Description string
	// Schema describes the payload accepted by Construct.
	Schema map[string]any

	call      func(ctx context.Context, ch ports.Channel, opts ...elicit.Option) (any, error)
	construct func(raw any) (any, error)
}

// New builds the tool for d.
func New[T any](d elicit.Descriptor[T], description string) (Tool, error) {
	name, err := Name(d.Name())
	if err != nil {
		return Tool{}, err
	}
	return Tool{
		Name:        name,
		TypeName:    d.Name(),
		Description: description,
		Schema:      d.Schema(),
		call: func(ctx context.Context, ch ports.Channel, opts ...elicit.Option) (any, error) {
			return elicit.Run(ctx, ch, d, opts...)
		},
		construct: func(raw any) (any, error) {
			return d.Construct(raw)
		},
	}, nil
}

// Call elicits the tool's type over ch.
func (t Tool) Call(ctx context.Context, ch ports.Channel, opts ...elicit.Option) (any, error) {
	return t.call(ctx, ch, opts...)
}

// Construct validates a complete payload without a conversation.
func (t Tool) Construct(raw any) (any, error) {
	return t.construct(raw)
}

// Registry dispatches calls by registered tool name.
// Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	opts  []elicit.Option
}

// NewRegistry creates an empty registry. opts are applied to every call
// before the per-call options.
func NewRegistry(opts ...elicit.Option) *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		opts:  opts,
	}
}

// Register adds tools. A name collision returns ErrDuplicateTool and adds nothing.
func (r *Registry) Register(tools ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t.call == nil {
			return fmt.Errorf("tool %q was not built with New", t.Name)
		}
		if _, dup := r.tools[t.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	for _, t := range tools {
		r.tools[t.Name] = t
	}
	return nil
}

// Register builds the tool for d and adds it to r.
func Register[T any](r *Registry, d elicit.Descriptor[T], description string) error {
	t, err := New(d, description)
	if err != nil {
		return err
	}
	return r.Register(t)
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Call looks up a tool by name and elicits its type over ch.
func (r *Registry) Call(ctx context.Context, name string, ch ports.Channel, opts ...elicit.Option) (any, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.Call(ctx, ch, append(append([]elicit.Option(nil), r.opts...), opts...)...)
}

// Construct looks up a tool by name and validates a complete payload.
func (r *Registry) Construct(name string, raw any) (any, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.Construct(raw)
}

// Merge adds every tool of other to r. Aggregation is by name only; any
// collision aborts the merge before r changes.
func (r *Registry) Merge(other *Registry) error {
	if other == r {
		return nil
	}
	return r.Register(other.List()...)
}

// List returns the tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
