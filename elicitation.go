package elicitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/elicitation/pkg/compose"
	"github.com/aretw0/elicitation/pkg/contract"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/observability"
	"github.com/aretw0/elicitation/pkg/ports"
	"github.com/aretw0/elicitation/pkg/tool"
)

// ErrNoRegistry is returned by Call on a client built without WithRegistry.
var ErrNoRegistry = errors.New("client has no tool registry")

// Client is the high-level entry point of the library. It binds one
// conversation channel to a retry policy, hooks and an optional transcript
// store. Elicitations through the same Client run one at a time unless the
// channel is a ports.Exchanger, which is safe for concurrent sessions.
type Client struct {
	mu       sync.Mutex
	ch       ports.Channel
	registry *tool.Registry
	policy   elicit.Policy
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	store    ports.TranscriptStore
	parallel int
	maxBytes int
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithPolicy sets the retry policy (default: elicit.DefaultPolicy).
func WithPolicy(p elicit.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = c.hooks.Merge(h)
	}
}

// WithMetrics feeds every session into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.hooks = c.hooks.Merge(m.Hooks())
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTranscriptStore records every session into store.
func WithTranscriptStore(store ports.TranscriptStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithRegistry enables Call by tool name.
func WithRegistry(r *tool.Registry) Option {
	return func(c *Client) {
		c.registry = r
	}
}

// WithParallelFields elicits sibling struct fields concurrently when the
// channel supports it.
func WithParallelFields(limit int) Option {
	return func(c *Client) {
		c.parallel = limit
	}
}

// WithMaxResponseBytes bounds text responses.
func WithMaxResponseBytes(n int) Option {
	return func(c *Client) {
		c.maxBytes = n
	}
}

// New creates a Client that converses over ch.
func New(ch ports.Channel, opts ...Option) (*Client, error) {
	if ch == nil {
		return nil, errors.New("nil channel")
	}
	c := &Client{ch: ch, policy: elicit.DefaultPolicy()}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return c, nil
}

func (c *Client) options() []elicit.Option {
	opts := []elicit.Option{
		elicit.WithPolicy(c.policy),
		elicit.WithHooks(c.hooks),
		elicit.WithParallelFields(c.parallel),
		elicit.WithMaxResponseBytes(c.maxBytes),
	}
	if c.logger != nil {
		opts = append(opts, elicit.WithLogger(c.logger))
	}
	if c.store != nil {
		opts = append(opts, elicit.WithRecorder(c.store))
	}
	return opts
}

// acquire serialises sessions on a channel that pairs prompts and responses
// only through its Send/Await order. It returns the release function.
func (c *Client) acquire() func() {
	if _, ok := c.ch.(ports.Exchanger); ok {
		return func() {}
	}
	c.mu.Lock()
	return c.mu.Unlock
}

// Elicit runs one elicitation of d over the client's channel.
func Elicit[T any](ctx context.Context, c *Client, d elicit.Descriptor[T]) (T, error) {
	defer c.acquire()()
	return elicit.Run(ctx, c.ch, d, c.options()...)
}

// ElicitStruct is Elicit for a struct descriptor and also returns the
// evidence that every field was constructed by its own constructor.
func ElicitStruct[S any](ctx context.Context, c *Client, d *elicit.StructDescriptor[S]) (S, contract.Established[compose.AllFields[S]], error) {
	defer c.acquire()()
	return elicit.RunStruct(ctx, c.ch, d, c.options()...)
}

// Call elicits the type registered under the tool name.
func (c *Client) Call(ctx context.Context, name string) (any, error) {
	if c.registry == nil {
		return nil, ErrNoRegistry
	}
	defer c.acquire()()
	return c.registry.Call(ctx, name, c.ch, c.options()...)
}

// Tools lists the registered tools, sorted by name.
func (c *Client) Tools() []tool.Tool {
	if c.registry == nil {
		return nil
	}
	return c.registry.List()
}
