package ports

import (
	"context"
	"errors"

	"github.com/aretw0/elicitation/pkg/domain"
)

// Channel is the conversational peer of a session: a human, an LLM client,
// or a script standing in for one. A session calls Send once per round and
// then Await for the answer.
type Channel interface {
	// Send delivers the prompt for the current round.
	Send(ctx context.Context, p domain.Prompt) error

	// Await blocks until the answer to the last prompt arrives or ctx is done.
	// Failures should be *domain.ChannelError or wrap domain.ErrTransport,
	// domain.ErrChannelTimeout or domain.ErrChannelCancelled.
	Await(ctx context.Context) (domain.Response, error)
}

// Exchanger is implemented by channels that pair every response with its
// prompt. Sessions prefer Exchange over Send/Await when it is available and
// may call it from several goroutines at once.
type Exchanger interface {
	Exchange(ctx context.Context, p domain.Prompt) (domain.Response, error)
}

var errNoPrompt = errors.New("await without prompt")

// ChannelFunc adapts a single request/response function to Channel.
// The prompt given to Send is replayed into the function on Await.
type ChannelFunc func(ctx context.Context, p domain.Prompt) (domain.Response, error)

// Bind returns a Channel backed by f. The returned channel is also an Exchanger.
func (f ChannelFunc) Bind() Channel {
	return &funcChannel{fn: f}
}

type funcChannel struct {
	fn   ChannelFunc
	last *domain.Prompt
}

func (c *funcChannel) Send(ctx context.Context, p domain.Prompt) error {
	if err := ctx.Err(); err != nil {
		return domain.ClassifyChannel("send", err)
	}
	c.last = &p
	return nil
}

func (c *funcChannel) Await(ctx context.Context) (domain.Response, error) {
	if c.last == nil {
		return domain.Response{}, &domain.ChannelError{Op: "await", Failure: domain.FailureTransport, Err: errNoPrompt}
	}
	p := *c.last
	c.last = nil
	return c.fn(ctx, p)
}

func (c *funcChannel) Exchange(ctx context.Context, p domain.Prompt) (domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return domain.Response{}, domain.ClassifyChannel("exchange", err)
	}
	return c.fn(ctx, p)
}
