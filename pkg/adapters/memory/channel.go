package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/elicitation/pkg/domain"
)

var errNoPrompt = errors.New("await without prompt")

// Step is one scripted answer.
type Step struct {
	Response domain.Response
	// Err is returned from Await instead of a response.
	Err error
	// Block waits until the context is done.
	Block bool
}

// Reply answers with text.
func Reply(s string) Step { return Step{Response: domain.TextResponse(s)} }

// ReplyData answers with a structured payload.
func ReplyData(v any) Step { return Step{Response: domain.StructuredResponse(v)} }

// Silence answers with no payload at all.
func Silence() Step { return Step{Response: domain.Response{}} }

// Fail makes Await return err.
func Fail(err error) Step { return Step{Err: err} }

// Block makes Await wait for cancellation.
func Block() Step { return Step{Block: true} }

// Channel is a scripted ports.Channel for tests and replays. Each Await
// consumes the next step; once the script is exhausted Await blocks until
// its context is done. Safe for concurrent use.
type Channel struct {
	mu      sync.Mutex
	steps   []Step
	next    int
	prompts []domain.Prompt
	pending bool
	waiting chan struct{}
}

// NewChannel creates a channel that plays steps in order.
func NewChannel(steps ...Step) *Channel {
	return &Channel{steps: steps, waiting: make(chan struct{}, 1)}
}

// Script creates a channel answering with the given texts.
func Script(answers ...string) *Channel {
	steps := make([]Step, len(answers))
	for i, a := range answers {
		steps[i] = Reply(a)
	}
	return NewChannel(steps...)
}

// Send records the prompt.
func (c *Channel) Send(ctx context.Context, p domain.Prompt) error {
	if err := ctx.Err(); err != nil {
		return domain.ClassifyChannel("send", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, p)
	c.pending = true
	return nil
}

// Await plays the next step.
func (c *Channel) Await(ctx context.Context) (domain.Response, error) {
	c.mu.Lock()
	if !c.pending {
		c.mu.Unlock()
		return domain.Response{}, &domain.ChannelError{Op: "await", Failure: domain.FailureTransport, Err: errNoPrompt}
	}
	c.pending = false
	step := Step{Block: true}
	if c.next < len(c.steps) {
		step = c.steps[c.next]
		c.next++
	}
	c.mu.Unlock()

	if step.Block {
		select {
		case c.waiting <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return domain.Response{}, domain.ClassifyChannel("await", ctx.Err())
	}
	if err := ctx.Err(); err != nil {
		return domain.Response{}, domain.ClassifyChannel("await", err)
	}
	if step.Err != nil {
		return domain.Response{}, domain.ClassifyChannel("await", step.Err)
	}
	return step.Response, nil
}

// Waiting is signalled when an Await starts blocking.
func (c *Channel) Waiting() <-chan struct{} { return c.waiting }

// Prompts returns a copy of every prompt sent so far.
func (c *Channel) Prompts() []domain.Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Prompt(nil), c.prompts...)
}

// Consumed is the number of steps played.
func (c *Channel) Consumed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}
