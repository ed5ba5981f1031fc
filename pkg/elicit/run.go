package elicit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/elicitation/pkg/compose"
	"github.com/aretw0/elicitation/pkg/contract"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/parse"
	"github.com/aretw0/elicitation/pkg/ports"
	"github.com/google/uuid"
)

// Option configures a Run call.
type Option func(*options)

type options struct {
	policy    Policy
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	store     ports.TranscriptStore
	parallel  int
	maxBytes  int
	sessionID string
}

// WithPolicy sets the retry policy. The default is DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithHooks registers lifecycle hooks. Repeated calls merge the hooks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(h)
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder saves a transcript of the session to store once it is terminal.
func WithRecorder(store ports.TranscriptStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithParallelFields elicits sibling struct fields concurrently, at most
// limit at a time. Results are still assembled and reported in declaration
// order. A limit of zero restores the sequential default.
func WithParallelFields(limit int) Option {
	return func(o *options) {
		o.parallel = limit
	}
}

// WithMaxResponseBytes bounds the size of text responses.
func WithMaxResponseBytes(n int) Option {
	return func(o *options) {
		o.maxBytes = n
	}
}

// WithSessionID fixes the session and transcript ID instead of generating a UUIDv7.
func WithSessionID(id string) Option {
	return func(o *options) {
		o.sessionID = id
	}
}

func newSession(ch ports.Channel, typeName string, opts []Option) (*session, error) {
	o := options{
		policy: DefaultPolicy(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	if ch == nil {
		return nil, fmt.Errorf("%s: nil channel", typeName)
	}

	id := o.sessionID
	if id == "" {
		v7, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate session id: %w", err)
		}
		id = v7.String()
	}

	return &session{
		id:        id,
		typeName:  typeName,
		ch:        ch,
		policy:    o.policy,
		hooks:     o.hooks,
		logger:    o.logger.With("session", id),
		sanitizer: parse.Sanitizer{MaxBytes: o.maxBytes},
		parallel:  o.parallel,
		rec:       newRecorder(o.store, id, typeName),
	}, nil
}

// Run elicits a T over ch. It returns a validated T, or an error whose kind
// (domain.KindOf, domain.TerminalKind) tells channel failure, cancellation,
// exhaustion and composition failure apart.
func Run[T any](ctx context.Context, ch ports.Channel, d Descriptor[T], opts ...Option) (T, error) {
	var zero T
	s, err := newSession(ch, d.Name(), opts)
	if err != nil {
		return zero, err
	}
	start := time.Now()
	v, err := d.run(ctx, s, "")
	s.terminate(ctx, start, err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// RunStruct is Run for a struct descriptor that also returns the evidence
// that every field was constructed by its own constructor.
func RunStruct[S any](ctx context.Context, ch ports.Channel, d *StructDescriptor[S], opts ...Option) (S, contract.Established[compose.AllFields[S]], error) {
	var zero S
	s, err := newSession(ch, d.Name(), opts)
	if err != nil {
		return zero, contract.Established[compose.AllFields[S]]{}, err
	}
	start := time.Now()
	v, proof, err := d.derive(ctx, s, "")
	s.terminate(ctx, start, err)
	if err != nil {
		return zero, contract.Established[compose.AllFields[S]]{}, err
	}
	return v, proof, nil
}

func (s *session) terminate(ctx context.Context, start time.Time, err error) {
	outcome := OutcomeOf(err)
	rounds := int(s.rounds.Load())
	if s.hooks.OnTerminal != nil {
		s.hooks.OnTerminal(ctx, &domain.TerminalEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTerminal, SessionID: s.id},
			TypeName:  s.typeName,
			Outcome:   outcome,
			Rounds:    rounds,
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	if outcome == domain.OutcomeSuccess {
		s.logger.Debug("elicitation satisfied", "type", s.typeName, "rounds", rounds)
	}
	if rerr := s.rec.finish(ctx, outcome, err); rerr != nil {
		s.logger.Error("failed to record transcript", "type", s.typeName, "err", rerr)
	}
}

// OutcomeOf maps a Run result to its terminal outcome.
func OutcomeOf(err error) domain.Outcome {
	if err == nil {
		return domain.OutcomeSuccess
	}
	switch domain.TerminalKind(err) {
	case domain.KindExhausted:
		return domain.OutcomeExhausted
	case domain.KindCancelled:
		return domain.OutcomeCancelled
	}
	return domain.OutcomeFailed
}
