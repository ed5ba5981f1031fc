package elicit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/parse"
	"github.com/aretw0/elicitation/pkg/ports"
)

// session is the private state of one Run call.
type session struct {
	id        string
	typeName  string
	ch        ports.Channel
	policy    Policy
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	sanitizer parse.Sanitizer
	parallel  int
	rounds    atomic.Int64
	rec       *recorder

	// exchange serialises send/await pairs so that parallel fields never
	// interleave on a channel that cannot correlate responses.
	exchange sync.Mutex
}

// ask is one question put to the channel until validate accepts an answer.
type ask struct {
	typeName string
	path     string
	kind     domain.PromptKind
	message  string
	options  []string
	schema   map[string]any
}

// leaf runs the round protocol for a single question.
func (s *session) leaf(ctx context.Context, q ask, validate func(domain.Response) (any, error)) (any, error) {
	m := NewMachine(s.policy.MaxAttempts)
	correction := ""
	round := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, s.cancel(m, q, round, err)
		}

		round = int(s.rounds.Add(1))
		prompt := domain.Prompt{
			Type:       q.typeName,
			Field:      q.path,
			Kind:       q.kind,
			Message:    q.message,
			Options:    q.options,
			Schema:     q.schema,
			Correction: correction,
			Round:      round,
			Attempt:    m.Attempts() + 1,
		}
		ev := s.roundEvent(domain.EventRoundStart, q, round, prompt.Attempt)
		if s.hooks.OnRoundStart != nil {
			s.hooks.OnRoundStart(ctx, ev)
		}
		s.logger.Debug("round started", "type", q.typeName, "field", q.path, "round", round, "attempt", prompt.Attempt)

		resp, err := s.roundTrip(ctx, m, prompt)
		if err != nil {
			s.endRound(ctx, q, round, prompt.Attempt, err)
			if ctx.Err() != nil || domain.KindOf(err) == domain.KindCancelled {
				cause := ctx.Err()
				if cause == nil {
					cause = err
				}
				return nil, s.cancel(m, q, round, cause)
			}
			_ = m.Terminate(domain.OutcomeFailed)
			s.logger.Error("channel failed", "type", q.typeName, "field", q.path, "round", round, "err", err)
			return nil, err
		}

		if err := m.Transition(Validating); err != nil {
			return nil, err
		}
		v, verr := s.validate(q, resp, validate)

		s.endRound(ctx, q, round, prompt.Attempt, verr)
		s.rec.add(q, prompt, resp, verr)

		if verr == nil {
			if err := m.Transition(Satisfied); err != nil {
				return nil, err
			}
			if err := m.Terminate(domain.OutcomeSuccess); err != nil {
				return nil, err
			}
			return v, nil
		}

		if kind := domain.KindOf(verr); kind != domain.KindParse && kind != domain.KindInvariant {
			_ = m.Terminate(domain.OutcomeFailed)
			s.logger.Error("response not retryable", "type", q.typeName, "field", q.path, "round", round, "err", verr)
			return nil, verr
		}

		if err := m.Transition(Retrying); err != nil {
			return nil, err
		}
		if m.Exhausted() {
			if err := m.Terminate(domain.OutcomeExhausted); err != nil {
				return nil, err
			}
			s.logger.Warn("retries exhausted", "type", q.typeName, "field", q.path, "round", round, "err", verr)
			return nil, &domain.ExhaustedError{Type: q.typeName, Attempts: m.Attempts(), Last: verr}
		}

		s.logger.Info("response rejected, retrying", "type", q.typeName, "field", q.path, "round", round, "err", verr)
		if s.hooks.OnRetry != nil {
			retry := s.roundEvent(domain.EventRetry, q, round, prompt.Attempt)
			retry.Err = verr
			s.hooks.OnRetry(ctx, retry)
		}
		correction = verr.Error()

		if err := wait(ctx, s.policy.Delay(m.Attempts())); err != nil {
			return nil, s.cancel(m, q, round, err)
		}
	}
}

// endRound fires OnRoundEnd. err is the rejection or channel failure, if any.
func (s *session) endRound(ctx context.Context, q ask, round, attempt int, err error) {
	if s.hooks.OnRoundEnd == nil {
		return
	}
	end := s.roundEvent(domain.EventRoundEnd, q, round, attempt)
	end.Err = err
	s.hooks.OnRoundEnd(ctx, end)
}

// roundTrip sends the prompt and awaits the answer under the round deadline.
// The wait selects on ctx so a channel that ignores cancellation cannot hold
// the session.
func (s *session) roundTrip(ctx context.Context, m *Machine, p domain.Prompt) (domain.Response, error) {
	rctx, cancel := s.policy.roundContext(ctx)
	defer cancel()

	type result struct {
		resp domain.Response
		err  error
	}
	done := make(chan result, 1)
	sent := make(chan struct{})

	go func() {
		if ex, ok := s.ch.(ports.Exchanger); ok {
			close(sent)
			resp, err := ex.Exchange(rctx, p)
			if err != nil {
				err = classify(rctx, "exchange", err)
			}
			done <- result{resp: resp, err: err}
			return
		}
		s.exchange.Lock()
		defer s.exchange.Unlock()
		if err := s.ch.Send(rctx, p); err != nil {
			done <- result{err: classify(rctx, "send", err)}
			return
		}
		close(sent)
		resp, err := s.ch.Await(rctx)
		if err != nil {
			err = classify(rctx, "await", err)
		}
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-sent:
		if err := m.Transition(AwaitingResponse); err != nil {
			return domain.Response{}, err
		}
	case r := <-done:
		select {
		case <-sent:
			if err := m.Transition(AwaitingResponse); err != nil {
				return domain.Response{}, err
			}
		default:
		}
		return r.resp, r.err
	case <-rctx.Done():
		return domain.Response{}, classify(rctx, "send", rctx.Err())
	}

	select {
	case r := <-done:
		return r.resp, r.err
	case <-rctx.Done():
		return domain.Response{}, classify(rctx, "await", rctx.Err())
	}
}

// classify turns a raw channel error into a ChannelError, forcing the
// timeout class when the round deadline expired.
func classify(rctx context.Context, op string, err error) error {
	ce := domain.ClassifyChannel(op, err)
	if errors.Is(rctx.Err(), context.DeadlineExceeded) && ce.Failure == domain.FailureTransport {
		ce = &domain.ChannelError{Op: op, Failure: domain.FailureTimeout, Err: err}
	}
	return ce
}

func (s *session) validate(q ask, resp domain.Response, validate func(domain.Response) (any, error)) (any, error) {
	if resp.Empty() {
		return nil, fmt.Errorf("%s: %w", q.typeName, domain.ErrEmptyResponse)
	}
	if resp.Kind == domain.ResponseText {
		clean, err := s.sanitizer.Sanitize(q.typeName, resp.Text)
		if err != nil {
			return nil, err
		}
		resp.Text = clean
	}
	return validate(resp)
}

func (s *session) cancel(m *Machine, q ask, round int, cause error) error {
	if m.State() != Terminal {
		_ = m.Terminate(domain.OutcomeCancelled)
	}
	s.logger.Warn("elicitation cancelled", "type", q.typeName, "field", q.path, "round", round, "err", cause)
	return &domain.CancelledError{Type: q.typeName, Round: round, Cause: cause}
}

func (s *session) roundEvent(t domain.EventType, q ask, round, attempt int) *domain.RoundEvent {
	return &domain.RoundEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: s.id},
		TypeName:  q.typeName,
		Field:     q.path,
		Round:     round,
		Attempt:   attempt,
	}
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
