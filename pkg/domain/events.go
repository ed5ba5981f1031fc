package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRoundStart EventType = "round_start"
	EventRoundEnd   EventType = "round_end"
	EventRetry      EventType = "retry"
	EventTerminal   EventType = "terminal"
)

// Outcome is the terminal result of a session.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// RoundEvent describes one request/response exchange.
type RoundEvent struct {
	EventBase
	TypeName string `json:"type_name"`
	Field    string `json:"field,omitempty"`
	Round    int    `json:"round"`
	Attempt  int    `json:"attempt"`
	// Err is set on round end when the response was rejected or the channel failed.
	Err error `json:"-"`
}

// TerminalEvent is emitted once per session.
type TerminalEvent struct {
	EventBase
	TypeName string        `json:"type_name"`
	Outcome  Outcome       `json:"outcome"`
	Rounds   int           `json:"rounds"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for session observability.
type LifecycleHooks struct {
	OnRoundStart func(context.Context, *RoundEvent)
	OnRoundEnd   func(context.Context, *RoundEvent)
	OnRetry      func(context.Context, *RoundEvent)
	OnTerminal   func(context.Context, *TerminalEvent)
}

// Merge returns hooks that call h first and then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRoundStart: chainRound(h.OnRoundStart, other.OnRoundStart),
		OnRoundEnd:   chainRound(h.OnRoundEnd, other.OnRoundEnd),
		OnRetry:      chainRound(h.OnRetry, other.OnRetry),
		OnTerminal: func(ctx context.Context, e *TerminalEvent) {
			if h.OnTerminal != nil {
				h.OnTerminal(ctx, e)
			}
			if other.OnTerminal != nil {
				other.OnTerminal(ctx, e)
			}
		},
	}
}

func chainRound(a, b func(context.Context, *RoundEvent)) func(context.Context, *RoundEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *RoundEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
