package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrTranscriptNotFound is returned when a transcript ID cannot be found in the store.
var ErrTranscriptNotFound = errors.New("transcript not found")

// ErrEmptyResponse is returned when the channel delivered no payload at all.
// It counts against the retry budget like any other parse failure.
var ErrEmptyResponse = errors.New("empty response")

// Channel failure sentinels. ChannelError matches them through errors.Is.
var (
	ErrChannelCancelled = errors.New("channel cancelled")
	ErrChannelTimeout   = errors.New("channel timed out")
	ErrTransport        = errors.New("transport error")
)

// ErrorKind classifies an elicitation failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindParse
	KindInvariant
	KindChannel
	KindCancelled
	KindExhausted
	KindComposition
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindInvariant:
		return "invariant"
	case KindChannel:
		return "channel"
	case KindCancelled:
		return "cancelled"
	case KindExhausted:
		return "exhausted"
	case KindComposition:
		return "composition"
	}
	return "unknown"
}

// ParseError reports a response that could not be decoded into the expected shape.
type ParseError struct {
	Type     string
	Expected string
	Received string
	// Cause is the decoder or sanitizer error, if any.
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid format: expected %s, received %q", e.Type, e.Expected, e.Received)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ChannelFailure is the classification of a channel-level error.
type ChannelFailure int

const (
	FailureTransport ChannelFailure = iota
	FailureTimeout
	FailureCancelled
)

func (f ChannelFailure) String() string {
	switch f {
	case FailureTimeout:
		return "timeout"
	case FailureCancelled:
		return "cancelled"
	}
	return "transport"
}

// ChannelError wraps an error surfaced by the external channel.
type ChannelError struct {
	Op      string
	Failure ChannelFailure
	Err     error
}

func (e *ChannelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("channel %s: %s", e.Op, e.Failure)
	}
	return fmt.Sprintf("channel %s: %s: %v", e.Op, e.Failure, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// Is maps the classification onto the channel sentinels.
func (e *ChannelError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Failure == FailureTransport
	case ErrChannelTimeout:
		return e.Failure == FailureTimeout
	case ErrChannelCancelled:
		return e.Failure == FailureCancelled
	}
	return false
}

// ClassifyChannel wraps a raw channel error, inferring the failure class from
// the sentinels and context errors it carries.
func ClassifyChannel(op string, err error) *ChannelError {
	var ce *ChannelError
	if errors.As(err, &ce) {
		return ce
	}
	failure := FailureTransport
	switch {
	case errors.Is(err, ErrChannelCancelled), errors.Is(err, context.Canceled):
		failure = FailureCancelled
	case errors.Is(err, ErrChannelTimeout), errors.Is(err, context.DeadlineExceeded):
		failure = FailureTimeout
	}
	return &ChannelError{Op: op, Failure: failure, Err: err}
}

// CancelledError is the terminal result of a session stopped by cancellation.
type CancelledError struct {
	Type  string
	Round int
	Cause error
}

func (e *CancelledError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: elicitation cancelled in round %d", e.Type, e.Round)
	}
	return fmt.Sprintf("%s: elicitation cancelled in round %d: %v", e.Type, e.Round, e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

// Is reports a match for context.Canceled whatever the recorded cause.
func (e *CancelledError) Is(target error) bool { return target == context.Canceled }

// ExhaustedError is the terminal result of a session that ran out of attempts.
// Last is the leaf error of the final attempt.
type ExhaustedError struct {
	Type     string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: retries exhausted after %d attempts: %v", e.Type, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// CompositionError reports the field of a composed type whose elicitation or
// construction failed. Err is the field's own error, never a generic one.
type CompositionError struct {
	Type  string
	Field string
	Index int
	Err   error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Type, e.Field, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }

// KindOf returns the classification of the outermost recognised error in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var (
		comp      *CompositionError
		exhausted *ExhaustedError
		cancelled *CancelledError
		channel   *ChannelError
		parse     *ParseError
		invalid   *ValidationError
	)
	switch {
	case errors.As(err, &comp):
		return KindComposition
	case errors.As(err, &exhausted):
		return KindExhausted
	case errors.As(err, &cancelled):
		return KindCancelled
	case errors.As(err, &channel):
		if channel.Failure == FailureCancelled {
			return KindCancelled
		}
		return KindChannel
	case errors.As(err, &parse), errors.Is(err, ErrEmptyResponse):
		return KindParse
	case errors.As(err, &invalid):
		return KindInvariant
	}
	return KindUnknown
}

// TerminalKind looks through composition errors and reports the kind of the
// leaf terminal failure, e.g. KindExhausted for a field that ran out of retries.
func TerminalKind(err error) ErrorKind {
	for {
		var comp *CompositionError
		if !errors.As(err, &comp) {
			return KindOf(err)
		}
		err = comp.Err
	}
}

// FieldPath returns the dotted field path of nested composition errors,
// outermost first, e.g. "server.address.port".
func FieldPath(err error) string {
	path := ""
	for {
		var comp *CompositionError
		if !errors.As(err, &comp) {
			return path
		}
		if path == "" {
			path = comp.Field
		} else {
			path += "." + comp.Field
		}
		err = comp.Err
	}
}
