package elicit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultMaxAttempts is the number of responses validated before a leaf is exhausted.
const DefaultMaxAttempts = 3

// Policy controls how many responses a leaf accepts and how long it waits
// between and during rounds.
type Policy struct {
	// MaxAttempts is the number of responses validated per leaf, including the first.
	MaxAttempts int
	// Backoff is the wait before the first retry prompt. Zero disables waiting.
	Backoff time.Duration
	// Multiplier grows the wait on every further retry. Values below one mean one.
	Multiplier float64
	// MaxBackoff caps the wait. Zero means no cap.
	MaxBackoff time.Duration
	// RoundTimeout bounds one send/await exchange. Zero means no deadline.
	RoundTimeout time.Duration
}

// DefaultPolicy allows DefaultMaxAttempts responses and never waits.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Multiplier: 1}
}

// Validate reports a policy that cannot be executed.
func (p Policy) Validate() error {
	var errs []error
	if p.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts))
	}
	if p.Backoff < 0 || p.MaxBackoff < 0 || p.RoundTimeout < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if p.Multiplier < 0 || math.IsNaN(p.Multiplier) || math.IsInf(p.Multiplier, 0) {
		errs = append(errs, fmt.Errorf("invalid multiplier %v", p.Multiplier))
	}
	return errors.Join(errs...)
}

// Delay is the wait before the given retry, counting from one.
func (p Policy) Delay(retry int) time.Duration {
	if p.Backoff <= 0 || retry < 1 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.Backoff) * math.Pow(mult, float64(retry-1))
	if p.MaxBackoff > 0 && d > float64(p.MaxBackoff) {
		return p.MaxBackoff
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

func (p Policy) roundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.RoundTimeout > 0 {
		return context.WithTimeout(ctx, p.RoundTimeout)
	}
	return context.WithCancel(ctx)
}

// wait sleeps for d unless ctx is done first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
