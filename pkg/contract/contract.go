package contract

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Contract is the backend-neutral description of a checked constructor:
// a precondition on the raw input and a postcondition relating input and output.
type Contract[In, Out any] interface {
	Requires(in In) bool
	Ensures(in In, out Out) bool
	Invariant() bool
}

// Violation describes one input for which a constructor disagreed with its contract.
type Violation struct {
	Input  any
	Reason string
}

// CheckError aggregates the contract violations found by Check.
type CheckError struct {
	Contract   string
	Violations []Violation
}

func (e *CheckError) Error() string {
	if len(e.Violations) == 1 {
		v := e.Violations[0]
		return fmt.Sprintf("contract %s violated for %v: %s", e.Contract, v.Input, v.Reason)
	}
	return fmt.Sprintf("contract %s violated for %d inputs (first: %v: %s)",
		e.Contract, len(e.Violations), e.Violations[0].Input, e.Violations[0].Reason)
}

// ErrInvariant is returned by Check when the contract's own invariant fails.
var ErrInvariant = errors.New("contract invariant does not hold")

// Check verifies soundness of construct against c over the given inputs:
// construct succeeds exactly when Requires holds, and Ensures holds on every success.
func Check[In, Out any](name string, c Contract[In, Out], construct func(In) (Out, error), inputs []In) error {
	if !c.Invariant() {
		return fmt.Errorf("%s: %w", name, ErrInvariant)
	}
	var violations []Violation
	for _, in := range inputs {
		out, err := construct(in)
		required := c.Requires(in)
		switch {
		case required && err != nil:
			violations = append(violations, Violation{Input: in, Reason: "rejected valid input: " + err.Error()})
		case !required && err == nil:
			violations = append(violations, Violation{Input: in, Reason: "accepted invalid input"})
		case err == nil && !c.Ensures(in, out):
			violations = append(violations, Violation{Input: in, Reason: "postcondition failed"})
		}
	}
	if len(violations) > 0 {
		return &CheckError{Contract: name, Violations: violations}
	}
	return nil
}

// StringNonEmpty requires non-empty valid UTF-8 and ensures the output equals the input.
type StringNonEmpty struct{}

func (StringNonEmpty) Requires(in string) bool { return utf8.ValidString(in) && len(in) > 0 }
func (StringNonEmpty) Ensures(in string, out string) bool { return out == in && len(out) > 0 }
func (StringNonEmpty) Invariant() bool { return true }

// StringMaxLength requires valid UTF-8 of at most Max bytes.
type StringMaxLength struct {
	Max int
}

func (c StringMaxLength) Requires(in string) bool {
	return utf8.ValidString(in) && len(in) <= c.Max
}

func (c StringMaxLength) Ensures(in string, out string) bool {
	return out == in && len(out) <= c.Max
}

func (c StringMaxLength) Invariant() bool { return c.Max >= 0 }

// I32Positive requires a strictly positive int32.
type I32Positive struct{}

func (I32Positive) Requires(in int32) bool { return in > 0 }
func (I32Positive) Ensures(in int32, out int32) bool { return out == in && out > 0 }
func (I32Positive) Invariant() bool { return true }

// I32NonNegative requires an int32 that is zero or greater.
type I32NonNegative struct{}

func (I32NonNegative) Requires(in int32) bool { return in >= 0 }
func (I32NonNegative) Ensures(in int32, out int32) bool { return out == in && out >= 0 }
func (I32NonNegative) Invariant() bool { return true }

// BoolValid accepts every bool; it exists to exercise the trivial contract.
type BoolValid struct{}

func (BoolValid) Requires(bool) bool { return true }
func (BoolValid) Ensures(in bool, out bool) bool { return in == out }
func (BoolValid) Invariant() bool { return true }
