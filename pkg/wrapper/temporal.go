package wrapper

import (
	"encoding/json"
	"time"

	"github.com/aretw0/elicitation/pkg/domain"
)

// PositiveDuration is a duration strictly greater than zero.
type PositiveDuration struct {
	d     time.Duration
	valid bool
}

func NewPositiveDuration(d time.Duration) (PositiveDuration, error) {
	if d <= 0 {
		return PositiveDuration{}, domain.Invalid(domain.ViolationNotPositive, "PositiveDuration", "> 0s", d.String())
	}
	return PositiveDuration{d: d, valid: true}, nil
}

func (p PositiveDuration) Get() time.Duration { return p.d }
func (p PositiveDuration) String() string { return p.d.String() }
func (p PositiveDuration) Invariant() bool { return p.valid && p.d > 0 }
func (p PositiveDuration) Establishes() IsPositiveDuration { return IsPositiveDuration{} }
func (p PositiveDuration) MarshalJSON() ([]byte, error) { return json.Marshal(p.d.String()) }

// NonNegativeDuration is a duration greater than or equal to zero.
type NonNegativeDuration struct {
	d     time.Duration
	valid bool
}

func NewNonNegativeDuration(d time.Duration) (NonNegativeDuration, error) {
	if d < 0 {
		return NonNegativeDuration{}, domain.Invalid(domain.ViolationNegative, "NonNegativeDuration", ">= 0s", d.String())
	}
	return NonNegativeDuration{d: d, valid: true}, nil
}

func (n NonNegativeDuration) Get() time.Duration { return n.d }
func (n NonNegativeDuration) String() string { return n.d.String() }
func (n NonNegativeDuration) Invariant() bool { return n.valid && n.d >= 0 }
func (n NonNegativeDuration) Establishes() IsNonNegativeDur { return IsNonNegativeDur{} }
func (n NonNegativeDuration) MarshalJSON() ([]byte, error) { return json.Marshal(n.d.String()) }

// ParseDuration decodes Go duration text such as "1h30m".
func ParseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &domain.ParseError{Type: "time.Duration", Expected: "duration such as 1m30s", Received: s}
	}
	return d, nil
}

// After is an instant strictly later than a bound.
type After struct {
	t, bound time.Time
	valid    bool
}

func NewAfter(t, bound time.Time) (After, error) {
	if !t.After(bound) {
		return After{}, domain.Invalid(domain.ViolationNotAfter, "After",
			"after "+bound.Format(time.RFC3339), t.Format(time.RFC3339))
	}
	return After{t: t, bound: bound, valid: true}, nil
}

func (a After) Get() time.Time { return a.t }
func (a After) Bound() time.Time { return a.bound }
func (a After) Invariant() bool { return a.valid && a.t.After(a.bound) }
func (a After) Establishes() IsAfter { return IsAfter{} }
func (a After) MarshalJSON() ([]byte, error) { return json.Marshal(a.t) }

// Before is an instant strictly earlier than a bound.
type Before struct {
	t, bound time.Time
	valid    bool
}

func NewBefore(t, bound time.Time) (Before, error) {
	if !t.Before(bound) {
		return Before{}, domain.Invalid(domain.ViolationNotBefore, "Before",
			"before "+bound.Format(time.RFC3339), t.Format(time.RFC3339))
	}
	return Before{t: t, bound: bound, valid: true}, nil
}

func (b Before) Get() time.Time { return b.t }
func (b Before) Bound() time.Time { return b.bound }
func (b Before) Invariant() bool { return b.valid && b.t.Before(b.bound) }
func (b Before) Establishes() IsBefore { return IsBefore{} }
func (b Before) MarshalJSON() ([]byte, error) { return json.Marshal(b.t) }

// ParseTime decodes RFC 3339 text.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &domain.ParseError{Type: "time.Time", Expected: "RFC 3339 timestamp", Received: s}
	}
	return t, nil
}
