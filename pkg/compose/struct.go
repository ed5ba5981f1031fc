package compose

import (
	"errors"
	"fmt"

	"github.com/aretw0/elicitation/internal/proof"
	"github.com/aretw0/elicitation/pkg/contract"
	"github.com/aretw0/elicitation/pkg/domain"
)

// ErrIncomplete is returned by Finish before every field was collected.
var ErrIncomplete = errors.New("derivation incomplete")

// AllFields is the proposition "every field of S was constructed by its own constructor".
type AllFields[S any] struct {
	_ [0]S
}

func (AllFields[S]) Proposition() string {
	var s S
	return fmt.Sprintf("all fields of %T", s)
}

// Field is one named, typed part of S.
type Field[S any] struct {
	name      string
	construct func(raw any) (any, error)
	set       func(*S, any)
}

// Bind declares a field. construct validates the raw input and set stores
// the validated value into the struct under construction.
func Bind[S, F any](name string, construct func(raw any) (F, error), set func(*S, F)) Field[S] {
	return Field[S]{
		name: name,
		construct: func(raw any) (any, error) {
			return construct(raw)
		},
		set: func(s *S, v any) {
			set(s, v.(F))
		},
	}
}

// Name returns the declared field name.
func (f Field[S]) Name() string { return f.name }

// Struct describes how S is composed from its fields, in declaration order.
type Struct[S any] struct {
	name   string
	fields []Field[S]
}

// NewStruct declares a composed type. Field names must be unique.
func NewStruct[S any](name string, fields ...Field[S]) (*Struct[S], error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.name == "" {
			return nil, fmt.Errorf("%s: field with empty name", name)
		}
		if _, dup := seen[f.name]; dup {
			return nil, fmt.Errorf("%s: duplicate field %q", name, f.name)
		}
		seen[f.name] = struct{}{}
	}
	return &Struct[S]{name: name, fields: fields}, nil
}

func (s *Struct[S]) Name() string { return s.name }

// Fields lists the field names in declaration order.
func (s *Struct[S]) Fields() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

// Begin starts a derivation in the collecting state.
func (s *Struct[S]) Begin() *Derivation[S] {
	d := &Derivation[S]{def: s}
	if len(s.fields) == 0 {
		d.state = Collected
	}
	return d
}

// Construct supplies one raw input per field, in declaration order, and
// stops at the first failing field.
func (s *Struct[S]) Construct(raws ...any) (S, contract.Established[AllFields[S]], error) {
	var zero S
	if len(raws) != len(s.fields) {
		return zero, contract.Established[AllFields[S]]{}, domain.Invalid(domain.ViolationWrongLength, s.name,
			fmt.Sprintf("%d fields", len(s.fields)), fmt.Sprintf("%d", len(raws)))
	}
	d := s.Begin()
	for _, raw := range raws {
		if err := d.Supply(raw); err != nil {
			return zero, contract.Established[AllFields[S]]{}, err
		}
	}
	return d.Finish()
}

// Constructor adapts s to a field constructor so it can be nested inside
// another Struct. The raw input is either a []any in declaration order or a
// map[string]any keyed by field name.
func (s *Struct[S]) Constructor() func(raw any) (S, error) {
	return func(raw any) (S, error) {
		var zero S
		var raws []any
		switch r := raw.(type) {
		case []any:
			raws = r
		case map[string]any:
			raws = make([]any, len(s.fields))
			for i, f := range s.fields {
				raws[i] = r[f.name]
			}
		default:
			return zero, &domain.ParseError{Type: s.name, Expected: "object or ordered list", Received: fmt.Sprintf("%T", raw)}
		}
		v, _, err := s.Construct(raws...)
		return v, err
	}
}

// DerivationState is the position of a derivation.
type DerivationState int

const (
	Collecting DerivationState = iota
	Collected
	Failed
)

func (s DerivationState) String() string {
	switch s {
	case Collected:
		return "all-fields-collected"
	case Failed:
		return "failed"
	}
	return "collecting"
}

// Derivation builds S one field at a time.
type Derivation[S any] struct {
	def   *Struct[S]
	value S
	next  int
	state DerivationState
	err   error
}

func (d *Derivation[S]) State() DerivationState { return d.state }

// Index is the position of the field being collected.
func (d *Derivation[S]) Index() int { return d.next }

// Next returns the name of the field being collected.
func (d *Derivation[S]) Next() (string, bool) {
	if d.state != Collecting {
		return "", false
	}
	return d.def.fields[d.next].name, true
}

// Err is the failure that moved the derivation to Failed.
func (d *Derivation[S]) Err() error { return d.err }

// Supply constructs the current field from raw with its bound constructor.
func (d *Derivation[S]) Supply(raw any) error {
	return d.Advance(func(s *S) error {
		f := d.def.fields[d.next]
		v, err := f.construct(raw)
		if err != nil {
			return err
		}
		f.set(s, v)
		return nil
	})
}

// Advance runs step for the current field. step receives the struct under
// construction and is responsible for setting that field. A failing step
// moves the derivation to Failed with a CompositionError naming the field.
func (d *Derivation[S]) Advance(step func(*S) error) error {
	if d.state != Collecting {
		return fmt.Errorf("%s: advance in state %s", d.def.name, d.state)
	}
	f := d.def.fields[d.next]
	if err := step(&d.value); err != nil {
		d.state = Failed
		d.err = &domain.CompositionError{Type: d.def.name, Field: f.name, Index: d.next, Err: err}
		return d.err
	}
	d.next++
	if d.next == len(d.def.fields) {
		d.state = Collected
	}
	return nil
}

// Finish returns the value with its conjunction proof. It succeeds only
// from the collected state.
func (d *Derivation[S]) Finish() (S, contract.Established[AllFields[S]], error) {
	var zero S
	switch d.state {
	case Collected:
		return d.value, proof.Establish[AllFields[S]](), nil
	case Failed:
		return zero, contract.Established[AllFields[S]]{}, d.err
	}
	name, _ := d.Next()
	return zero, contract.Established[AllFields[S]]{}, fmt.Errorf("%s: %w: field %q pending", d.def.name, ErrIncomplete, name)
}
