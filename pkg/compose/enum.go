package compose

import (
	"fmt"
	"strings"

	"github.com/aretw0/elicitation/internal/proof"
	"github.com/aretw0/elicitation/pkg/contract"
	"github.com/aretw0/elicitation/pkg/domain"
)

// Variant is one alternative of an enum E.
type Variant[E any] struct {
	label     string
	unit      bool
	construct func(payload any) (E, error)
}

// Unit declares a variant that carries no payload.
func Unit[E any](label string, value E) Variant[E] {
	return Variant[E]{
		label: label,
		unit:  true,
		construct: func(any) (E, error) {
			return value, nil
		},
	}
}

// Payload declares a variant whose payload is validated by construct and
// injected into E by wrap.
func Payload[E, P any](label string, construct func(raw any) (P, error), wrap func(P) E) Variant[E] {
	return Variant[E]{
		label: label,
		construct: func(raw any) (E, error) {
			p, err := construct(raw)
			if err != nil {
				var zero E
				return zero, err
			}
			return wrap(p), nil
		},
	}
}

func (v Variant[E]) Label() string { return v.label }
func (v Variant[E]) IsUnit() bool { return v.unit }

// Enum is a closed set of variants.
type Enum[E any] struct {
	name     string
	variants []Variant[E]
	index    map[string]int
}

// NewEnum declares an enum. Labels must be unique and non-empty.
func NewEnum[E any](name string, variants ...Variant[E]) (*Enum[E], error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("%s: enum without variants", name)
	}
	index := make(map[string]int, len(variants))
	for i, v := range variants {
		if v.label == "" {
			return nil, fmt.Errorf("%s: variant with empty label", name)
		}
		if _, dup := index[v.label]; dup {
			return nil, fmt.Errorf("%s: duplicate variant %q", name, v.label)
		}
		index[v.label] = i
	}
	return &Enum[E]{name: name, variants: variants, index: index}, nil
}

func (e *Enum[E]) Name() string { return e.name }

// Labels lists the variant labels in declaration order.
func (e *Enum[E]) Labels() []string {
	out := make([]string, len(e.variants))
	for i, v := range e.variants {
		out[i] = v.label
	}
	return out
}

// Variant looks up a variant by label.
func (e *Enum[E]) Variant(label string) (Variant[E], bool) {
	i, ok := e.index[label]
	if !ok {
		return Variant[E]{}, false
	}
	return e.variants[i], true
}

// Select validates a selector label.
func (e *Enum[E]) Select(label string) (Variant[E], error) {
	v, ok := e.Variant(label)
	if !ok {
		return Variant[E]{}, &domain.ParseError{
			Type:     e.name,
			Expected: "one of " + strings.Join(e.Labels(), ", "),
			Received: label,
		}
	}
	return v, nil
}

// Construct builds the chosen variant. Unit variants ignore payload.
func (e *Enum[E]) Construct(label string, payload any) (E, error) {
	var zero E
	v, err := e.Select(label)
	if err != nil {
		return zero, err
	}
	out, err := v.construct(payload)
	if err != nil {
		return zero, &domain.CompositionError{Type: e.name, Field: label, Index: e.index[label], Err: err}
	}
	return out, nil
}

// ConstructAs builds the variant named by V and returns evidence that the
// result inhabits exactly that variant.
func ConstructAs[E any, V contract.Label](e *Enum[E], payload any) (E, contract.Established[contract.InVariant[E, V]], error) {
	var v V
	out, err := e.Construct(v.Label(), payload)
	if err != nil {
		return out, contract.Established[contract.InVariant[E, V]]{}, err
	}
	return out, proof.Establish[contract.InVariant[E, V]](), nil
}

// Constructor adapts e to a field constructor. The raw input is a map with
// the selector under "variant" and the payload under "value", or a bare
// label string for unit variants.
func (e *Enum[E]) Constructor() func(raw any) (E, error) {
	return func(raw any) (E, error) {
		switch r := raw.(type) {
		case string:
			return e.Construct(r, nil)
		case map[string]any:
			label, _ := r["variant"].(string)
			return e.Construct(label, r["value"])
		}
		var zero E
		return zero, &domain.ParseError{Type: e.name, Expected: "variant label or {variant, value}", Received: fmt.Sprintf("%T", raw)}
	}
}
