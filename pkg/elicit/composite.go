package elicit

import (
	"context"
	"strconv"
	"strings"

	"github.com/aretw0/elicitation/pkg/compose"
	"github.com/aretw0/elicitation/pkg/contract"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"golang.org/x/sync/errgroup"
)

// FieldSpec is one field of a struct descriptor.
type FieldSpec[S any] struct {
	name   string
	bind   compose.Field[S]
	schema map[string]any
	run    func(ctx context.Context, s *session, path string) (any, error)
	set    func(*S, any)
}

// Field binds a descriptor to a field of S.
func Field[S, F any](name string, d Descriptor[F], set func(*S, F)) FieldSpec[S] {
	return FieldSpec[S]{
		name:   name,
		bind:   compose.Bind(name, d.Construct, set),
		schema: d.Schema(),
		run: func(ctx context.Context, s *session, path string) (any, error) {
			return d.run(ctx, s, path)
		},
		set: func(v *S, x any) {
			set(v, x.(F))
		},
	}
}

// StructDescriptor elicits S one field at a time in declaration order.
type StructDescriptor[S any] struct {
	def    *compose.Struct[S]
	fields []FieldSpec[S]
}

// Struct declares a composed type. Field names must be unique.
func Struct[S any](name string, fields ...FieldSpec[S]) (*StructDescriptor[S], error) {
	binds := make([]compose.Field[S], len(fields))
	for i, f := range fields {
		binds[i] = f.bind
	}
	def, err := compose.NewStruct(name, binds...)
	if err != nil {
		return nil, err
	}
	return &StructDescriptor[S]{def: def, fields: fields}, nil
}

func (d *StructDescriptor[S]) Name() string { return d.def.Name() }

// Definition is the composition definition backing d.
func (d *StructDescriptor[S]) Definition() *compose.Struct[S] { return d.def }

func (d *StructDescriptor[S]) Schema() map[string]any {
	props := make(map[string]any, len(d.fields))
	required := make([]string, len(d.fields))
	for i, f := range d.fields {
		props[f.name] = f.schema
		required[i] = f.name
	}
	return map[string]any{
		"type":                 "object",
		"title":                d.def.Name(),
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func (d *StructDescriptor[S]) Construct(raw any) (S, error) {
	return d.def.Constructor()(raw)
}

func (d *StructDescriptor[S]) run(ctx context.Context, s *session, path string) (S, error) {
	v, _, err := d.derive(ctx, s, path)
	return v, err
}

// derive drives the composition derivation. Fields are elicited in order,
// or concurrently when the session allows it; either way the derivation
// consumes them in order and stops at the first failing field.
func (d *StructDescriptor[S]) derive(ctx context.Context, s *session, path string) (S, contract.Established[compose.AllFields[S]], error) {
	der := d.def.Begin()
	var (
		vals []any
		errs []error
	)
	if s.parallel > 0 && len(d.fields) > 1 {
		vals, errs = d.collectParallel(ctx, s, path)
	}

	for i, f := range d.fields {
		err := der.Advance(func(v *S) error {
			var x any
			var err error
			if vals != nil {
				x, err = vals[i], errs[i]
			} else {
				x, err = f.run(ctx, s, join(path, f.name))
			}
			if err != nil {
				return err
			}
			f.set(v, x)
			return nil
		})
		if err != nil {
			var zero S
			return zero, contract.Established[compose.AllFields[S]]{}, err
		}
	}
	return der.Finish()
}

func (d *StructDescriptor[S]) collectParallel(ctx context.Context, s *session, path string) ([]any, []error) {
	vals := make([]any, len(d.fields))
	errs := make([]error, len(d.fields))
	var g errgroup.Group
	g.SetLimit(s.parallel)
	for i, f := range d.fields {
		g.Go(func() error {
			vals[i], errs[i] = f.run(ctx, s, join(path, f.name))
			return nil
		})
	}
	_ = g.Wait()
	return vals, errs
}

// VariantSpec is one alternative of an enum descriptor.
type VariantSpec[E any] struct {
	label  string
	unit   bool
	cv     compose.Variant[E]
	schema map[string]any
	run    func(ctx context.Context, s *session, path string) (E, error)
}

// Unit declares a variant without payload. Choosing it ends the elicitation.
func Unit[E any](label string, value E) VariantSpec[E] {
	return VariantSpec[E]{
		label: label,
		unit:  true,
		cv:    compose.Unit(label, value),
		run: func(context.Context, *session, string) (E, error) {
			return value, nil
		},
	}
}

// Payload declares a variant whose payload is elicited with d and injected by wrap.
func Payload[E, P any](label string, d Descriptor[P], wrap func(P) E) VariantSpec[E] {
	return VariantSpec[E]{
		label:  label,
		cv:     compose.Payload(label, d.Construct, wrap),
		schema: d.Schema(),
		run: func(ctx context.Context, s *session, path string) (E, error) {
			p, err := d.run(ctx, s, path)
			if err != nil {
				var zero E
				return zero, err
			}
			return wrap(p), nil
		},
	}
}

// EnumDescriptor elicits the variant selector, then the payload of the chosen variant only.
type EnumDescriptor[E any] struct {
	def      *compose.Enum[E]
	message  string
	variants map[string]VariantSpec[E]
}

// Enum declares a closed set of variants.
func Enum[E any](name, message string, variants ...VariantSpec[E]) (*EnumDescriptor[E], error) {
	cvs := make([]compose.Variant[E], len(variants))
	byLabel := make(map[string]VariantSpec[E], len(variants))
	for i, v := range variants {
		cvs[i] = v.cv
		byLabel[v.label] = v
	}
	def, err := compose.NewEnum(name, cvs...)
	if err != nil {
		return nil, err
	}
	return &EnumDescriptor[E]{def: def, message: message, variants: byLabel}, nil
}

func (d *EnumDescriptor[E]) Name() string { return d.def.Name() }

// Definition is the composition definition backing d.
func (d *EnumDescriptor[E]) Definition() *compose.Enum[E] { return d.def }

func (d *EnumDescriptor[E]) Schema() map[string]any {
	labels := d.def.Labels()
	alts := make([]any, 0, len(labels))
	for _, l := range labels {
		v := d.variants[l]
		if v.unit {
			alts = append(alts, map[string]any{"const": l})
			continue
		}
		alts = append(alts, map[string]any{
			"type": "object",
			"properties": map[string]any{
				"variant": map[string]any{"const": l},
				"value":   v.schema,
			},
			"required": []string{"variant", "value"},
		})
	}
	return map[string]any{"title": d.def.Name(), "oneOf": alts}
}

func (d *EnumDescriptor[E]) Construct(raw any) (E, error) {
	return d.def.Constructor()(raw)
}

func (d *EnumDescriptor[E]) run(ctx context.Context, s *session, path string) (E, error) {
	var zero E
	q := ask{
		typeName: d.def.Name(),
		path:     path,
		kind:     domain.PromptSelect,
		message:  d.message,
		options:  d.def.Labels(),
		schema:   map[string]any{"type": "string", "enum": d.def.Labels()},
	}
	picked, err := s.leaf(ctx, q, func(r domain.Response) (any, error) {
		label, err := selectorOf(d.def.Name(), r)
		if err != nil {
			return nil, err
		}
		v, err := d.def.Select(label)
		if err != nil {
			return nil, err
		}
		return v.Label(), nil
	})
	if err != nil {
		return zero, err
	}

	label := picked.(string)
	v := d.variants[label]
	out, err := v.run(ctx, s, join(path, label))
	if err != nil {
		return zero, &domain.CompositionError{Type: d.def.Name(), Field: label, Err: err}
	}
	return out, nil
}

func selectorOf(typeName string, r domain.Response) (string, error) {
	if r.Kind == domain.ResponseStructured {
		if m, ok := r.Data.(map[string]any); ok {
			if s, ok := m["variant"].(string); ok {
				return s, nil
			}
		}
		if s, ok := r.Data.(string); ok {
			return s, nil
		}
		return "", &domain.ParseError{Type: typeName, Expected: "variant label", Received: responseText(r)}
	}
	return strings.TrimSpace(r.Text), nil
}

// SliceDescriptor elicits a length first, then every element in order.
type SliceDescriptor[T any] struct {
	name    string
	message string
	elem    Descriptor[T]
	max     int
}

// Slice declares a list of at most max elements, each elicited with elem.
func Slice[T any](name, message string, elem Descriptor[T], max int) *SliceDescriptor[T] {
	return &SliceDescriptor[T]{name: name, message: message, elem: elem, max: max}
}

func (d *SliceDescriptor[T]) Name() string { return d.name }

func (d *SliceDescriptor[T]) Schema() map[string]any {
	return map[string]any{"type": "array", "items": d.elem.Schema(), "maxItems": d.max}
}

func (d *SliceDescriptor[T]) Construct(raw any) ([]T, error) {
	out, err := compose.Slice(d.elem.Construct)(raw)
	if err != nil {
		return nil, err
	}
	if len(out) > d.max {
		return nil, domain.Invalid(domain.ViolationTooLong, d.name, "<= "+strconv.Itoa(d.max)+" elements", strconv.Itoa(len(out)))
	}
	return out, nil
}

func (d *SliceDescriptor[T]) run(ctx context.Context, s *session, path string) ([]T, error) {
	count := Int(d.name, d.message, func(n int) (wrapper.Range[int], error) {
		return wrapper.NewRange(n, 0, d.max)
	})
	n, err := count.run(ctx, s, path)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n.Get())
	for i := 0; i < n.Get(); i++ {
		idx := strconv.Itoa(i)
		v, err := d.elem.run(ctx, s, join(path, idx))
		if err != nil {
			return nil, &domain.CompositionError{Type: d.name, Field: idx, Index: i, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// OptionalDescriptor asks whether a value is present before eliciting it.
type OptionalDescriptor[T any] struct {
	presence *LeafDescriptor[bool]
	inner    Descriptor[T]
}

// Optional declares a value that may be absent. message is the presence question.
func Optional[T any](message string, inner Descriptor[T]) *OptionalDescriptor[T] {
	return &OptionalDescriptor[T]{presence: Affirm(inner.Name(), message), inner: inner}
}

func (d *OptionalDescriptor[T]) Name() string { return d.inner.Name() }

func (d *OptionalDescriptor[T]) Schema() map[string]any {
	return map[string]any{"anyOf": []any{d.inner.Schema(), map[string]any{"type": "null"}}}
}

func (d *OptionalDescriptor[T]) Construct(raw any) (*T, error) {
	return compose.Optional(d.inner.Construct)(raw)
}

func (d *OptionalDescriptor[T]) run(ctx context.Context, s *session, path string) (*T, error) {
	present, err := d.presence.run(ctx, s, join(path, "present"))
	if err != nil || !present {
		return nil, err
	}
	v, err := d.inner.run(ctx, s, path)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
