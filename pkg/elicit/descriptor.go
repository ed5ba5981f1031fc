package elicit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/parse"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/invopop/jsonschema"
)

// Descriptor is the explicit, hand-authored description of how to elicit a T.
// Descriptors are built with Leaf, Struct, Enum and the helpers in this
// package; the unexported run method keeps the set closed.
type Descriptor[T any] interface {
	// Name is the type name used in prompts, errors and tool names.
	Name() string
	// Schema is a JSON Schema of the payload accepted by Construct.
	Schema() map[string]any
	// Construct validates a complete raw payload without a conversation.
	Construct(raw any) (T, error)

	run(ctx context.Context, s *session, path string) (T, error)
}

// Ask is the question a leaf puts to the channel.
type Ask struct {
	Message string
	Kind    domain.PromptKind
	Options []string
	// Schema overrides the schema derived from Kind.
	Schema map[string]any
}

// Parser decodes and validates one response.
type Parser[T any] func(domain.Response) (T, error)

// LeafDescriptor elicits a value in a single question.
type LeafDescriptor[T any] struct {
	name  string
	ask   Ask
	parse Parser[T]
}

// Leaf declares a single-question descriptor.
func Leaf[T any](name string, a Ask, p Parser[T]) *LeafDescriptor[T] {
	if a.Kind == "" {
		a.Kind = domain.PromptText
	}
	return &LeafDescriptor[T]{name: name, ask: a, parse: p}
}

func (d *LeafDescriptor[T]) Name() string { return d.name }

func (d *LeafDescriptor[T]) Schema() map[string]any {
	if d.ask.Schema != nil {
		return d.ask.Schema
	}
	switch d.ask.Kind {
	case domain.PromptNumber:
		return map[string]any{"type": "number"}
	case domain.PromptBoolean:
		return map[string]any{"type": "boolean"}
	case domain.PromptSelect:
		return map[string]any{"type": "string", "enum": d.ask.Options}
	case domain.PromptObject:
		return map[string]any{"type": "object"}
	}
	return map[string]any{"type": "string"}
}

func (d *LeafDescriptor[T]) Construct(raw any) (T, error) {
	resp := responseOf(raw)
	if resp.Kind == domain.ResponseText {
		clean, err := parse.Sanitizer{}.Sanitize(d.name, resp.Text)
		if err != nil {
			var zero T
			return zero, err
		}
		resp.Text = clean
	}
	if resp.Empty() {
		var zero T
		return zero, fmt.Errorf("%s: %w", d.name, domain.ErrEmptyResponse)
	}
	return d.parse(resp)
}

func (d *LeafDescriptor[T]) run(ctx context.Context, s *session, path string) (T, error) {
	q := ask{
		typeName: d.name,
		path:     path,
		kind:     d.ask.Kind,
		message:  d.ask.Message,
		options:  d.ask.Options,
		schema:   d.Schema(),
	}
	v, err := s.leaf(ctx, q, func(r domain.Response) (any, error) {
		return d.parse(r)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func responseOf(raw any) domain.Response {
	switch r := raw.(type) {
	case nil:
		return domain.Response{}
	case string:
		return domain.TextResponse(r)
	case domain.Response:
		return r
	}
	return domain.StructuredResponse(raw)
}

// Int elicits an integer of kind T and validates it with construct.
func Int[T wrapper.Integer, W any](name, message string, construct func(T) (W, error)) *LeafDescriptor[W] {
	return Leaf(name, Ask{Message: message, Kind: domain.PromptNumber, Schema: map[string]any{"type": "integer"}},
		func(r domain.Response) (W, error) {
			n, err := parse.Int[T](name, r)
			if err != nil {
				var zero W
				return zero, err
			}
			return construct(n)
		})
}

// Float elicits a float64 and validates it with construct.
func Float[W any](name, message string, construct func(float64) (W, error)) *LeafDescriptor[W] {
	return Leaf(name, Ask{Message: message, Kind: domain.PromptNumber},
		func(r domain.Response) (W, error) {
			f, err := parse.Float(name, r)
			if err != nil {
				var zero W
				return zero, err
			}
			return construct(f)
		})
}

// Text elicits a string and validates it with construct. The string is
// trimmed before construct sees it.
func Text[W any](name, message string, construct func(string) (W, error)) *LeafDescriptor[W] {
	return Leaf(name, Ask{Message: message, Kind: domain.PromptText},
		func(r domain.Response) (W, error) {
			s, err := parse.Text(name, r)
			if err != nil {
				var zero W
				return zero, err
			}
			return construct(s)
		})
}

// Affirm elicits a yes/no answer.
func Affirm(name, message string) *LeafDescriptor[bool] {
	return Leaf(name, Ask{Message: message, Kind: domain.PromptBoolean},
		func(r domain.Response) (bool, error) {
			return parse.Bool(name, r)
		})
}

// Select elicits one of a fixed list of options. Matching ignores case and
// returns the option as declared.
func Select(name, message string, options ...string) *LeafDescriptor[string] {
	opts := append([]string(nil), options...)
	return Leaf(name, Ask{Message: message, Kind: domain.PromptSelect, Options: opts},
		func(r domain.Response) (string, error) {
			s, err := parse.Text(name, r)
			if err != nil {
				return "", err
			}
			for _, o := range opts {
				if strings.EqualFold(o, s) {
					return o, nil
				}
			}
			return "", &domain.ParseError{Type: name, Expected: "one of " + strings.Join(opts, ", "), Received: s}
		})
}

// Decoded elicits a structured payload decoded into T. The prompt carries a
// JSON Schema reflected from T. validate runs after decoding; errors it
// returns that are not already classified count as rejected responses.
func Decoded[T any](name, message string, validate func(T) error) *LeafDescriptor[T] {
	return Leaf(name, Ask{Message: message, Kind: domain.PromptObject, Schema: SchemaOf[T]()},
		func(r domain.Response) (T, error) {
			var v T
			if err := parse.Into(name, r, &v); err != nil {
				return v, err
			}
			if validate == nil {
				return v, nil
			}
			if err := validate(v); err != nil {
				var zero T
				if domain.KindOf(err) == domain.KindUnknown {
					return zero, domain.Invalid(domain.ViolationRejected, name, "", err.Error())
				}
				return zero, err
			}
			return v, nil
		})
}

// SchemaOf reflects a JSON Schema for T with every definition inlined.
func SchemaOf[T any]() map[string]any {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	b, err := json.Marshal(r.Reflect(new(T)))
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	delete(m, "$schema")
	delete(m, "$id")
	return m
}
