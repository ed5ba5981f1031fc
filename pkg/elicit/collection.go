package elicit

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/aretw0/elicitation/pkg/compose"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/wrapper"
)

// ArrayDescriptor elicits exactly n elements in order.
type ArrayDescriptor[T any] struct {
	name string
	elem Descriptor[T]
	n    int
}

// Array declares a fixed-length list. No count is asked.
func Array[T any](name string, elem Descriptor[T], n int) *ArrayDescriptor[T] {
	return &ArrayDescriptor[T]{name: name, elem: elem, n: n}
}

func (d *ArrayDescriptor[T]) Name() string { return d.name }

func (d *ArrayDescriptor[T]) Schema() map[string]any {
	return map[string]any{"type": "array", "items": d.elem.Schema(), "minItems": d.n, "maxItems": d.n}
}

func (d *ArrayDescriptor[T]) Construct(raw any) ([]T, error) {
	return compose.Array(d.n, d.elem.Construct)(raw)
}

func (d *ArrayDescriptor[T]) run(ctx context.Context, s *session, path string) ([]T, error) {
	out := make([]T, 0, d.n)
	for i := 0; i < d.n; i++ {
		idx := strconv.Itoa(i)
		v, err := d.elem.run(ctx, s, join(path, idx))
		if err != nil {
			return nil, &domain.CompositionError{Type: d.name, Field: idx, Index: i, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// entries drives the add-another loop shared by maps and sets. Each entry
// lives under path.<i>; the continuation question is asked at path.<i>.more.
// entry is called once per yes and sees the entry path.
func entries(ctx context.Context, s *session, path, name, message string, limit int, have func() int, entry func(ctx context.Context, at string) error) error {
	more := Affirm(name, message)
	for i := 0; have() < limit; i++ {
		idx := strconv.Itoa(i)
		at := join(path, idx)
		again, err := more.run(ctx, s, join(at, "more"))
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		if err := entry(ctx, at); err != nil {
			return &domain.CompositionError{Type: name, Field: idx, Index: i, Err: err}
		}
	}
	return nil
}

// unique wraps a key leaf so that a key already present counts as a
// rejected answer and is asked again.
func unique[K comparable](typeName string, key *LeafDescriptor[K], taken func(K) bool) *LeafDescriptor[K] {
	return Leaf(key.name, key.ask, func(r domain.Response) (K, error) {
		k, err := key.parse(r)
		if err != nil {
			return k, err
		}
		if taken(k) {
			var zero K
			return zero, domain.Invalid(domain.ViolationDuplicate, typeName, "a key not yet entered", fmt.Sprint(k))
		}
		return k, nil
	})
}

// MapDescriptor elicits entries one at a time: whether to add another, then
// the key, then the value. A key already entered is rejected and asked again.
type MapDescriptor[K comparable, V any] struct {
	name    string
	message string
	key     *LeafDescriptor[K]
	value   Descriptor[V]
	max     int
}

// Map declares a map of at most max entries. message is the add-another question.
func Map[K comparable, V any](name, message string, key *LeafDescriptor[K], value Descriptor[V], max int) *MapDescriptor[K, V] {
	return &MapDescriptor[K, V]{name: name, message: message, key: key, value: value, max: max}
}

func (d *MapDescriptor[K, V]) Name() string { return d.name }

func (d *MapDescriptor[K, V]) Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"propertyNames":        d.key.Schema(),
		"additionalProperties": d.value.Schema(),
		"maxProperties":        d.max,
	}
}

// Construct accepts a JSON object. Keys are validated with the key
// descriptor; two keys that construct to the same value are a duplicate.
func (d *MapDescriptor[K, V]) Construct(raw any) (map[K]V, error) {
	obj, ok := raw.(map[string]any)
	if !ok && raw != nil {
		return nil, &domain.ParseError{Type: d.name, Expected: "object", Received: fmt.Sprintf("%T", raw)}
	}
	if len(obj) > d.max {
		return nil, domain.Invalid(domain.ViolationTooLong, d.name, "<= "+strconv.Itoa(d.max)+" entries", strconv.Itoa(len(obj)))
	}
	names := make([]string, 0, len(obj))
	for n := range obj {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make(map[K]V, len(obj))
	for i, n := range names {
		k, err := d.key.Construct(n)
		if err != nil {
			return nil, &domain.CompositionError{Type: d.name, Field: n, Index: i, Err: err}
		}
		if _, dup := out[k]; dup {
			return nil, domain.Invalid(domain.ViolationDuplicate, d.name, "distinct keys", n)
		}
		v, err := d.value.Construct(obj[n])
		if err != nil {
			return nil, &domain.CompositionError{Type: d.name, Field: n, Index: i, Err: err}
		}
		out[k] = v
	}
	return out, nil
}

func (d *MapDescriptor[K, V]) run(ctx context.Context, s *session, path string) (map[K]V, error) {
	out := make(map[K]V)
	key := unique(d.name, d.key, func(k K) bool {
		_, ok := out[k]
		return ok
	})
	err := entries(ctx, s, path, d.name, d.message, d.max,
		func() int { return len(out) },
		func(ctx context.Context, at string) error {
			k, err := key.run(ctx, s, join(at, "key"))
			if err != nil {
				return err
			}
			v, err := d.value.run(ctx, s, join(at, "value"))
			if err != nil {
				return err
			}
			out[k] = v
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetDescriptor elicits distinct elements one at a time, asking whether to
// add another before each. A repeated element is rejected and asked again.
type SetDescriptor[T comparable] struct {
	name    string
	message string
	elem    *LeafDescriptor[T]
	max     int
}

// Set declares a set of at most max elements. message is the add-another question.
func Set[T comparable](name, message string, elem *LeafDescriptor[T], max int) *SetDescriptor[T] {
	return &SetDescriptor[T]{name: name, message: message, elem: elem, max: max}
}

func (d *SetDescriptor[T]) Name() string { return d.name }

func (d *SetDescriptor[T]) Schema() map[string]any {
	return map[string]any{"type": "array", "items": d.elem.Schema(), "uniqueItems": true, "maxItems": d.max}
}

func (d *SetDescriptor[T]) Construct(raw any) (wrapper.UniqueSlice[T], error) {
	items, err := compose.Slice(d.elem.Construct)(raw)
	if err != nil {
		return wrapper.UniqueSlice[T]{}, err
	}
	if len(items) > d.max {
		return wrapper.UniqueSlice[T]{}, domain.Invalid(domain.ViolationTooLong, d.name, "<= "+strconv.Itoa(d.max)+" elements", strconv.Itoa(len(items)))
	}
	return wrapper.NewUniqueSlice(items)
}

func (d *SetDescriptor[T]) run(ctx context.Context, s *session, path string) (wrapper.UniqueSlice[T], error) {
	var items []T
	seen := make(map[T]struct{})
	elem := unique(d.name, d.elem, func(v T) bool {
		_, ok := seen[v]
		return ok
	})
	err := entries(ctx, s, path, d.name, d.message, d.max,
		func() int { return len(items) },
		func(ctx context.Context, at string) error {
			v, err := elem.run(ctx, s, at)
			if err != nil {
				return err
			}
			seen[v] = struct{}{}
			items = append(items, v)
			return nil
		})
	if err != nil {
		return wrapper.UniqueSlice[T]{}, err
	}
	return wrapper.NewUniqueSlice(items)
}
