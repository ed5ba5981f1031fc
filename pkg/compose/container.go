package compose

import (
	"fmt"
	"strconv"

	"github.com/aretw0/elicitation/pkg/domain"
)

func asList(typeName string, raw any) ([]any, error) {
	switch r := raw.(type) {
	case []any:
		return r, nil
	case []string:
		out := make([]any, len(r))
		for i, s := range r {
			out[i] = s
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, &domain.ParseError{Type: typeName, Expected: "list", Received: fmt.Sprintf("%T", raw)}
}

// Slice lifts an element constructor over a list, reporting the first failing index.
func Slice[T any](construct func(raw any) (T, error)) func(raw any) ([]T, error) {
	var zero T
	name := fmt.Sprintf("[]%T", zero)
	return func(raw any) ([]T, error) {
		items, err := asList(name, raw)
		if err != nil {
			return nil, err
		}
		out := make([]T, 0, len(items))
		for i, it := range items {
			v, err := construct(it)
			if err != nil {
				return nil, &domain.CompositionError{Type: name, Field: strconv.Itoa(i), Index: i, Err: err}
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// Array is Slice with an exact length, checked before any element.
func Array[T any](n int, construct func(raw any) (T, error)) func(raw any) ([]T, error) {
	var zero T
	name := fmt.Sprintf("[%d]%T", n, zero)
	each := Slice(construct)
	return func(raw any) ([]T, error) {
		items, err := asList(name, raw)
		if err != nil {
			return nil, err
		}
		if len(items) != n {
			return nil, domain.Invalid(domain.ViolationWrongLength, name, strconv.Itoa(n), strconv.Itoa(len(items)))
		}
		return each(items)
	}
}

// Optional validates only a present value. A nil raw input yields a nil result.
func Optional[T any](construct func(raw any) (T, error)) func(raw any) (*T, error) {
	return func(raw any) (*T, error) {
		if raw == nil {
			return nil, nil
		}
		v, err := construct(raw)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}
