package wrapper

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/aretw0/elicitation/pkg/domain"
)

// NonEmptySlice is a slice with at least one element. The input is copied.
type NonEmptySlice[T any] struct {
	items []T
}

func NewNonEmptySlice[T any](items []T) (NonEmptySlice[T], error) {
	if len(items) == 0 {
		var zero T
		return NonEmptySlice[T]{}, domain.Invalid(domain.ViolationEmptyCollection,
			fmt.Sprintf("NonEmptySlice[%T]", zero), "at least one element", "0")
	}
	return NonEmptySlice[T]{items: slices.Clone(items)}, nil
}

// Get returns a copy of the elements.
func (n NonEmptySlice[T]) Get() []T { return slices.Clone(n.items) }
func (n NonEmptySlice[T]) Len() int { return len(n.items) }

// First is total because the slice is never empty.
func (n NonEmptySlice[T]) First() T { return n.items[0] }
func (n NonEmptySlice[T]) Invariant() bool { return len(n.items) > 0 }
func (n NonEmptySlice[T]) Establishes() HasElements { return HasElements{} }
func (n NonEmptySlice[T]) MarshalJSON() ([]byte, error) { return json.Marshal(n.items) }

// AllSatisfy is a slice whose every element passes check.
type AllSatisfy[T any] struct {
	items []T
	check func(T) error
}

// NewAllSatisfy runs check over the elements in order and reports the first failing index.
func NewAllSatisfy[T any](items []T, check func(T) error) (AllSatisfy[T], error) {
	for i, it := range items {
		if err := check(it); err != nil {
			var zero T
			return AllSatisfy[T]{}, domain.Invalid(domain.ViolationElement,
				fmt.Sprintf("AllSatisfy[%T]", zero), "every element valid", fmt.Sprintf("index %d: %v", i, err))
		}
	}
	return AllSatisfy[T]{items: slices.Clone(items), check: check}, nil
}

func (a AllSatisfy[T]) Get() []T { return slices.Clone(a.items) }
func (a AllSatisfy[T]) Len() int { return len(a.items) }

func (a AllSatisfy[T]) Invariant() bool {
	if a.check == nil {
		return false
	}
	for _, it := range a.items {
		if a.check(it) != nil {
			return false
		}
	}
	return true
}

func (a AllSatisfy[T]) Establishes() AllElementsValid { return AllElementsValid{} }
func (a AllSatisfy[T]) MarshalJSON() ([]byte, error) { return json.Marshal(a.items) }

// Some is an optional value known to be present.
type Some[T any] struct {
	v     T
	valid bool
}

func NewSome[T any](v *T) (Some[T], error) {
	if v == nil {
		var zero T
		return Some[T]{}, domain.Invalid(domain.ViolationAbsent, fmt.Sprintf("Some[%T]", zero), "a value", "none")
	}
	return Some[T]{v: *v, valid: true}, nil
}

func (s Some[T]) Get() T { return s.v }
func (s Some[T]) Invariant() bool { return s.valid }
func (s Some[T]) Establishes() IsPresent { return IsPresent{} }
func (s Some[T]) MarshalJSON() ([]byte, error) { return json.Marshal(s.v) }

// NonEmptyMap is a map with at least one entry. The input is copied.
type NonEmptyMap[K comparable, V any] struct {
	m map[K]V
}

func NewNonEmptyMap[K comparable, V any](m map[K]V) (NonEmptyMap[K, V], error) {
	if len(m) == 0 {
		return NonEmptyMap[K, V]{}, domain.Invalid(domain.ViolationEmptyCollection, "NonEmptyMap", "at least one entry", "0")
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return NonEmptyMap[K, V]{m: out}, nil
}

func (n NonEmptyMap[K, V]) Lookup(k K) (V, bool) {
	v, ok := n.m[k]
	return v, ok
}

// Get returns a copy of the entries.
func (n NonEmptyMap[K, V]) Get() map[K]V {
	out := make(map[K]V, len(n.m))
	for k, v := range n.m {
		out[k] = v
	}
	return out
}

func (n NonEmptyMap[K, V]) Len() int { return len(n.m) }
func (n NonEmptyMap[K, V]) Invariant() bool { return len(n.m) > 0 }
func (n NonEmptyMap[K, V]) Establishes() HasElements { return HasElements{} }
func (n NonEmptyMap[K, V]) MarshalJSON() ([]byte, error) { return json.Marshal(n.m) }

// UniqueSlice holds pairwise distinct elements.
type UniqueSlice[T comparable] struct {
	items []T
	valid bool
}

// NewUniqueSlice reports the index of the first repeated element.
func NewUniqueSlice[T comparable](items []T) (UniqueSlice[T], error) {
	if i, ok := firstDuplicate(items); ok {
		var zero T
		return UniqueSlice[T]{}, domain.Invalid(domain.ViolationDuplicate,
			fmt.Sprintf("UniqueSlice[%T]", zero), "distinct elements", "repeat at index "+strconv.Itoa(i))
	}
	return UniqueSlice[T]{items: slices.Clone(items), valid: true}, nil
}

func firstDuplicate[T comparable](items []T) (int, bool) {
	seen := make(map[T]struct{}, len(items))
	for i, it := range items {
		if _, dup := seen[it]; dup {
			return i, true
		}
		seen[it] = struct{}{}
	}
	return 0, false
}

func (u UniqueSlice[T]) Get() []T { return slices.Clone(u.items) }
func (u UniqueSlice[T]) Len() int { return len(u.items) }

func (u UniqueSlice[T]) Invariant() bool {
	_, dup := firstDuplicate(u.items)
	return u.valid && !dup
}

func (u UniqueSlice[T]) Establishes() IsUnique { return IsUnique{} }
func (u UniqueSlice[T]) MarshalJSON() ([]byte, error) { return json.Marshal(u.items) }
