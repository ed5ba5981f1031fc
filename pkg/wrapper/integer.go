package wrapper

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unsafe"

	"github.com/aretw0/elicitation/pkg/domain"
)

// Signed is any signed integer kind.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is any unsigned integer kind.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Integer is any integer kind.
type Integer interface {
	Signed | Unsigned
}

func fmtInt[T Integer](v T) string {
	return fmt.Sprint(v)
}

func intType[T Integer](base string) string {
	var zero T
	return fmt.Sprintf("%s[%T]", base, zero)
}

// Positive is an integer strictly greater than zero.
type Positive[T Integer] struct {
	v     T
	valid bool
}

func NewPositive[T Integer](v T) (Positive[T], error) {
	if v <= 0 {
		return Positive[T]{}, domain.Invalid(domain.ViolationNotPositive, intType[T]("Positive"), "> 0", fmtInt(v))
	}
	return Positive[T]{v: v, valid: true}, nil
}

func (p Positive[T]) Get() T { return p.v }
func (p Positive[T]) Invariant() bool { return p.valid && p.v > 0 }
func (p Positive[T]) Establishes() IsPositive { return IsPositive{} }
func (p Positive[T]) String() string { return fmtInt(p.v) }

// NonNegative weakens p through PositiveImpliesNonNegative.
func (p Positive[T]) NonNegative() NonNegative[T] {
	return NonNegative[T]{v: p.v, valid: p.valid}
}

// NonZero weakens p through PositiveImpliesNonZero.
func (p Positive[T]) NonZero() NonZero[T] {
	return NonZero[T]{v: p.v, valid: p.valid}
}

func (p Positive[T]) MarshalJSON() ([]byte, error) { return json.Marshal(p.v) }

// NonNegative is an integer greater than or equal to zero.
type NonNegative[T Integer] struct {
	v     T
	valid bool
}

func NewNonNegative[T Integer](v T) (NonNegative[T], error) {
	if v < 0 {
		return NonNegative[T]{}, domain.Invalid(domain.ViolationNegative, intType[T]("NonNegative"), ">= 0", fmtInt(v))
	}
	return NonNegative[T]{v: v, valid: true}, nil
}

func (n NonNegative[T]) Get() T { return n.v }
func (n NonNegative[T]) Invariant() bool { return n.valid && n.v >= 0 }
func (n NonNegative[T]) Establishes() IsNonNegative { return IsNonNegative{} }
func (n NonNegative[T]) String() string { return fmtInt(n.v) }
func (n NonNegative[T]) MarshalJSON() ([]byte, error) { return json.Marshal(n.v) }

// NonZero is an integer other than zero.
type NonZero[T Integer] struct {
	v     T
	valid bool
}

func NewNonZero[T Integer](v T) (NonZero[T], error) {
	if v == 0 {
		return NonZero[T]{}, domain.Invalid(domain.ViolationZero, intType[T]("NonZero"), "!= 0", "0")
	}
	return NonZero[T]{v: v, valid: true}, nil
}

func (n NonZero[T]) Get() T { return n.v }
func (n NonZero[T]) Invariant() bool { return n.valid && n.v != 0 }
func (n NonZero[T]) Establishes() IsNonZero { return IsNonZero{} }
func (n NonZero[T]) String() string { return fmtInt(n.v) }
func (n NonZero[T]) MarshalJSON() ([]byte, error) { return json.Marshal(n.v) }

// Range is an integer within [Min, Max]. The bounds are part of the value
// because Go has no constant type parameters.
type Range[T Integer] struct {
	v, min, max T
	valid       bool
}

// NewRange checks the bounds first, then v >= min, then v <= max.
func NewRange[T Integer](v, min, max T) (Range[T], error) {
	name := intType[T]("Range")
	if min > max {
		return Range[T]{}, domain.Invalid(domain.ViolationInvalidBounds, name, "min <= max",
			fmt.Sprintf("[%v, %v]", min, max))
	}
	if v < min {
		return Range[T]{}, domain.Invalid(domain.ViolationBelowMin, name, ">= "+fmtInt(min), fmtInt(v))
	}
	if v > max {
		return Range[T]{}, domain.Invalid(domain.ViolationAboveMax, name, "<= "+fmtInt(max), fmtInt(v))
	}
	return Range[T]{v: v, min: min, max: max, valid: true}, nil
}

func (r Range[T]) Get() T { return r.v }
func (r Range[T]) Min() T { return r.min }
func (r Range[T]) Max() T { return r.max }
func (r Range[T]) Invariant() bool { return r.valid && r.min <= r.v && r.v <= r.max }
func (r Range[T]) Establishes() InRange { return InRange{} }
func (r Range[T]) String() string { return fmtInt(r.v) }
func (r Range[T]) MarshalJSON() ([]byte, error) { return json.Marshal(r.v) }

// Capped is a positive integer no greater than a cap.
type Capped[T Integer] struct {
	v, cap T
	valid  bool
}

// NewCapped checks positivity first, then the cap.
func NewCapped[T Integer](v, limit T) (Capped[T], error) {
	name := intType[T]("Capped")
	if v <= 0 {
		return Capped[T]{}, domain.Invalid(domain.ViolationNotPositive, name, "> 0", fmtInt(v))
	}
	if v > limit {
		return Capped[T]{}, domain.Invalid(domain.ViolationAboveMax, name, "<= "+fmtInt(limit), fmtInt(v))
	}
	return Capped[T]{v: v, cap: limit, valid: true}, nil
}

func (c Capped[T]) Get() T { return c.v }
func (c Capped[T]) Cap() T { return c.cap }
func (c Capped[T]) Invariant() bool { return c.valid && c.v > 0 && c.v <= c.cap }
func (c Capped[T]) Establishes() IsCapped { return IsCapped{} }
func (c Capped[T]) MarshalJSON() ([]byte, error) { return json.Marshal(c.v) }

// Positive weakens c through CappedImpliesPositive.
func (c Capped[T]) Positive() Positive[T] {
	return Positive[T]{v: c.v, valid: c.valid}
}

// Even is an integer divisible by two.
type Even[T Integer] struct {
	v     T
	valid bool
}

func NewEven[T Integer](v T) (Even[T], error) {
	if v%2 != 0 {
		return Even[T]{}, domain.Invalid(domain.ViolationNotEven, intType[T]("Even"), "even", fmtInt(v))
	}
	return Even[T]{v: v, valid: true}, nil
}

// NewEvenOf checks evenness of the value inside another integer wrapper,
// after that wrapper has already been established.
func NewEvenOf[T Integer, W interface{ Get() T }](w W) (Even[T], error) {
	return NewEven(w.Get())
}

func (e Even[T]) Get() T { return e.v }
func (e Even[T]) Invariant() bool { return e.valid && e.v%2 == 0 }
func (e Even[T]) Establishes() IsEven { return IsEven{} }
func (e Even[T]) MarshalJSON() ([]byte, error) { return json.Marshal(e.v) }

// ParseInt decodes decimal text into T, reporting overflow as a parse failure.
func ParseInt[T Integer](s string) (T, error) {
	var zero T
	bits := int(8 * unsafe.Sizeof(zero))
	if isSigned[T]() {
		n, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return zero, &domain.ParseError{Type: fmt.Sprintf("%T", zero), Expected: "integer", Received: s}
		}
		return T(n), nil
	}
	n, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return zero, &domain.ParseError{Type: fmt.Sprintf("%T", zero), Expected: "non-negative integer", Received: s}
	}
	return T(n), nil
}

func isSigned[T Integer]() bool {
	return ^T(0) < 0
}

// Aliases in the conventional naming.
type (
	I8Positive     = Positive[int8]
	I16Positive    = Positive[int16]
	I32Positive    = Positive[int32]
	I64Positive    = Positive[int64]
	U8Positive     = Positive[uint8]
	U16Positive    = Positive[uint16]
	U32Positive    = Positive[uint32]
	U64Positive    = Positive[uint64]
	I8NonNegative  = NonNegative[int8]
	I16NonNegative = NonNegative[int16]
	I32NonNegative = NonNegative[int32]
	I64NonNegative = NonNegative[int64]
	I8NonZero      = NonZero[int8]
	I16NonZero     = NonZero[int16]
	I32NonZero     = NonZero[int32]
	I64NonZero     = NonZero[int64]
	U8NonZero      = NonZero[uint8]
	U16NonZero     = NonZero[uint16]
	U32NonZero     = NonZero[uint32]
	U64NonZero     = NonZero[uint64]
	PositiveI32    = Positive[int32]
	PositiveU16    = Positive[uint16]
)
