package wrapper

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/foundation"
)

// Float is any floating point kind.
type Float interface {
	~float32 | ~float64
}

func finite[T Float](v T) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func fmtFloat[T Float](v T) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

func floatType[T Float](base string) string {
	var zero T
	return fmt.Sprintf("%s[%T]", base, zero)
}

// Finite is a float that is neither NaN nor infinite.
type Finite[T Float] struct {
	v     T
	valid bool
}

func NewFinite[T Float](v T) (Finite[T], error) {
	if !finite(v) {
		return Finite[T]{}, domain.Invalid(domain.ViolationNotFinite, floatType[T]("Finite"), "finite", fmtFloat(v))
	}
	return Finite[T]{v: v, valid: true}, nil
}

func (f Finite[T]) Get() T { return f.v }
func (f Finite[T]) Invariant() bool { return f.valid && finite(f.v) }
func (f Finite[T]) Establishes() IsFinite { return IsFinite{} }
func (f Finite[T]) MarshalJSON() ([]byte, error) { return json.Marshal(f.v) }

// FloatPositive is a finite float strictly greater than zero.
type FloatPositive[T Float] struct {
	v     T
	valid bool
}

// NewFloatPositive checks finiteness first, then the sign.
func NewFloatPositive[T Float](v T) (FloatPositive[T], error) {
	name := floatType[T]("FloatPositive")
	if !finite(v) {
		return FloatPositive[T]{}, domain.Invalid(domain.ViolationNotFinite, name, "finite", fmtFloat(v))
	}
	if v <= 0 {
		return FloatPositive[T]{}, domain.Invalid(domain.ViolationNotPositive, name, "> 0", fmtFloat(v))
	}
	return FloatPositive[T]{v: v, valid: true}, nil
}

func (f FloatPositive[T]) Get() T { return f.v }
func (f FloatPositive[T]) Invariant() bool { return f.valid && finite(f.v) && f.v > 0 }
func (f FloatPositive[T]) Establishes() IsFloatPositive { return IsFloatPositive{} }
func (f FloatPositive[T]) MarshalJSON() ([]byte, error) { return json.Marshal(f.v) }

// FloatNonNegative is a finite float greater than or equal to zero.
type FloatNonNegative[T Float] struct {
	v     T
	valid bool
}

// NewFloatNonNegative checks finiteness first, then the sign.
func NewFloatNonNegative[T Float](v T) (FloatNonNegative[T], error) {
	name := floatType[T]("FloatNonNegative")
	if !finite(v) {
		return FloatNonNegative[T]{}, domain.Invalid(domain.ViolationNotFinite, name, "finite", fmtFloat(v))
	}
	if v < 0 {
		return FloatNonNegative[T]{}, domain.Invalid(domain.ViolationNegative, name, ">= 0", fmtFloat(v))
	}
	return FloatNonNegative[T]{v: v, valid: true}, nil
}

func (f FloatNonNegative[T]) Get() T { return f.v }
func (f FloatNonNegative[T]) Invariant() bool { return f.valid && finite(f.v) && f.v >= 0 }
func (f FloatNonNegative[T]) Establishes() IsFloatNonNegative { return IsFloatNonNegative{} }
func (f FloatNonNegative[T]) MarshalJSON() ([]byte, error) { return json.Marshal(f.v) }

// NonEmptyString is well-formed UTF-8 of at least one byte.
type NonEmptyString struct {
	u foundation.Utf8Bytes
}

// NewNonEmptyString checks the encoding first, then emptiness.
func NewNonEmptyString(s string) (NonEmptyString, error) {
	u, err := foundation.Utf8FromString(max(len(s), 1), s)
	if err != nil {
		return NonEmptyString{}, err
	}
	if u.Len() == 0 {
		return NonEmptyString{}, domain.Invalid(domain.ViolationEmptyString, "NonEmptyString", "non-empty string", "")
	}
	return NonEmptyString{u: u}, nil
}

func (n NonEmptyString) Get() string { return n.u.String() }
func (n NonEmptyString) String() string { return n.u.String() }
func (n NonEmptyString) Invariant() bool { return n.u.Invariant() && n.u.Len() > 0 }
func (n NonEmptyString) Establishes() IsNonEmpty { return IsNonEmpty{} }
func (n NonEmptyString) MarshalJSON() ([]byte, error) { return json.Marshal(n.u.String()) }

// BoundedString is non-empty UTF-8 of at most Max bytes.
type BoundedString struct {
	u foundation.Utf8Bytes
}

// NewBoundedString checks the byte length first, then the encoding, then emptiness.
func NewBoundedString(s string, max int) (BoundedString, error) {
	if max <= 0 {
		return BoundedString{}, domain.Invalid(domain.ViolationInvalidBounds, "BoundedString", "max > 0", strconv.Itoa(max))
	}
	if len(s) > max {
		return BoundedString{}, domain.Invalid(domain.ViolationTooLong, "BoundedString",
			"at most "+strconv.Itoa(max)+" bytes", strconv.Itoa(len(s))+" bytes")
	}
	u, err := foundation.Utf8FromString(max, s)
	if err != nil {
		return BoundedString{}, err
	}
	if u.Len() == 0 {
		return BoundedString{}, domain.Invalid(domain.ViolationEmptyString, "BoundedString", "non-empty string", "")
	}
	return BoundedString{u: u}, nil
}

func (b BoundedString) Get() string { return b.u.String() }
func (b BoundedString) String() string { return b.u.String() }
func (b BoundedString) Max() int { return b.u.Cap() }
func (b BoundedString) Invariant() bool { return b.u.Invariant() && b.u.Len() > 0 }
func (b BoundedString) Establishes() IsBounded { return IsBounded{} }
func (b BoundedString) MarshalJSON() ([]byte, error) { return json.Marshal(b.u.String()) }

// NonEmpty weakens b through BoundedImpliesNonEmpty.
func (b BoundedString) NonEmpty() NonEmptyString {
	return NonEmptyString{u: b.u}
}

// TrimmedString carries no leading or trailing Unicode white space.
type TrimmedString struct {
	s     string
	valid bool
}

func NewTrimmedString(s string) (TrimmedString, error) {
	if strings.TrimSpace(s) != s {
		return TrimmedString{}, domain.Invalid(domain.ViolationNotTrimmed, "TrimmedString", "no surrounding white space", strconv.Quote(s))
	}
	return TrimmedString{s: s, valid: true}, nil
}

func (t TrimmedString) Get() string { return t.s }
func (t TrimmedString) String() string { return t.s }
func (t TrimmedString) Invariant() bool { return t.valid && strings.TrimSpace(t.s) == t.s }
func (t TrimmedString) Establishes() IsTrimmed { return IsTrimmed{} }
func (t TrimmedString) MarshalJSON() ([]byte, error) { return json.Marshal(t.s) }

// True is a bool that holds true.
type True struct{ valid bool }

func NewTrue(b bool) (True, error) {
	if !b {
		return True{}, domain.Invalid(domain.ViolationNotTrue, "True", "true", "false")
	}
	return True{valid: true}, nil
}

func (t True) Get() bool { return true }
func (t True) Invariant() bool { return t.valid }
func (t True) Establishes() IsTrue { return IsTrue{} }
func (t True) MarshalJSON() ([]byte, error) { return []byte("true"), nil }

// False is a bool that holds false.
type False struct{ valid bool }

func NewFalse(b bool) (False, error) {
	if b {
		return False{}, domain.Invalid(domain.ViolationNotFalse, "False", "false", "true")
	}
	return False{valid: true}, nil
}

func (f False) Get() bool { return false }
func (f False) Invariant() bool { return f.valid }
func (f False) Establishes() IsFalse { return IsFalse{} }
func (f False) MarshalJSON() ([]byte, error) { return []byte("false"), nil }

// Alphabetic is a rune in a Unicode letter category.
type Alphabetic struct {
	r     rune
	valid bool
}

func NewAlphabetic(r rune) (Alphabetic, error) {
	if !unicode.IsLetter(r) {
		return Alphabetic{}, domain.Invalid(domain.ViolationNotAlphabetic, "Alphabetic", "letter", strconv.QuoteRune(r))
	}
	return Alphabetic{r: r, valid: true}, nil
}

func (a Alphabetic) Get() rune { return a.r }
func (a Alphabetic) Invariant() bool { return a.valid && unicode.IsLetter(a.r) }
func (a Alphabetic) Establishes() IsAlphabetic { return IsAlphabetic{} }
func (a Alphabetic) MarshalJSON() ([]byte, error) { return json.Marshal(string(a.r)) }

// Numeric is a rune in a Unicode number category.
type Numeric struct {
	r     rune
	valid bool
}

func NewNumeric(r rune) (Numeric, error) {
	if !unicode.IsNumber(r) {
		return Numeric{}, domain.Invalid(domain.ViolationNotNumeric, "Numeric", "number", strconv.QuoteRune(r))
	}
	return Numeric{r: r, valid: true}, nil
}

func (n Numeric) Get() rune { return n.r }
func (n Numeric) Invariant() bool { return n.valid && unicode.IsNumber(n.r) }
func (n Numeric) Establishes() IsNumeric { return IsNumeric{} }
func (n Numeric) MarshalJSON() ([]byte, error) { return json.Marshal(string(n.r)) }

// Alphanumeric is a rune that is a letter or a number.
type Alphanumeric struct {
	r     rune
	valid bool
}

func NewAlphanumeric(r rune) (Alphanumeric, error) {
	if !isAlnum(r) {
		return Alphanumeric{}, domain.Invalid(domain.ViolationNotAlnum, "Alphanumeric", "letter or number", strconv.QuoteRune(r))
	}
	return Alphanumeric{r: r, valid: true}, nil
}

func (a Alphanumeric) Get() rune { return a.r }
func (a Alphanumeric) Invariant() bool { return a.valid && isAlnum(a.r) }
func (a Alphanumeric) Establishes() IsAlphanumeric { return IsAlphanumeric{} }
func (a Alphanumeric) MarshalJSON() ([]byte, error) { return json.Marshal(string(a.r)) }

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// ParseRune decodes text holding exactly one rune.
func ParseRune(s string) (rune, error) {
	rs := []rune(s)
	if len(rs) != 1 {
		return 0, &domain.ParseError{Type: "rune", Expected: "a single character", Received: s}
	}
	return rs[0], nil
}
