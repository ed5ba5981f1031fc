package wrapper

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aretw0/elicitation/pkg/contract"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositive_Soundness(t *testing.T) {
	for v := math.MinInt8; v <= math.MaxInt8; v++ {
		p, err := NewPositive(int8(v))
		if v > 0 {
			require.NoError(t, err, "value %d", v)
			assert.Equal(t, int8(v), p.Get())
			assert.True(t, p.Invariant())
			continue
		}
		require.ErrorIs(t, err, domain.ErrNotPositive, "value %d", v)
	}
}

func TestPositive_ErrorDetail(t *testing.T) {
	_, err := NewPositive[int32](-3)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Positive[int32]", ve.Type)
	assert.Equal(t, "> 0", ve.Expected)
	assert.Equal(t, "-3", ve.Got)
	assert.Equal(t, "Positive[int32]: not_positive (expected > 0, got -3)", err.Error())
}

func TestPositive_ZeroValueRefusedByProve(t *testing.T) {
	var zero PositiveU16
	_, ok := contract.Prove[IsPositive](zero)
	assert.False(t, ok)

	port, err := NewPositive[uint16](8080)
	require.NoError(t, err)
	proof, ok := contract.Prove[IsPositive](port)
	require.True(t, ok)
	nn := contract.Weaken(proof, PositiveImpliesNonNegative)
	assert.Equal(t, "non-negative", nn.Proposition())
	assert.True(t, port.NonNegative().Invariant())
}

func TestNonNegativeAndNonZero(t *testing.T) {
	_, err := NewNonNegative(-1)
	assert.ErrorIs(t, err, domain.ErrNegative)
	n, err := NewNonNegative(0)
	require.NoError(t, err)
	assert.Equal(t, 0, n.Get())

	_, err = NewNonZero[uint8](0)
	assert.ErrorIs(t, err, domain.ErrZero)
	z, err := NewNonZero[int64](-9)
	require.NoError(t, err)
	assert.Equal(t, int64(-9), z.Get())
}

func TestRange(t *testing.T) {
	r, err := NewRange(5, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Get())
	assert.True(t, r.Invariant())

	_, err = NewRange(0, 1, 10)
	assert.ErrorIs(t, err, domain.ErrBelowMin)
	_, err = NewRange(11, 1, 10)
	assert.ErrorIs(t, err, domain.ErrAboveMax)

	_, err = NewRange(5, 10, 1)
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationInvalidBounds, v)
}

func TestCapped_ChecksPositiveFirst(t *testing.T) {
	_, err := NewCapped(-3, 100)
	assert.ErrorIs(t, err, domain.ErrNotPositive)

	_, err = NewCapped(150, 100)
	assert.ErrorIs(t, err, domain.ErrAboveMax)

	c, err := NewCapped(57, 100)
	require.NoError(t, err)
	assert.Equal(t, 57, c.Get())
	assert.True(t, c.Positive().Invariant())
}

func TestEven(t *testing.T) {
	_, err := NewEven(3)
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationNotEven, v)

	p, _ := NewPositive(42)
	e, err := NewEvenOf[int](p)
	require.NoError(t, err)
	assert.Equal(t, 42, e.Get())
}

func TestParseInt(t *testing.T) {
	n, err := ParseInt[uint16]("8080")
	require.NoError(t, err)
	assert.Equal(t, uint16(8080), n)

	_, err = ParseInt[uint16]("70000")
	var pe *domain.ParseError
	assert.True(t, errors.As(err, &pe))

	_, err = ParseInt[uint8]("-1")
	assert.True(t, errors.As(err, &pe))

	i, err := ParseInt[int8]("-128")
	require.NoError(t, err)
	assert.Equal(t, int8(-128), i)

	_, err = ParseInt[int]("abc")
	assert.Error(t, err)
}

func TestFloats(t *testing.T) {
	_, err := NewFinite(math.NaN())
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationNotFinite, v)

	_, err = NewFloatPositive(math.Inf(1))
	v, _ = domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationNotFinite, v, "finiteness is checked before sign")

	_, err = NewFloatPositive[float32](0)
	assert.ErrorIs(t, err, domain.ErrNotPositive)

	f, err := NewFloatNonNegative(0.0)
	require.NoError(t, err)
	assert.True(t, f.Invariant())
}

func TestStrings(t *testing.T) {
	_, err := NewNonEmptyString("")
	assert.ErrorIs(t, err, domain.ErrEmptyString)

	s, err := NewNonEmptyString("example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", s.Get())

	_, err = NewBoundedString("abcdef", 3)
	assert.ErrorIs(t, err, domain.ErrTooLong)
	_, err = NewBoundedString("", 3)
	assert.ErrorIs(t, err, domain.ErrEmptyString)
	b, err := NewBoundedString("abc", 3)
	require.NoError(t, err)
	assert.True(t, b.NonEmpty().Invariant())
	assert.Equal(t, 3, b.Max())

	_, err = NewTrimmedString(" padded ")
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationNotTrimmed, v)
	_, err = NewTrimmedString("tight")
	assert.NoError(t, err)
}

func TestStrings_RequireUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"invalid lead bytes", "\xff\xfe"},
		{"overlong NUL", "\xc0\x80"},
		{"surrogate", "\xed\xa0\x80"},
		{"truncated", "caf\xc3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNonEmptyString(tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidUTF8)
			_, err = NewBoundedString(tt.in, 8)
			assert.ErrorIs(t, err, domain.ErrInvalidUTF8)
		})
	}

	s, err := NewBoundedString("café", 8)
	require.NoError(t, err)
	assert.True(t, s.Invariant())
	assert.False(t, NonEmptyString{}.Invariant())
	assert.False(t, BoundedString{}.Invariant())
}

func TestBoolsAndRunes(t *testing.T) {
	_, err := NewTrue(false)
	assert.Error(t, err)
	tr, err := NewTrue(true)
	require.NoError(t, err)
	assert.True(t, tr.Invariant())
	assert.False(t, True{}.Invariant())

	_, err = NewFalse(true)
	assert.Error(t, err)

	_, err = NewAlphabetic('7')
	assert.Error(t, err)
	a, err := NewAlphabetic('ß')
	require.NoError(t, err)
	assert.Equal(t, 'ß', a.Get())

	_, err = NewNumeric('x')
	assert.Error(t, err)
	_, err = NewAlphanumeric('-')
	assert.Error(t, err)
	_, err = NewAlphanumeric('٣')
	assert.NoError(t, err)

	r, err := ParseRune("é")
	require.NoError(t, err)
	assert.Equal(t, 'é', r)
	_, err = ParseRune("ab")
	assert.Error(t, err)
}

func TestCollections(t *testing.T) {
	_, err := NewNonEmptySlice([]int{})
	assert.ErrorIs(t, err, domain.ErrEmptyCollection)

	src := []int{1, 2}
	ne, err := NewNonEmptySlice(src)
	require.NoError(t, err)
	src[0] = 99
	assert.Equal(t, 1, ne.First(), "input must be copied")

	positive := func(v int) error {
		_, err := NewPositive(v)
		return err
	}
	_, err = NewAllSatisfy([]int{1, 2, -3, 4}, positive)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, domain.ViolationElement, ve.Violation)
	assert.Contains(t, ve.Got, "index 2")
	all, err := NewAllSatisfy([]int{1, 2}, positive)
	require.NoError(t, err)
	assert.True(t, all.Invariant())

	_, err = NewSome[string](nil)
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationAbsent, v)
	x := "ok"
	some, err := NewSome(&x)
	require.NoError(t, err)
	assert.Equal(t, "ok", some.Get())

	_, err = NewNonEmptyMap(map[string]int{})
	assert.ErrorIs(t, err, domain.ErrEmptyCollection)
	m, err := NewNonEmptyMap(map[string]int{"a": 1})
	require.NoError(t, err)
	got, ok := m.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	_, err = NewUniqueSlice([]string{"a", "b", "a"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, domain.ViolationDuplicate, ve.Violation)
	assert.Equal(t, "repeat at index 2", ve.Got)
}

func TestDurationsAndTimes(t *testing.T) {
	_, err := NewPositiveDuration(0)
	assert.ErrorIs(t, err, domain.ErrNotPositive)
	d, err := NewPositiveDuration(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "1s", d.String())

	_, err = NewNonNegativeDuration(-time.Second)
	assert.ErrorIs(t, err, domain.ErrNegative)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = NewAfter(now, now)
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationNotAfter, v)
	_, err = NewBefore(now.Add(-time.Hour), now)
	assert.NoError(t, err)

	parsed, err := ParseTime("2024-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
	_, err = ParseDuration("soon")
	assert.Error(t, err)
}

func TestJSON(t *testing.T) {
	_, err := NewJSONObject([]byte(`{"a":`))
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationInvalidJSON, v)

	_, err = NewJSONObject([]byte(`[1,2]`))
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, domain.ViolationJSONKind, ve.Violation)
	assert.Equal(t, "array", ve.Got)

	obj, err := NewJSONObject([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Contains(t, obj.Get(), "a")

	arr, err := NewJSONArray([]byte(`[]`))
	require.NoError(t, err)
	assert.True(t, arr.Invariant())

	_, err = NewJSONNonNull([]byte(`null`))
	assert.Error(t, err)
	nn, err := NewJSONNonNull([]byte(`"x"`))
	require.NoError(t, err)
	assert.Equal(t, JSONString, nn.Kind())

	_, err = NewJSONNonNull([]byte(`1 2`))
	assert.Error(t, err)
}

func TestRegex(t *testing.T) {
	_, err := NewPattern("(")
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationInvalidRegex, v)

	p, err := NewPattern(`^[a-z]+$`)
	require.NoError(t, err)
	_, err = NewMatching("ABC", p)
	v, _ = domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationNoMatch, v)
	m, err := NewMatching("abc", p)
	require.NoError(t, err)
	assert.True(t, m.Invariant())

	_, err = NewMatching("abc", Pattern{})
	assert.Error(t, err)
}

func TestUUIDWrappers(t *testing.T) {
	_, err := NewUUIDNonNil(uuid.Nil)
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationUUIDNil, v)

	id := uuid.New()
	v4, err := NewUUIDv4(id)
	require.NoError(t, err)
	assert.Equal(t, id, v4.Get())

	_, err = NewUUIDv7(id)
	assert.ErrorIs(t, err, domain.ErrWrongUUIDVersion)

	v7id, err := uuid.NewV7()
	require.NoError(t, err)
	v7, err := NewUUIDv7(v7id)
	require.NoError(t, err)
	assert.NotZero(t, v7.TimestampMs())

	_, err = ParseUUID("nope")
	assert.Error(t, err)
}

func TestNetworkWrappers(t *testing.T) {
	_, err := NewIP[IsPrivateIP]("8.8.8.8")
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationIPClass, v)

	priv, err := NewIP[IsPrivateIP]("10.0.0.5")
	require.NoError(t, err)
	_, ok := contract.Prove[IsPrivateIP](priv)
	assert.True(t, ok)

	lo, err := NewIP[IsLoopbackIP]("::1")
	require.NoError(t, err)
	assert.False(t, lo.Is4())

	_, err = NewIP[IsPublicIP]("bogus")
	var pe *domain.ParseError
	assert.True(t, errors.As(err, &pe))

	var zero IPPublic
	assert.False(t, zero.Invariant())

	_, err = NewMAC[IsMulticastMAC]("00:1a:2b:3c:4d:5e")
	assert.Error(t, err)
	mac, err := NewMAC[IsUniversalMAC]("00:1a:2b:3c:4d:5e")
	require.NoError(t, err)
	assert.True(t, mac.Invariant())

	_, err = NewSocket[IsPrivilegedPort]("127.0.0.1:8080")
	v, _ = domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationPort, v)
	sock, err := NewSocket[IsUnprivilegedPort]("[::1]:8080")
	require.NoError(t, err)
	assert.Equal(t, uint16(8080), sock.Port())

	ip4, err := NewIPv4("192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", ip4.String())
	_, err = NewIPv6("192.0.2.1")
	assert.Error(t, err)
}
