package verification

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"unicode/utf8"

	"github.com/aretw0/elicitation/pkg/contract"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/foundation"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/google/uuid"
)

// Builtin returns a registry holding the bounded checks shipped with the
// library: foundation types against trusted oracles, wrapper soundness over
// every 8-bit input, and the reference contracts.
func Builtin() *Registry {
	r := NewRegistry()
	// IDs are unique by construction; Register cannot fail here.
	_ = r.Register(
		Harness{Module: "foundation", Name: "utf8_short_inputs", Check: checkUTF8Short},
		Harness{Module: "foundation", Name: "utf8_long_sequences", Check: checkUTF8Long},
		Harness{Module: "foundation", Name: "uuid_version_variant", Check: checkUUIDBits},
		Harness{Module: "foundation", Name: "scheme_single_byte", Check: checkSchemeByte},
		Harness{Module: "foundation", Name: "path_nul_position", Check: checkPathNUL},
		Harness{Module: "foundation", Name: "ipv4_classes", Check: checkIPv4Classes},
		Harness{Module: "foundation", Name: "mac_class_bits", Check: checkMACBits},
		Harness{Module: "wrapper", Name: "int8_soundness", Check: checkInt8},
		Harness{Module: "wrapper", Name: "uint8_soundness", Check: checkUint8},
		Harness{Module: "contract", Name: "reference_contracts", Check: checkReferenceContracts},
	)
	return r
}

// checkUTF8Short compares ValidUTF8 with unicode/utf8 over every input of
// one and two bytes.
func checkUTF8Short(ctx context.Context) error {
	for n := 0; n < 256; n++ {
		b := []byte{byte(n)}
		if _, ok := foundation.ValidUTF8(b); ok != utf8.Valid(b) {
			return fmt.Errorf("% x: got valid=%v", b, ok)
		}
	}
	for hi := 0; hi < 256; hi++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for lo := 0; lo < 256; lo++ {
			b := []byte{byte(hi), byte(lo)}
			if _, ok := foundation.ValidUTF8(b); ok != utf8.Valid(b) {
				return fmt.Errorf("% x: got valid=%v", b, ok)
			}
		}
	}
	return nil
}

func checkUTF8Long(ctx context.Context) error {
	cases := [][]byte{
		{0xE0, 0xA0, 0x80},       // U+0800, first three-byte scalar
		{0xE0, 0x80, 0x80},       // overlong
		{0xED, 0x9F, 0xBF},       // U+D7FF
		{0xED, 0xA0, 0x80},       // surrogate
		{0xEF, 0xBF, 0xBF},       // U+FFFF
		{0xE2, 0x82},             // truncated
		{0xF0, 0x90, 0x80, 0x80}, // U+10000
		{0xF0, 0x80, 0x80, 0x80}, // overlong
		{0xF4, 0x8F, 0xBF, 0xBF}, // U+10FFFF
		{0xF4, 0x90, 0x80, 0x80}, // above U+10FFFF
		{0xF5, 0x80, 0x80, 0x80},
		{0xF0, 0x9F, 0x98},
	}
	for _, b := range cases {
		if _, ok := foundation.ValidUTF8(b); ok != utf8.Valid(b) {
			return fmt.Errorf("% x: got valid=%v", b, ok)
		}
	}
	return ctx.Err()
}

// checkUUIDBits tries every version nibble against every variant pattern and
// compares the constructors with google/uuid's reading of the same bytes.
func checkUUIDBits(context.Context) error {
	variants := []byte{0x00, 0x40, 0x80, 0xC0}
	for version := 0; version < 16; version++ {
		for _, variant := range variants {
			var b [foundation.UUIDCapacity]byte
			b[0] = 0x01
			b[6] = byte(version)<<4 | 0x0A
			b[8] = variant | 0x11
			oracle := uuid.UUID(b)
			rfc := oracle.Variant() == uuid.RFC4122

			_, err := foundation.NewUUIDBytes(b)
			if (err == nil) != rfc {
				return fmt.Errorf("%s: variant accepted=%v, oracle %s", oracle, err == nil, oracle.Variant())
			}
			_, err = foundation.NewUUIDv4Bytes(b)
			if want := rfc && oracle.Version() == 4; (err == nil) != want {
				return fmt.Errorf("%s: v4 accepted=%v", oracle, err == nil)
			}
			if rfc && oracle.Version() != 4 && !hasViolation(err, domain.ViolationUUIDVersion) {
				return fmt.Errorf("%s: v4 rejection %v, want %s", oracle, err, domain.ViolationUUIDVersion)
			}
			_, err = foundation.NewUUIDv7Bytes(b)
			if want := rfc && oracle.Version() == 7; (err == nil) != want {
				return fmt.Errorf("%s: v7 accepted=%v", oracle, err == nil)
			}
		}
	}
	return nil
}

func checkSchemeByte(context.Context) error {
	for n := 0; n < 256; n++ {
		c := byte(n)
		want := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		if _, err := foundation.NewSchemeBytes([]byte{c}); (err == nil) != want {
			return fmt.Errorf("scheme %q: accepted=%v", c, err == nil)
		}
	}
	return nil
}

func checkPathNUL(context.Context) error {
	const size = 16
	clean := make([]byte, size)
	for i := range clean {
		clean[i] = 'a'
	}
	if _, err := foundation.NewPathBytes(clean); err != nil {
		return fmt.Errorf("path without NUL rejected: %w", err)
	}
	for i := 0; i < size; i++ {
		b := append([]byte(nil), clean...)
		b[i] = 0
		_, err := foundation.NewPathBytes(b)
		if !hasViolation(err, domain.ViolationPathNull) {
			return fmt.Errorf("NUL at %d: got %v", i, err)
		}
	}
	return nil
}

// checkIPv4Classes compares the byte-level predicates with net/netip for every
// first octet and the second octets that straddle the private ranges.
func checkIPv4Classes(context.Context) error {
	seconds := []byte{0, 15, 16, 31, 32, 167, 168, 169, 254, 255}
	for first := 0; first < 256; first++ {
		for _, second := range seconds {
			raw := [4]byte{byte(first), second, 1, 1}
			ip := foundation.IPv4Bytes(raw)
			addr := netip.AddrFrom4(raw)
			switch {
			case ip.IsPrivate() != addr.IsPrivate():
				return fmt.Errorf("%s: private=%v", addr, ip.IsPrivate())
			case ip.IsLoopback() != addr.IsLoopback():
				return fmt.Errorf("%s: loopback=%v", addr, ip.IsLoopback())
			case ip.IsMulticast() != addr.IsMulticast():
				return fmt.Errorf("%s: multicast=%v", addr, ip.IsMulticast())
			case ip.IsLinkLocal() != addr.IsLinkLocalUnicast():
				return fmt.Errorf("%s: link-local=%v", addr, ip.IsLinkLocal())
			}
		}
	}
	return nil
}

func checkMACBits(context.Context) error {
	classes := []struct {
		class foundation.MACClass
		holds func(byte) bool
	}{
		{foundation.MACUnicast, func(o byte) bool { return o&0x01 == 0 }},
		{foundation.MACMulticast, func(o byte) bool { return o&0x01 != 0 }},
		{foundation.MACUniversal, func(o byte) bool { return o&0x02 == 0 }},
		{foundation.MACLocal, func(o byte) bool { return o&0x02 != 0 }},
	}
	for first := 0; first < 256; first++ {
		m := foundation.MACBytes{byte(first), 0x1B, 0x2C, 0x3D, 0x4E, 0x5F}
		for _, c := range classes {
			_, err := foundation.NewMACClassified(m, c.class)
			if (err == nil) != c.holds(byte(first)) {
				return fmt.Errorf("%s as %s: accepted=%v", m, c.class, err == nil)
			}
		}
	}
	return nil
}

// checkInt8 runs each integer wrapper over every int8.
func checkInt8(context.Context) error {
	for n := -128; n < 128; n++ {
		v := int8(n)
		trials := []trial[int8]{
			wrapped("Positive", v > 0, v, wrapper.NewPositive[int8]),
			wrapped("NonNegative", v >= 0, v, wrapper.NewNonNegative[int8]),
			wrapped("NonZero", v != 0, v, wrapper.NewNonZero[int8]),
			wrapped("Even", v%2 == 0, v, wrapper.NewEven[int8]),
			wrapped("Range[-10,10]", v >= -10 && v <= 10, v, func(x int8) (wrapper.Range[int8], error) {
				return wrapper.NewRange[int8](x, -10, 10)
			}),
			wrapped("Capped[100]", v > 0 && v <= 100, v, func(x int8) (wrapper.Capped[int8], error) {
				return wrapper.NewCapped[int8](x, 100)
			}),
		}
		for _, p := range trials {
			if err := p.sound(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkUint8(context.Context) error {
	for n := 0; n < 256; n++ {
		v := uint8(n)
		trials := []trial[uint8]{
			wrapped("Positive", v > 0, v, wrapper.NewPositive[uint8]),
			wrapped("NonZero", v != 0, v, wrapper.NewNonZero[uint8]),
			wrapped("Range[16,200]", v >= 16 && v <= 200, v, func(x uint8) (wrapper.Range[uint8], error) {
				return wrapper.NewRange[uint8](x, 16, 200)
			}),
			wrapped("Capped[200]", v > 0 && v <= 200, v, func(x uint8) (wrapper.Capped[uint8], error) {
				return wrapper.NewCapped[uint8](x, 200)
			}),
		}
		for _, p := range trials {
			if err := p.sound(v); err != nil {
				return err
			}
		}
	}
	return nil
}

type established[T any] interface {
	Get() T
	Invariant() bool
}

// trial is the outcome of one wrapper construction.
type trial[T wrapper.Integer] struct {
	name  string
	want  bool
	err   error
	value T
	holds bool
}

func wrapped[T wrapper.Integer, W established[T]](name string, want bool, v T, construct func(T) (W, error)) trial[T] {
	w, err := construct(v)
	return trial[T]{name: name, want: want, err: err, value: w.Get(), holds: w.Invariant()}
}

// sound checks that construction succeeded exactly when the predicate holds
// and that an accepted value reads back unchanged.
func (p trial[T]) sound(v T) error {
	switch {
	case p.want && p.err != nil:
		return fmt.Errorf("%s(%v): rejected: %w", p.name, v, p.err)
	case !p.want && p.err == nil:
		return fmt.Errorf("%s(%v): accepted", p.name, v)
	case p.err == nil && !p.holds:
		return fmt.Errorf("%s(%v): invariant does not hold", p.name, v)
	case p.err == nil && p.value != v:
		return fmt.Errorf("%s(%v): read back %v", p.name, v, p.value)
	case p.err != nil && p.holds:
		return fmt.Errorf("%s(%v): rejected value satisfies its invariant", p.name, v)
	}
	return nil
}

func checkReferenceContracts(context.Context) error {
	strs := []string{"", "a", "hello", "12345678", "123456789", "\xff", "héllo"}
	ints := []int32{-1 << 31, -7, -1, 0, 1, 2, 1<<31 - 1}

	nonEmpty := func(s string) (string, error) {
		w, err := wrapper.NewNonEmptyString(s)
		return w.Get(), err
	}
	maxLen := func(s string) (string, error) {
		u, err := foundation.Utf8FromString(8, s)
		return u.String(), err
	}
	positive := func(v int32) (int32, error) {
		w, err := wrapper.NewPositive(v)
		return w.Get(), err
	}
	nonNegative := func(v int32) (int32, error) {
		w, err := wrapper.NewNonNegative(v)
		return w.Get(), err
	}
	identity := func(b bool) (bool, error) { return b, nil }

	return errors.Join(
		contract.Check("StringNonEmpty", contract.StringNonEmpty{}, nonEmpty, strs),
		contract.Check("StringMaxLength", contract.StringMaxLength{Max: 8}, maxLen, strs),
		contract.Check("I32Positive", contract.I32Positive{}, positive, ints),
		contract.Check("I32NonNegative", contract.I32NonNegative{}, nonNegative, ints),
		contract.Check("BoolValid", contract.BoolValid{}, identity, []bool{false, true}),
	)
}

func hasViolation(err error, want domain.Violation) bool {
	got, ok := domain.ViolationOf(err)
	return ok && got == want
}
