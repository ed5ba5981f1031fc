package foundation

import (
	"strconv"

	"github.com/aretw0/elicitation/pkg/domain"
)

// Capacities per use site. Each is the smallest bound covering real inputs
// for that component, keeping bounded verification tractable.
const (
	SchemeCapacity    = 32
	AuthorityCapacity = 256
	URLCapacity       = 2048
	PathCapacity      = 4096
)

// Utf8Bytes is a bounded buffer holding well-formed UTF-8.
// The bound is a runtime capacity carried next to a slice sized to the
// content, since array lengths cannot be type parameters.
type Utf8Bytes struct {
	buf      []byte
	capacity int
}

// NewUtf8Bytes validates the first declaredLen bytes of buf.
// Checks, in order: declaredLen within buf and capacity, then UTF-8 well-formedness.
func NewUtf8Bytes(capacity int, buf []byte, declaredLen int) (Utf8Bytes, error) {
	if capacity <= 0 {
		return Utf8Bytes{}, domain.Invalid(domain.ViolationCapacity, "Utf8Bytes", "capacity > 0", strconv.Itoa(capacity))
	}
	if declaredLen < 0 || declaredLen > len(buf) {
		return Utf8Bytes{}, domain.Invalid(domain.ViolationCapacity, "Utf8Bytes",
			"0 <= length <= "+strconv.Itoa(len(buf)), strconv.Itoa(declaredLen))
	}
	if declaredLen > capacity {
		return Utf8Bytes{}, domain.Invalid(domain.ViolationCapacity, "Utf8Bytes",
			"length <= "+strconv.Itoa(capacity), strconv.Itoa(declaredLen))
	}
	data := buf[:declaredLen]
	if off, ok := ValidUTF8(data); !ok {
		return Utf8Bytes{}, domain.Invalid(domain.ViolationInvalidUTF8, "Utf8Bytes",
			"well-formed UTF-8", "invalid byte at offset "+strconv.Itoa(off))
	}
	out := make([]byte, declaredLen)
	copy(out, data)
	return Utf8Bytes{buf: out, capacity: capacity}, nil
}

// Utf8FromString validates s against capacity.
func Utf8FromString(capacity int, s string) (Utf8Bytes, error) {
	b := []byte(s)
	return NewUtf8Bytes(capacity, b, len(b))
}

// Bytes returns a copy of the content.
func (u Utf8Bytes) Bytes() []byte {
	out := make([]byte, len(u.buf))
	copy(out, u.buf)
	return out
}

func (u Utf8Bytes) String() string { return string(u.buf) }

// Len is the logical length in bytes.
func (u Utf8Bytes) Len() int { return len(u.buf) }

// Cap is the fixed capacity chosen at construction.
func (u Utf8Bytes) Cap() int { return u.capacity }

// Invariant re-checks length and encoding. The zero value has no capacity and fails.
func (u Utf8Bytes) Invariant() bool {
	_, ok := ValidUTF8(u.buf)
	return u.capacity > 0 && len(u.buf) <= u.capacity && ok
}

// ValidUTF8 reports whether b is well-formed UTF-8 per Unicode Table 3-7 and,
// when it is not, the offset of the first offending sequence. Overlong forms,
// surrogates (U+D800..U+DFFF), code points above U+10FFFF and truncated
// sequences are rejected.
func ValidUTF8(b []byte) (int, bool) {
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c < 0x80:
			i++
			continue
		case c >= 0xC2 && c <= 0xDF:
			if !cont(b, i+1, 0x80, 0xBF) {
				return i, false
			}
			i += 2
		case c == 0xE0:
			if !cont(b, i+1, 0xA0, 0xBF) || !cont(b, i+2, 0x80, 0xBF) {
				return i, false
			}
			i += 3
		case (c >= 0xE1 && c <= 0xEC) || c == 0xEE || c == 0xEF:
			if !cont(b, i+1, 0x80, 0xBF) || !cont(b, i+2, 0x80, 0xBF) {
				return i, false
			}
			i += 3
		case c == 0xED:
			// Upper bound 0x9F excludes the surrogate range.
			if !cont(b, i+1, 0x80, 0x9F) || !cont(b, i+2, 0x80, 0xBF) {
				return i, false
			}
			i += 3
		case c == 0xF0:
			if !cont(b, i+1, 0x90, 0xBF) || !cont(b, i+2, 0x80, 0xBF) || !cont(b, i+3, 0x80, 0xBF) {
				return i, false
			}
			i += 4
		case c >= 0xF1 && c <= 0xF3:
			if !cont(b, i+1, 0x80, 0xBF) || !cont(b, i+2, 0x80, 0xBF) || !cont(b, i+3, 0x80, 0xBF) {
				return i, false
			}
			i += 4
		case c == 0xF4:
			// Upper bound 0x8F caps code points at U+10FFFF.
			if !cont(b, i+1, 0x80, 0x8F) || !cont(b, i+2, 0x80, 0xBF) || !cont(b, i+3, 0x80, 0xBF) {
				return i, false
			}
			i += 4
		default:
			// 0x80..0xC1 as a lead byte, or 0xF5..0xFF.
			return i, false
		}
	}
	return len(b), true
}

func cont(b []byte, i int, lo, hi byte) bool {
	return i < len(b) && b[i] >= lo && b[i] <= hi
}
