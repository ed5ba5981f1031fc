package foundation

import (
	"encoding/hex"
	"strconv"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/google/uuid"
)

// UUIDCapacity is the fixed size of an RFC 4122 identifier.
const UUIDCapacity = 16

// UUIDBytes is a 16-byte identifier carrying the RFC 4122 variant.
type UUIDBytes struct {
	b     [UUIDCapacity]byte
	valid bool
}

// NewUUIDBytes checks the RFC 4122 variant bits (10xx in byte 8).
func NewUUIDBytes(b [UUIDCapacity]byte) (UUIDBytes, error) {
	if !variantRFC4122(b) {
		return UUIDBytes{}, domain.Invalid(domain.ViolationUUIDVariant, "UUIDBytes",
			"variant 10xx", "0x"+hex.EncodeToString(b[8:9]))
	}
	return UUIDBytes{b: b, valid: true}, nil
}

// UUIDFromBytes validates the first declaredLen bytes of buf, which must be exactly 16.
func UUIDFromBytes(buf []byte, declaredLen int) (UUIDBytes, error) {
	if declaredLen < 0 || declaredLen > len(buf) || declaredLen > UUIDCapacity {
		return UUIDBytes{}, domain.Invalid(domain.ViolationCapacity, "UUIDBytes",
			"length <= 16", strconv.Itoa(declaredLen))
	}
	if declaredLen != UUIDCapacity {
		return UUIDBytes{}, domain.Invalid(domain.ViolationWrongLength, "UUIDBytes",
			"16", strconv.Itoa(declaredLen))
	}
	var b [UUIDCapacity]byte
	copy(b[:], buf[:declaredLen])
	return NewUUIDBytes(b)
}

// ParseUUID decodes the textual form with google/uuid, the trusted parser,
// then applies the byte-level checks.
func ParseUUID(s string) (UUIDBytes, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUIDBytes{}, &domain.ParseError{Type: "UUIDBytes", Expected: "uuid", Received: s}
	}
	return NewUUIDBytes(u)
}

func variantRFC4122(b [UUIDCapacity]byte) bool {
	return b[8]&0xC0 == 0x80
}

func versionOf(b [UUIDCapacity]byte) byte {
	return (b[6] & 0xF0) >> 4
}

// Version is the high nibble of byte 6.
func (u UUIDBytes) Version() byte { return versionOf(u.b) }

// VariantRFC4122 reports whether byte 8 carries the 10xx variant bits.
func (u UUIDBytes) VariantRFC4122() bool { return variantRFC4122(u.b) }

// Array returns the raw 16 bytes.
func (u UUIDBytes) Array() [UUIDCapacity]byte { return u.b }

// Bytes returns a copy of the raw bytes.
func (u UUIDBytes) Bytes() []byte {
	out := make([]byte, UUIDCapacity)
	copy(out, u.b[:])
	return out
}

// Len is always 16.
func (u UUIDBytes) Len() int { return UUIDCapacity }

// UUID converts to the google/uuid representation.
func (u UUIDBytes) UUID() uuid.UUID { return uuid.UUID(u.b) }

func (u UUIDBytes) String() string { return u.UUID().String() }

// Invariant re-checks the variant bits.
func (u UUIDBytes) Invariant() bool { return u.valid && variantRFC4122(u.b) }

// UUIDv4Bytes is a random (version 4) identifier.
type UUIDv4Bytes struct {
	UUIDBytes
}

// NewUUIDv4Bytes checks the variant, then the version nibble.
func NewUUIDv4Bytes(b [UUIDCapacity]byte) (UUIDv4Bytes, error) {
	u, err := newVersioned(b, 4, "UUIDv4Bytes")
	if err != nil {
		return UUIDv4Bytes{}, err
	}
	return UUIDv4Bytes{u}, nil
}

func (u UUIDv4Bytes) Invariant() bool {
	return u.UUIDBytes.Invariant() && u.Version() == 4
}

// UUIDv7Bytes is a time-ordered (version 7) identifier.
type UUIDv7Bytes struct {
	UUIDBytes
}

// NewUUIDv7Bytes checks the variant, then the version nibble.
func NewUUIDv7Bytes(b [UUIDCapacity]byte) (UUIDv7Bytes, error) {
	u, err := newVersioned(b, 7, "UUIDv7Bytes")
	if err != nil {
		return UUIDv7Bytes{}, err
	}
	return UUIDv7Bytes{u}, nil
}

// TimestampMs is the big-endian 48-bit Unix millisecond timestamp in bytes 0..5.
func (u UUIDv7Bytes) TimestampMs() uint64 {
	b := u.b
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

func (u UUIDv7Bytes) Invariant() bool {
	return u.UUIDBytes.Invariant() && u.Version() == 7
}

func newVersioned(b [UUIDCapacity]byte, version byte, typeName string) (UUIDBytes, error) {
	if !variantRFC4122(b) {
		return UUIDBytes{}, domain.Invalid(domain.ViolationUUIDVariant, typeName,
			"variant 10xx", "0x"+hex.EncodeToString(b[8:9]))
	}
	if got := versionOf(b); got != version {
		return UUIDBytes{}, domain.Invalid(domain.ViolationUUIDVersion, typeName,
			strconv.Itoa(int(version)), strconv.Itoa(int(got)))
	}
	return UUIDBytes{b: b, valid: true}, nil
}
