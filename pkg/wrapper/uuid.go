package wrapper

import (
	"encoding/json"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/foundation"
	"github.com/google/uuid"
)

// UUIDNonNil is any RFC 4122 identifier other than the nil UUID.
type UUIDNonNil struct {
	u     foundation.UUIDBytes
	valid bool
}

func NewUUIDNonNil(id uuid.UUID) (UUIDNonNil, error) {
	if id == uuid.Nil {
		return UUIDNonNil{}, domain.Invalid(domain.ViolationUUIDNil, "UUIDNonNil", "non-nil uuid", uuid.Nil.String())
	}
	b, err := foundation.NewUUIDBytes(id)
	if err != nil {
		return UUIDNonNil{}, err
	}
	return UUIDNonNil{u: b, valid: true}, nil
}

func (u UUIDNonNil) Get() uuid.UUID { return u.u.UUID() }
func (u UUIDNonNil) String() string { return u.u.String() }
func (u UUIDNonNil) Invariant() bool { return u.valid && u.u.Invariant() && u.u.UUID() != uuid.Nil }
func (u UUIDNonNil) Establishes() IsUUIDNonNil { return IsUUIDNonNil{} }
func (u UUIDNonNil) MarshalJSON() ([]byte, error) { return json.Marshal(u.String()) }

// UUIDv4 is a random identifier.
type UUIDv4 struct {
	u foundation.UUIDv4Bytes
}

func NewUUIDv4(id uuid.UUID) (UUIDv4, error) {
	b, err := foundation.NewUUIDv4Bytes(id)
	if err != nil {
		return UUIDv4{}, err
	}
	return UUIDv4{u: b}, nil
}

func (u UUIDv4) Get() uuid.UUID { return u.u.UUID() }
func (u UUIDv4) String() string { return u.u.String() }
func (u UUIDv4) Invariant() bool { return u.u.Invariant() }
func (u UUIDv4) Establishes() IsUUIDv4 { return IsUUIDv4{} }
func (u UUIDv4) MarshalJSON() ([]byte, error) { return json.Marshal(u.String()) }

// UUIDv7 is a time-ordered identifier.
type UUIDv7 struct {
	u foundation.UUIDv7Bytes
}

func NewUUIDv7(id uuid.UUID) (UUIDv7, error) {
	b, err := foundation.NewUUIDv7Bytes(id)
	if err != nil {
		return UUIDv7{}, err
	}
	return UUIDv7{u: b}, nil
}

func (u UUIDv7) Get() uuid.UUID { return u.u.UUID() }
func (u UUIDv7) String() string { return u.u.String() }
func (u UUIDv7) TimestampMs() uint64 { return u.u.TimestampMs() }
func (u UUIDv7) Invariant() bool { return u.u.Invariant() }
func (u UUIDv7) Establishes() IsUUIDv7 { return IsUUIDv7{} }
func (u UUIDv7) MarshalJSON() ([]byte, error) { return json.Marshal(u.String()) }

// ParseUUID decodes uuid text with google/uuid.
func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &domain.ParseError{Type: "uuid.UUID", Expected: "uuid", Received: s}
	}
	return id, nil
}
