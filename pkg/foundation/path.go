package foundation

import (
	"bytes"
	"strconv"

	"github.com/aretw0/elicitation/pkg/domain"
)

// PathBytes is a filesystem path held as bounded UTF-8 without NUL bytes.
type PathBytes struct {
	text Utf8Bytes
}

// NewPathBytes checks, in order: capacity and UTF-8, then the absence of NUL.
func NewPathBytes(b []byte) (PathBytes, error) {
	return PathFromBytes(b, len(b))
}

// PathFromBytes validates the first declaredLen bytes of buf.
func PathFromBytes(buf []byte, declaredLen int) (PathBytes, error) {
	text, err := NewUtf8Bytes(PathCapacity, buf, declaredLen)
	if err != nil {
		return PathBytes{}, retype(err, "PathBytes")
	}
	if i := bytes.IndexByte(buf[:declaredLen], 0); i >= 0 {
		return PathBytes{}, domain.Invalid(domain.ViolationPathNull, "PathBytes", "no NUL byte", "NUL at offset "+strconv.Itoa(i))
	}
	return PathBytes{text: text}, nil
}

// ParsePath validates a path given as text.
func ParsePath(s string) (PathBytes, error) {
	return NewPathBytes([]byte(s))
}

func (p PathBytes) String() string { return p.text.String() }
func (p PathBytes) Bytes() []byte { return p.text.Bytes() }
func (p PathBytes) Len() int { return p.text.Len() }

// IsAbsolute reports whether the path starts with '/'.
func (p PathBytes) IsAbsolute() bool {
	return p.text.Len() > 0 && p.text.buf[0] == '/'
}

func (p PathBytes) Invariant() bool {
	return p.text.Invariant() && bytes.IndexByte(p.text.buf, 0) < 0
}

// PathAbsolute is a path starting with '/'.
type PathAbsolute struct {
	PathBytes
}

func NewPathAbsolute(b []byte) (PathAbsolute, error) {
	p, err := NewPathBytes(b)
	if err != nil {
		return PathAbsolute{}, err
	}
	if !p.IsAbsolute() {
		return PathAbsolute{}, domain.Invalid(domain.ViolationPathNotAbsolute, "PathAbsolute", "leading '/'", strconv.Quote(p.String()))
	}
	return PathAbsolute{p}, nil
}

func (p PathAbsolute) Invariant() bool { return p.PathBytes.Invariant() && p.IsAbsolute() }

// PathRelative is a path not starting with '/'.
type PathRelative struct {
	PathBytes
}

func NewPathRelative(b []byte) (PathRelative, error) {
	p, err := NewPathBytes(b)
	if err != nil {
		return PathRelative{}, err
	}
	if p.IsAbsolute() {
		return PathRelative{}, domain.Invalid(domain.ViolationPathNotRelative, "PathRelative", "no leading '/'", strconv.Quote(p.String()))
	}
	return PathRelative{p}, nil
}

func (p PathRelative) Invariant() bool { return p.PathBytes.Invariant() && !p.IsAbsolute() }

// PathNonEmpty is a path of at least one byte.
type PathNonEmpty struct {
	PathBytes
}

func NewPathNonEmpty(b []byte) (PathNonEmpty, error) {
	p, err := NewPathBytes(b)
	if err != nil {
		return PathNonEmpty{}, err
	}
	if p.Len() == 0 {
		return PathNonEmpty{}, domain.Invalid(domain.ViolationEmptyString, "PathNonEmpty", "non-empty path", "")
	}
	return PathNonEmpty{p}, nil
}

func (p PathNonEmpty) Invariant() bool { return p.PathBytes.Invariant() && p.Len() > 0 }
