package foundation

import (
	"strconv"

	"github.com/aretw0/elicitation/pkg/domain"
)

// SchemeBytes is a URL scheme: an ASCII letter followed by letters, digits, '+', '-' or '.'.
type SchemeBytes struct {
	text Utf8Bytes
}

// NewSchemeBytes checks, in order: capacity and UTF-8, non-empty, leading letter, then the remaining characters.
func NewSchemeBytes(b []byte) (SchemeBytes, error) {
	text, err := NewUtf8Bytes(SchemeCapacity, b, len(b))
	if err != nil {
		return SchemeBytes{}, retype(err, "SchemeBytes")
	}
	if len(b) == 0 {
		return SchemeBytes{}, domain.Invalid(domain.ViolationMissingScheme, "SchemeBytes", "non-empty scheme", "")
	}
	if !isASCIIAlpha(b[0]) {
		return SchemeBytes{}, domain.Invalid(domain.ViolationInvalidScheme, "SchemeBytes",
			"leading ASCII letter", strconv.QuoteRune(rune(b[0])))
	}
	for i := 1; i < len(b); i++ {
		if !isSchemeChar(b[i]) {
			return SchemeBytes{}, domain.Invalid(domain.ViolationInvalidScheme, "SchemeBytes",
				"letters, digits, '+', '-' or '.'", "byte "+strconv.Itoa(i))
		}
	}
	return SchemeBytes{text: text}, nil
}

func (s SchemeBytes) String() string { return s.text.String() }
func (s SchemeBytes) Bytes() []byte { return s.text.Bytes() }
func (s SchemeBytes) Len() int { return s.text.Len() }
func (s SchemeBytes) Invariant() bool { return s.text.Invariant() && s.text.Len() > 0 }

// IsHTTP reports whether the scheme is http or https, compared case-insensitively.
func (s SchemeBytes) IsHTTP() bool {
	switch lowerASCII(s.text.String()) {
	case "http", "https":
		return true
	}
	return false
}

// AuthorityBytes is the authority component. It may be empty, as in file:///.
type AuthorityBytes struct {
	text  Utf8Bytes
	valid bool
}

// NewAuthorityBytes checks capacity and UTF-8, then that no delimiter ('/', '?', '#') occurs.
func NewAuthorityBytes(b []byte) (AuthorityBytes, error) {
	text, err := NewUtf8Bytes(AuthorityCapacity, b, len(b))
	if err != nil {
		return AuthorityBytes{}, retype(err, "AuthorityBytes")
	}
	for i, c := range b {
		if isAuthorityEnd(c) {
			return AuthorityBytes{}, domain.Invalid(domain.ViolationNoAuthority, "AuthorityBytes",
				"no '/', '?' or '#'", "byte "+strconv.Itoa(i))
		}
	}
	return AuthorityBytes{text: text, valid: true}, nil
}

func (a AuthorityBytes) String() string { return a.text.String() }
func (a AuthorityBytes) Bytes() []byte { return a.text.Bytes() }
func (a AuthorityBytes) Len() int { return a.text.Len() }
func (a AuthorityBytes) Invariant() bool { return a.valid && a.text.Invariant() }

// URLBytes is a URL decomposed into a bounded scheme and an optional bounded authority.
type URLBytes struct {
	text         Utf8Bytes
	scheme       SchemeBytes
	authority    AuthorityBytes
	hasAuthority bool
}

// NewURLBytes checks, in order: capacity and UTF-8 of the whole URL, the presence
// of a ':' terminated scheme, the scheme itself, then the authority when "//" follows the colon.
func NewURLBytes(b []byte) (URLBytes, error) {
	return URLFromBytes(b, len(b))
}

// URLFromBytes validates the first declaredLen bytes of buf.
func URLFromBytes(buf []byte, declaredLen int) (URLBytes, error) {
	text, err := NewUtf8Bytes(URLCapacity, buf, declaredLen)
	if err != nil {
		return URLBytes{}, retype(err, "URLBytes")
	}
	b := buf[:declaredLen]
	end, err := schemeEnd(b)
	if err != nil {
		return URLBytes{}, err
	}
	scheme, err := NewSchemeBytes(b[:end])
	if err != nil {
		return URLBytes{}, err
	}
	u := URLBytes{text: text, scheme: scheme}
	if len(b) > end+2 && b[end+1] == '/' && b[end+2] == '/' {
		start := end + 3
		stop := start
		for stop < len(b) && !isAuthorityEnd(b[stop]) {
			stop++
		}
		auth, err := NewAuthorityBytes(b[start:stop])
		if err != nil {
			return URLBytes{}, err
		}
		u.authority = auth
		u.hasAuthority = true
	}
	return u, nil
}

// ParseURL validates a URL given as text.
func ParseURL(s string) (URLBytes, error) {
	return NewURLBytes([]byte(s))
}

func schemeEnd(b []byte) (int, error) {
	for i, c := range b {
		if c == ':' {
			return i, nil
		}
		if c == '/' || c == '?' || c == '#' {
			break
		}
	}
	return 0, domain.Invalid(domain.ViolationMissingScheme, "URLBytes", "scheme followed by ':'", "")
}

func (u URLBytes) String() string { return u.text.String() }
func (u URLBytes) Bytes() []byte { return u.text.Bytes() }
func (u URLBytes) Len() int { return u.text.Len() }

// Scheme returns the validated scheme.
func (u URLBytes) Scheme() SchemeBytes { return u.scheme }

// Authority returns the validated authority and whether one was present.
func (u URLBytes) Authority() (AuthorityBytes, bool) { return u.authority, u.hasAuthority }

// HasAuthority reports whether "//" followed the scheme.
func (u URLBytes) HasAuthority() bool { return u.hasAuthority }

// IsHTTP reports whether the scheme is http or https.
func (u URLBytes) IsHTTP() bool { return u.scheme.IsHTTP() }

func (u URLBytes) Invariant() bool {
	if !u.text.Invariant() || !u.scheme.Invariant() {
		return false
	}
	return !u.hasAuthority || u.authority.Invariant()
}

// URLWithAuthority is a URL that carries an authority component.
type URLWithAuthority struct {
	URLBytes
}

func NewURLWithAuthority(b []byte) (URLWithAuthority, error) {
	u, err := NewURLBytes(b)
	if err != nil {
		return URLWithAuthority{}, err
	}
	if !u.hasAuthority {
		return URLWithAuthority{}, domain.Invalid(domain.ViolationNoAuthority, "URLWithAuthority", "scheme://authority", u.String())
	}
	return URLWithAuthority{u}, nil
}

func (u URLWithAuthority) Invariant() bool { return u.URLBytes.Invariant() && u.hasAuthority }

// URLAbsolute is a URL with both scheme and authority.
type URLAbsolute struct {
	URLBytes
}

func NewURLAbsolute(b []byte) (URLAbsolute, error) {
	u, err := NewURLBytes(b)
	if err != nil {
		return URLAbsolute{}, err
	}
	if !u.hasAuthority {
		return URLAbsolute{}, domain.Invalid(domain.ViolationURLNotAbsolute, "URLAbsolute", "absolute URL", u.String())
	}
	return URLAbsolute{u}, nil
}

func (u URLAbsolute) Invariant() bool { return u.URLBytes.Invariant() && u.hasAuthority }

// URLHTTP is a URL whose scheme is http or https.
type URLHTTP struct {
	URLBytes
}

func NewURLHTTP(b []byte) (URLHTTP, error) {
	u, err := NewURLBytes(b)
	if err != nil {
		return URLHTTP{}, err
	}
	if !u.IsHTTP() {
		return URLHTTP{}, domain.Invalid(domain.ViolationURLNotHTTP, "URLHTTP", "http or https", u.scheme.String())
	}
	return URLHTTP{u}, nil
}

func (u URLHTTP) Invariant() bool { return u.URLBytes.Invariant() && u.IsHTTP() }

func isASCIIAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSchemeChar(c byte) bool {
	return isASCIIAlpha(c) || isASCIIDigit(c) || c == '+' || c == '-' || c == '.'
}

func isAuthorityEnd(c byte) bool {
	return c == '/' || c == '?' || c == '#'
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// retype relabels a Utf8Bytes error with the name of the component that owns the buffer.
func retype(err error, typeName string) error {
	if ve, ok := err.(*domain.ValidationError); ok {
		c := *ve
		c.Type = typeName
		return &c
	}
	return err
}
