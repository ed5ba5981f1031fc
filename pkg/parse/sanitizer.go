package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/foundation"
)

// DefaultMaxResponseBytes is the default size limit for a text response (4KB).
const DefaultMaxResponseBytes = 4096

var (
	ErrInputTooLarge = errors.New("response exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("response contains invalid UTF-8 sequences")
)

// Sanitizer cleans text responses before they reach a parser.
type Sanitizer struct {
	// MaxBytes rejects longer responses. Zero means DefaultMaxResponseBytes.
	MaxBytes int
}

func (s Sanitizer) limit() int {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return DefaultMaxResponseBytes
}

// Sanitize enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return. Oversized input is
// rejected rather than truncated so that parsing stays deterministic.
func (s Sanitizer) Sanitize(typeName, input string) (string, error) {
	if limit := s.limit(); len(input) > limit {
		return "", &domain.ParseError{
			Type:     typeName,
			Expected: "at most " + strconv.Itoa(limit) + " bytes",
			Received: strconv.Itoa(len(input)) + " bytes",
			Cause:    fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit),
		}
	}

	if off, ok := foundation.ValidUTF8([]byte(input)); !ok {
		return "", &domain.ParseError{
			Type:     typeName,
			Expected: "UTF-8 text",
			Received: "invalid byte at offset " + strconv.Itoa(off),
			Cause:    ErrInvalidUTF8,
		}
	}

	// Fast path: nothing to strip.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
