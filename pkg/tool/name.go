package tool

import (
	"errors"
	"fmt"
	"strings"
)

// Prefix starts every tool name.
const Prefix = "elicit_"

// ErrInvalidTypeName is returned for names that cannot be mapped.
var ErrInvalidTypeName = errors.New("invalid type name")

// Name maps a PascalCase type name to its tool name: Prefix followed by the
// snake_case form, where every upper-case letter after the first becomes "_"
// and its lower-case form, and every literal "_" is doubled. The mapping is
// injective, so distinct type names never share a tool name.
//
//	CacheKeyNewParams -> elicit_cache_key_new_params
//	HTTPServer        -> elicit_h_t_t_p_server
//	Snake_Case        -> elicit_snake___case
func Name(typeName string) (string, error) {
	if typeName == "" || !isUpper(typeName[0]) {
		return "", fmt.Errorf("%w %q: must start with an upper-case ASCII letter", ErrInvalidTypeName, typeName)
	}
	var b strings.Builder
	b.Grow(len(Prefix) + 2*len(typeName))
	b.WriteString(Prefix)
	for i := 0; i < len(typeName); i++ {
		c := typeName[i]
		switch {
		case isUpper(c):
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c + ('a' - 'A'))
		case c == '_':
			b.WriteString("__")
		case isLower(c) || isDigit(c):
			b.WriteByte(c)
		default:
			return "", fmt.Errorf("%w %q: unexpected %q at offset %d", ErrInvalidTypeName, typeName, c, i)
		}
	}
	return b.String(), nil
}

// TypeName inverts Name.
func TypeName(toolName string) (string, error) {
	rest, ok := strings.CutPrefix(toolName, Prefix)
	if !ok || rest == "" || !isLower(rest[0]) {
		return "", fmt.Errorf("%w: tool name %q", ErrInvalidTypeName, toolName)
	}
	var b strings.Builder
	b.WriteByte(rest[0] - ('a' - 'A'))
	for i := 1; i < len(rest); i++ {
		c := rest[i]
		switch {
		case c == '_' && i+1 < len(rest) && rest[i+1] == '_':
			b.WriteByte('_')
			i++
		case c == '_' && i+1 < len(rest) && isLower(rest[i+1]):
			b.WriteByte(rest[i+1] - ('a' - 'A'))
			i++
		case isLower(c) || isDigit(c):
			b.WriteByte(c)
		default:
			return "", fmt.Errorf("%w: tool name %q", ErrInvalidTypeName, toolName)
		}
	}
	return b.String(), nil
}

func isUpper(c byte) bool { return 'A' <= c && c <= 'Z' }
func isLower(c byte) bool { return 'a' <= c && c <= 'z' }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }
