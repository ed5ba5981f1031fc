package wrapper

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/aretw0/elicitation/pkg/domain"
)

// Pattern is a regular expression that compiled under RE2 syntax.
type Pattern struct {
	re *regexp.Regexp
}

func NewPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, domain.Invalid(domain.ViolationInvalidRegex, "Pattern", "RE2 expression", err.Error())
	}
	return Pattern{re: re}, nil
}

func (p Pattern) Get() *regexp.Regexp { return p.re }

func (p Pattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

func (p Pattern) Invariant() bool { return p.re != nil }
func (p Pattern) Establishes() IsCompiled { return IsCompiled{} }

func (p Pattern) MarshalJSON() ([]byte, error) {
	if p.re == nil {
		return []byte("null"), nil
	}
	return json.Marshal(p.re.String())
}

// Matching is a string matched by a compiled pattern.
type Matching struct {
	s       string
	pattern Pattern
}

// NewMatching requires an established pattern, then the match.
func NewMatching(s string, p Pattern) (Matching, error) {
	if !p.Invariant() {
		return Matching{}, domain.Invalid(domain.ViolationInvalidRegex, "Matching", "compiled pattern", "none")
	}
	if !p.re.MatchString(s) {
		return Matching{}, domain.Invalid(domain.ViolationNoMatch, "Matching", "match for "+p.re.String(), strconv.Quote(s))
	}
	return Matching{s: s, pattern: p}, nil
}

func (m Matching) Get() string { return m.s }
func (m Matching) String() string { return m.s }
func (m Matching) Pattern() Pattern { return m.pattern }
func (m Matching) Invariant() bool { return m.pattern.Invariant() && m.pattern.re.MatchString(m.s) }
func (m Matching) Establishes() IsMatching { return IsMatching{} }
func (m Matching) MarshalJSON() ([]byte, error) { return json.Marshal(m.s) }
