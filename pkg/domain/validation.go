package domain

import (
	"errors"
	"fmt"
)

// Violation names the single invariant a wrapper constructor rejected.
type Violation string

const (
	// Wrappers
	ViolationNotPositive     Violation = "not_positive"
	ViolationNegative        Violation = "negative"
	ViolationZero            Violation = "zero"
	ViolationBelowMin        Violation = "below_min"
	ViolationAboveMax        Violation = "above_max"
	ViolationNotEven         Violation = "not_even"
	ViolationInvalidBounds   Violation = "invalid_bounds"
	ViolationNotFinite       Violation = "not_finite"
	ViolationNotTrue         Violation = "not_true"
	ViolationNotFalse        Violation = "not_false"
	ViolationNotAlphabetic   Violation = "not_alphabetic"
	ViolationNotNumeric      Violation = "not_numeric"
	ViolationNotAlnum        Violation = "not_alphanumeric"
	ViolationEmptyString     Violation = "empty_string"
	ViolationTooLong         Violation = "too_long"
	ViolationNotTrimmed      Violation = "not_trimmed"
	ViolationEmptyCollection Violation = "empty_collection"
	ViolationElement         Violation = "element"
	ViolationDuplicate       Violation = "duplicate"
	ViolationWrongLength     Violation = "wrong_length"
	ViolationAbsent          Violation = "absent"
	ViolationNotAfter        Violation = "not_after"
	ViolationNotBefore       Violation = "not_before"
	ViolationInvalidJSON     Violation = "invalid_json"
	ViolationJSONKind        Violation = "json_kind"
	ViolationInvalidRegex    Violation = "invalid_regex"
	ViolationNoMatch         Violation = "no_match"
	ViolationRejected        Violation = "rejected"

	// Byte foundation
	ViolationCapacity        Violation = "capacity_exceeded"
	ViolationInvalidUTF8     Violation = "invalid_utf8"
	ViolationUUIDNil         Violation = "uuid_nil"
	ViolationUUIDVariant     Violation = "uuid_variant"
	ViolationUUIDVersion     Violation = "wrong_uuid_version"
	ViolationInvalidScheme   Violation = "invalid_scheme"
	ViolationMissingScheme   Violation = "missing_scheme"
	ViolationNoAuthority     Violation = "no_authority"
	ViolationURLNotAbsolute  Violation = "url_not_absolute"
	ViolationURLNotHTTP      Violation = "url_not_http"
	ViolationPathNull        Violation = "path_contains_null"
	ViolationPathNotAbsolute Violation = "path_not_absolute"
	ViolationPathNotRelative Violation = "path_not_relative"
	ViolationIPClass         Violation = "ip_class"
	ViolationMACClass        Violation = "mac_class"
	ViolationPort            Violation = "port"
)

// ValidationError reports a single failed invariant of a validated type.
// Expected and Got carry the bound and the observed value in printable form.
type ValidationError struct {
	Violation Violation
	Type      string
	Expected  string
	Got       string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Expected != "" && e.Got != "":
		return fmt.Sprintf("%s: %s (expected %s, got %s)", e.typeName(), e.Violation, e.Expected, e.Got)
	case e.Expected != "":
		return fmt.Sprintf("%s: %s (expected %s)", e.typeName(), e.Violation, e.Expected)
	case e.Got != "":
		return fmt.Sprintf("%s: %s (got %s)", e.typeName(), e.Violation, e.Got)
	}
	return fmt.Sprintf("%s: %s", e.typeName(), e.Violation)
}

func (e *ValidationError) typeName() string {
	if e.Type == "" {
		return "value"
	}
	return e.Type
}

// Is matches another *ValidationError by violation kind.
// An empty Type on the target matches any wrapper.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	if t.Violation != e.Violation {
		return false
	}
	return t.Type == "" || t.Type == e.Type
}

// Invalid builds a ValidationError.
func Invalid(v Violation, typeName, expected, got string) *ValidationError {
	return &ValidationError{Violation: v, Type: typeName, Expected: expected, Got: got}
}

// ViolationOf returns the violation carried by err, if any.
func ViolationOf(err error) (Violation, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violation, true
	}
	return "", false
}

// Sentinels for errors.Is checks against a violation kind.
var (
	ErrNotPositive      = &ValidationError{Violation: ViolationNotPositive}
	ErrNegative         = &ValidationError{Violation: ViolationNegative}
	ErrZero             = &ValidationError{Violation: ViolationZero}
	ErrBelowMin         = &ValidationError{Violation: ViolationBelowMin}
	ErrAboveMax         = &ValidationError{Violation: ViolationAboveMax}
	ErrEmptyString      = &ValidationError{Violation: ViolationEmptyString}
	ErrTooLong          = &ValidationError{Violation: ViolationTooLong}
	ErrEmptyCollection  = &ValidationError{Violation: ViolationEmptyCollection}
	ErrCapacity         = &ValidationError{Violation: ViolationCapacity}
	ErrInvalidUTF8      = &ValidationError{Violation: ViolationInvalidUTF8}
	ErrUUIDVariant      = &ValidationError{Violation: ViolationUUIDVariant}
	ErrWrongUUIDVersion = &ValidationError{Violation: ViolationUUIDVersion}
	ErrURLNotAbsolute   = &ValidationError{Violation: ViolationURLNotAbsolute}
	ErrURLNotHTTP       = &ValidationError{Violation: ViolationURLNotHTTP}
	ErrPathContainsNull = &ValidationError{Violation: ViolationPathNull}
)
