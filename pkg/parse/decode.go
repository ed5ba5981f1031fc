package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

func empty(typeName string, r domain.Response) error {
	if r.Empty() {
		return fmt.Errorf("%s: %w", typeName, domain.ErrEmptyResponse)
	}
	return nil
}

func describe(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Text returns a text payload, or a structured payload that is a JSON string.
// Surrounding white space is trimmed.
func Text(typeName string, r domain.Response) (string, error) {
	if err := empty(typeName, r); err != nil {
		return "", err
	}
	switch r.Kind {
	case domain.ResponseText:
		return strings.TrimSpace(r.Text), nil
	case domain.ResponseStructured:
		if s, ok := r.Data.(string); ok {
			return strings.TrimSpace(s), nil
		}
	}
	return "", &domain.ParseError{Type: typeName, Expected: "text", Received: describe(r.Raw())}
}

// Int decodes an integer from decimal text or a structured number.
// Fractional and out-of-range numbers are parse failures.
func Int[T wrapper.Integer](typeName string, r domain.Response) (T, error) {
	var zero T
	if err := empty(typeName, r); err != nil {
		return zero, err
	}
	if r.Kind == domain.ResponseStructured {
		switch n := r.Data.(type) {
		case float64:
			if n != math.Trunc(n) || math.IsInf(n, 0) {
				return zero, &domain.ParseError{Type: typeName, Expected: "integer", Received: describe(n)}
			}
			return parseInt[T](typeName, strconv.FormatFloat(n, 'f', -1, 64))
		case json.Number:
			return parseInt[T](typeName, n.String())
		case int:
			return parseInt[T](typeName, strconv.Itoa(n))
		case int64:
			return parseInt[T](typeName, strconv.FormatInt(n, 10))
		case string:
			return parseInt[T](typeName, strings.TrimSpace(n))
		}
		return zero, &domain.ParseError{Type: typeName, Expected: "integer", Received: describe(r.Data)}
	}
	return parseInt[T](typeName, strings.TrimSpace(r.Text))
}

func parseInt[T wrapper.Integer](typeName, s string) (T, error) {
	v, err := wrapper.ParseInt[T](s)
	if err != nil {
		var zero T
		return zero, &domain.ParseError{Type: typeName, Expected: "integer", Received: s, Cause: err}
	}
	return v, nil
}

// Float decodes a float from text or a structured number.
func Float(typeName string, r domain.Response) (float64, error) {
	if err := empty(typeName, r); err != nil {
		return 0, err
	}
	if r.Kind == domain.ResponseStructured {
		switch n := r.Data.(type) {
		case float64:
			return n, nil
		case json.Number:
			return parseFloat(typeName, n.String())
		case int:
			return float64(n), nil
		case string:
			return parseFloat(typeName, strings.TrimSpace(n))
		}
		return 0, &domain.ParseError{Type: typeName, Expected: "number", Received: describe(r.Data)}
	}
	return parseFloat(typeName, strings.TrimSpace(r.Text))
}

func parseFloat(typeName, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &domain.ParseError{Type: typeName, Expected: "number", Received: s, Cause: err}
	}
	return f, nil
}

// Bool accepts true/false, yes/no, y/n and 1/0 case-insensitively, or a structured bool.
func Bool(typeName string, r domain.Response) (bool, error) {
	if err := empty(typeName, r); err != nil {
		return false, err
	}
	if r.Kind == domain.ResponseStructured {
		if b, ok := r.Data.(bool); ok {
			return b, nil
		}
		if s, ok := r.Data.(string); ok {
			return parseBool(typeName, s)
		}
		return false, &domain.ParseError{Type: typeName, Expected: "boolean", Received: describe(r.Data)}
	}
	return parseBool(typeName, r.Text)
}

func parseBool(typeName, s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, &domain.ParseError{Type: typeName, Expected: "yes or no", Received: s}
}

// Duration decodes Go duration text.
func Duration(typeName string, r domain.Response) (time.Duration, error) {
	s, err := Text(typeName, r)
	if err != nil {
		return 0, err
	}
	d, err := wrapper.ParseDuration(s)
	if err != nil {
		return 0, &domain.ParseError{Type: typeName, Expected: "duration such as 1m30s", Received: s, Cause: err}
	}
	return d, nil
}

// Time decodes an RFC 3339 timestamp.
func Time(typeName string, r domain.Response) (time.Time, error) {
	s, err := Text(typeName, r)
	if err != nil {
		return time.Time{}, err
	}
	t, err := wrapper.ParseTime(s)
	if err != nil {
		return time.Time{}, &domain.ParseError{Type: typeName, Expected: "RFC 3339 timestamp", Received: s, Cause: err}
	}
	return t, nil
}

// UUID decodes uuid text.
func UUID(typeName string, r domain.Response) (uuid.UUID, error) {
	s, err := Text(typeName, r)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := wrapper.ParseUUID(s)
	if err != nil {
		return uuid.Nil, &domain.ParseError{Type: typeName, Expected: "uuid", Received: s, Cause: err}
	}
	return id, nil
}

// Rune decodes a single character.
func Rune(typeName string, r domain.Response) (rune, error) {
	s, err := Text(typeName, r)
	if err != nil {
		return 0, err
	}
	c, err := wrapper.ParseRune(s)
	if err != nil {
		return 0, &domain.ParseError{Type: typeName, Expected: "a single character", Received: s, Cause: err}
	}
	return c, nil
}

// RawJSON returns the payload as JSON bytes: structured data is re-encoded,
// text is taken verbatim.
func RawJSON(typeName string, r domain.Response) ([]byte, error) {
	if err := empty(typeName, r); err != nil {
		return nil, err
	}
	if r.Kind == domain.ResponseText {
		return []byte(strings.TrimSpace(r.Text)), nil
	}
	b, err := json.Marshal(r.Data)
	if err != nil {
		return nil, &domain.ParseError{Type: typeName, Expected: "json value", Received: describe(r.Data), Cause: err}
	}
	return b, nil
}

// Object returns a structured map, or decodes a JSON object from text.
func Object(typeName string, r domain.Response) (map[string]any, error) {
	if err := empty(typeName, r); err != nil {
		return nil, err
	}
	if m, ok := r.Data.(map[string]any); ok && r.Kind == domain.ResponseStructured {
		return m, nil
	}
	raw, err := RawJSON(typeName, r)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, &domain.ParseError{Type: typeName, Expected: "json object", Received: string(raw), Cause: err}
	}
	return m, nil
}

// Into decodes an object payload into out with mapstructure, matching keys
// against `json` struct tags. Unknown keys are rejected.
func Into[T any](typeName string, r domain.Response, out *T) error {
	m, err := Object(typeName, r)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonNumberHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("%s: build decoder: %w", typeName, err)
	}
	if err := dec.Decode(m); err != nil {
		return &domain.ParseError{Type: typeName, Expected: "object matching schema", Received: describe(m), Cause: err}
	}
	return nil
}

func jsonNumberHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Float32, reflect.Float64:
		return n.Float64()
	case reflect.String, reflect.Interface:
		return n.String(), nil
	}
	return n.Int64()
}
