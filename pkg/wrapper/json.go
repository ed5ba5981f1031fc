package wrapper

import (
	"bytes"
	"encoding/json"

	"github.com/aretw0/elicitation/pkg/domain"
)

// JSONKind is the top-level kind of a decoded JSON document.
type JSONKind string

const (
	JSONNull   JSONKind = "null"
	JSONBool   JSONKind = "boolean"
	JSONNumber JSONKind = "number"
	JSONString JSONKind = "string"
	JSONArr    JSONKind = "array"
	JSONObj    JSONKind = "object"
)

func kindOf(v any) JSONKind {
	switch v.(type) {
	case nil:
		return JSONNull
	case bool:
		return JSONBool
	case json.Number, float64:
		return JSONNumber
	case string:
		return JSONString
	case []any:
		return JSONArr
	case map[string]any:
		return JSONObj
	}
	return JSONNull
}

func decodeJSON(typeName string, raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, domain.Invalid(domain.ViolationInvalidJSON, typeName, "json document", err.Error())
	}
	if dec.More() {
		return nil, domain.Invalid(domain.ViolationInvalidJSON, typeName, "single json document", "trailing data")
	}
	return v, nil
}

// JSONObject is a raw JSON document whose top level is an object.
type JSONObject struct {
	raw json.RawMessage
	v   map[string]any
}

// NewJSONObject checks well-formedness first, then the top-level kind.
func NewJSONObject(raw []byte) (JSONObject, error) {
	v, err := decodeJSON("JSONObject", raw)
	if err != nil {
		return JSONObject{}, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return JSONObject{}, domain.Invalid(domain.ViolationJSONKind, "JSONObject", string(JSONObj), string(kindOf(v)))
	}
	return JSONObject{raw: bytes.Clone(raw), v: m}, nil
}

func (j JSONObject) Get() map[string]any { return j.v }
func (j JSONObject) Raw() json.RawMessage { return bytes.Clone(j.raw) }
func (j JSONObject) Invariant() bool { return j.v != nil }
func (j JSONObject) Establishes() IsJSONObject { return IsJSONObject{} }
func (j JSONObject) MarshalJSON() ([]byte, error) { return j.Raw(), nil }

// JSONArray is a raw JSON document whose top level is an array.
type JSONArray struct {
	raw json.RawMessage
	v   []any
}

// NewJSONArray checks well-formedness first, then the top-level kind.
func NewJSONArray(raw []byte) (JSONArray, error) {
	v, err := decodeJSON("JSONArray", raw)
	if err != nil {
		return JSONArray{}, err
	}
	a, ok := v.([]any)
	if !ok {
		return JSONArray{}, domain.Invalid(domain.ViolationJSONKind, "JSONArray", string(JSONArr), string(kindOf(v)))
	}
	if a == nil {
		a = []any{}
	}
	return JSONArray{raw: bytes.Clone(raw), v: a}, nil
}

func (j JSONArray) Get() []any { return j.v }
func (j JSONArray) Raw() json.RawMessage { return bytes.Clone(j.raw) }
func (j JSONArray) Invariant() bool { return j.v != nil }
func (j JSONArray) Establishes() IsJSONArray { return IsJSONArray{} }
func (j JSONArray) MarshalJSON() ([]byte, error) { return j.Raw(), nil }

// JSONNonNull is a raw JSON document other than null.
type JSONNonNull struct {
	raw  json.RawMessage
	v    any
	kind JSONKind
}

func NewJSONNonNull(raw []byte) (JSONNonNull, error) {
	v, err := decodeJSON("JSONNonNull", raw)
	if err != nil {
		return JSONNonNull{}, err
	}
	if v == nil {
		return JSONNonNull{}, domain.Invalid(domain.ViolationJSONKind, "JSONNonNull", "non-null value", string(JSONNull))
	}
	return JSONNonNull{raw: bytes.Clone(raw), v: v, kind: kindOf(v)}, nil
}

func (j JSONNonNull) Get() any { return j.v }
func (j JSONNonNull) Kind() JSONKind { return j.kind }
func (j JSONNonNull) Invariant() bool { return j.v != nil }
func (j JSONNonNull) Establishes() IsJSONNonNull { return IsJSONNonNull{} }
func (j JSONNonNull) MarshalJSON() ([]byte, error) { return bytes.Clone(j.raw), nil }
