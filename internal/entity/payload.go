package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags the variant held by a payload Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is one payload entry: a tagged string/number/bool/null variant.
// The typed form is kept in the domain model; stringification happens only
// at the gateway boundary, which requires all data values to be text.
type Value struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
}

func Null() Value                 { return Value{kind: KindNull} }
func String(s string) Value       { return Value{kind: KindString, str: s} }
func Number(n json.Number) Value  { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }

// Int builds a number Value from an integer.
func Int(i int64) Value {
	return Number(json.Number(strconv.FormatInt(i, 10)))
}

func (v Value) Kind() Kind { return v.kind }

// Text is the coerced textual representation used on the gateway wire:
// strings pass through, numbers keep their literal form, bools become
// "true"/"false", null becomes the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if v.num == "" {
			return []byte("0"), nil
		}
		return []byte(v.num), nil
	case KindBool:
		return json.Marshal(v.b)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		// Non-scalar values are kept as their compact JSON text.
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return fmt.Errorf("entity.Value: compact: %w", err)
		}
		*v = String(buf.String())
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("entity.Value: decode: %w", err)
	}

	switch t := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(t)
	case json.Number:
		*v = Number(t)
	case bool:
		*v = Bool(t)
	default:
		return fmt.Errorf("entity.Value: unsupported payload value %T: %w", raw, ErrInvalidData)
	}
	return nil
}

// Payload is the structured data attached to a notification.
type Payload map[string]Value

// ParsePayload decodes the stored json-text form. Empty input and JSON null
// both yield a nil payload without error.
func ParsePayload(data []byte) (Payload, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("entity.ParsePayload: %w", err)
	}
	return p, nil
}

// JSON is the stored json-text form; nil payloads serialize to nil so the
// store can keep the column NULL.
func (p Payload) JSON() ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("entity.Payload: marshal: %w", err)
	}
	return data, nil
}

// Strings coerces every value to text for the gateway wire contract. A
// missing or empty payload yields an empty map, never nil.
func (p Payload) Strings() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v.Text()
	}
	return out
}
