package jsonval

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Canonical renders v as compact JSON with normalized numbers. Array order and
// object key order are preserved, so two values are equal exactly when their
// canonical forms are.
func (v Value) Canonical() string {
	var buf bytes.Buffer
	v.writeCanonical(&buf)
	return buf.String()
}

// Equal is canonical, order-sensitive JSON equality
func Equal(a, b Value) bool {
	return a.Canonical() == b.Canonical()
}

// MarshalJSON emits the canonical form
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.Canonical()), nil
}

// Raw returns the canonical form as a json.RawMessage
func (v Value) Raw() json.RawMessage {
	return json.RawMessage(v.Canonical())
}

func (v Value) writeCanonical(buf *bytes.Buffer) {
	switch v.Kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(canonicalNumber(v))
	case String:
		buf.WriteString(Quote(v.Str))
	case Array:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.writeCanonical(buf)
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, key := range v.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(Quote(key))
			buf.WriteByte(':')
			v.Fields[i].writeCanonical(buf)
		}
		buf.WriteByte('}')
	}
}

// canonicalNumber maps 1, 1.0 and 1e0 to the same text.
func canonicalNumber(v Value) string {
	if i, ok := v.Int64(); ok {
		return strconv.FormatInt(i, 10)
	}
	f, err := strconv.ParseFloat(string(v.Number), 64)
	if err != nil {
		return string(v.Number)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Quote encodes s as a JSON string without HTML escaping
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
