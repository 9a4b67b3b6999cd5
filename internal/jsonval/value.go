// Package jsonval holds the ordered JSON value model shared by the marshaller,
// the extractor and the validator. Objects keep their key order and numbers
// keep their decimal text, which encoding/json's map/float64 decoding loses.
package jsonval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Kind is the JSON type of a Value
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of a parsed JSON document
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	Str    string
	Items  []Value
	Keys   []string
	Fields []Value
}

// Parse decodes a single JSON document, rejecting trailing data
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decode(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, errors.New("unexpected trailing data after JSON value")
	}
	return v, nil
}

// MustParse is Parse for literals known to be valid
func MustParse(text string) Value {
	v, err := Parse([]byte(text))
	if err != nil {
		panic(err)
	}
	return v
}

func decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, errors.New("empty JSON document")
		}
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Value{Kind: Null}, nil
	case bool:
		return Value{Kind: Bool, Bool: t}, nil
	case json.Number:
		return Value{Kind: Number, Number: t}, nil
	case string:
		return Value{Kind: String, Str: t}, nil
	case json.Delim:
		switch t {
		case '[':
			v := Value{Kind: Array, Items: []Value{}}
			for dec.More() {
				item, err := decode(dec)
				if err != nil {
					return Value{}, err
				}
				v.Items = append(v.Items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return v, nil
		case '{':
			v := Value{Kind: Object, Keys: []string{}, Fields: []Value{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				field, err := decode(dec)
				if err != nil {
					return Value{}, err
				}
				v.Keys = append(v.Keys, key)
				v.Fields = append(v.Fields, field)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// Arguments normalizes a test-case input into an ordered argument list:
// an array is its own list, null or absent input is empty, anything else
// becomes a single argument.
func Arguments(raw json.RawMessage) ([]Value, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []Value{}, nil
	}
	v, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid input JSON: %w", err)
	}
	switch v.Kind {
	case Null:
		return []Value{}, nil
	case Array:
		return v.Items, nil
	default:
		return []Value{v}, nil
	}
}

// Float64 returns the numeric value of a Number
func (v Value) Float64() float64 {
	f, err := strconv.ParseFloat(string(v.Number), 64)
	if err != nil {
		return 0
	}
	return f
}

// Int64 returns the value as an integer when it is integral and fits
func (v Value) Int64() (int64, bool) {
	if v.Kind != Number {
		return 0, false
	}
	if i, err := strconv.ParseInt(string(v.Number), 10, 64); err == nil {
		return i, true
	}
	f := v.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// IsIntegral reports whether a Number has no fractional part
func (v Value) IsIntegral() bool {
	if v.Kind != Number {
		return false
	}
	if !strings.ContainsAny(string(v.Number), ".eE") {
		return true
	}
	f := v.Float64()
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

// Get returns the field named key of an object
func (v Value) Get(key string) (Value, bool) {
	for i, k := range v.Keys {
		if k == key {
			return v.Fields[i], true
		}
	}
	return Value{}, false
}

// Len is the element count of an array or object, zero otherwise
func (v Value) Len() int {
	switch v.Kind {
	case Array:
		return len(v.Items)
	case Object:
		return len(v.Keys)
	default:
		return 0
	}
}
