// Package marshal turns JSON test-case values into source-level literals and
// declarations for each target language.
package marshal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coderunr/judge/internal/jsonval"
)

// JavaScriptLiteral renders v as a JavaScript expression. Canonical JSON is
// already valid JavaScript.
func JavaScriptLiteral(v jsonval.Value) string {
	return v.Canonical()
}

// JavaScriptArguments renders an argument list as a JavaScript array literal
func JavaScriptArguments(args []jsonval.Value) string {
	return jsonval.Value{Kind: jsonval.Array, Items: args}.Canonical()
}

// PythonLiteral renders v as a Python expression
func PythonLiteral(v jsonval.Value) string {
	switch v.Kind {
	case jsonval.Null:
		return "None"
	case jsonval.Bool:
		if v.Bool {
			return "True"
		}
		return "False"
	case jsonval.Number:
		return numberText(v)
	case jsonval.String:
		return jsonval.Quote(v.Str)
	case jsonval.Array:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = PythonLiteral(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case jsonval.Object:
		parts := make([]string, len(v.Keys))
		for i, key := range v.Keys {
			parts[i] = jsonval.Quote(key) + ": " + PythonLiteral(v.Fields[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "None"
}

// PythonStrings renders a list of names as a Python list literal
func PythonStrings(names []string) string {
	items := make([]jsonval.Value, len(names))
	for i, n := range names {
		items[i] = jsonval.Value{Kind: jsonval.String, Str: n}
	}
	return PythonLiteral(jsonval.Value{Kind: jsonval.Array, Items: items})
}

// numberText is the canonical decimal form of a number
func numberText(v jsonval.Value) string {
	return v.Canonical()
}

// floatText renders a number for C-family sources, always with a decimal
// point or exponent so it stays floating point.
func floatText(v jsonval.Value) string {
	s := strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// integerText truncates a number to an integer literal
func integerText(v jsonval.Value) string {
	if i, ok := v.Int64(); ok {
		return strconv.FormatInt(i, 10)
	}
	return fmt.Sprintf("%d", int64(v.Float64()))
}

// fitsInt32 reports whether an integral number fits a 32-bit int
func fitsInt32(v jsonval.Value) bool {
	i, ok := v.Int64()
	return ok && i >= -2147483648 && i <= 2147483647
}

// truthy follows JavaScript truthiness for coercing to bool
func truthy(v jsonval.Value) bool {
	switch v.Kind {
	case jsonval.Null:
		return false
	case jsonval.Bool:
		return v.Bool
	case jsonval.Number:
		return v.Float64() != 0
	case jsonval.String:
		return v.Str != ""
	default:
		return true
	}
}

// CQuote renders s as a C, C++ or Java string literal. Control characters
// use three-digit octal escapes, which all three languages accept and which
// never swallow a following digit.
func CQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
