package marshal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coderunr/judge/internal/entry"
	"github.com/coderunr/judge/internal/jsonval"
)

// CppDeclaration is one argument variable of a generated C++ main
type CppDeclaration struct {
	Type string
	Name string
	Expr string // empty for a value-initialized padding argument
}

func (d CppDeclaration) String() string {
	if d.Expr == "" {
		return fmt.Sprintf("%s %s{};", d.Type, d.Name)
	}
	return fmt.Sprintf("%s %s = %s;", d.Type, d.Name, d.Expr)
}

var cppIntegerTypes = map[string]bool{
	"int": true, "long": true, "long long": true, "short": true,
	"unsigned": true, "unsigned int": true, "unsigned long": true,
	"unsigned long long": true, "unsigned short": true, "signed": true,
	"long int": true, "long long int": true, "size_t": true,
	"int8_t": true, "int16_t": true, "int32_t": true, "int64_t": true,
	"uint8_t": true, "uint16_t": true, "uint32_t": true, "uint64_t": true,
}

var cppFloatTypes = map[string]bool{
	"double": true, "float": true, "long double": true,
}

// InferCppType picks a C++ type able to hold v
func InferCppType(v jsonval.Value) string {
	switch v.Kind {
	case jsonval.Bool:
		return "bool"
	case jsonval.Number:
		if v.IsIntegral() {
			if fitsInt32(v) {
				return "int"
			}
			if _, ok := v.Int64(); ok {
				return "long long"
			}
		}
		return "double"
	case jsonval.String, jsonval.Object:
		return "std::string"
	case jsonval.Array:
		if len(v.Items) == 0 {
			return "std::vector<int>"
		}
		elem := InferCppType(v.Items[0])
		for _, item := range v.Items[1:] {
			elem = widenCpp(elem, InferCppType(item))
		}
		return "std::vector<" + elem + ">"
	default:
		return "int"
	}
}

// widenCpp merges element types; numeric types widen, anything else
// mixed falls back to strings.
func widenCpp(a, b string) string {
	if a == b {
		return a
	}
	rank := map[string]int{"int": 1, "long long": 2, "double": 3}
	ra, rb := rank[a], rank[b]
	if ra == 0 || rb == 0 {
		return "std::string"
	}
	if ra > rb {
		return a
	}
	return b
}

var (
	cppCVQualifier = regexp.MustCompile(`\b(const|volatile)\b`)
	cppStdNames    = regexp.MustCompile(`\b(vector|string)\b`)
)

// NormalizeDeclaredType strips qualifiers, references and pointers from a
// declared parameter type and spells vector and string with their std::
// prefix: "const vector<string>&" -> "std::vector<std::string>".
func NormalizeDeclaredType(t string) string {
	t = cppCVQualifier.ReplaceAllString(t, " ")
	t = strings.ReplaceAll(t, "&", "")
	t = strings.TrimRight(strings.TrimSpace(t), "* \t")

	var b strings.Builder
	last := 0
	for _, m := range cppStdNames.FindAllStringIndex(t, -1) {
		b.WriteString(t[last:m[0]])
		if !strings.HasSuffix(strings.TrimSpace(t[:m[0]]), "::") {
			b.WriteString("std::")
		}
		b.WriteString(t[m[0]:m[1]])
		last = m[1]
	}
	b.WriteString(t[last:])

	return tidyType(b.String())
}

var (
	typeSpaces      = regexp.MustCompile(`\s+`)
	typeSpaceAfter  = regexp.MustCompile(`([<,])\s+`)
	typeSpaceBefore = regexp.MustCompile(`\s+([>,])`)
)

func tidyType(t string) string {
	t = typeSpaces.ReplaceAllString(strings.TrimSpace(t), " ")
	t = typeSpaceAfter.ReplaceAllString(t, "$1")
	return typeSpaceBefore.ReplaceAllString(t, "$1")
}

// vectorElem returns T of std::vector<T>
func vectorElem(t string) (string, bool) {
	const prefix = "std::vector<"
	if !strings.HasPrefix(t, prefix) || !strings.HasSuffix(t, ">") {
		return "", false
	}
	return strings.TrimSpace(t[len(prefix) : len(t)-1]), true
}

// cppKnows reports whether CppValue can build a literal of type t
func cppKnows(t string) bool {
	if elem, ok := vectorElem(t); ok {
		return cppKnows(elem)
	}
	return t == "std::string" || t == "bool" || t == "char" || cppIntegerTypes[t] || cppFloatTypes[t]
}

// cppFits reports whether v has the shape of type t
func cppFits(t string, v jsonval.Value) bool {
	if _, ok := vectorElem(t); ok {
		return v.Kind == jsonval.Array
	}
	if t == "std::string" {
		return v.Kind != jsonval.Array
	}
	return v.Kind != jsonval.Array && v.Kind != jsonval.Object
}

// CppValue renders v as an expression of C++ type t
func CppValue(v jsonval.Value, t string) string {
	if elem, ok := vectorElem(t); ok {
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, CppValue(item, elem))
		}
		return t + "{" + strings.Join(parts, ", ") + "}"
	}

	switch {
	case t == "std::string":
		return cppString(v)
	case t == "bool":
		if truthy(v) {
			return "true"
		}
		return "false"
	case t == "char" && v.Kind == jsonval.String && len(v.Str) == 1:
		return cppChar(v.Str[0])
	case cppIntegerTypes[t] || t == "char":
		return cppInteger(v, t)
	case cppFloatTypes[t]:
		if v.Kind == jsonval.Number {
			return floatText(v)
		}
		return cppInteger(v, "int") + ".0"
	}

	return v.Canonical()
}

func cppChar(c byte) string {
	if c == '\'' {
		return `'\''`
	}
	q := CQuote(string(c))
	return "'" + q[1:len(q)-1] + "'"
}

func cppInteger(v jsonval.Value, t string) string {
	switch v.Kind {
	case jsonval.Number:
		text := integerText(v)
		if t == "long long" || t == "int64_t" || !fitsInt32(v) {
			text += "LL"
		}
		return text
	case jsonval.Bool:
		if v.Bool {
			return "1"
		}
	}
	return "0"
}

func cppString(v jsonval.Value) string {
	var s string
	switch v.Kind {
	case jsonval.String:
		s = v.Str
	case jsonval.Null:
		s = ""
	default:
		s = v.Canonical()
	}
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Sprintf("std::string(%s, %d)", CQuote(s), len(s))
	}
	return "std::string(" + CQuote(s) + ")"
}

// CppArguments declares one variable per argument. The declared parameter
// type wins when it can hold the value; missing trailing arguments are
// value-initialized and surplus arguments are kept.
func CppArguments(params []entry.Parameter, args []jsonval.Value) []CppDeclaration {
	n := len(args)
	if len(params) > n {
		n = len(params)
	}

	out := make([]CppDeclaration, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("arg%d", i)

		declared := ""
		if i < len(params) {
			declared = NormalizeDeclaredType(params[i].DeclaredType)
		}

		if i >= len(args) {
			out = append(out, CppDeclaration{Type: declared, Name: name})
			continue
		}

		typ := declared
		if !cppKnows(typ) || !cppFits(typ, args[i]) {
			typ = InferCppType(args[i])
		}
		out = append(out, CppDeclaration{Type: typ, Name: name, Expr: CppValue(args[i], typ)})
	}
	return out
}
