package marshal

import (
	"strconv"
	"strings"

	"github.com/coderunr/judge/internal/jsonval"
)

// JavaObjectLiteral renders v as a Java expression of static type Object.
// Arrays become Object[] trees and objects ordered LinkedHashMaps built by the
// runner's mapOf/mapEntry helpers; conversion to the declared parameter types
// happens at run time.
func JavaObjectLiteral(v jsonval.Value) string {
	switch v.Kind {
	case jsonval.Null:
		return "null"
	case jsonval.Bool:
		return strconv.FormatBool(v.Bool)
	case jsonval.Number:
		return javaNumber(v)
	case jsonval.String:
		return CQuote(v.Str)
	case jsonval.Array:
		return "new Object[]{" + javaList(v.Items) + "}"
	case jsonval.Object:
		if len(v.Keys) == 0 {
			return "new java.util.LinkedHashMap<Object,Object>()"
		}
		parts := make([]string, len(v.Keys))
		for i, key := range v.Keys {
			parts[i] = "__Runner.mapEntry(" + CQuote(key) + ", " + JavaObjectLiteral(v.Fields[i]) + ")"
		}
		return "__Runner.mapOf(" + strings.Join(parts, ", ") + ")"
	}
	return "null"
}

// JavaArguments renders an argument list as an Object[] expression
func JavaArguments(args []jsonval.Value) string {
	return "new Object[]{" + javaList(args) + "}"
}

func javaList(items []jsonval.Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = JavaObjectLiteral(item)
	}
	return strings.Join(parts, ", ")
}

// javaNumber boxes integers as Integer or Long and everything else as Double
func javaNumber(v jsonval.Value) string {
	if v.IsIntegral() {
		if fitsInt32(v) {
			return integerText(v)
		}
		if _, ok := v.Int64(); ok {
			return integerText(v) + "L"
		}
	}
	return floatText(v) + "d"
}
