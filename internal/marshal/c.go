package marshal

import (
	"fmt"
	"strings"

	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/types"
)

// CArgs is the argument setup of a generated C main. Every array argument
// argN also gets an argN_len companion; Plain passes arrays alone and
// Expanded passes them followed by their length.
type CArgs struct {
	Declarations  []string
	Plain         []string
	Expanded      []string
	FirstArrayLen string
}

// CallArgs chooses between the plain and the expanded argument list by the
// entry point's parameter count.
func (a CArgs) CallArgs(paramCount int) []string {
	switch {
	case paramCount == len(a.Plain):
		return a.Plain
	case paramCount == len(a.Expanded):
		return a.Expanded
	case paramCount == 0:
		return nil
	default:
		return a.Expanded
	}
}

// CArguments declares C variables for scalar and one-dimensional array
// arguments. Nested arrays, objects and mixed arrays are rejected with
// UnsupportedInputShape.
func CArguments(args []jsonval.Value) (CArgs, error) {
	var out CArgs

	for i, v := range args {
		name := fmt.Sprintf("arg%d", i)

		switch v.Kind {
		case jsonval.Array:
			decl, err := cArray(i, name, v)
			if err != nil {
				return CArgs{}, err
			}
			lenName := name + "_len"
			out.Declarations = append(out.Declarations, decl, fmt.Sprintf("int %s = %d;", lenName, len(v.Items)))
			out.Plain = append(out.Plain, name)
			out.Expanded = append(out.Expanded, name, lenName)
			if out.FirstArrayLen == "" {
				out.FirstArrayLen = lenName
			}
			continue

		case jsonval.String:
			out.Declarations = append(out.Declarations, fmt.Sprintf("char %s[] = %s;", name, CQuote(v.Str)))
		case jsonval.Number:
			out.Declarations = append(out.Declarations, fmt.Sprintf("%s %s = %s;", cNumberType(v), name, cNumber(v)))
		case jsonval.Bool:
			out.Declarations = append(out.Declarations, fmt.Sprintf("int %s = %s;", name, cBool(v)))
		case jsonval.Null:
			out.Declarations = append(out.Declarations, fmt.Sprintf("int %s = 0;", name))
		default:
			return CArgs{}, unsupportedShape(i, "objects")
		}

		out.Plain = append(out.Plain, name)
		out.Expanded = append(out.Expanded, name)
	}

	return out, nil
}

func cArray(index int, name string, v jsonval.Value) (string, error) {
	if len(v.Items) == 0 {
		return fmt.Sprintf("int %s[1] = {0};", name), nil
	}

	numeric, strs := true, true
	for _, item := range v.Items {
		switch item.Kind {
		case jsonval.Number, jsonval.Bool:
			strs = false
		case jsonval.String:
			numeric = false
		default:
			return "", unsupportedShape(index, "nested arrays, objects or nulls inside arrays")
		}
	}

	parts := make([]string, len(v.Items))
	switch {
	case numeric:
		typ := "int"
		for _, item := range v.Items {
			if item.Kind != jsonval.Number {
				continue
			}
			if !item.IsIntegral() {
				typ = "double"
				break
			}
			if !fitsInt32(item) {
				typ = "long long"
			}
		}
		for i, item := range v.Items {
			switch {
			case item.Kind == jsonval.Bool:
				parts[i] = cBool(item)
			case typ == "double":
				parts[i] = floatText(item)
			default:
				parts[i] = integerText(item)
			}
		}
		return fmt.Sprintf("%s %s[] = {%s};", typ, name, strings.Join(parts, ", ")), nil

	case strs:
		for i, item := range v.Items {
			parts[i] = CQuote(item.Str)
		}
		return fmt.Sprintf("char* %s[] = {%s};", name, strings.Join(parts, ", ")), nil
	}

	return "", unsupportedShape(index, "arrays mixing strings and numbers")
}

func cNumberType(v jsonval.Value) string {
	if !v.IsIntegral() {
		return "double"
	}
	if fitsInt32(v) {
		return "int"
	}
	if _, ok := v.Int64(); ok {
		return "long long"
	}
	return "double"
}

func cNumber(v jsonval.Value) string {
	switch cNumberType(v) {
	case "double":
		return floatText(v)
	case "long long":
		return integerText(v) + "LL"
	default:
		return integerText(v)
	}
}

func cBool(v jsonval.Value) string {
	if v.Bool {
		return "1"
	}
	return "0"
}

func unsupportedShape(index int, what string) error {
	return types.Errorf(types.KindUnsupportedInputShape,
		"C runner supports scalar and one-dimensional array inputs only (argument %d contains %s)", index, what)
}
