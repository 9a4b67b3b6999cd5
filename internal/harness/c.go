package harness

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coderunr/judge/internal/entry"
	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/marshal"
	"github.com/coderunr/judge/internal/types"
)

// defaultPointerLength is printed for pointer results when neither the
// expected output nor an array argument tells the length
const defaultPointerLength = "2"

// C drives a C entry point through a generated main. The result is printed
// according to the declared return type; pointer results are read as arrays
// whose length comes from the expected output, else the first array
// argument, else defaultPointerLength.
type C struct{}

// Render implements Template
func (C) Render(in Input) (*Program, error) {
	data := struct {
		Source       string
		OwnMain      bool
		Declarations []string
		ReturnType   string
		Call         string
		Shape        string
		Element      string
		Length       string
		ResultStart  string
		ResultEnd    string
	}{
		Source:      in.Source,
		OwnMain:     entry.HasMain(types.LanguageC, in.Source),
		ResultStart: ResultStart,
		ResultEnd:   ResultEnd,
	}

	if !data.OwnMain {
		args, err := marshal.CArguments(in.Arguments)
		if err != nil {
			return nil, err
		}

		data.Declarations = args.Declarations
		data.ReturnType = in.Candidate.ReturnType
		data.Call = in.Candidate.Name + "(" + strings.Join(args.CallArgs(len(in.Candidate.Parameters)), ", ") + ")"
		data.Shape, data.Element = cResultShape(in.Candidate.ReturnType)
		data.Length = pointerLength(in.Expected, args.FirstArrayLen)
	}

	src, err := execute("c", data)
	if err != nil {
		return nil, err
	}
	return &Program{SourceFile: "solution.c", Source: src, Artifact: "solution"}, nil
}

var (
	cIgnoredWords = map[string]bool{
		"const": true, "volatile": true, "static": true, "inline": true,
		"extern": true, "register": true, "restrict": true,
	}
	cIntegral = regexp.MustCompile(`unsigned|signed|int|long|short|size_t|char`)
	cFloating = regexp.MustCompile(`float|double`)
)

// cResultShape classifies a return type as void, string, array, bool,
// integer or float. Arrays also report their element class, opaque for
// pointers that cannot be printed. Unknown scalar types such as typedefs are
// printed as doubles.
func cResultShape(returnType string) (string, string) {
	var kept []string
	for _, f := range strings.Fields(strings.ReplaceAll(returnType, "*", " * ")) {
		if !cIgnoredWords[f] {
			kept = append(kept, f)
		}
	}
	norm := strings.ToLower(strings.Join(kept, ""))

	if norm == "void" || norm == "" {
		return "void", ""
	}

	stars := strings.Count(norm, "*")
	base := strings.TrimRight(norm, "*")
	switch {
	case stars == 1 && base == "char":
		return "string", ""
	case stars == 2 && base == "char":
		return "array", "string"
	case stars > 1 || base == "void":
		return "array", "opaque"
	case stars == 1:
		return "array", scalarShape(base)
	}
	return scalarShape(base), ""
}

func scalarShape(base string) string {
	switch {
	case base == "bool" || base == "_bool":
		return "bool"
	case cIntegral.MatchString(base) && !cFloating.MatchString(base):
		return "integer"
	}
	return "float"
}

func pointerLength(expected *jsonval.Value, firstArrayLen string) string {
	if expected != nil && expected.Kind == jsonval.Array {
		return strconv.Itoa(len(expected.Items))
	}
	if firstArrayLen != "" {
		return firstArrayLen
	}
	return defaultPointerLength
}
