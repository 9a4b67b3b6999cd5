package harness

import (
	"strings"

	"github.com/coderunr/judge/internal/entry"
	"github.com/coderunr/judge/internal/marshal"
	"github.com/coderunr/judge/internal/types"
)

// Cpp drives a C++17 entry point through a generated main. Sources with
// their own main are compiled unchanged.
type Cpp struct{}

// Render implements Template
func (Cpp) Render(in Input) (*Program, error) {
	data := struct {
		Source       string
		OwnMain      bool
		Declarations []string
		Call         string
		Void         bool
		ResultStart  string
		ResultEnd    string
	}{
		Source:      in.Source,
		OwnMain:     entry.HasMain(types.LanguageCPP, in.Source),
		ResultStart: ResultStart,
		ResultEnd:   ResultEnd,
	}

	if !data.OwnMain {
		decls := marshal.CppArguments(in.Candidate.Parameters, in.Arguments)
		names := make([]string, len(decls))
		for i, d := range decls {
			data.Declarations = append(data.Declarations, d.String())
			names[i] = d.Name
		}
		data.Call = callExpression(in.Candidate, names)
		data.Void = isVoid(in.Candidate.ReturnType)
	}

	src, err := execute("cpp", data)
	if err != nil {
		return nil, err
	}
	return &Program{SourceFile: "solution.cpp", Source: src, Artifact: "solution"}, nil
}

// callExpression calls a free function or a method on a fresh receiver
func callExpression(c entry.Candidate, args []string) string {
	call := c.Name + "(" + strings.Join(args, ", ") + ")"
	if c.Receiver != "" {
		return c.Receiver + "()." + call
	}
	return call
}

func isVoid(returnType string) bool {
	return strings.TrimSpace(returnType) == "void"
}
