package harness

import (
	"strings"

	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/marshal"
)

// pythonInputFile carries the argument list into the workspace
const pythonInputFile = "input.json"

// Python drives a CPython entry point. Arguments are read from a JSON file
// next to the script rather than inlined as literals.
type Python struct{}

// Render implements Template
func (Python) Render(in Input) (*Program, error) {
	futures, body := splitFutureImports(in.Source)

	receiver := "None"
	if in.Candidate.Receiver != "" {
		receiver = marshal.PythonLiteral(jsonval.Value{Kind: jsonval.String, Str: in.Candidate.Receiver})
	}

	src, err := execute("python", struct {
		Source      string
		Candidates  string
		Receiver    string
		InputFile   string
		ResultStart string
		ResultEnd   string
	}{
		Source:      body,
		Candidates:  marshal.PythonStrings(orderedNames(in)),
		Receiver:    receiver,
		InputFile:   jsonval.Quote(pythonInputFile),
		ResultStart: ResultStart,
		ResultEnd:   ResultEnd,
	})
	if err != nil {
		return nil, err
	}

	return &Program{
		SourceFile: "solution.py",
		Source:     futures + src,
		Files: map[string]string{
			pythonInputFile: jsonval.Value{Kind: jsonval.Array, Items: in.Arguments}.Canonical(),
		},
		Envelope: true,
	}, nil
}

// splitFutureImports moves `from __future__` lines out of the body; they
// must stay the first statements of the module.
func splitFutureImports(src string) (string, string) {
	var futures, body []string
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(line, "from __future__ import") {
			futures = append(futures, line)
			continue
		}
		body = append(body, line)
	}
	if len(futures) == 0 {
		return "", src
	}
	return strings.Join(futures, "\n") + "\n", strings.Join(body, "\n")
}
