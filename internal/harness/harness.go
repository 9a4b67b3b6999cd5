// Package harness synthesizes the driver program that calls a submission's
// entry point with marshalled arguments and prints the JSON-encoded result
// between ResultStart and ResultEnd.
package harness

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/coderunr/judge/internal/entry"
	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/types"
)

// Sentinels framing the serialized result on stdout
const (
	ResultStart = "RESULT_START"
	ResultEnd   = "RESULT_END"
)

// Input is everything a template needs to build a driver
type Input struct {
	Source     string
	Candidate  entry.Candidate
	Candidates []entry.Candidate
	Arguments  []jsonval.Value

	// Expected is the expected output when known. Only the C template reads
	// it, to size pointer results.
	Expected *jsonval.Value
}

// Program is a rendered driver ready to be written into a workspace
type Program struct {
	SourceFile string
	Source     string

	// Artifact is the compiled executable or main class, empty for
	// interpreted languages.
	Artifact string

	// Files are additional workspace files keyed by name.
	Files map[string]string

	// Envelope is set when the driver prints {"result": value} rather than
	// the bare value.
	Envelope bool
}

// Template renders the driver program of one language
type Template interface {
	Render(in Input) (*Program, error)
}

//go:embed runtime/*.tmpl
var runtimeFS embed.FS

var runtimes = template.Must(template.New("runtime").ParseFS(runtimeFS, "runtime/*.tmpl"))

// For returns the template of a language
func For(lang types.Language) (Template, error) {
	switch lang {
	case types.LanguageJavaScript:
		return JavaScript{}, nil
	case types.LanguagePython:
		return Python{}, nil
	case types.LanguageCPP:
		return Cpp{}, nil
	case types.LanguageC:
		return C{}, nil
	case types.LanguageJava:
		return Java{}, nil
	}
	return nil, types.Errorf(types.KindUnsupportedLanguage, "unsupported language: %s", lang)
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := runtimes.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// orderedNames returns the selected candidate first, then the others
func orderedNames(in Input) []string {
	var names []string
	for _, c := range orderedCandidates(in) {
		names = append(names, c.Name)
	}
	return names
}

// orderedCandidates puts the selected candidate first
func orderedCandidates(in Input) []entry.Candidate {
	var out []entry.Candidate
	if in.Candidate.Name != "" {
		out = append(out, in.Candidate)
	}
	for _, c := range in.Candidates {
		if c.Name != in.Candidate.Name || c.Receiver != in.Candidate.Receiver {
			out = append(out, c)
		}
	}
	return out
}
