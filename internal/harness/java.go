package harness

import (
	"regexp"
	"strings"

	"github.com/coderunr/judge/internal/entry"
	"github.com/coderunr/judge/internal/marshal"
)

// javaRunner is the generated main class
const javaRunner = "__Runner"

var (
	javaImport      = regexp.MustCompile(`^\s*import\s+(static\s+)?[\w.]+(\.\*)?\s*;\s*$`)
	javaPackage     = regexp.MustCompile(`^\s*package\s+[\w.]+\s*;\s*$`)
	javaPublicClass = regexp.MustCompile(`(?m)^public\s+(?:(?:final|abstract|sealed|strictfp)\s+)*(?:class|record|enum|interface)\s+([A-Za-z_$][\w$]*)`)
)

// Java drives a method through a reflective runner class compiled in the same
// unit. Bare method lists are wrapped in class Solution.
type Java struct{}

// Render implements Template
func (Java) Render(in Input) (*Program, error) {
	imports, body := splitJavaImports(in.Source)

	file := javaSourceFile(body)
	receiver := in.Candidate.Receiver
	if receiver == "" {
		file = entry.SolutionClass + ".java"
		receiver = entry.SolutionClass
		body = "class " + entry.SolutionClass + " {\n" + body + "\n}"
	}

	src, err := execute("java", struct {
		Imports     []string
		Source      string
		Receiver    string
		Entry       string
		Arguments   string
		ResultStart string
		ResultEnd   string
	}{
		Imports:     imports,
		Source:      body,
		Receiver:    marshal.CQuote(receiver),
		Entry:       marshal.CQuote(in.Candidate.Name),
		Arguments:   marshal.JavaArguments(in.Arguments),
		ResultStart: ResultStart,
		ResultEnd:   ResultEnd,
	})
	if err != nil {
		return nil, err
	}

	return &Program{SourceFile: file, Source: src, Artifact: javaRunner}, nil
}

// splitJavaImports pulls import lines out of the source and drops any package
// declaration; the unit is compiled in the default package.
func splitJavaImports(src string) ([]string, string) {
	var imports, body []string
	for _, line := range strings.Split(src, "\n") {
		switch {
		case javaImport.MatchString(line):
			imports = append(imports, strings.TrimSpace(line))
		case javaPackage.MatchString(line):
		default:
			body = append(body, line)
		}
	}
	return imports, strings.Join(body, "\n")
}

// javaSourceFile names the unit after its public top-level type, if any
func javaSourceFile(body string) string {
	if m := javaPublicClass.FindStringSubmatch(body); m != nil {
		return m[1] + ".java"
	}
	return entry.SolutionClass + ".java"
}
