package entry

import (
	"regexp"
	"strings"

	"github.com/coderunr/judge/internal/types"
)

var (
	pyTopLevelDef = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyMethodDef   = regexp.MustCompile(`^\s+(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(\s*self\b`)
	pyClass       = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)\b`)
)

// resolvePython finds top-level def statements. When there are none, the
// methods of a top-level class Solution are used instead.
func resolvePython(src string) []Candidate {
	var (
		functions []Candidate
		methods   []Candidate
		class     string
		quote     string
	)

	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimRight(line, "\r")

		if quote != "" {
			if strings.Count(line, quote)%2 == 1 {
				quote = ""
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			continue
		case line[0] != ' ' && line[0] != '\t':
			class = ""
			if m := pyClass.FindStringSubmatch(line); m != nil {
				class = m[1]
			} else if m := pyTopLevelDef.FindStringSubmatch(line); m != nil {
				functions = append(functions, Candidate{Name: m[1], Language: types.LanguagePython})
			}
		case class == SolutionClass:
			if m := pyMethodDef.FindStringSubmatch(line); m != nil && !strings.HasPrefix(m[1], "__") {
				methods = append(methods, Candidate{Name: m[1], Language: types.LanguagePython, Receiver: class})
			}
		}

		quote = openTripleQuote(line)
	}

	if len(functions) > 0 {
		return dedupe(functions)
	}
	return dedupe(methods)
}

// openTripleQuote returns the delimiter of a triple-quoted string left open
// at the end of line.
func openTripleQuote(line string) string {
	for _, q := range []string{`"""`, `'''`} {
		if strings.Count(line, q)%2 == 1 {
			return q
		}
	}
	return ""
}
