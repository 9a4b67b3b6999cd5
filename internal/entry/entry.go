// Package entry locates the callable a submission should be driven through.
//
// Each language family has its own lightweight scanner; none of them parse
// the full grammar. They recognise top-level function definitions (and, for
// LeetCode-style code, the methods of a Solution class) well enough to name
// the entry point and, for statically typed languages, its parameters.
package entry

import (
	"github.com/coderunr/judge/internal/types"
)

// Parameter is one declared parameter of a typed candidate
type Parameter struct {
	DeclaredType string `json:"declared_type"`
	Name         string `json:"name"`
}

// Candidate is a callable that could serve as the entry point
type Candidate struct {
	Name       string         `json:"name"`
	Parameters []Parameter    `json:"parameters,omitempty"`
	ReturnType string         `json:"return_type,omitempty"`
	Static     bool           `json:"static,omitempty"`
	VarArgs    bool           `json:"varargs,omitempty"`
	Language   types.Language `json:"language"`

	// Receiver names the enclosing class for methods. Empty for free
	// functions.
	Receiver string `json:"receiver,omitempty"`
}

// Typed reports whether the candidate carries a parameter list
func (c Candidate) Typed() bool {
	switch c.Language {
	case types.LanguageCPP, types.LanguageC, types.LanguageJava:
		return true
	default:
		return false
	}
}

// Arity is the declared parameter count
func (c Candidate) Arity() int {
	return len(c.Parameters)
}

func (c Candidate) distance(argc int) int {
	n := len(c.Parameters)
	if c.VarArgs {
		if argc >= n-1 {
			return 0
		}
		return n - 1 - argc
	}
	if n > argc {
		return n - argc
	}
	return argc - n
}

// preferredName is always chosen when present
const preferredName = "solve"

// SolutionClass holds LeetCode-style methods and wraps bare Java methods
const SolutionClass = "Solution"

// Resolve lists the entry-point candidates of source, best first
func Resolve(lang types.Language, source string) ([]Candidate, error) {
	var candidates []Candidate

	switch lang {
	case types.LanguageJavaScript:
		candidates = resolveJavaScript(source)
	case types.LanguagePython:
		candidates = resolvePython(source)
	case types.LanguageCPP, types.LanguageC:
		candidates = resolveCLike(lang, source)
	case types.LanguageJava:
		candidates = resolveJava(source)
	default:
		return nil, types.Errorf(types.KindUnsupportedLanguage, "unsupported language: %s", lang)
	}

	if len(candidates) == 0 {
		return nil, types.Errorf(types.KindNoEntryPointFound, "no entry point found in %s source", lang)
	}
	return preferSolve(candidates), nil
}

// Select picks the single entry point for a call with the given argument
// counts. A function named solve always wins. Otherwise the earliest typed
// candidate whose arity is closest to any of argc is used; untyped
// candidates fall back to declaration order.
func Select(candidates []Candidate, argc ...int) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, types.Errorf(types.KindNoEntryPointFound, "no entry point found")
	}

	for _, c := range candidates {
		if c.Name == preferredName {
			return c, nil
		}
	}

	best, bestDist := 0, -1
	for i, c := range candidates {
		if !c.Typed() {
			continue
		}
		d := -1
		for _, n := range argc {
			if dn := c.distance(n); d < 0 || dn < d {
				d = dn
			}
		}
		if d < 0 {
			d = 0
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return candidates[best], nil
}

// HasMain reports whether a C or C++ source defines its own main function
func HasMain(lang types.Language, source string) bool {
	if lang != types.LanguageC && lang != types.LanguageCPP {
		return false
	}
	toks := scan(source, scanOptions{preprocessor: true})
	for _, d := range declarations(source, toks, 0, len(toks), 0) {
		if d.name == "main" {
			return true
		}
	}
	return false
}

// Names returns candidate names in order
func Names(candidates []Candidate) []string {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
	}
	return names
}

// preferSolve moves every candidate named solve to the front, keeping order
func preferSolve(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Name == preferredName {
			out = append(out, c)
		}
	}
	for _, c := range candidates {
		if c.Name != preferredName {
			out = append(out, c)
		}
	}
	return out
}

// dedupe keeps the first candidate of each name
func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := c.Receiver + "." + c.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
