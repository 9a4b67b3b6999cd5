package entry

import (
	"regexp"
	"strings"

	"github.com/coderunr/judge/internal/types"
)

// decl is a function definition found by declarations
type decl struct {
	name   string
	prefix string // text between the previous declaration and the name
	params string // text inside the parameter parentheses
}

// declarations walks tokens[from:to] at brace depth and reports every
// `<prefix> name ( params ) [qualifiers] {` definition. Other brace blocks at
// that depth (struct bodies, initializers, classes) are skipped whole.
func declarations(src string, toks []token, from, to, depth int) []decl {
	var out []decl
	start := from

	for i := from; i < to; i++ {
		t := toks[i]
		if t.depth != depth {
			continue
		}

		if t.kind == tokPunct {
			switch t.text {
			case ";", "}":
				start = i + 1
			case ":":
				if i > from && isAccessSpecifier(toks[i-1].text) {
					start = i + 1
				}
			case "{":
				end := matchClose(toks, i)
				if end < 0 || end >= to {
					return out
				}
				i = end
				start = end + 1
			}
			continue
		}

		if t.kind != tokIdent || i+1 >= to || toks[i+1].text != "(" {
			continue
		}
		closeParen := matchClose(toks, i+1)
		if closeParen < 0 || closeParen >= to {
			return out
		}

		j := closeParen + 1
		for j < to && isTrailerToken(toks[j]) {
			j++
		}
		if j >= to || toks[j].text != "{" {
			continue
		}

		prefix := ""
		if start < i {
			prefix = src[toks[start].start:t.start]
		}
		out = append(out, decl{
			name:   t.text,
			prefix: strings.TrimSpace(prefix),
			params: src[toks[i+1].end:toks[closeParen].start],
		})

		end := matchClose(toks, j)
		if end < 0 || end >= to {
			return out
		}
		i = end
		start = end + 1
	}

	return out
}

// isTrailerToken matches what may sit between a parameter list and the body:
// const, noexcept, override, throws clauses, trailing return types.
func isTrailerToken(t token) bool {
	if t.kind == tokIdent {
		return true
	}
	switch t.text {
	case ",", ".", "&", "-", ">", "<", ":", "*":
		return true
	}
	return false
}

func isAccessSpecifier(s string) bool {
	return s == "public" || s == "private" || s == "protected"
}

// classBody is a class or struct definition at some depth
type classBody struct {
	name  string
	open  int
	close int
}

// classBodies finds `class Name ... {` blocks at depth
func classBodies(toks []token, depth int, keywords ...string) []classBody {
	var out []classBody
	for i := 0; i+1 < len(toks); i++ {
		t := toks[i]
		if t.depth != depth || t.kind != tokIdent || !contains(keywords, t.text) {
			continue
		}
		name := toks[i+1]
		if name.kind != tokIdent {
			continue
		}
		for j := i + 2; j < len(toks) && toks[j].depth == depth; j++ {
			if toks[j].text == ";" {
				break
			}
			if toks[j].text == "{" {
				end := matchClose(toks, j)
				if end < 0 {
					return out
				}
				out = append(out, classBody{name: name.text, open: j, close: end})
				i = end
				break
			}
		}
	}
	return out
}

var cExcludedNames = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "sizeof": true, "main": true, "operator": true,
	"defined": true, "do": true, "else": true,
}

var cExcludedPrefixes = []string{"class", "struct", "enum", "typedef", "using", "union", "namespace"}

// cTagKeywords may start a return type such as "struct Node*"
var cTagKeywords = []string{"struct", "enum", "union"}

var cQualifiers = map[string]bool{
	"static": true, "inline": true, "extern": true, "constexpr": true,
	"virtual": true, "friend": true, "explicit": true, "__inline": true,
}

// resolveCLike finds top-level functions, then falls back to the methods
// of a C++ `class Solution`.
func resolveCLike(lang types.Language, src string) []Candidate {
	toks := scan(src, scanOptions{preprocessor: true})

	candidates := cCandidates(lang, declarations(src, toks, 0, len(toks), 0), "")
	if len(candidates) > 0 || lang != types.LanguageCPP {
		return dedupe(candidates)
	}

	for _, cls := range classBodies(toks, 0, "class", "struct") {
		if cls.name != SolutionClass {
			continue
		}
		ds := declarations(src, toks, cls.open+1, cls.close, 1)
		candidates = append(candidates, cCandidates(lang, ds, cls.name)...)
	}
	return dedupe(candidates)
}

func cCandidates(lang types.Language, ds []decl, receiver string) []Candidate {
	var out []Candidate
	for _, d := range ds {
		if cExcludedNames[d.name] || d.name == receiver {
			continue
		}
		ret, static, ok := cReturnType(d.prefix)
		if !ok {
			continue
		}
		out = append(out, Candidate{
			Name:       d.name,
			Parameters: splitParams(d.params, cParam),
			ReturnType: ret,
			Static:     static,
			Language:   lang,
			Receiver:   receiver,
		})
	}
	return out
}

var templatePrefix = regexp.MustCompile(`^template\s*<[^{;]*?>\s*`)

// cReturnType extracts the normalized return type from a declaration prefix.
func cReturnType(prefix string) (string, bool, bool) {
	prefix = templatePrefix.ReplaceAllString(prefix, "")
	if prefix == "" || strings.ContainsAny(prefix, "=(){};") {
		return "", false, false
	}

	fields := strings.Fields(prefix)
	if contains(cExcludedPrefixes, fields[0]) && !(len(fields) > 1 && contains(cTagKeywords, fields[0])) {
		return "", false, false
	}

	static := false
	kept := fields[:0]
	for _, f := range fields {
		if cQualifiers[f] {
			if f == "static" {
				static = true
			}
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return "", false, false
	}
	return normalizeSpacing(strings.Join(kept, " ")), static, true
}

var trailingIdent = regexp.MustCompile(`([A-Za-z_$][A-Za-z0-9_$]*)$`)

// cParam splits "const vector<int>& nums" into type and name. Array
// declarators become pointer types.
func cParam(text string) (Parameter, bool) {
	if i := topLevelIndex(text, '='); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if text == "" || text == "void" {
		return Parameter{}, false
	}

	stars := ""
	for strings.HasSuffix(text, "]") {
		open := strings.LastIndex(text, "[")
		if open < 0 {
			break
		}
		text = strings.TrimSpace(text[:open])
		stars += "*"
	}

	m := trailingIdent.FindStringIndex(text)
	if m == nil || m[0] == 0 {
		return Parameter{DeclaredType: normalizeSpacing(text + stars)}, true
	}
	typ := strings.TrimSpace(text[:m[0]])
	return Parameter{
		DeclaredType: normalizeSpacing(typ + stars),
		Name:         text[m[0]:m[1]],
	}, true
}

// splitParams splits a parameter list on top-level commas
func splitParams(params string, parse func(string) (Parameter, bool)) []Parameter {
	var out []Parameter
	for _, part := range splitTopLevel(params, ',') {
		if p, ok := parse(strings.TrimSpace(part)); ok {
			out = append(out, p)
		}
	}
	return out
}

// splitTopLevel splits s on sep outside (), [], {} and <>
func splitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		level int
		last  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			level++
		case ')', ']', '}', '>':
			if level > 0 {
				level--
			}
		case sep:
			if level == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[last:]); tail != "" || len(parts) > 0 {
		parts = append(parts, s[last:])
	}
	return parts
}

func topLevelIndex(s string, c byte) int {
	level := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			level++
		case ')', ']', '}', '>':
			if level > 0 {
				level--
			}
		case c:
			if level == 0 {
				return i
			}
		}
	}
	return -1
}

var (
	spaceRun    = regexp.MustCompile(`\s+`)
	spaceBefore = regexp.MustCompile(`\s+([*&>,])`)
	spaceAfter  = regexp.MustCompile(`([<,(])\s+`)
)

// normalizeSpacing collapses whitespace and glues pointer/reference marks
// and template brackets: "int *" -> "int*", "vector< int >" -> "vector<int>".
func normalizeSpacing(s string) string {
	s = spaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	s = spaceBefore.ReplaceAllString(s, "$1")
	s = spaceAfter.ReplaceAllString(s, "$1")
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
