package entry

import (
	"regexp"
	"sort"
	"strings"

	"github.com/coderunr/judge/internal/types"
)

var javaModifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "static": true,
	"final": true, "abstract": true, "synchronized": true, "native": true,
	"strictfp": true, "default": true,
}

var javaExcludedNames = map[string]bool{
	"main": true, "if": true, "for": true, "while": true, "switch": true,
	"catch": true, "synchronized": true, "return": true, "try": true,
}

var javaNotTypes = map[string]bool{
	"class": true, "record": true, "interface": true, "enum": true,
	"new": true, "return": true, "throw": true, "else": true,
}

var (
	javaAnnotation = regexp.MustCompile(`@[A-Za-z_][\w.]*(\s*\([^)]*\))?`)
	leadingWord    = regexp.MustCompile(`^([A-Za-z_]\w*)\s*`)
)

// resolveJava prefers the methods of class Solution, then a bare method list
// at the top level, then the methods of the first declared class.
func resolveJava(src string) []Candidate {
	toks := scan(src, scanOptions{})

	classes := classBodies(toks, 0, "class", "record", "enum")
	sort.SliceStable(classes, func(i, j int) bool {
		return classes[i].name == SolutionClass && classes[j].name != SolutionClass
	})

	if len(classes) > 0 && classes[0].name == SolutionClass {
		return javaCandidates(src, toks, classes[0])
	}

	if top := javaMethods(declarations(src, toks, 0, len(toks), 0), ""); len(top) > 0 {
		return top
	}

	for _, cls := range classes {
		if c := javaCandidates(src, toks, cls); len(c) > 0 {
			return c
		}
	}
	return nil
}

func javaCandidates(src string, toks []token, cls classBody) []Candidate {
	return javaMethods(declarations(src, toks, cls.open+1, cls.close, 1), cls.name)
}

// javaMethods keeps source order except that private methods go last
func javaMethods(ds []decl, receiver string) []Candidate {
	var out, private []Candidate
	for _, d := range ds {
		if javaExcludedNames[d.name] || d.name == receiver {
			continue
		}
		ret, mods, ok := javaReturnType(d.prefix)
		if !ok {
			continue
		}
		c := Candidate{
			Name:       d.name,
			Parameters: splitParams(d.params, javaParam),
			ReturnType: ret,
			Static:     mods["static"],
			VarArgs:    strings.Contains(d.params, "..."),
			Language:   types.LanguageJava,
			Receiver:   receiver,
		}
		if mods["private"] {
			private = append(private, c)
		} else {
			out = append(out, c)
		}
	}
	return append(out, private...)
}

// javaReturnType strips annotations, modifiers and type parameters from a
// method prefix and returns what is left along with the modifiers seen.
func javaReturnType(prefix string) (string, map[string]bool, bool) {
	prefix = strings.TrimSpace(javaAnnotation.ReplaceAllString(prefix, " "))
	mods := make(map[string]bool)

	for prefix != "" {
		if strings.HasPrefix(prefix, "<") {
			end := matchingAngle(prefix)
			if end < 0 {
				return "", nil, false
			}
			prefix = strings.TrimSpace(prefix[end+1:])
			continue
		}
		m := leadingWord.FindStringSubmatch(prefix)
		if m == nil || !javaModifiers[m[1]] {
			break
		}
		mods[m[1]] = true
		prefix = prefix[len(m[0]):]
	}

	if prefix == "" || strings.ContainsAny(prefix, "=(){};") {
		return "", nil, false
	}
	if m := leadingWord.FindStringSubmatch(prefix); m != nil && javaNotTypes[m[1]] {
		return "", nil, false
	}
	return normalizeSpacing(prefix), mods, true
}

func matchingAngle(s string) int {
	level := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			level++
		case '>':
			level--
			if level == 0 {
				return i
			}
		}
	}
	return -1
}

// javaParam splits "final int[] nums" into type and name; varargs become
// array types.
func javaParam(text string) (Parameter, bool) {
	text = strings.TrimSpace(javaAnnotation.ReplaceAllString(text, " "))
	text = strings.TrimSpace(strings.TrimPrefix(text, "final "))
	if text == "" {
		return Parameter{}, false
	}
	text = strings.Replace(text, "...", "[] ", 1)

	dims := ""
	for strings.HasSuffix(text, "[]") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "[]"))
		dims += "[]"
	}

	m := trailingIdent.FindStringIndex(text)
	if m == nil || m[0] == 0 {
		return Parameter{DeclaredType: normalizeSpacing(text + dims)}, true
	}
	return Parameter{
		DeclaredType: strings.ReplaceAll(normalizeSpacing(text[:m[0]]), " ", "") + dims,
		Name:         text[m[0]:m[1]],
	}, true
}
