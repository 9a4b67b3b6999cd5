package entry

import "github.com/coderunr/judge/internal/types"

// jsExcludedNames are never entry points
var jsExcludedNames = map[string]bool{
	"main":  true,
	"__run": true,
}

// resolveJavaScript finds top-level function declarations and functions
// bound with const/let/var, in declaration order, followed by the methods of
// top-level classes.
func resolveJavaScript(src string) []Candidate {
	toks := scan(src, scanOptions{templates: true})
	at := func(i int) token {
		if i < 0 || i >= len(toks) {
			return token{}
		}
		return toks[i]
	}

	var out []Candidate
	add := func(name string) {
		if !jsExcludedNames[name] {
			out = append(out, Candidate{Name: name, Language: types.LanguageJavaScript})
		}
	}

	for i, t := range toks {
		if t.depth != 0 || t.kind != tokIdent {
			continue
		}

		switch t.text {
		case "function":
			j := i + 1
			if at(j).text == "*" {
				j++
			}
			if at(j).kind == tokIdent && at(j).text != "" && at(j+1).text == "(" {
				add(at(j).text)
			}

		case "const", "let", "var":
			name := at(i + 1)
			if name.kind != tokIdent || name.text == "" || at(i+2).text != "=" {
				continue
			}
			j := i + 3
			if at(j).text == "async" {
				j++
			}
			switch {
			case at(j).text == "function":
				add(name.text)
			case at(j).text == "(":
				end := matchClose(toks, j)
				if end > 0 && at(end+1).text == "=" && at(end+2).text == ">" {
					add(name.text)
				}
			case at(j).kind == tokIdent && at(j).text != "" && at(j+1).text == "=" && at(j+2).text == ">":
				add(name.text)
			}
		}
	}

	for _, cls := range classBodies(toks, 0, "class") {
		out = append(out, jsClassMethods(toks, cls)...)
	}

	return dedupe(out)
}

// jsClassMethods lists the plain and static methods of one class body.
// Constructors, accessors and #private methods are left out.
func jsClassMethods(toks []token, cls classBody) []Candidate {
	var out []Candidate
	for k := cls.open + 1; k < cls.close; k++ {
		t := toks[k]
		if t.depth != 1 || t.kind != tokIdent || t.text == "" || t.text == "constructor" || jsExcludedNames[t.text] {
			continue
		}
		if toks[k+1].text != "(" {
			continue
		}
		end := matchClose(toks, k+1)
		if end < 0 || end+1 >= cls.close || toks[end+1].text != "{" {
			continue
		}

		p := k - 1
		for p > cls.open && (toks[p].text == "async" || toks[p].text == "*") {
			p--
		}
		prev := toks[p].text
		if prev == "get" || prev == "set" || prev == "#" {
			continue
		}
		out = append(out, Candidate{
			Name:     t.text,
			Static:   prev == "static",
			Language: types.LanguageJavaScript,
			Receiver: cls.name,
		})
		k = end
	}
	return out
}
