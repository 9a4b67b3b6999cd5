package runtime

import (
	"fmt"
	"strings"

	"github.com/google/shlex"

	"github.com/coderunr/judge/internal/types"
)

// Placeholders substituted into toolchain command templates
const (
	PlaceholderSource = "{src}"
	PlaceholderBinary = "{bin}"
	PlaceholderDir    = "{dir}"
	PlaceholderMain   = "{main}"
)

// Toolchain holds the command templates of one language. Compile is empty
// for interpreted languages.
type Toolchain struct {
	Language types.Language
	Compile  string
	Run      string
	Version  string
}

// Compiled reports whether the toolchain has a build step
func (t Toolchain) Compiled() bool {
	return strings.TrimSpace(t.Compile) != ""
}

// Defaults returns the stock toolchains, expecting the usual binaries on PATH
func Defaults() map[types.Language]Toolchain {
	return map[types.Language]Toolchain{
		types.LanguageJavaScript: {
			Language: types.LanguageJavaScript,
			Run:      "node {src}",
			Version:  "node --version",
		},
		types.LanguagePython: {
			Language: types.LanguagePython,
			Run:      "python3 {src}",
			Version:  "python3 --version",
		},
		types.LanguageCPP: {
			Language: types.LanguageCPP,
			Compile:  "g++ -std=c++17 -O2 -o {bin} {src}",
			Run:      "{bin}",
			Version:  "g++ -dumpfullversion -dumpversion",
		},
		types.LanguageC: {
			Language: types.LanguageC,
			Compile:  "gcc -std=c11 -O2 -o {bin} {src} -lm",
			Run:      "{bin}",
			Version:  "gcc -dumpfullversion -dumpversion",
		},
		types.LanguageJava: {
			Language: types.LanguageJava,
			Compile:  "javac -encoding UTF-8 -d {dir} {src}",
			Run:      "java -cp {dir} {main}",
			Version:  "java -version",
		},
	}
}

// Merge overlays non-empty fields of overrides onto base
func Merge(base, overrides map[types.Language]Toolchain) map[types.Language]Toolchain {
	out := make(map[types.Language]Toolchain, len(base))
	for lang, tc := range base {
		out[lang] = tc
	}
	for lang, o := range overrides {
		tc := out[lang]
		tc.Language = lang
		if o.Compile != "" {
			tc.Compile = o.Compile
		}
		if o.Run != "" {
			tc.Run = o.Run
		}
		if o.Version != "" {
			tc.Version = o.Version
		}
		out[lang] = tc
	}
	return out
}

// Expand splits a command template into argv with shell quoting rules and
// substitutes placeholders in every word.
func Expand(template string, vars map[string]string) ([]string, error) {
	words, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("invalid command template %q: %w", template, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("empty command template")
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	r := strings.NewReplacer(pairs...)

	for i, w := range words {
		words[i] = r.Replace(w)
	}
	return words, nil
}

// binaries lists the fixed programs a toolchain invokes
func (t Toolchain) binaries() []string {
	var out []string
	for _, tmpl := range []string{t.Compile, t.Run} {
		words, err := shlex.Split(tmpl)
		if err != nil || len(words) == 0 || strings.Contains(words[0], "{") {
			continue
		}
		if !contains(out, words[0]) {
			out = append(out, words[0])
		}
	}
	return out
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
