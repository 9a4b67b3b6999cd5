package executor

import (
	"fmt"

	"github.com/coderunr/judge/internal/harness"
	"github.com/coderunr/judge/internal/runtime"
	"github.com/coderunr/judge/internal/types"
)

// Backend is everything needed to execute one language
type Backend struct {
	Template  harness.Template
	Toolchain runtime.Toolchain
}

// Registry maps languages to their backends
type Registry struct {
	backends map[types.Language]Backend
}

// NewRegistry pairs each toolchain with its language's harness template
func NewRegistry(toolchains map[types.Language]runtime.Toolchain) (*Registry, error) {
	reg := &Registry{backends: make(map[types.Language]Backend, len(toolchains))}

	for lang, tc := range toolchains {
		tmpl, err := harness.For(lang)
		if err != nil {
			return nil, fmt.Errorf("no harness for language %q: %w", lang, err)
		}
		if tc.Run == "" {
			return nil, fmt.Errorf("toolchain for language %q has no run command", lang)
		}
		reg.backends[lang] = Backend{Template: tmpl, Toolchain: tc}
	}

	if len(reg.backends) == 0 {
		return nil, fmt.Errorf("at least one toolchain must be registered")
	}
	return reg, nil
}

// Backend returns the backend of a language
func (r *Registry) Backend(lang types.Language) (Backend, error) {
	b, ok := r.backends[lang]
	if !ok {
		return Backend{}, types.Errorf(types.KindUnsupportedLanguage, "unsupported language: %s", lang)
	}
	return b, nil
}
