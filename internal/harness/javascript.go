package harness

import (
	"fmt"

	"github.com/coderunr/judge/internal/entry"
	"github.com/coderunr/judge/internal/marshal"
)

// JavaScript drives a Node.js entry point. Every candidate is resolved at run
// time with typeof, so a name the scanner misjudged is simply skipped.
type JavaScript struct{}

// Render implements Template
func (JavaScript) Render(in Input) (*Program, error) {
	var callables []string
	for _, c := range orderedCandidates(in) {
		callables = append(callables, jsCallable(c))
	}

	src, err := execute("javascript", struct {
		Source      string
		Arguments   string
		Candidates  []string
		ResultStart string
		ResultEnd   string
	}{
		Source:      in.Source,
		Arguments:   marshal.JavaScriptArguments(in.Arguments),
		Candidates:  callables,
		ResultStart: ResultStart,
		ResultEnd:   ResultEnd,
	})
	if err != nil {
		return nil, err
	}
	return &Program{SourceFile: "solution.js", Source: src, Envelope: true}, nil
}

// jsCallable is an expression yielding the candidate as a function, or null.
// Instance methods are bound to a fresh instance of their class.
func jsCallable(c entry.Candidate) string {
	switch {
	case c.Receiver == "":
		return fmt.Sprintf(`typeof %[1]s === "function" ? %[1]s : null`, c.Name)
	case c.Static:
		return fmt.Sprintf(`typeof %[1]s === "function" && typeof %[1]s.%[2]s === "function" ? %[1]s.%[2]s.bind(%[1]s) : null`, c.Receiver, c.Name)
	default:
		return fmt.Sprintf(`typeof %[1]s === "function" && typeof %[1]s.prototype.%[2]s === "function" ? %[1]s.prototype.%[2]s.bind(new %[1]s()) : null`, c.Receiver, c.Name)
	}
}
