// Package extract recovers the JSON result printed by a harness from the
// program's standard output.
package extract

import (
	"strings"

	"github.com/coderunr/judge/internal/harness"
	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/types"
)

// maxEcho bounds how much raw output is quoted in a parse error
const maxEcho = 200

// Extract returns the value between the last ResultStart and the ResultEnd
// following it. Without usable sentinels it falls back to the outermost
// bracketed span, then to the whole output as a bare JSON scalar.
func Extract(stdout string) (jsonval.Value, error) {
	if start := strings.LastIndex(stdout, harness.ResultStart); start >= 0 {
		rest := stdout[start+len(harness.ResultStart):]
		if end := strings.Index(rest, harness.ResultEnd); end >= 0 {
			if v, err := jsonval.Parse([]byte(strings.TrimSpace(rest[:end]))); err == nil {
				return v, nil
			}
		}
	}

	trimmed := strings.TrimSpace(stdout)
	if v, ok := bracketed(trimmed); ok {
		return v, nil
	}
	if v, err := jsonval.Parse([]byte(trimmed)); err == nil && trimmed != "" {
		return v, nil
	}

	return jsonval.Value{}, types.Errorf(types.KindOutputParseError, "failed to parse output: %q", echo(trimmed))
}

// bracketed parses from the first opening bracket to the last closing one
func bracketed(s string) (jsonval.Value, bool) {
	open := strings.IndexAny(s, "[{")
	end := strings.LastIndexAny(s, "]}")
	if open < 0 || end <= open {
		return jsonval.Value{}, false
	}
	v, err := jsonval.Parse([]byte(s[open : end+1]))
	if err != nil {
		return jsonval.Value{}, false
	}
	return v, true
}

// Unwrap strips the {"result": value} envelope printed by the JavaScript and
// Python harnesses. An empty object means the result was undefined.
func Unwrap(v jsonval.Value) jsonval.Value {
	if v.Kind != jsonval.Object {
		return v
	}
	if len(v.Keys) == 0 {
		return jsonval.Value{Kind: jsonval.Null}
	}
	if r, ok := v.Get("result"); ok && len(v.Keys) == 1 {
		return r
	}
	return v
}

func echo(s string) string {
	if len(s) > maxEcho {
		return s[:maxEcho] + "..."
	}
	return s
}
