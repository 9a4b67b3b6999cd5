package validator

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderunr/judge/internal/executor"
	"github.com/coderunr/judge/internal/runtime"
	"github.com/coderunr/judge/internal/sandbox"
	"github.com/coderunr/judge/internal/types"
)

// fakeExecutor answers from a queue and records the requests it saw
type fakeExecutor struct {
	results  []types.ExecutionResult
	requests []types.ExecutionRequest
}

func (f *fakeExecutor) Execute(_ context.Context, req types.ExecutionRequest) types.ExecutionResult {
	f.requests = append(f.requests, req)
	res := f.results[0]
	f.results = f.results[1:]
	return res
}

func ok(output string) types.ExecutionResult {
	return types.ExecutionResult{Success: true, Output: json.RawMessage(output)}
}

func fail(kind types.ErrorKind, msg string) types.ExecutionResult {
	return types.ExecutionResult{Success: false, Error: msg, Kind: kind}
}

func cases(pairs ...string) []types.TestCase {
	var out []types.TestCase
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, types.TestCase{Input: json.RawMessage(pairs[i]), ExpectedOutput: json.RawMessage(pairs[i+1])})
	}
	return out
}

func TestValidateEmpty(t *testing.T) {
	v := New(&fakeExecutor{})
	verdict := v.Validate(context.Background(), types.Submission{Language: types.LanguagePython})

	assert.False(t, verdict.Passed)
	assert.Equal(t, NoTestCasesMessage, verdict.Message)
	assert.Equal(t, 0, verdict.TotalCount)
	assert.Empty(t, verdict.Results)
}

func TestValidateAllPass(t *testing.T) {
	fake := &fakeExecutor{results: []types.ExecutionResult{ok(`[0,1]`), ok(`2.0`)}}
	verdict := New(fake).Validate(context.Background(), types.Submission{
		Language:  types.LanguageJavaScript,
		TestCases: cases(`[[2,7,11,15], 9]`, `[0, 1]`, `1`, `2`),
	})

	assert.True(t, verdict.Passed)
	assert.Equal(t, "2/2 passed", verdict.Message)
	assert.Equal(t, 2, verdict.PassedCount)
	assert.Equal(t, `2`, string(verdict.Results[1].ActualOutput))
}

func TestValidateContinuesAfterFailure(t *testing.T) {
	fake := &fakeExecutor{results: []types.ExecutionResult{
		fail(types.KindRuntimeError, "boom"),
		ok(`[1,0]`),
		ok(`[0,1]`),
	}}
	verdict := New(fake).Validate(context.Background(), types.Submission{
		Language:  types.LanguagePython,
		TestCases: cases(`[1]`, `1`, `[]`, `[0,1]`, `null`, `[0,1]`),
	})

	require.Len(t, verdict.Results, 3)
	assert.False(t, verdict.Passed)
	assert.Equal(t, "1/3 passed", verdict.Message)

	assert.False(t, verdict.Results[0].Passed)
	assert.Equal(t, "boom", verdict.Results[0].Error)
	assert.Equal(t, "null", string(mustMarshal(t, verdict.Results[0].ActualOutput)))

	// order matters
	assert.False(t, verdict.Results[1].Passed)
	assert.Empty(t, verdict.Results[1].Error)
	assert.Equal(t, `[1,0]`, string(verdict.Results[1].ActualOutput))

	assert.True(t, verdict.Results[2].Passed)
	for i, r := range verdict.Results {
		assert.Equal(t, i, r.TestCaseIndex)
	}
}

func TestValidateDecodesStringOutput(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		expected   string
		wantPassed bool
		wantActual string
	}{
		{"json array text", `"[0,1]"`, `[0,1]`, true, `[0,1]`},
		{"padded number text", `" 5 "`, `5`, true, `5`},
		{"plain text trimmed", `"  hello "`, `"hello"`, true, `"hello"`},
		{"broken json stays text", `"[1,"`, `"[1,"`, true, `"[1,"`},
		{"string expected stays string", `"5"`, `"5"`, true, `"5"`},
		{"decoded value still compared", `"[1,0]"`, `[0,1]`, false, `[1,0]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeExecutor{results: []types.ExecutionResult{ok(tt.output)}}
			verdict := New(fake).Validate(context.Background(), types.Submission{
				Language:  types.LanguageJavaScript,
				TestCases: cases(`[1]`, tt.expected),
			})

			require.Len(t, verdict.Results, 1)
			assert.Equal(t, tt.wantPassed, verdict.Results[0].Passed)
			assert.Equal(t, tt.wantActual, string(verdict.Results[0].ActualOutput))
		})
	}
}

func TestValidateNormalizesInput(t *testing.T) {
	fake := &fakeExecutor{results: []types.ExecutionResult{ok(`1`), ok(`1`), ok(`1`), ok(`1`)}}
	New(fake).Validate(context.Background(), types.Submission{
		Language:   types.LanguageC,
		SourceCode: "int solve(void) { return 1; }",
		TestCases: []types.TestCase{
			{Input: json.RawMessage(`[1, "a"]`), ExpectedOutput: json.RawMessage(`1`)},
			{Input: json.RawMessage(`null`), ExpectedOutput: json.RawMessage(`1`)},
			{ExpectedOutput: json.RawMessage(`1`)},
			{Input: json.RawMessage(`{"k": 1}`), ExpectedOutput: json.RawMessage(`1`)},
		},
	})

	require.Len(t, fake.requests, 4)
	assert.Len(t, fake.requests[0].Arguments, 2)
	assert.Empty(t, fake.requests[1].Arguments)
	assert.Empty(t, fake.requests[2].Arguments)
	require.Len(t, fake.requests[3].Arguments, 1)
	assert.Equal(t, `{"k":1}`, string(fake.requests[3].Arguments[0]))

	for _, req := range fake.requests {
		assert.Equal(t, types.LanguageC, req.Language)
		assert.Equal(t, `1`, string(req.ExpectedOutput))
		assert.NotEmpty(t, req.ID)
	}
}

func TestValidateInvalidJSON(t *testing.T) {
	fake := &fakeExecutor{}
	verdict := New(fake).Validate(context.Background(), types.Submission{
		Language: types.LanguagePython,
		TestCases: []types.TestCase{
			{Input: json.RawMessage(`[1,`), ExpectedOutput: json.RawMessage(`1`)},
			{Input: json.RawMessage(`[1]`), ExpectedOutput: json.RawMessage(`{bad`)},
		},
	})

	assert.Empty(t, fake.requests)
	assert.Equal(t, "0/2 passed", verdict.Message)
	assert.Contains(t, verdict.Results[0].Error, "invalid input JSON")
	assert.Contains(t, verdict.Results[1].Error, "invalid expected output JSON")
}

func TestStreamObserver(t *testing.T) {
	fake := &fakeExecutor{results: []types.ExecutionResult{ok(`1`), ok(`3`)}}
	var seen []types.ValidationResult
	verdict := New(fake).Stream(context.Background(), types.Submission{
		Language:  types.LanguageJavaScript,
		TestCases: cases(`[1]`, `1`, `[2]`, `2`),
	}, func(r types.ValidationResult) {
		seen = append(seen, r)
	})

	assert.Equal(t, verdict.Results, seen)
	assert.Equal(t, "1/2 passed", verdict.Message)
}

func TestValidateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeExecutor{}
	verdict := New(fake).Validate(ctx, types.Submission{
		Language:  types.LanguagePython,
		TestCases: cases(`[1]`, `1`),
	})

	assert.Empty(t, fake.requests)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Results[0].Error, "validation canceled")
}

func TestValidateOrderSensitiveEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not available")
	}

	reg, err := executor.NewRegistry(runtime.Defaults())
	require.NoError(t, err)
	ws, err := sandbox.NewManager(t.TempDir())
	require.NoError(t, err)

	v := New(executor.New(executor.Options{Registry: reg, Workspaces: ws}))
	verdict := v.Validate(context.Background(), types.Submission{
		Language:   types.LanguageJavaScript,
		SourceCode: "function solve(nums) { return [1, 0]; }\n",
		TestCases:  cases(`[[5, 6]]`, `[0, 1]`, `[[5, 6]]`, `[1, 0]`),
	})

	require.Len(t, verdict.Results, 2)
	assert.False(t, verdict.Results[0].Passed)
	assert.True(t, verdict.Results[1].Passed)
	assert.Equal(t, "1/2 passed", verdict.Message)
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
