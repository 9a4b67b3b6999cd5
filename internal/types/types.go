package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Language identifies a supported submission language
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageCPP        Language = "cpp"
	LanguageJava       Language = "java"
	LanguageC          Language = "c"
)

// Languages lists every supported language in a stable order
var Languages = []Language{
	LanguageJavaScript,
	LanguagePython,
	LanguageCPP,
	LanguageJava,
	LanguageC,
}

var languageAliases = map[string]Language{
	"javascript": LanguageJavaScript,
	"js":         LanguageJavaScript,
	"node":       LanguageJavaScript,
	"python":     LanguagePython,
	"python3":    LanguagePython,
	"py":         LanguagePython,
	"cpp":        LanguageCPP,
	"c++":        LanguageCPP,
	"cc":         LanguageCPP,
	"java":       LanguageJava,
	"c":          LanguageC,
}

// ParseLanguage resolves a language name or alias
func ParseLanguage(name string) (Language, error) {
	if lang, ok := languageAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lang, nil
	}
	return "", Errorf(KindUnsupportedLanguage, "unsupported language: %q", name)
}

// Aliases returns the alternative names accepted for l, sorted
func (l Language) Aliases() []string {
	var out []string
	for alias, lang := range languageAliases {
		if lang == l && alias != string(l) {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// Compiled reports whether the language has a build step
func (l Language) Compiled() bool {
	switch l {
	case LanguageC, LanguageCPP, LanguageJava:
		return true
	default:
		return false
	}
}

// TestCase is one input/expected-output pair of a submission
type TestCase struct {
	Input          json.RawMessage `json:"input"`
	ExpectedOutput json.RawMessage `json:"expectedOutput"`
}

// UnmarshalJSON accepts the legacy "output" field as an alias of expectedOutput
func (tc *TestCase) UnmarshalJSON(data []byte) error {
	var raw struct {
		Input          json.RawMessage `json:"input"`
		ExpectedOutput json.RawMessage `json:"expectedOutput"`
		Output         json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tc.Input = raw.Input
	tc.ExpectedOutput = raw.ExpectedOutput
	if len(tc.ExpectedOutput) == 0 {
		tc.ExpectedOutput = raw.Output
	}
	return nil
}

// Submission is learner code together with the test cases it is judged against
type Submission struct {
	SourceCode string     `json:"source_code"`
	Language   Language   `json:"language"`
	TestCases  []TestCase `json:"test_cases"`

	// Timeout applies to each test case; zero means the executor default.
	Timeout time.Duration `json:"-"`
}

// ExecutionRequest describes a single run of an entry point
type ExecutionRequest struct {
	ID         string
	SourceCode string
	Language   Language
	Arguments  []json.RawMessage
	Timeout    time.Duration

	// ExpectedOutput is only consulted by the C harness to size pointer results.
	ExpectedOutput json.RawMessage
}

// ExecutionResult is the normalized outcome of one execution
type ExecutionResult struct {
	Success  bool            `json:"success"`
	Output   json.RawMessage `json:"output"`
	Error    string          `json:"error"`
	Kind     ErrorKind       `json:"kind,omitempty"`
	Stdout   string          `json:"stdout,omitempty"`
	Stderr   string          `json:"stderr,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// ValidationResult is the outcome of one test case
type ValidationResult struct {
	TestCaseIndex  int             `json:"testCaseIndex"`
	Passed         bool            `json:"passed"`
	Input          json.RawMessage `json:"input"`
	ExpectedOutput json.RawMessage `json:"expectedOutput"`
	ActualOutput   json.RawMessage `json:"actualOutput"`
	Error          string          `json:"error,omitempty"`
}

// Verdict aggregates the results of a submission
type Verdict struct {
	Passed      bool               `json:"passed"`
	Results     []ValidationResult `json:"results"`
	PassedCount int                `json:"passedCount"`
	TotalCount  int                `json:"totalCount"`
	Message     string             `json:"message"`
}

// Summary renders the human readable "N/M passed" count
func (v Verdict) Summary() string {
	return fmt.Sprintf("%d/%d passed", v.PassedCount, v.TotalCount)
}

// ExecuteRequest is the HTTP body of an execute call
type ExecuteRequest struct {
	Language       string            `json:"language"`
	SourceCode     string            `json:"source_code"`
	Arguments      []json.RawMessage `json:"arguments,omitempty"`
	Input          json.RawMessage   `json:"input,omitempty"`
	TimeoutMs      *int              `json:"timeout_ms,omitempty"`
	ExpectedOutput json.RawMessage   `json:"expected_output,omitempty"`
	Version        string            `json:"version,omitempty"`
}

// ValidateRequest is the HTTP body of a validate call
type ValidateRequest struct {
	Language   string     `json:"language"`
	SourceCode string     `json:"source_code"`
	TestCases  []TestCase `json:"test_cases"`
	TimeoutMs  *int       `json:"timeout_ms,omitempty"`
	Version    string     `json:"version,omitempty"`
}

// RuntimeInfo represents a detected toolchain for API responses
type RuntimeInfo struct {
	Language  Language `json:"language"`
	Version   string   `json:"version"`
	Aliases   []string `json:"aliases"`
	Compiled  bool     `json:"compiled"`
	Available bool     `json:"available"`
	Binaries  []string `json:"binaries"`
	Error     string   `json:"error,omitempty"`
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type    string          `json:"type"`
	Error   string          `json:"error,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}
