package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderunr/judge/internal/runtime"
	"github.com/coderunr/judge/internal/types"
)

// echoExecutor returns its first argument as the output
type echoExecutor struct {
	mutex    sync.Mutex
	requests []types.ExecutionRequest
}

func (e *echoExecutor) Execute(_ context.Context, req types.ExecutionRequest) types.ExecutionResult {
	e.mutex.Lock()
	e.requests = append(e.requests, req)
	e.mutex.Unlock()

	if len(req.Arguments) == 0 {
		return types.ExecutionResult{Success: true, Output: json.RawMessage("null")}
	}
	return types.ExecutionResult{Success: true, Output: req.Arguments[0]}
}

func newTestRouter(t *testing.T) (http.Handler, *echoExecutor) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	exec := &echoExecutor{}
	h := NewHandler(exec, runtime.NewManager(nil), logger)

	r := chi.NewRouter()
	r.Get("/", h.GetVersion)
	r.Get("/health", h.Health)
	r.Route("/api/v2", func(r chi.Router) {
		r.Post("/execute", h.Execute)
		r.Post("/validate", h.Validate)
		r.Get("/runtimes", h.GetRuntimes)
		r.HandleFunc("/connect", h.HandleWebSocket)
	})
	return r, exec
}

func post(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetVersionAndHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), Version)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestGetRuntimesBeforeProbe(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/runtimes", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestExecute(t *testing.T) {
	router, exec := newTestRouter(t)

	rec := post(t, router, "/api/v2/execute",
		`{"language":"py","source_code":"def solve(x): return x","arguments":[[1,2]],"timeout_ms":1500}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result types.ExecutionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.JSONEq(t, `[1,2]`, string(result.Output))

	require.Len(t, exec.requests, 1)
	assert.Equal(t, types.LanguagePython, exec.requests[0].Language)
	assert.Equal(t, 1500*time.Millisecond, exec.requests[0].Timeout)
}

func TestExecuteInputNormalization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		argc  int
	}{
		{"array spreads", `[1, 2, 3]`, 3},
		{"object is one argument", `{"a": 1}`, 1},
		{"null is empty", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, exec := newTestRouter(t)
			rec := post(t, router, "/api/v2/execute",
				`{"language":"javascript","source_code":"function solve(){}","input":`+tt.input+`}`)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, exec.requests, 1)
			assert.Len(t, exec.requests[0].Arguments, tt.argc)
		})
	}
}

func TestExecuteBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"invalid json", `{"language":`, http.StatusBadRequest, "Invalid JSON request"},
		{"unknown field", `{"language":"c","source_code":"x","files":[]}`, http.StatusBadRequest, "Invalid JSON request"},
		{"missing language", `{"source_code":"x"}`, http.StatusBadRequest, "language is required"},
		{"missing source", `{"language":"c"}`, http.StatusBadRequest, "source_code is required"},
		{"unsupported language", `{"language":"cobol","source_code":"x"}`, http.StatusBadRequest, "unsupported language"},
		{"bad timeout", `{"language":"c","source_code":"x","timeout_ms":0}`, http.StatusBadRequest, "timeout_ms must be positive"},
		{"timeout over limit", `{"language":"c","source_code":"x","timeout_ms":600000}`, http.StatusBadRequest, "cannot exceed"},
		{"version without probe", `{"language":"c","source_code":"x","version":">=9"}`, http.StatusServiceUnavailable, "no c runtime available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, exec := newTestRouter(t)
			rec := post(t, router, "/api/v2/execute", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			var resp types.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Message, tt.message)
			assert.Equal(t, tt.status, resp.Code)
			assert.Empty(t, exec.requests)
		})
	}
}

func TestValidate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := post(t, router, "/api/v2/validate", `{
		"language": "java",
		"source_code": "class Solution { int solve(int x) { return x; } }",
		"test_cases": [
			{"input": [1], "expectedOutput": 1},
			{"input": [2], "output": 3}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var verdict types.Verdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.False(t, verdict.Passed)
	assert.Equal(t, 1, verdict.PassedCount)
	assert.Equal(t, 2, verdict.TotalCount)
	assert.Equal(t, "1/2 passed", verdict.Message)
}

func TestValidateNoTestCases(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := post(t, router, "/api/v2/validate", `{"language":"c","source_code":"int solve(void){return 0;}","test_cases":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var verdict types.Verdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.False(t, verdict.Passed)
	assert.Equal(t, "no test cases provided", verdict.Message)
}

func dial(t *testing.T, router http.Handler) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v2/connect"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketStreamsResults(t *testing.T) {
	router, _ := newTestRouter(t)
	conn := dial(t, router)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "init",
		"payload": map[string]interface{}{
			"language":    "cpp",
			"source_code": "int solve(int x) { return x; }",
			"test_cases": []map[string]interface{}{
				{"input": []int{1}, "expectedOutput": 1},
				{"input": []int{2}, "expectedOutput": 2},
			},
		},
	}))

	var kinds []string
	for i := 0; i < 3; i++ {
		var msg types.WebSocketMessage
		require.NoError(t, conn.ReadJSON(&msg))
		kinds = append(kinds, msg.Type)

		if msg.Type == MessageVerdict {
			var verdict types.Verdict
			require.NoError(t, json.Unmarshal(msg.Payload, &verdict))
			assert.True(t, verdict.Passed)
			assert.Equal(t, "2/2 passed", verdict.Message)
		}
	}
	assert.Equal(t, []string{MessageResult, MessageResult, MessageVerdict}, kinds)
}

func TestWebSocketRejectsUnknownMessage(t *testing.T) {
	router, _ := newTestRouter(t)
	conn := dial(t, router)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "signal"}))

	var msg types.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, msg.Error, "Unknown message type")
}

func TestWebSocketInvalidSubmission(t *testing.T) {
	router, _ := newTestRouter(t)
	conn := dial(t, router)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    "init",
		"payload": map[string]string{"language": "brainfuck", "source_code": "+"},
	}))

	var msg types.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, msg.Error, "unsupported language")
}
