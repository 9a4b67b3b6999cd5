// Package cli implements the judgectl commands.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/coderunr/judge/internal/executor"
	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/runtime"
	"github.com/coderunr/judge/internal/sandbox"
	"github.com/coderunr/judge/internal/types"
	"github.com/coderunr/judge/internal/validator"
)

// Client is what the commands talk to: a judge server or the in-process core
type Client interface {
	Execute(ctx context.Context, req types.ExecuteRequest) (types.ExecutionResult, error)
	// Validate calls observe after each test case when it is non-nil
	Validate(ctx context.Context, req types.ValidateRequest, observe validator.Observer) (types.Verdict, error)
	Runtimes(ctx context.Context) ([]types.RuntimeInfo, error)
}

// newClient picks the client selected by the global flags
func newClient(cmd *cobra.Command) (Client, error) {
	local, _ := cmd.Flags().GetBool("local")
	if local {
		return newLocalClient()
	}
	url, _ := cmd.Flags().GetString("url")
	return &httpClient{baseURL: url, http: &http.Client{Timeout: 10 * time.Minute}}, nil
}

// httpClient calls a judge server
type httpClient struct {
	baseURL string
	http    *http.Client
}

func (c *httpClient) Execute(ctx context.Context, req types.ExecuteRequest) (types.ExecutionResult, error) {
	var result types.ExecutionResult
	err := c.post(ctx, "/api/v2/execute", req, &result)
	return result, err
}

func (c *httpClient) Validate(ctx context.Context, req types.ValidateRequest, observe validator.Observer) (types.Verdict, error) {
	if observe != nil {
		return streamValidate(ctx, c.baseURL, req, observe)
	}
	var verdict types.Verdict
	err := c.post(ctx, "/api/v2/validate", req, &verdict)
	return verdict, err
}

func (c *httpClient) Runtimes(ctx context.Context) ([]types.RuntimeInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/runtimes", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runtimes: %w", err)
	}
	defer resp.Body.Close()

	var runtimes []types.RuntimeInfo
	if err := decodeResponse(resp, &runtimes); err != nil {
		return nil, err
	}
	return runtimes, nil
}

func (c *httpClient) post(ctx context.Context, path string, body, into interface{}) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, into)
}

func decodeResponse(resp *http.Response, into interface{}) error {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr types.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// localClient runs the judge core in this process
type localClient struct {
	executor  *executor.Executor
	validator *validator.Validator
	runtimes  *runtime.Manager
}

func newLocalClient() (*localClient, error) {
	registry, err := executor.NewRegistry(runtime.Defaults())
	if err != nil {
		return nil, err
	}
	workspaces, err := sandbox.NewManager("")
	if err != nil {
		return nil, err
	}

	exec := executor.New(executor.Options{Registry: registry, Workspaces: workspaces})
	return &localClient{
		executor:  exec,
		validator: validator.New(exec),
		runtimes:  runtime.NewManager(nil),
	}, nil
}

func (c *localClient) Execute(ctx context.Context, req types.ExecuteRequest) (types.ExecutionResult, error) {
	lang, timeout, err := c.prepare(ctx, req.Language, req.Version, req.TimeoutMs)
	if err != nil {
		return types.ExecutionResult{}, err
	}

	args := req.Arguments
	if args == nil {
		values, err := jsonval.Arguments(req.Input)
		if err != nil {
			return types.ExecutionResult{}, err
		}
		for _, v := range values {
			args = append(args, v.Raw())
		}
	}

	return c.executor.Execute(ctx, types.ExecutionRequest{
		SourceCode:     req.SourceCode,
		Language:       lang,
		Arguments:      args,
		Timeout:        timeout,
		ExpectedOutput: req.ExpectedOutput,
	}), nil
}

func (c *localClient) Validate(ctx context.Context, req types.ValidateRequest, observe validator.Observer) (types.Verdict, error) {
	lang, timeout, err := c.prepare(ctx, req.Language, req.Version, req.TimeoutMs)
	if err != nil {
		return types.Verdict{}, err
	}
	return c.validator.Stream(ctx, types.Submission{
		SourceCode: req.SourceCode,
		Language:   lang,
		TestCases:  req.TestCases,
		Timeout:    timeout,
	}, observe), nil
}

func (c *localClient) Runtimes(ctx context.Context) ([]types.RuntimeInfo, error) {
	return c.runtimes.Probe(ctx), nil
}

func (c *localClient) prepare(ctx context.Context, language, version string, timeoutMs *int) (types.Language, time.Duration, error) {
	lang, err := types.ParseLanguage(language)
	if err != nil {
		return "", 0, err
	}
	if version != "" {
		c.runtimes.Probe(ctx)
		if err := c.runtimes.Check(lang, version); err != nil {
			return "", 0, err
		}
	}
	var timeout time.Duration
	if timeoutMs != nil {
		timeout = time.Duration(*timeoutMs) * time.Millisecond
	}
	return lang, timeout, nil
}
