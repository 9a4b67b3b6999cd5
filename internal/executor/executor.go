// Package executor runs one submission against one argument list: it picks
// the entry point, renders a harness, compiles and runs it in a fresh
// workspace and extracts the printed result.
package executor

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coderunr/judge/internal/entry"
	"github.com/coderunr/judge/internal/extract"
	"github.com/coderunr/judge/internal/harness"
	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/runtime"
	"github.com/coderunr/judge/internal/sandbox"
	"github.com/coderunr/judge/internal/types"
)

// Defaults applied when Options leaves a duration unset
const (
	DefaultTimeout        = 5 * time.Second
	DefaultCompileTimeout = 10 * time.Second
)

// State is a step of an execution
type State string

const (
	StateResolving    State = "resolving"
	StateMarshalling  State = "marshalling"
	StateSynthesizing State = "synthesizing"
	StateCompiling    State = "compiling"
	StateRunning      State = "running"
	StateExtracting   State = "extracting"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Options configures an Executor
type Options struct {
	Registry       *Registry
	Workspaces     *sandbox.Manager
	Runner         *sandbox.Runner
	DefaultTimeout time.Duration
	CompileTimeout time.Duration
	Logger         *logrus.Entry
}

// Executor executes single requests. It keeps no per-request state and is
// safe for concurrent use.
type Executor struct {
	registry       *Registry
	workspaces     *sandbox.Manager
	runner         *sandbox.Runner
	defaultTimeout time.Duration
	compileTimeout time.Duration
	logger         *logrus.Entry
}

// New creates an executor
func New(opts Options) *Executor {
	e := &Executor{
		registry:       opts.Registry,
		workspaces:     opts.Workspaces,
		runner:         opts.Runner,
		defaultTimeout: opts.DefaultTimeout,
		compileTimeout: opts.CompileTimeout,
		logger:         opts.Logger,
	}
	if e.defaultTimeout <= 0 {
		e.defaultTimeout = DefaultTimeout
	}
	if e.compileTimeout <= 0 {
		e.compileTimeout = DefaultCompileTimeout
	}
	if e.runner == nil {
		e.runner = sandbox.NewRunner(0)
	}
	if e.logger == nil {
		e.logger = logrus.WithField("component", "executor")
	}
	return e
}

// execution carries one request through the state machine
type execution struct {
	req    types.ExecutionRequest
	state  State
	logger *logrus.Entry
}

func (x *execution) transition(to State) {
	x.logger.WithFields(logrus.Fields{"from": x.state, "to": to}).Debug("Execution state changed")
	x.state = to
}

// Execute runs the request and reports the outcome. Failures of any kind,
// including panics, come back as an unsuccessful result rather than an error.
func (e *Executor) Execute(ctx context.Context, req types.ExecutionRequest) (result types.ExecutionResult) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Timeout <= 0 {
		req.Timeout = e.defaultTimeout
	}

	x := &execution{
		req:    req,
		state:  StateResolving,
		logger: e.logger.WithFields(logrus.Fields{"request_id": req.ID, "language": req.Language}),
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			x.logger.WithField("panic", r).Errorf("Execution panicked\n%s", debug.Stack())
			result = failure(types.Errorf(types.KindInternalError, "internal error: %v", r), nil)
		}
		result.Duration = time.Since(start)
	}()

	res, proc, err := e.execute(ctx, x)
	if err != nil {
		x.transition(StateFailed)
		x.logger.WithError(err).WithField("kind", types.KindOf(err)).Debug("Execution failed")
		return failure(err, proc)
	}
	x.transition(StateDone)
	return res
}

func (e *Executor) execute(ctx context.Context, x *execution) (types.ExecutionResult, *sandbox.Result, error) {
	req := x.req

	// Resolving
	backend, err := e.registry.Backend(req.Language)
	if err != nil {
		return types.ExecutionResult{}, nil, err
	}

	var candidate entry.Candidate
	candidates, err := entry.Resolve(req.Language, req.SourceCode)
	switch {
	case err == nil:
		candidate, err = entry.Select(candidates, len(req.Arguments))
		if err != nil {
			return types.ExecutionResult{}, nil, err
		}
		x.logger.WithField("entry", candidate.Name).Debug("Entry point selected")
	case entry.HasMain(req.Language, req.SourceCode):
		// the program drives itself
	default:
		return types.ExecutionResult{}, nil, err
	}

	// Marshalling
	x.transition(StateMarshalling)
	args := make([]jsonval.Value, len(req.Arguments))
	for i, raw := range req.Arguments {
		v, err := jsonval.Parse(raw)
		if err != nil {
			return types.ExecutionResult{}, nil, types.Wrap(err, types.KindUnsupportedInputShape, "argument %d is not valid JSON", i)
		}
		args[i] = v
	}
	var expected *jsonval.Value
	if len(req.ExpectedOutput) > 0 {
		if v, err := jsonval.Parse(req.ExpectedOutput); err == nil {
			expected = &v
		}
	}

	// Synthesizing
	x.transition(StateSynthesizing)
	prog, err := backend.Template.Render(harness.Input{
		Source:     req.SourceCode,
		Candidate:  candidate,
		Candidates: candidates,
		Arguments:  args,
		Expected:   expected,
	})
	if err != nil {
		return types.ExecutionResult{}, nil, err
	}

	ws, err := e.workspaces.NewWorkspace()
	if err != nil {
		return types.ExecutionResult{}, nil, types.Wrap(err, types.KindInternalError, "")
	}
	defer ws.Close()

	if err := ws.WriteFile(prog.SourceFile, prog.Source); err != nil {
		return types.ExecutionResult{}, nil, types.Wrap(err, types.KindInternalError, "")
	}
	for name, content := range prog.Files {
		if err := ws.WriteFile(name, content); err != nil {
			return types.ExecutionResult{}, nil, types.Wrap(err, types.KindInternalError, "")
		}
	}

	vars := map[string]string{
		runtime.PlaceholderSource: ws.Path(prog.SourceFile),
		runtime.PlaceholderBinary: ws.Path(prog.Artifact),
		runtime.PlaceholderDir:    ws.Dir,
		runtime.PlaceholderMain:   prog.Artifact,
	}

	// Compiling
	if backend.Toolchain.Compiled() {
		x.transition(StateCompiling)
		argv, err := runtime.Expand(backend.Toolchain.Compile, vars)
		if err != nil {
			return types.ExecutionResult{}, nil, types.Wrap(err, types.KindInternalError, "")
		}
		if res, err := e.runner.Compile(ctx, ws, argv, e.compileTimeout); err != nil {
			return types.ExecutionResult{}, res, err
		}
	}

	// Running
	x.transition(StateRunning)
	argv, err := runtime.Expand(backend.Toolchain.Run, vars)
	if err != nil {
		return types.ExecutionResult{}, nil, types.Wrap(err, types.KindInternalError, "")
	}
	res, err := e.runner.Run(ctx, ws, argv, req.Timeout)
	if err != nil {
		if types.KindOf(err) == types.KindTimeout {
			res = nil
		}
		return types.ExecutionResult{}, res, err
	}

	// Extracting
	x.transition(StateExtracting)
	value, err := extract.Extract(res.Stdout)
	if err != nil {
		return types.ExecutionResult{}, res, err
	}
	if prog.Envelope {
		value = extract.Unwrap(value)
	}

	return types.ExecutionResult{
		Success: true,
		Output:  value.Raw(),
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
	}, res, nil
}

// failure converts an error into an unsuccessful result
func failure(err error, res *sandbox.Result) types.ExecutionResult {
	out := types.ExecutionResult{
		Success: false,
		Error:   err.Error(),
		Kind:    types.KindOf(err),
	}
	if out.Error == "" {
		out.Error = string(out.Kind)
	}
	if res != nil {
		out.Stdout = res.Stdout
		out.Stderr = res.Stderr
	}
	return out
}
