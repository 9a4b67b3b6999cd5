package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coderunr/judge/internal/types"
)

const (
	// DefaultOutputMaxSize caps each of stdout and stderr
	DefaultOutputMaxSize = 1 << 20

	// waitDelay bounds how long Wait keeps draining pipes after a kill
	waitDelay = 500 * time.Millisecond
)

// Runner executes commands inside a workspace
type Runner struct {
	OutputMaxSize int
	logger        *logrus.Entry
}

// NewRunner creates a runner capping captured output at outputMaxSize bytes
func NewRunner(outputMaxSize int) *Runner {
	if outputMaxSize <= 0 {
		outputMaxSize = DefaultOutputMaxSize
	}
	return &Runner{
		OutputMaxSize: outputMaxSize,
		logger:        logrus.WithField("component", "sandbox"),
	}
}

// Result is the outcome of one subprocess
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Signal    string
	TimedOut  bool
	Truncated bool
	Duration  time.Duration
}

// Compile runs a compiler. A nonzero exit or an expired deadline is a
// CompileError carrying the compiler's diagnostics.
func (r *Runner) Compile(ctx context.Context, ws *Workspace, argv []string, timeout time.Duration) (*Result, error) {
	res, err := r.exec(ctx, ws, "compile", argv, timeout)
	if err != nil {
		return nil, err
	}
	if res.TimedOut {
		return res, types.Errorf(types.KindCompileError, "compilation timed out")
	}
	if res.ExitCode != 0 {
		return res, types.Errorf(types.KindCompileError, "%s", diagnostics(res))
	}
	return res, nil
}

// Run executes a program. An expired deadline is a Timeout and a nonzero
// exit a RuntimeError carrying stderr.
func (r *Runner) Run(ctx context.Context, ws *Workspace, argv []string, timeout time.Duration) (*Result, error) {
	res, err := r.exec(ctx, ws, "run", argv, timeout)
	if err != nil {
		return nil, err
	}
	if res.TimedOut {
		return res, types.Errorf(types.KindTimeout, "execution timed out after %s", timeout)
	}
	if res.ExitCode != 0 {
		return res, types.Errorf(types.KindRuntimeError, "%s", diagnostics(res))
	}
	return res, nil
}

func (r *Runner) exec(ctx context.Context, ws *Workspace, stage string, argv []string, timeout time.Duration) (*Result, error) {
	if len(argv) == 0 {
		return nil, types.Errorf(types.KindInternalError, "empty %s command", stage)
	}

	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, types.Wrap(err, types.KindToolchainUnavailable, "toolchain unavailable: %s", argv[0])
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, argv[1:]...)
	cmd.Dir = ws.Dir
	cmd.Env = append(os.Environ(), "HOME="+ws.Dir)
	cmd.WaitDelay = waitDelay
	isolate(cmd)

	stdout := &limitedBuffer{max: r.OutputMaxSize}
	stderr := &limitedBuffer{max: r.OutputMaxSize}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger := ws.logger.WithField("stage", stage)
	logger.WithField("argv", argv).Debug("Starting process")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, types.Wrap(err, types.KindInternalError, "failed to start %s", argv[0])
	}
	waitErr := cmd.Wait()

	res := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode(cmd, waitErr),
		Truncated: stdout.truncated || stderr.truncated,
		Duration:  time.Since(start),
	}
	if sig, ok := signalOf(cmd); ok {
		res.Signal = signalToString(sig)
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
	case ctx.Err() != nil:
		return nil, types.Wrap(ctx.Err(), types.KindInternalError, "%s canceled", stage)
	}

	logger.WithFields(logrus.Fields{
		"exit_code": res.ExitCode,
		"signal":    res.Signal,
		"timed_out": res.TimedOut,
		"duration":  res.Duration,
	}).Debug("Process finished")

	return res, nil
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			return code
		}
	}
	if waitErr != nil {
		return -1
	}
	return 0
}

// diagnostics picks the text explaining a failed process
func diagnostics(res *Result) string {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(res.Stdout); msg != "" {
		return msg
	}
	if res.Signal != "" {
		return fmt.Sprintf("process terminated by %s", res.Signal)
	}
	return fmt.Sprintf("process exited with code %d", res.ExitCode)
}

// limitedBuffer keeps the first max bytes written and drops the rest
type limitedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room < len(p) {
		if room > 0 {
			b.buf.Write(p[:room])
		}
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}

// signalToString converts a signal to its conventional name
func signalToString(sig syscall.Signal) string {
	signals := map[int]string{
		1: "SIGHUP", 2: "SIGINT", 3: "SIGQUIT", 4: "SIGILL", 5: "SIGTRAP",
		6: "SIGABRT", 7: "SIGBUS", 8: "SIGFPE", 9: "SIGKILL", 10: "SIGUSR1",
		11: "SIGSEGV", 12: "SIGUSR2", 13: "SIGPIPE", 14: "SIGALRM", 15: "SIGTERM",
	}

	if name, exists := signals[int(sig)]; exists {
		return name
	}
	return fmt.Sprintf("SIG%d", int(sig))
}
