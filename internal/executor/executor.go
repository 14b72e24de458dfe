// Package executor runs a snippet of code as a script in a child process and
// reports what it printed and how it exited.
//
// Failures to run the snippet at all are reported through Result.Err, never
// as a returned error or panic.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"analyst-backend/internal/shared/metrics"
	"analyst-backend/internal/shared/telemetry"
)

const (
	DefaultInterpreter    = "python3"
	DefaultSuffix         = ".py"
	DefaultTimeout        = 60 * time.Second
	DefaultMaxOutputBytes = 1 << 20

	// waitDelay bounds how long Wait blocks on pipes held open by
	// grandchildren after the process group has been killed.
	waitDelay = 2 * time.Second
)

var (
	ErrTimeout  = errors.New("execution timed out")
	ErrLaunch   = errors.New("failed to launch interpreter")
	ErrTempFile = errors.New("failed to write script file")
)

// Config configures an Executor. Zero fields take the package defaults.
type Config struct {
	// Interpreter is the command line that receives the script path as its
	// final argument, e.g. "python3" or "uv run".
	Interpreter    string
	Suffix         string
	Timeout        time.Duration
	MaxOutputBytes int
	TempDir        string
}

// Executor runs scripts with a wall-clock limit.
type Executor struct {
	Interpreter    []string
	Suffix         string
	Timeout        time.Duration
	MaxOutputBytes int
	TempDir        string
}

// New builds an Executor from cfg.
func New(cfg Config) *Executor {
	e := &Executor{
		Interpreter:    strings.Fields(cfg.Interpreter),
		Suffix:         cfg.Suffix,
		Timeout:        cfg.Timeout,
		MaxOutputBytes: cfg.MaxOutputBytes,
		TempDir:        cfg.TempDir,
	}
	if len(e.Interpreter) == 0 {
		e.Interpreter = []string{DefaultInterpreter}
	}
	if e.Suffix == "" {
		e.Suffix = DefaultSuffix
	}
	if e.Timeout <= 0 {
		e.Timeout = DefaultTimeout
	}
	if e.MaxOutputBytes <= 0 {
		e.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return e
}

// RunCode runs code with the default configuration.
func RunCode(code string) Result {
	return New(Config{}).Run(context.Background(), code)
}

// Run writes code to a temporary file, runs it and collects its output. A
// non-zero exit status is reported in ReturnCode and is not an error.
func (e *Executor) Run(ctx context.Context, code string) Result {
	start := time.Now()
	res := e.run(ctx, code)
	res.Duration = time.Since(start)

	outcome := "ok"
	switch {
	case errors.Is(res.Err, ErrTimeout):
		outcome = "timeout"
	case res.Err != nil:
		outcome = "error"
	case res.ReturnCode != 0:
		outcome = "exit_nonzero"
	}
	metrics.IncCodeExecution(outcome)
	telemetry.Info("executor.run", map[string]any{
		"outcome":      outcome,
		"return_code":  res.ReturnCode,
		"duration_ms":  res.Duration.Milliseconds(),
		"stdout_bytes": len(res.Stdout),
		"stderr_bytes": len(res.Stderr),
		"truncated":    res.Truncated,
	})
	return res
}

func (e *Executor) run(ctx context.Context, code string) Result {
	path, err := writeScript(e.TempDir, e.Suffix, code)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %w", ErrTempFile, err)}
	}
	defer os.Remove(path)

	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	args := append(append([]string{}, e.Interpreter[1:]...), path)
	cmd := exec.CommandContext(runCtx, e.Interpreter[0], args...)
	setupProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	stdout := &limitedWriter{limit: e.MaxOutputBytes}
	stderr := &limitedWriter{limit: e.MaxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return Result{Err: fmt.Errorf("%w %q: %w", ErrLaunch, e.Interpreter[0], err)}
	}
	waitErr := cmd.Wait()

	if waitErr != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return Result{Err: fmt.Errorf("%w after %s", ErrTimeout, e.Timeout)}
		}
		if ctx.Err() != nil {
			return Result{Err: ctx.Err()}
		}
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
			return Result{Err: fmt.Errorf("wait: %w", waitErr)}
		}
	}
	return Result{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		ReturnCode: exitCode(cmd.ProcessState),
		Truncated:  stdout.truncated || stderr.truncated,
	}
}

func writeScript(dir, suffix, code string) (string, error) {
	f, err := os.CreateTemp(dir, "snippet-*"+suffix)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
