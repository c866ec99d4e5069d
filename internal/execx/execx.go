// Package execx isolates all subprocess invocation behind a single narrow
// interface so the lifecycle orchestrator and state prober can be exercised
// against fakes without spawning real processes.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/Spartan-Cybersecurity/HackTheCloud25/pkg/errors"
)

// Spec describes one subprocess invocation.
type Spec struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the inherited process environment.
	Env map[string]string
	// Timeout bounds the wall clock; zero means no limit.
	Timeout time.Duration
	// Interactive hands the terminal to the child so the operator can answer
	// its own prompts. Nothing is captured in this mode.
	Interactive bool
}

// Command renders the invocation for logs and error messages.
func (s Spec) Command() string {
	return strings.Join(append([]string{s.Name}, s.Args...), " ")
}

// Result captures the outcome of a subprocess run. Stdout and Stderr are
// empty for interactive runs.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes subprocesses. The error is a TimeoutError when the wall
// clock expired, an ExecutionError for a non-zero exit, or the raw start
// failure (e.g. binary not found).
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

type osRunner struct{}

// NewRunner returns the production Runner backed by os/exec.
func NewRunner() Runner {
	return osRunner{}
}

func (osRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	runCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = buildEnv(spec.Env)

	var stdout, stderr bytes.Buffer
	if spec.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Stdout:   strings.TrimRight(stdout.String(), "\n"),
		Stderr:   strings.TrimRight(stderr.String(), "\n"),
		Duration: time.Since(start),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return result, pkgerrors.NewTimeoutError(spec.Command(), spec.Timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, pkgerrors.NewExecutionError(spec.Command(), result.Stderr, err)
		}
		// Start failures (missing binary, permission) carry no exit code.
		result.ExitCode = -1
		return result, fmt.Errorf("starting %s: %w", spec.Command(), err)
	}

	return result, nil
}

func buildEnv(custom map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, custom[k]))
	}
	return env
}

// IsNotFound reports whether err came from a missing executable.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
