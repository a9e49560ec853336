// Package decoder runs the external caption extraction engine as a subprocess.
package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrTimeout is returned when the decoder exceeds its time budget.
	ErrTimeout = errors.New("decoder timed out")
	// ErrFailure is returned when the decoder exits nonzero without output, or cannot start.
	ErrFailure = errors.New("decoder failed")
)

// waitDelay bounds how long Wait blocks on pipes after the process is killed.
const waitDelay = 2 * time.Second

// Error carries the captured diagnostics of a failed run.
type Error struct {
	Kind     error
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v (exit %d)", e.Kind, e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if tail := tailLines(e.Stderr, 3); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Output is the captured result of a decoder run.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ArgsFunc builds the decoder's argument list for one input file.
type ArgsFunc func(filePath string) []string

// Invoker launches the decoder binary with arguments built per file.
type Invoker struct {
	binary  string
	args    ArgsFunc
	timeout time.Duration
}

// New constructs an Invoker for a ccextractor-style decoder:
// <binary> <file> <stdoutFlag>.
func New(binary, stdoutFlag string, timeout time.Duration) (*Invoker, error) {
	return newInvoker(binary, timeout, func(filePath string) []string {
		if stdoutFlag == "" {
			return []string{filePath}
		}
		return []string{filePath, stdoutFlag}
	})
}

func newInvoker(binary string, timeout time.Duration, args ArgsFunc) (*Invoker, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("decoder binary required")
	}
	if timeout <= 0 {
		return nil, errors.New("decoder timeout must be positive")
	}
	return &Invoker{binary: binary, args: args, timeout: timeout}, nil
}

// Invoke runs the decoder against filePath and returns its stdout.
//
// A nonzero exit with non-empty stdout is treated as usable partial output.
// On timeout the whole process group is killed before returning ErrTimeout.
func (i *Invoker) Invoke(ctx context.Context, filePath string) (Output, error) {
	runCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, i.binary, i.args(filePath)...) //nolint:gosec
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout bytes.Buffer
	stderr := newTailBuffer(maxStderrBytes)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return out, &Error{Kind: ErrTimeout, ExitCode: out.ExitCode, Stderr: out.Stderr,
			Err: fmt.Errorf("exceeded %s", i.timeout)}
	}
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return out, &Error{Kind: ErrFailure, ExitCode: -1, Stderr: out.Stderr, Err: err}
	}
	if strings.TrimSpace(out.Stdout) == "" {
		return out, &Error{Kind: ErrFailure, ExitCode: out.ExitCode, Stderr: out.Stderr}
	}

	log.Printf("Warning: decoder exited %d for %s, using partial output: %s",
		out.ExitCode, filePath, tailLines(out.Stderr, 3))
	return out, nil
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
