package timew

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner runs a timewarrior subcommand and returns its stdout.
// A non-zero exit must be reported as an error.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs the timewarrior binary as a child process.
type ExecRunner struct {
	Binary string
}

// NewExecRunner returns a Runner for the given binary ("timew" if empty).
func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = "timew"
	}
	return &ExecRunner{Binary: binary}
}

// Run executes the binary with args.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	slog.Debug("RUN", "cmd", r.Binary, "args", args)

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s %s: exit code %d: %s",
				r.Binary, strings.Join(args, " "), exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%s %s: %w", r.Binary, strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}
