package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// Result holds the outcome of a shell command.
type Result struct {
	ExitCode int
	Output   string
}

// RunCommand executes command via bash in dir with the BLOCKS_ environment
// for in. Variables in command are read from that environment by the shell,
// so their values are never interpreted as shell syntax. Combined output is
// captured and also copied to out when non-nil.
func RunCommand(ctx context.Context, command, dir string, in Input, out io.Writer) (*Result, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", EnvRefs(command, in.Vars()))
	cmd.Dir = dir
	cmd.Env = BuildEnv(in)

	var captured bytes.Buffer
	var w io.Writer = &captured
	if out != nil {
		w = io.MultiWriter(out, &captured)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	code, err := exitCode(cmd.Run())
	if err != nil {
		return nil, err
	}
	return &Result{ExitCode: code, Output: captured.String()}, nil
}

// exitCode extracts an exit code from a command error.
// Returns (code, nil) for ExitError, (0, err) for other errors, (0, nil) for nil.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}
