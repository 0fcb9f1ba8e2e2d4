package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

type runStatus int

const (
	runOK runStatus = iota
	runExitError
	runTimedOut
	runStartError
)

// runResult classifies the outcome of one external process invocation.
// Output holds trimmed stdout on success, and a failure description otherwise.
type runResult struct {
	status runStatus
	output string
}

// run invokes an external command with its own deadline. The deadline is
// derived from context.Background(), not the request context: a client
// disconnect does not cancel in-flight recognition.
func run(timeout time.Duration, bin string, args ...string) runResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "bin", bin, "args", args)

	err := cmd.Run()
	if err == nil {
		return runResult{status: runOK, output: strings.TrimSpace(stdout.String())}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return runResult{status: runTimedOut, output: "Processing timed out"}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return runResult{status: runExitError, output: strings.TrimSpace(stderr.String())}
	}

	// Command never started (binary missing, permission denied, ...).
	return runResult{status: runStartError, output: err.Error()}
}
