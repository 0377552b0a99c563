package caller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ProcResult is the captured outcome of one subprocess run.
type ProcResult struct {
	Stdout  []byte
	Stderr  []byte
	Retcode int
}

// ProcRunner spawns a command with a payload on stdin and a bounded
// timeout. It is the seam tests use to substitute subprocess execution.
type ProcRunner interface {
	Run(ctx context.Context, argv []string, stdin []byte, timeout time.Duration) (*ProcResult, error)
}

// ExecRunner runs commands with os/exec. The timeout is enforced through
// the context; on expiry the process is killed and a timeout error is
// returned.
type ExecRunner struct{}

// Run implements ProcRunner.
func (ExecRunner) Run(ctx context.Context, argv []string, stdin []byte, timeout time.Duration) (*ProcResult, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("command %s timed out after %s", argv[0], timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", argv[0], err)
		}
		return &ProcResult{
			Stdout:  stdout.Bytes(),
			Stderr:  stderr.Bytes(),
			Retcode: exitErr.ExitCode(),
		}, nil
	}
	return &ProcResult{
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
		Retcode: 0,
	}, nil
}
