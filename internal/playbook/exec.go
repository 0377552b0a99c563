package playbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ExecCommand is the default CommandRunner. It mirrors the host facility's
// contract: run argv, capture output and always report a retcode for
// processes that actually ran.
func ExecCommand(ctx context.Context, rundir string, argv []string) (map[string]any, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = rundir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	retcode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", argv[0], err)
		}
		retcode = exitErr.ExitCode()
	}
	return map[string]any{
		"retcode": retcode,
		"stdout":  stdout.String(),
		"stderr":  stderr.String(),
	}, nil
}
