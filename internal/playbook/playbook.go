// Package playbook shells out to ansible-playbook through the host's
// command-execution collaborator and relays the result map back.
package playbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// DefaultForks matches the ansible-playbook default.
const DefaultForks = 5

// ErrNoRetcode is returned when the command executor reports no exit status.
var ErrNoRetcode = errors.New("command executor returned no retcode")

// CommandRunner is the host's generic command-execution facility. It runs
// argv in rundir (empty means the current directory) and returns a mapping
// carrying at least "retcode" and "stdout".
type CommandRunner func(ctx context.Context, rundir string, argv []string) (map[string]any, error)

// Options mirror the ansible-playbook flags the gate exposes.
type Options struct {
	Rundir      string
	Check       bool
	Diff        bool
	FlushCache  bool
	SyntaxCheck bool
	Forks       int
	Inventory   string
	Limit       string
	Tags        []string
	SkipTags    []string
	StartAtTask string
	ExtraVars   map[string]any
}

// Runner invokes playbooks.
type Runner struct {
	run    CommandRunner
	bin    string
	logger *zap.Logger
}

// New creates a playbook runner around the given command executor.
// bin defaults to "ansible-playbook".
func New(run CommandRunner, bin string, logger *zap.Logger) *Runner {
	if bin == "" {
		bin = "ansible-playbook"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{run: run, bin: bin, logger: logger}
}

// Run executes one playbook. The returned mapping is the executor's result,
// with parsed JSON stdout merged in when the playbook produced any; it
// always includes "retcode".
func (r *Runner) Run(ctx context.Context, playbook string, opts Options) (map[string]any, error) {
	if playbook == "" {
		return nil, errors.New("playbook path is required")
	}
	argv, err := r.commandLine(playbook, opts)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("running playbook",
		zap.String("playbook", playbook),
		zap.Strings("argv", argv))

	out, err := r.run(ctx, opts.Rundir, argv)
	if err != nil {
		return nil, err
	}
	retcode, ok := out["retcode"]
	if !ok {
		return nil, fmt.Errorf("%w: playbook %s", ErrNoRetcode, playbook)
	}

	// Playbooks run with the JSON stdout callback produce a structured
	// report; surface it directly when present.
	if stdout, ok := out["stdout"].(string); ok {
		var report map[string]any
		if json.Unmarshal([]byte(stdout), &report) == nil && report != nil {
			report["retcode"] = retcode
			return report, nil
		}
	}
	return out, nil
}

func (r *Runner) commandLine(playbook string, opts Options) ([]string, error) {
	argv := []string{r.bin, playbook}
	if opts.Check {
		argv = append(argv, "--check")
	}
	if opts.Diff {
		argv = append(argv, "--diff")
	}
	if opts.FlushCache {
		argv = append(argv, "--flush-cache")
	}
	if opts.SyntaxCheck {
		argv = append(argv, "--syntax-check")
	}
	forks := opts.Forks
	if forks <= 0 {
		forks = DefaultForks
	}
	argv = append(argv, "--forks", strconv.Itoa(forks))
	if opts.Inventory != "" {
		argv = append(argv, "--inventory", opts.Inventory)
	}
	if opts.Limit != "" {
		argv = append(argv, "--limit", opts.Limit)
	}
	for _, tag := range opts.Tags {
		argv = append(argv, "--tags", tag)
	}
	for _, tag := range opts.SkipTags {
		argv = append(argv, "--skip-tags", tag)
	}
	if opts.StartAtTask != "" {
		argv = append(argv, "--start-at-task", opts.StartAtTask)
	}
	if len(opts.ExtraVars) > 0 {
		vars, err := json.Marshal(opts.ExtraVars)
		if err != nil {
			return nil, fmt.Errorf("serialize extra vars: %w", err)
		}
		argv = append(argv, "--extra-vars", string(vars))
	}
	return argv, nil
}
