// Package caller invokes resolved Ansible modules as subprocesses,
// translating arguments into the module-args JSON envelope and decoding
// stdout back into a result map.
package caller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ansiblegate/internal/resolver"
)

// DefaultTimeout bounds a single module invocation.
const DefaultTimeout = 1200 * time.Second

// DefaultPython is the interpreter modules are executed with.
const DefaultPython = "python3"

// ModuleLoader resolves a dotted name to a loaded module handle.
type ModuleLoader interface {
	LoadModule(name string) (*resolver.Module, error)
}

// Options configures a Caller. Zero values fall back to defaults.
type Options struct {
	// Runner executes subprocesses. Defaults to ExecRunner.
	Runner ProcRunner

	// Python is the interpreter binary. Defaults to DefaultPython.
	Python string

	// Timeout bounds each invocation unless overridden per call.
	// Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Caller executes Ansible modules resolved through a ModuleLoader.
// Each Call spawns one subprocess and blocks until it exits or the
// timeout elapses; no state is shared between calls.
type Caller struct {
	loader  ModuleLoader
	runner  ProcRunner
	python  string
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Caller around the given loader.
func New(loader ModuleLoader, opts Options, logger *zap.Logger) *Caller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Python == "" {
		opts.Python = DefaultPython
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Caller{
		loader:  loader,
		runner:  opts.Runner,
		python:  opts.Python,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// CallOption adjusts a single invocation.
type CallOption func(*callConfig)

type callConfig struct {
	timeout time.Duration
}

// WithTimeout overrides the caller's timeout for one invocation. The
// result reports the limit in whole seconds, rounded up.
func WithTimeout(d time.Duration) CallOption {
	return func(c *callConfig) {
		c.timeout = d
	}
}

// timeoutSeconds reports a timeout in whole seconds, rounding sub-second
// remainders up so a short limit never shows as 0.
func timeoutSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// Call resolves name, serializes args/kwargs into the module-args envelope,
// executes the module and returns its decoded stdout. Resolver failures
// propagate unchanged; execution and parse failures propagate undecorated.
// The returned map always carries "retcode" and "timeout" (seconds).
func (c *Caller) Call(ctx context.Context, name string, args []string, kwargs map[string]any, opts ...CallOption) (map[string]any, error) {
	cfg := callConfig{timeout: c.timeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	mod, err := c.loader.LoadModule(name)
	if err != nil {
		return nil, err
	}

	envelope, err := buildEnvelope(args, kwargs)
	if err != nil {
		return nil, fmt.Errorf("serialize arguments for %s: %w", name, err)
	}

	invocation := uuid.NewString()
	c.logger.Debug("invoking module",
		zap.String("module", name),
		zap.String("invocation", invocation),
		zap.Bool("native", mod.HasMain()),
		zap.Duration("timeout", cfg.timeout))

	var proc *ProcResult
	if mod.HasMain() {
		// Native convention: the module reads the envelope from stdin.
		proc, err = c.runner.Run(ctx, []string{c.python, mod.Path}, envelope, cfg.timeout)
	} else {
		// Legacy convention: an echo of the envelope is piped into the
		// module process.
		var echoed *ProcResult
		echoed, err = c.runner.Run(ctx, []string{"echo", string(envelope)}, nil, cfg.timeout)
		if err == nil {
			proc, err = c.runner.Run(ctx, []string{c.python, mod.Path}, echoed.Stdout, cfg.timeout)
		}
	}
	if err != nil {
		c.logger.Warn("module invocation failed",
			zap.String("module", name),
			zap.String("invocation", invocation),
			zap.Error(err))
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(proc.Stdout, &result); err != nil {
		c.logger.Warn("module produced invalid JSON output",
			zap.String("module", name),
			zap.String("invocation", invocation))
		return nil, fmt.Errorf("module %s produced invalid JSON output: %w", name, err)
	}

	// Ansible echoes the parsed arguments back; the host does not want them.
	delete(result, "invocation")

	if _, ok := result["retcode"]; !ok {
		result["retcode"] = proc.Retcode
	}
	result["timeout"] = timeoutSeconds(cfg.timeout)

	c.logger.Debug("module finished",
		zap.String("module", name),
		zap.String("invocation", invocation),
		zap.Int("retcode", proc.Retcode))
	return result, nil
}
