// Package gate is the host-facing entry point layer. It wires the module
// resolver, the module caller and the playbook runner together behind the
// calling convention a configuration-management agent expects.
package gate

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"ansiblegate/internal/caller"
	"ansiblegate/internal/config"
	"ansiblegate/internal/playbook"
	"ansiblegate/internal/resolver"
)

// ErrUnavailable is returned when the Ansible toolchain is not installed.
var ErrUnavailable = errors.New("ansible is not installed on this host")

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// Gate exposes the adapter's operations to the host. With watch_roots
// enabled lookups are served from the watcher's current snapshot; otherwise
// from the one-shot registry built at construction.
type Gate struct {
	cfg      *config.Config
	static   *resolver.Resolver
	watcher  *resolver.Watcher
	caller   *caller.Caller
	playbook *playbook.Runner
	logger   *zap.Logger
}

// New builds a gate from config: checks toolchain availability, scans the
// search roots and wires the caller and playbook runner. When
// cfg.WatchRoots is set the registry is kept fresh by a root watcher until
// Close is called.
func New(cfg *config.Config, logger *zap.Logger) (*Gate, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := checkAvailable(cfg); err != nil {
		return nil, err
	}

	g := &Gate{
		cfg:      cfg,
		playbook: playbook.New(playbook.ExecCommand, cfg.PlaybookBin, logger),
		logger:   logger,
	}
	if cfg.WatchRoots {
		w, err := resolver.NewWatcher(cfg.SearchRoots, logger)
		if err != nil {
			return nil, fmt.Errorf("build module registry: %w", err)
		}
		if err := w.Start(context.Background()); err != nil {
			return nil, fmt.Errorf("watch search roots: %w", err)
		}
		g.watcher = w
	} else {
		res, err := resolver.New(cfg.SearchRoots, logger)
		if err != nil {
			return nil, fmt.Errorf("build module registry: %w", err)
		}
		g.static = res
	}
	resolver.SetGlobal(g.Resolver())

	// The gate itself is the loader so calls always hit the current
	// registry snapshot.
	g.caller = caller.New(g, caller.Options{
		Python:  cfg.PythonBin,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, logger)
	return g, nil
}

// Close stops the registry watcher, if one is running.
func (g *Gate) Close() {
	if g.watcher != nil {
		g.watcher.Stop()
	}
}

// checkAvailable reports ErrUnavailable unless the interpreter and the
// playbook runner are both on PATH.
func checkAvailable(cfg *config.Config) error {
	for _, bin := range []string{cfg.PythonBin, cfg.PlaybookBin} {
		if _, err := lookPath(bin); err != nil {
			return fmt.Errorf("%w: %s not found", ErrUnavailable, bin)
		}
	}
	return nil
}

// Resolver returns the current registry snapshot.
func (g *Gate) Resolver() *resolver.Resolver {
	if g.watcher != nil {
		return g.watcher.Resolver()
	}
	return g.static
}

// LoadModule implements caller.ModuleLoader against the current snapshot.
func (g *Gate) LoadModule(name string) (*resolver.Module, error) {
	return g.Resolver().LoadModule(name)
}

// List returns the registered module names matching prefix; an empty prefix
// lists everything.
func (g *Gate) List(prefix string) []string {
	return g.Resolver().GetModulesList(prefix)
}

// Call invokes one module with positional and keyword arguments.
// timeout <= 0 means the configured default.
func (g *Gate) Call(ctx context.Context, name string, args []string, kwargs map[string]any, timeout time.Duration) (map[string]any, error) {
	if timeout > 0 {
		return g.caller.Call(ctx, name, args, kwargs, caller.WithTimeout(timeout))
	}
	return g.caller.Call(ctx, name, args, kwargs)
}

// Playbooks runs one playbook through the command-execution collaborator.
func (g *Gate) Playbooks(ctx context.Context, pb string, opts playbook.Options) (map[string]any, error) {
	return g.playbook.Run(ctx, pb, opts)
}
