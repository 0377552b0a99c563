// Package resolver discovers installed Ansible module files and maps dotted
// module names to their on-disk locations.
//
// The registry is built once at construction time by walking the configured
// search roots. After construction it is immutable, so concurrent lookups
// need no locking.
package resolver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolver answers dotted-name queries against a registry of discovered
// Ansible module files.
type Resolver struct {
	modules map[string]string // dotted name -> absolute file path
	names   []string          // registry keys, sorted
	logger  *zap.Logger
}

// New builds a resolver by scanning the given search roots. Roots are
// scanned concurrently; within the merged registry a later root wins on
// duplicate names. Roots that do not exist are skipped.
func New(roots []string, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(roots) == 0 {
		return nil, ErrNoSearchRoots
	}

	maps := make([]map[string]string, len(roots))
	var eg errgroup.Group
	for i, root := range roots {
		i, root := i, root
		eg.Go(func() error {
			m, err := scanRoot(root)
			if err != nil {
				return fmt.Errorf("scan %s: %w", root, err)
			}
			maps[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Merge in root order so the last root wins on collisions.
	merged := make(map[string]string)
	for _, m := range maps {
		for name, path := range m {
			merged[name] = path
		}
	}

	r := &Resolver{
		modules: merged,
		names:   sortedKeys(merged),
		logger:  logger,
	}
	logger.Debug("module registry built",
		zap.Int("modules", len(merged)),
		zap.Strings("roots", roots))
	return r, nil
}

// NewFromRegistry builds a resolver from an existing name -> path mapping.
// The mapping is copied; the caller keeps no handle into the registry.
func NewFromRegistry(registry map[string]string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	modules := make(map[string]string, len(registry))
	for name, path := range registry {
		modules[name] = path
	}
	return &Resolver{
		modules: modules,
		names:   sortedKeys(modules),
		logger:  logger,
	}
}

// Len returns the number of registered modules.
func (r *Resolver) Len() int {
	return len(r.modules)
}

// GetModulesList returns the sorted dotted names matching prefix. A name
// matches when prefix is a substring of the full name, or when any
// dot-delimited trailing slice of the name starts with prefix (for a.b.c
// the slices are a.b.c, b.c and c). An empty prefix returns every name.
func (r *Resolver) GetModulesList(prefix string) []string {
	if prefix == "" {
		out := make([]string, len(r.names))
		copy(out, r.names)
		return out
	}
	out := make([]string, 0, len(r.names))
	for _, name := range r.names {
		if nameMatches(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// LoadModule looks up a dotted name and loads the file it maps to. A name
// absent from the registry fails with ErrModuleNotFound; a registered name
// whose file cannot be loaded fails with a *LoadError instead.
func (r *Resolver) LoadModule(name string) (*Module, error) {
	path, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return loadFile(name, path)
}

func nameMatches(name, prefix string) bool {
	if strings.Contains(name, prefix) {
		return true
	}
	parts := strings.Split(name, ".")
	for i := 1; i < len(parts); i++ {
		if strings.HasPrefix(strings.Join(parts[i:], "."), prefix) {
			return true
		}
	}
	return false
}

// scanRoot walks one search root and records every unit file keyed by the
// dotted name derived from its location relative to the root.
func scanRoot(root string) (map[string]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return map[string]string{}, nil
	}

	found := make(map[string]string)
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := d.Name()
		if d.IsDir() {
			if path != abs && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "__")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "__") {
			return nil
		}
		if filepath.Ext(base) != ".py" {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		found[dottedName(rel)] = path
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// dottedName turns a root-relative unit file path into a dotted module name.
// The extension is stripped, and a single leading underscore on the file
// name is dropped (Ansible's deprecated-module convention).
func dottedName(rel string) string {
	rel = strings.TrimSuffix(rel, ".py")
	parts := strings.Split(rel, string(filepath.Separator))
	last := parts[len(parts)-1]
	if strings.HasPrefix(last, "_") {
		parts[len(parts)-1] = last[1:]
	}
	return strings.Join(parts, ".")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Global resolver instance for convenience, mirroring the typical
// process-wide singleton use.
var (
	globalMu       sync.RWMutex
	globalResolver *Resolver
)

// Global returns the process-wide resolver, or nil if none was set.
func Global() *Resolver {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalResolver
}

// SetGlobal installs the process-wide resolver.
func SetGlobal(r *Resolver) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalResolver = r
}
