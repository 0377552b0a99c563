// Package config loads ansiblegate configuration from a YAML file, applies
// environment overrides and fills in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTimeoutSeconds bounds a single module invocation.
const DefaultTimeoutSeconds = 1200

// Config holds all ansiblegate settings.
type Config struct {
	// SearchRoots are the directories scanned for Ansible module files.
	SearchRoots []string `yaml:"search_roots"`

	// PythonBin is the interpreter modules are executed with.
	PythonBin string `yaml:"python_bin"`

	// PlaybookBin is the playbook runner binary.
	PlaybookBin string `yaml:"playbook_bin"`

	// TimeoutSeconds bounds each module invocation.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// WatchRoots enables the registry watcher.
	WatchRoots bool `yaml:"watch_roots"`
}

// Default returns the built-in configuration: Ansible's conventional module
// locations, python3 and the standard 1200 second invocation timeout.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file and applies env overrides and defaults.
// A missing file is not an error; overrides and defaults still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to overrides and defaults.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnvOverrides applies environment variables over file values.
// ANSIBLE_LIBRARY follows Ansible's own convention; ANSIBLEGATE_* are
// gate-specific.
func (c *Config) applyEnvOverrides() {
	if roots := os.Getenv("ANSIBLEGATE_ROOTS"); roots != "" {
		c.SearchRoots = filepath.SplitList(roots)
	} else if library := os.Getenv("ANSIBLE_LIBRARY"); library != "" {
		c.SearchRoots = filepath.SplitList(library)
	}
	if python := os.Getenv("ANSIBLEGATE_PYTHON"); python != "" {
		c.PythonBin = python
	}
	if timeout := os.Getenv("ANSIBLEGATE_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(timeout)); err == nil && secs > 0 {
			c.TimeoutSeconds = secs
		}
	}
}

// applyDefaults fills in anything still unset.
func (c *Config) applyDefaults() {
	if len(c.SearchRoots) == 0 {
		c.SearchRoots = defaultSearchRoots()
	}
	if c.PythonBin == "" {
		c.PythonBin = "python3"
	}
	if c.PlaybookBin == "" {
		c.PlaybookBin = "ansible-playbook"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// defaultSearchRoots mirrors Ansible's standard library locations.
func defaultSearchRoots() []string {
	roots := []string{"/usr/share/ansible/plugins/modules"}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append([]string{filepath.Join(home, ".ansible", "plugins", "modules")}, roots...)
	}
	return roots
}
