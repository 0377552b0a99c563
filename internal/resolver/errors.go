package resolver

import (
	"errors"
	"fmt"
)

// Resolver errors.
var (
	// ErrModuleNotFound is returned when a dotted name is not in the registry.
	ErrModuleNotFound = errors.New("module not found in registry")

	// ErrNoSearchRoots is returned when a resolver is built with no usable roots.
	ErrNoSearchRoots = errors.New("no module search roots configured")
)

// LoadError is returned when a module is present in the registry but its
// file cannot be loaded. It is deliberately distinct from ErrModuleNotFound
// so callers can tell resolution failures and load failures apart.
type LoadError struct {
	Name string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load module %s (%s): %v", e.Name, e.Path, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}
