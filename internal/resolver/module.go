package resolver

import (
	"os"
	"strings"
)

// Module is a loaded Ansible module file. It exposes just enough of the
// target file for the caller layer to pick an invocation convention and for
// the help layer to reach the embedded documentation.
type Module struct {
	// Name is the dotted name the module was registered under.
	Name string

	// Path is the absolute path to the module file.
	Path string

	hasMain bool
	doc     string
}

// HasMain reports whether the module declares a top-level main() entry
// point, i.e. whether it follows the native stdin-JSON convention.
func (m *Module) HasMain() bool {
	return m.hasMain
}

// Documentation returns the module's embedded DOCUMENTATION block, or ""
// when the module carries none.
func (m *Module) Documentation() string {
	return m.doc
}

// loadFile reads and inspects a module file. Any failure is wrapped in a
// *LoadError carrying the underlying cause.
func loadFile(name, path string) (*Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Name: name, Path: path, Err: err}
	}
	return &Module{
		Name:    name,
		Path:    path,
		hasMain: hasMainEntryPoint(string(src)),
		doc:     extractDocumentation(string(src)),
	}, nil
}

// hasMainEntryPoint scans for a top-level zero/variadic-argument main
// function declaration.
func hasMainEntryPoint(src string) bool {
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(line, "def main(") {
			return true
		}
	}
	return false
}

// extractDocumentation pulls the triple-quoted DOCUMENTATION string out of
// the module source. Ansible modules declare it as a module-level constant;
// raw-string and single-quote variants are accepted.
func extractDocumentation(src string) string {
	rest := src
	for {
		idx := strings.Index(rest, "DOCUMENTATION")
		if idx < 0 {
			return ""
		}
		if idx > 0 && rest[idx-1] != '\n' {
			rest = rest[idx+len("DOCUMENTATION"):]
			continue
		}
		after := rest[idx+len("DOCUMENTATION"):]
		eq := strings.Index(after, "=")
		if eq < 0 {
			return ""
		}
		after = strings.TrimLeft(after[eq+1:], " \t\r\n")
		after = strings.TrimPrefix(after, "r")
		for _, quote := range []string{`"""`, "'''"} {
			if strings.HasPrefix(after, quote) {
				body := after[len(quote):]
				if end := strings.Index(body, quote); end >= 0 {
					return body[:end]
				}
				return ""
			}
		}
		return ""
	}
}
