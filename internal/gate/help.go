package gate

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"ansiblegate/internal/resolver"
)

// Help loads a module and digests its DOCUMENTATION block into the section
// mapping the host presents to users.
func (g *Gate) Help(name string) (map[string]any, error) {
	mod, err := g.LoadModule(name)
	if err != nil {
		return nil, err
	}
	return moduleHelp(mod)
}

// moduleHelp merges every YAML document inside DOCUMENTATION into one
// section map. Chunks that fail to parse are skipped; modules often embed
// prose around the YAML.
func moduleHelp(mod *resolver.Module) (map[string]any, error) {
	doc := make(map[string]any)
	for _, chunk := range strings.Split(mod.Documentation(), "---") {
		var section map[string]any
		if err := yaml.Unmarshal([]byte(chunk), &section); err != nil {
			continue
		}
		for k, v := range section {
			doc[k] = v
		}
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("no documentation found on module %s", mod.Name)
	}

	description := doc["description"]
	delete(doc, "description")

	sections := make([]string, 0, len(doc))
	for k := range doc {
		sections = append(sections, k)
	}
	sort.Strings(sections)

	return map[string]any{
		fmt.Sprintf("Available sections on module %q", mod.Name): sections,
		"Description": description,
	}, nil
}
