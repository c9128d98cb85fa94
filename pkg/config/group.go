package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
)

// Group is an ordered authenticator configuration group. In YAML it is a
// mapping from authenticator name to a record:
//
//	authenticators:
//	  my_db:
//	    authenticator: database
//	    options: {...}
//	  corp:
//	    class: acme-ldap.LDAPAuthenticator
//	    options: {...}
//
// Values that are not mappings are kept with Record unset and ignored by the
// registry.
type Group []authenticator.Entry

type record struct {
	Class         string         `yaml:"class"`
	Authenticator string         `yaml:"authenticator"`
	Options       map[string]any `yaml:"options"`
}

// UnmarshalYAML decodes the mapping keeping the order of its keys
func (g *Group) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*g = Group{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: authenticator group must be a mapping", node.Line)
	}

	group := make(Group, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name := key.Value
		if seen[name] {
			return fmt.Errorf("line %d: authenticator %q is defined twice", key.Line, name)
		}
		seen[name] = true

		if value.Kind != yaml.MappingNode {
			group = append(group, authenticator.Entry{Name: name})
			continue
		}

		var rec record
		if err := value.Decode(&rec); err != nil {
			return fmt.Errorf("authenticator %q: %w", name, err)
		}
		group = append(group, authenticator.Entry{
			Name:          name,
			Class:         rec.Class,
			Authenticator: rec.Authenticator,
			Options:       authenticator.Options(rec.Options),
			Record:        true,
		})
	}
	*g = group
	return nil
}

// Names returns the names of the configured records, in order
func (g Group) Names() []string {
	names := make([]string, 0, len(g))
	for _, entry := range g {
		if entry.Record {
			names = append(names, entry.Name)
		}
	}
	return names
}
