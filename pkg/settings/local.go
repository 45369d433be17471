package settings

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLocalSettingsFile is the offline settings document looked up in the manager directory
const DefaultLocalSettingsFile = "ManagerSettingsLocal.yaml"

// LoadLocalParams reads a name/value parameter document. The document is
// either a flat mapping or a mapping with a top-level "params" key.
func LoadLocalParams(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	values, err := ParseParams(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return values, nil
}

// ParseParams decodes a name/value parameter document. Scalars are kept
// exactly as written, so 0755 stays "0755" and 1.10 stays "1.10".
func ParseParams(data []byte) (map[string]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document must be a mapping")
	}
	if len(root.Content) == 2 && root.Content[0].Value == "params" {
		nested := resolveAlias(root.Content[1])
		if nested.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("params must be a mapping")
		}
		root = nested
	}

	values := make(map[string]string, len(root.Content)/2)
	seen := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		k := strings.ToLower(strings.TrimSpace(name))
		if k == "" {
			return nil, fmt.Errorf("parameter with empty name")
		}
		if prev, dup := seen[k]; dup {
			return nil, fmt.Errorf("parameter %q defined twice (also as %q)", name, prev)
		}
		seen[k] = name

		value, err := scalarString(root.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		values[name] = value
	}
	return values, nil
}

// WriteParams writes values as a flat YAML mapping sorted by name
func WriteParams(path string, values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range names {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: values[name], Style: yaml.DoubleQuotedStyle},
		)
	}

	data, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// scalarString returns the literal text of a scalar node. Null is empty.
func scalarString(n *yaml.Node) (string, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("value must be a scalar")
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return n.Value, nil
}
