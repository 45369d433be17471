package plugins

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDescriptorFile is the descriptor looked up in the plugin directory
const DefaultDescriptorFile = "plugin_info.yaml"

// Category selects the descriptor list to search
type Category string

const (
	CategoryToolRunner Category = "toolRunners"
	CategoryResourcer  Category = "resourcers"
)

// Entry maps a step tool to the class and package implementing it
type Entry struct {
	Tool    string `yaml:"tool"`
	Class   string `yaml:"class"`
	Package string `yaml:"package"`
}

// Descriptor is the plugin descriptor document
type Descriptor struct {
	ToolRunners []Entry `yaml:"toolRunners"`
	Resourcers  []Entry `yaml:"resourcers"`
}

// LoadDescriptor reads and parses a descriptor document
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &d, nil
}

// Find returns every entry of category whose tool name matches, ignoring case
func (d *Descriptor) Find(category Category, tool string) []Entry {
	var list []Entry
	switch category {
	case CategoryToolRunner:
		list = d.ToolRunners
	case CategoryResourcer:
		list = d.Resourcers
	}

	var matches []Entry
	for _, e := range list {
		if strings.EqualFold(strings.TrimSpace(e.Tool), strings.TrimSpace(tool)) {
			matches = append(matches, e)
		}
	}
	return matches
}
