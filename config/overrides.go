package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TemplateOverrides is the yaml template-mapping override file: operator
// mappings from account subtype (optionally qualified with a class, e.g.
// "Local/Unix") to a target template name. Entries here win over the
// built-in tables.
type TemplateOverrides struct {
	// Templates maps "<subtype>" or "<subtype>/<class>" to a template
	// name.
	Templates map[string]string `yaml:"templates"`
}

// LoadTemplateOverrides reads a yaml override file. path == "" yields nil
// overrides without error.
func LoadTemplateOverrides(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading template overrides: %w", err)
	}
	var o TemplateOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing template overrides %s: %w", path, err)
	}
	return o.Templates, nil
}
