package policy

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlDocument mirrors Document with rules as a YAML mapping.
type yamlDocument struct {
	Name        string                 `yaml:"name"`
	Description *string                `yaml:"description"`
	Rules       map[string]interface{} `yaml:"rules"`
}

// ParseYAML reads a policy document written in YAML. Unknown keys are
// rejected.
func ParseYAML(r io.Reader) (Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlDocument
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, fmt.Errorf("policy document is empty")
		}
		return Document{}, fmt.Errorf("failed to parse policy: %w", err)
	}

	out := Document{Name: doc.Name, Description: doc.Description}
	if doc.Rules != nil {
		rules, err := json.Marshal(doc.Rules)
		if err != nil {
			return Document{}, fmt.Errorf("policy rules are not representable as JSON: %w", err)
		}
		out.Rules = rules
	}
	return out, nil
}

// MarshalYAML renders doc with its rules expanded, the inverse of ParseYAML.
func (d Document) MarshalYAML() (interface{}, error) {
	out := yamlDocument{Name: d.Name, Description: d.Description}
	if len(d.Rules) > 0 {
		if err := json.Unmarshal(d.Rules, &out.Rules); err != nil {
			return nil, err
		}
	}
	return out, nil
}
