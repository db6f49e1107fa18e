package policy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type document struct {
	Rules []Rule `yaml:"rules"`
}

// Parse reads a rule table from YAML. Rule order in the document is the
// evaluation order.
func Parse(data []byte) (*Policy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("unmarshal policy: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("policy has no rules")
	}
	return New(doc.Rules)
}

func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	return Parse(data)
}

// Load returns the policy at path, or the built-in table when path is empty.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

func Marshal(p *Policy) ([]byte, error) {
	return yaml.Marshal(document{Rules: p.Rules()})
}
