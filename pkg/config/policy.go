package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opsdesk/opsdesk/pkg/records"
)

// policyFile is the on-disk shape of the record policy document
type policyFile struct {
	Records records.Policy `yaml:"records"`
}

// LoadPolicy reads the record mutation policy from a YAML file.
// An empty path returns the default policy (any staff member may mutate
// any record).
func LoadPolicy(path string) (records.Policy, error) {
	if path == "" {
		return records.Policy{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return records.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return records.Policy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}

	return file.Records, nil
}
