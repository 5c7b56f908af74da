package weave

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for weaving.
type Config struct {
	// BeforeNames are the method names classified into the before role.
	BeforeNames []string `json:"before_names" yaml:"before_names"`

	// AfterNames are the method names classified into the after role.
	AfterNames []string `json:"after_names" yaml:"after_names"`

	// FinallyNames are the method names classified into the finally role.
	FinallyNames []string `json:"finally_names" yaml:"finally_names"`

	// Concurrency is the maximum number of chains woven in parallel.
	// Values below 1 weave chains sequentially.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// DefaultConfig returns a Config with the conventional method names.
func DefaultConfig() Config {
	return Config{
		BeforeNames:  []string{"Before", "BeforeAsync", "Load", "LoadAsync", "Validate", "ValidateAsync"},
		AfterNames:   []string{"After", "AfterAsync", "PostProcess", "PostProcessAsync"},
		FinallyNames: []string{"Finally", "FinallyAsync"},
		Concurrency:  1,
	}
}

// ParseConfig decodes a YAML document over DefaultConfig and validates
// the result. Keys missing from the document keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("weave: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports an error if a method name is allow-listed for more
// than one lifecycle role.
func (c Config) Validate() error {
	seen := make(map[string]string)
	roles := []struct {
		role  string
		names []string
	}{
		{"before", c.BeforeNames},
		{"after", c.AfterNames},
		{"finally", c.FinallyNames},
	}
	for _, r := range roles {
		for _, name := range r.names {
			if prev, ok := seen[name]; ok && prev != r.role {
				return fmt.Errorf("%w: %q is listed for both %s and %s", ErrOverlappingRoles, name, prev, r.role)
			}
			seen[name] = r.role
		}
	}
	return nil
}
