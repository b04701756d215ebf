// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// AliasesFile is the shape of cities.aliases_file.
type AliasesFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// OverlayCityAliases merges the aliases file at path into cfg. Entries in the
// file win over inline ones.
func OverlayCityAliases(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		// Missing aliases file should not kill startup
		return nil
	}

	var af AliasesFile
	if err := yaml.Unmarshal(b, &af); err != nil {
		return err
	}

	if len(af.Aliases) == 0 {
		return nil
	}
	if cfg.Cities.Aliases == nil {
		cfg.Cities.Aliases = make(map[string]string, len(af.Aliases))
	}
	for k, v := range af.Aliases {
		cfg.Cities.Aliases[k] = v
	}
	return nil
}
