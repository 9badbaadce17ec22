package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Parkside-Labs/evalgate/internal/engine"
)

// EngineModel is one model entry in the evaluation engine's own config file.
type EngineModel struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label,omitempty"`
}

// EngineConfig is the subset of the evaluation engine's YAML configuration
// that the wrapper reads: the configured model list, used to validate model
// identifiers and to size preview estimates. The engine owns this file; the
// wrapper never writes it.
type EngineConfig struct {
	Models []EngineModel `yaml:"models"`
}

// LoadEngineConfig reads and decodes the engine's configuration file.
// Failures are classified as engine.ErrConfig so the preview path can
// surface them distinctly.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrConfig, err)
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrConfig, err)
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("%w: no models configured in %s", engine.ErrConfig, path)
	}
	return &cfg, nil
}

// ModelIDs returns the configured model identifiers in file order.
func (c *EngineConfig) ModelIDs() []string {
	ids := make([]string, 0, len(c.Models))
	for _, m := range c.Models {
		ids = append(ids, m.ID)
	}
	return ids
}
