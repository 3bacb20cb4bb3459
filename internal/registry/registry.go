// Package registry loads and validates scenario documents (spec.md §6's
// "keyed map name → ScenarioConfig") from TOML files on disk.
package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"golang.org/x/exp/slices"

	"github.com/talgya/cooperationsim/internal/config"
)

// Registry holds validated scenario configs keyed by name.
type Registry struct {
	scenarios map[string]*config.ScenarioConfig
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{scenarios: make(map[string]*config.ScenarioConfig)}
}

// Register validates cfg and adds it under cfg.Name, replacing any prior
// entry with the same name.
func (r *Registry) Register(cfg *config.ScenarioConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("registry: invalid scenario %q: %w", cfg.Name, err)
	}
	r.scenarios[cfg.Name] = cfg
	return nil
}

// Get looks up a scenario by name.
func (r *Registry) Get(name string) (*config.ScenarioConfig, bool) {
	cfg, ok := r.scenarios[name]
	return cfg, ok
}

// Names returns all registered scenario names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadFile decodes a single TOML scenario document and registers it.
func (r *Registry) LoadFile(path string) error {
	var cfg config.ScenarioConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fmt.Errorf("registry: decode %s: %w", path, err)
	}
	return r.Register(&cfg)
}

// LoadDir decodes every *.toml file directly under dir and registers them.
// Loading stops at the first invalid or malformed document.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("registry: read dir %s: %w", dir, err)
	}

	r := New()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			return nil, err
		}
	}
	return r, nil
}
