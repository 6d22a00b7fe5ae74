// Package config loads the optional .stax.yml project configuration file
// (spec.md's "Configuration" ambient concern): the default --onto ref,
// default output mode, and the graph rendering engine.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GraphEngine names a graph rendering engine. The value is validated on
// load but not read by any command: "stax stack graph" always prints raw
// Graphviz dot source, whichever engine is configured.
type GraphEngine string

const (
	// GraphEngineDot names raw Graphviz dot source.
	GraphEngineDot GraphEngine = "dot"

	// GraphEngineSVG names SVG output. No command renders SVG.
	GraphEngineSVG GraphEngine = "svg"
)

// Graph holds the "graph" section of .stax.yml.
type Graph struct {
	Engine GraphEngine `yaml:"engine"`
}

// Config is the parsed form of .stax.yml.
type Config struct {
	// DefaultOnto is the base ref (the --onto value) used when the CLI
	// isn't given --onto.
	DefaultOnto string `yaml:"default_onto"`

	// DefaultJSON selects JSON output by default when the CLI isn't given
	// --json explicitly.
	DefaultJSON bool `yaml:"default_json"`

	Graph Graph `yaml:"graph"`
}

// Default returns the configuration stax runs with when no .stax.yml is
// present.
func Default() *Config {
	return &Config{
		DefaultOnto: "HEAD",
		DefaultJSON: false,
		Graph:       Graph{Engine: GraphEngineDot},
	}
}

// Unmarshal parses raw as a .stax.yml document, starting from Default and
// overlaying whatever fields raw sets.
func Unmarshal(raw []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("invalid .stax.yml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads and parses the .stax.yml file at path. A missing file is not
// an error: Load returns Default() instead.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg, err := Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Graph.Engine {
	case GraphEngineDot, GraphEngineSVG:
	default:
		return fmt.Errorf("graph.engine: unknown value %q (want dot or svg)", c.Graph.Engine)
	}

	if c.DefaultOnto == "" {
		return fmt.Errorf("default_onto: must not be empty")
	}

	return nil
}
