// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"diffusion-sim/internal/country"
	"diffusion-sim/internal/network"
)

// Reference defaults.
const (
	DefaultPolicy   = "New Regulation Protocol"
	DefaultBaseYear = 2025
	DefaultOrigin   = "United States"
	DefaultStrength = 0.5
	DefaultYears    = 15
	DefaultLogLevel = "info"
)

// NetworkConfig tunes the influence graph.
type NetworkConfig struct {
	RegionalWeight         float64 `yaml:"regional_weight"`
	CrossRegionWeight      float64 `yaml:"cross_region_weight"`
	CrossRegionProbability float64 `yaml:"cross_region_probability"`
}

// ResistanceConfig bounds the uniform resistance draw.
type ResistanceConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// RunConfig holds the default run parameters used by the CLI.
type RunConfig struct {
	Origin   string  `yaml:"origin"`
	Strength float64 `yaml:"strength"`
	Years    int     `yaml:"years"`
}

// SimulationConfig is the root configuration for the registry, network and runs
type SimulationConfig struct {
	Policy     string           `yaml:"policy"`
	Seed       int64            `yaml:"seed"`
	BaseYear   int              `yaml:"base_year"`
	LogLevel   string           `yaml:"log_level"`
	Network    NetworkConfig    `yaml:"network"`
	Resistance ResistanceConfig `yaml:"resistance"`
	Run        RunConfig        `yaml:"run"`
	Countries  []country.Spec   `yaml:"countries"`
}

// Default returns the reference configuration with the built-in country table.
func Default() *SimulationConfig {
	return &SimulationConfig{
		Policy:   DefaultPolicy,
		BaseYear: DefaultBaseYear,
		LogLevel: DefaultLogLevel,
		Network: NetworkConfig{
			RegionalWeight:         network.DefaultRegionalWeight,
			CrossRegionWeight:      network.DefaultCrossRegionWeight,
			CrossRegionProbability: network.DefaultCrossRegionProbability,
		},
		Resistance: ResistanceConfig{
			Min: country.DefaultResistanceMin,
			Max: country.DefaultResistanceMax,
		},
		Run: RunConfig{
			Origin:   DefaultOrigin,
			Strength: DefaultStrength,
			Years:    DefaultYears,
		},
	}
}

// Load reads a YAML config over the defaults after validating it against the
// CUE schema. An empty schemaPath selects the embedded schema.
func Load(configPath, schemaPath string) (*SimulationConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	schema := defaultSchema
	if schemaPath != "" {
		if schema, err = os.ReadFile(schemaPath); err != nil {
			return nil, fmt.Errorf("cannot read CUE schema: %w", err)
		}
	}
	if err := ValidateWithCue(configPath, data, schema); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the schema cannot express.
func (c *SimulationConfig) Validate() error {
	if c.Resistance.Max <= c.Resistance.Min {
		return fmt.Errorf("resistance.max %.2f must exceed resistance.min %.2f", c.Resistance.Max, c.Resistance.Min)
	}
	if len(c.Countries) > 0 {
		if err := country.Validate(c.Countries); err != nil {
			return err
		}
	}
	specs := c.Countries
	if len(specs) == 0 {
		specs = country.DefaultSpecs()
	}
	if c.Run.Origin != "" {
		for _, s := range specs {
			if s.Name == c.Run.Origin {
				return nil
			}
		}
		return fmt.Errorf("run.origin %q is not in the country table", c.Run.Origin)
	}
	return nil
}
