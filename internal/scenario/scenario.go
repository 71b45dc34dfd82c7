package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"diffusion-sim/internal/country"
)

// Parameter bounds shared with the HTTP surface.
const (
	MinStrength = 0.1
	MaxStrength = 1.0
	MinYears    = 1
	MaxYears    = 100
)

// ErrInvalidScenario is returned when a scenario cannot be run as written.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a named batch of runs sharing one simulator.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Replicas    int     `yaml:"replicas,omitempty"`
	Runs        []Entry `yaml:"runs"`
}

// Entry describes one parameter set in a batch.
type Entry struct {
	Name     string  `yaml:"name"`
	Policy   string  `yaml:"policy,omitempty"`
	Origin   string  `yaml:"origin"`
	Strength float64 `yaml:"strength"`
	Years    int     `yaml:"years"`
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &s, nil
}

// ReplicaCount returns the number of runs per entry, at least one.
func (s *Scenario) ReplicaCount() int {
	if s.Replicas < 1 {
		return 1
	}
	return s.Replicas
}

// Validate checks every entry against the registry and parameter bounds.
func (s *Scenario) Validate(reg *country.Registry) error {
	if len(s.Runs) == 0 {
		return fmt.Errorf("%w: no runs", ErrInvalidScenario)
	}
	seen := make(map[string]bool, len(s.Runs))
	for i, e := range s.Runs {
		if e.Name == "" {
			return fmt.Errorf("%w: run %d has no name", ErrInvalidScenario, i)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: duplicate run name %q", ErrInvalidScenario, e.Name)
		}
		seen[e.Name] = true
		if _, ok := reg.Lookup(e.Origin); !ok {
			return fmt.Errorf("%w: run %q: unknown origin %q", ErrInvalidScenario, e.Name, e.Origin)
		}
		if e.Strength < MinStrength || e.Strength > MaxStrength {
			return fmt.Errorf("%w: run %q: strength %.2f outside [%.1f, %.1f]", ErrInvalidScenario, e.Name, e.Strength, MinStrength, MaxStrength)
		}
		if e.Years < MinYears || e.Years > MaxYears {
			return fmt.Errorf("%w: run %q: years %d outside [%d, %d]", ErrInvalidScenario, e.Name, e.Years, MinYears, MaxYears)
		}
	}
	return nil
}
