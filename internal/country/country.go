// Package country holds the static country registry that seeds the influence network.
package country

import (
	"errors"
	"fmt"
	"math/rand"
)

// Region is a categorical tag grouping countries into blocs.
type Region string

// Regions recognised by the registry. The set is closed.
const (
	NorthAmerica Region = "North America"
	Europe       Region = "Europe"
	Asia         Region = "Asia"
	Oceania      Region = "Oceania"
	SouthAmerica Region = "South America"
	Africa       Region = "Africa"
	MiddleEast   Region = "Middle East"
)

// Regions lists every valid region in display order.
var Regions = []Region{NorthAmerica, Europe, Asia, Oceania, SouthAmerica, Africa, MiddleEast}

// Valid reports whether r belongs to the closed region set.
func (r Region) Valid() bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}
	return false
}

// Default resistance bounds. Draws fall strictly inside (Min, Max).
const (
	DefaultResistanceMin = 0.1
	DefaultResistanceMax = 0.6
)

// ErrInvalidRegistry is returned when a country table cannot form a registry.
var ErrInvalidRegistry = errors.New("invalid country registry")

// Country is one immutable registry entry.
type Country struct {
	Name       string  `json:"name"`
	ISO        string  `json:"iso"`
	Region     Region  `json:"region"`
	Resistance float64 `json:"resistance"`
}

// Spec describes a country before resistance is assigned. A non-nil
// Resistance is used as-is instead of drawing from the random source.
type Spec struct {
	Name       string   `yaml:"name" json:"name"`
	ISO        string   `yaml:"iso" json:"iso"`
	Region     Region   `yaml:"region" json:"region"`
	Resistance *float64 `yaml:"resistance,omitempty" json:"resistance,omitempty"`
}

// Registry is the validated, read-only country table.
type Registry struct {
	countries []Country
	byName    map[string]int
	byISO     map[string]int
}

// Options tune resistance draws.
type Options struct {
	ResistanceMin float64
	ResistanceMax float64
}

// DefaultOptions returns the reference resistance interval.
func DefaultOptions() Options {
	return Options{ResistanceMin: DefaultResistanceMin, ResistanceMax: DefaultResistanceMax}
}

// NewRegistry validates specs and draws one resistance per country, in table
// order, from rng. Any malformed entry rejects the whole table.
func NewRegistry(specs []Spec, rng *rand.Rand, opts Options) (*Registry, error) {
	if err := Validate(specs); err != nil {
		return nil, err
	}
	if opts.ResistanceMax <= opts.ResistanceMin {
		return nil, fmt.Errorf("%w: resistance max %.2f must exceed min %.2f", ErrInvalidRegistry, opts.ResistanceMax, opts.ResistanceMin)
	}
	r := &Registry{
		countries: make([]Country, 0, len(specs)),
		byName:    make(map[string]int, len(specs)),
		byISO:     make(map[string]int, len(specs)),
	}
	for i, s := range specs {
		res := 0.0
		if s.Resistance != nil {
			res = *s.Resistance
		} else {
			res = drawResistance(rng, opts.ResistanceMin, opts.ResistanceMax)
		}
		r.countries = append(r.countries, Country{Name: s.Name, ISO: s.ISO, Region: s.Region, Resistance: res})
		r.byName[s.Name] = i
		r.byISO[s.ISO] = i
	}
	return r, nil
}

// drawResistance samples the open interval (min, max).
func drawResistance(rng *rand.Rand, min, max float64) float64 {
	for {
		u := rng.Float64()
		if u > 0 {
			return min + u*(max-min)
		}
	}
}

// Validate checks a country table without drawing any randomness.
func Validate(specs []Spec) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: no countries defined", ErrInvalidRegistry)
	}
	names := make(map[string]bool, len(specs))
	isos := make(map[string]bool, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return fmt.Errorf("%w: country %d has an empty name", ErrInvalidRegistry, i)
		}
		if names[s.Name] {
			return fmt.Errorf("%w: duplicate country name %q", ErrInvalidRegistry, s.Name)
		}
		names[s.Name] = true
		if !validISO(s.ISO) {
			return fmt.Errorf("%w: country %q has invalid ISO code %q", ErrInvalidRegistry, s.Name, s.ISO)
		}
		if isos[s.ISO] {
			return fmt.Errorf("%w: duplicate ISO code %q", ErrInvalidRegistry, s.ISO)
		}
		isos[s.ISO] = true
		if !s.Region.Valid() {
			return fmt.Errorf("%w: country %q has unknown region %q", ErrInvalidRegistry, s.Name, s.Region)
		}
	}
	return nil
}

func validISO(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// Len returns the number of countries.
func (r *Registry) Len() int { return len(r.countries) }

// Countries returns a copy of the table in registry order.
func (r *Registry) Countries() []Country {
	out := make([]Country, len(r.countries))
	copy(out, r.countries)
	return out
}

// Names returns country names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.countries))
	for i, c := range r.countries {
		out[i] = c.Name
	}
	return out
}

// Lookup finds a country by name.
func (r *Registry) Lookup(name string) (Country, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Country{}, false
	}
	return r.countries[i], true
}

// LookupISO finds a country by its ISO code.
func (r *Registry) LookupISO(iso string) (Country, bool) {
	i, ok := r.byISO[iso]
	if !ok {
		return Country{}, false
	}
	return r.countries[i], true
}

// InRegion returns the members of region in registry order.
func (r *Registry) InRegion(region Region) []Country {
	var out []Country
	for _, c := range r.countries {
		if c.Region == region {
			out = append(out, c)
		}
	}
	return out
}
