// Simulator orchestrating the registry, influence graph and diffusion runs
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"diffusion-sim/internal/config"
	"diffusion-sim/internal/country"
	"diffusion-sim/internal/logging"
	"diffusion-sim/internal/network"
	"diffusion-sim/internal/timeseries"
)

// ErrInvalidOrigin is returned when the requested origin is not a known country.
var ErrInvalidOrigin = errors.New("invalid origin country")

// DefaultBaseYear labels step 0 of every run.
const DefaultBaseYear = 2025

// Options configures a simulator built from a country table.
type Options struct {
	BaseYear   int
	Network    network.Params
	Resistance country.Options
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		BaseYear:   DefaultBaseYear,
		Network:    network.DefaultParams(),
		Resistance: country.DefaultOptions(),
	}
}

// Simulator owns a registry and the influence graph built from it. Both are
// read-only after construction. The simulator's random source is shared by
// Run calls and serialized by mu.
type Simulator struct {
	registry  *country.Registry
	graph     *network.Graph
	countries []country.Country
	baseYear  int
	rng       *rand.Rand
	mu        sync.Mutex
}

// New builds the registry and graph from specs, drawing resistances and then
// cross-region edges from rng. rng stays with the simulator for later runs.
func New(specs []country.Spec, rng *rand.Rand, opts Options) (*Simulator, error) {
	reg, err := country.NewRegistry(specs, rng, opts.Resistance)
	if err != nil {
		return nil, err
	}
	g, err := network.Build(reg.Countries(), rng, opts.Network)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	baseYear := opts.BaseYear
	if baseYear == 0 {
		baseYear = DefaultBaseYear
	}
	return &Simulator{
		registry:  reg,
		graph:     g,
		countries: reg.Countries(),
		baseYear:  baseYear,
		rng:       rng,
	}, nil
}

// NewSimulator initializes a simulator from the loaded configuration. A zero
// seed draws one from the clock.
func NewSimulator(cfg *config.SimulationConfig) (*Simulator, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	specs := cfg.Countries
	if len(specs) == 0 {
		specs = country.DefaultSpecs()
	}
	return New(specs, rand.New(rand.NewSource(seed)), Options{
		BaseYear: cfg.BaseYear,
		Network: network.Params{
			RegionalWeight:         cfg.Network.RegionalWeight,
			CrossRegionWeight:      cfg.Network.CrossRegionWeight,
			CrossRegionProbability: cfg.Network.CrossRegionProbability,
		},
		Resistance: country.Options{
			ResistanceMin: cfg.Resistance.Min,
			ResistanceMax: cfg.Resistance.Max,
		},
	})
}

// Registry returns the country registry.
func (s *Simulator) Registry() *country.Registry { return s.registry }

// Graph returns the influence graph.
func (s *Simulator) Graph() *network.Graph { return s.graph }

// Countries returns the country table in registry order.
func (s *Simulator) Countries() []country.Country {
	out := make([]country.Country, len(s.countries))
	copy(out, s.countries)
	return out
}

// BaseYear returns the calendar year of step 0.
func (s *Simulator) BaseYear() int { return s.baseYear }

// Run simulates diffusion from origin using the simulator's own random source.
// Concurrent calls are serialized.
func (s *Simulator) Run(ctx context.Context, origin string, strength float64, years int) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, s.rng, origin, strength, years)
}

// RunWithSource simulates diffusion using a caller-owned random source. rng
// must not be shared with another goroutine during the call.
func (s *Simulator) RunWithSource(ctx context.Context, rng *rand.Rand, origin string, strength float64, years int) (*Result, error) {
	return s.run(ctx, rng, origin, strength, years)
}

func (s *Simulator) run(ctx context.Context, rng *rand.Rand, origin string, strength float64, years int) (*Result, error) {
	log := logging.FromContext(ctx)
	if !s.graph.Has(origin) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}

	runID := uuid.New().String()
	log.Debug("starting run", "run_id", runID, "origin", origin, "strength", strength, "years", years)

	status := make(map[string]timeseries.Status, len(s.countries))
	for _, c := range s.countries {
		status[c.Name] = timeseries.StatusSusceptible
	}
	status[origin] = timeseries.StatusAdopted

	rec := timeseries.NewRecorder(runID, s.baseYear, s.countries)
	rec.Snapshot(0, status)
	events := []timeseries.Event{timeseries.NewInitiatedEvent(runID, s.baseYear, origin)}

	res := &Result{
		RunID:     runID,
		Origin:    origin,
		Strength:  strength,
		Years:     years,
		BaseYear:  s.baseYear,
		Countries: len(s.countries),
	}

	adopted := 1
	for step := 1; step <= years; step++ {
		newAdopters := s.step(rng, status, strength)
		year := rec.Year(step)
		for _, name := range newAdopters {
			status[name] = timeseries.StatusAdopted
			events = append(events, timeseries.NewAdoptedEvent(runID, step, year, name))
		}
		adopted += len(newAdopters)
		rec.Snapshot(step, status)
		res.FinalStep = step

		if adopted == len(s.countries) {
			events = append(events, timeseries.NewSaturatedEvent(runID, step, year))
			res.Saturated = true
			break
		}
	}

	res.Records = rec.Records()
	res.Events = events
	log.Info("run complete", "run_id", runID, "origin", origin, "final_year", res.EndYear(), "adopted", adopted, "saturated", res.Saturated)
	return res, nil
}
