package scenario

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"diffusion-sim/internal/logging"
	"diffusion-sim/internal/metrics"
	"diffusion-sim/internal/sim"
)

// Outcome is one finished run of a batch.
type Outcome struct {
	Entry   Entry
	Replica int
	Seed    int64
	Result  *sim.Result
}

// Runner executes scenarios against a shared, read-only simulator. Every run
// gets its own random source seeded from Seed+1 plus its position in the batch,
// so results do not depend on scheduling.
type Runner struct {
	Sim         *sim.Simulator
	Seed        int64
	Concurrency int
	Metrics     *metrics.Metrics
}

func (r *Runner) limit() int {
	if r.Concurrency > 0 {
		return r.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// Run validates s and executes every entry ReplicaCount times. Outcomes are
// returned in entry-then-replica order. The first failure cancels the batch.
func (r *Runner) Run(ctx context.Context, s *Scenario) ([]Outcome, error) {
	if err := s.Validate(r.Sim.Registry()); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)
	reps := s.ReplicaCount()
	out := make([]Outcome, len(s.Runs)*reps)
	log.Info("starting batch", "scenario", s.Name, "entries", len(s.Runs), "replicas", reps, "concurrency", r.limit())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit())
	for i, e := range s.Runs {
		for rep := 0; rep < reps; rep++ {
			idx := i*reps + rep
			// Seed itself built the simulator; runs start one past it.
			seed := r.Seed + 1 + int64(idx)
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				res, err := r.Sim.RunWithSource(ctx, rand.New(rand.NewSource(seed)), e.Origin, e.Strength, e.Years)
				if err != nil {
					r.Metrics.IncrementFailed()
					return fmt.Errorf("run %q replica %d: %w", e.Name, rep, err)
				}
				res.Policy = e.Policy
				adopted, total := res.Reach()
				r.Metrics.ObserveRun(res.Saturated, len(res.Adopters()), res.FinalStep, float64(adopted)/float64(total), time.Since(start))
				out[idx] = Outcome{Entry: e, Replica: rep, Seed: seed, Result: res}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("batch complete", "scenario", s.Name, "runs", len(out))
	return out, nil
}

// Summary aggregates the replicas of one entry.
type Summary struct {
	Entry         Entry   `json:"entry"`
	Runs          int     `json:"runs"`
	Saturated     int     `json:"saturated"`
	MeanReach     float64 `json:"mean_reach_pct"`
	MinReach      int     `json:"min_reach_pct"`
	MaxReach      int     `json:"max_reach_pct"`
	MeanFinalYear float64 `json:"mean_final_year"`
}

// Summarize groups outcomes by entry name, keeping first-seen order.
func Summarize(outcomes []Outcome) []Summary {
	var order []string
	byName := make(map[string]*Summary)
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		s, ok := byName[o.Entry.Name]
		if !ok {
			s = &Summary{Entry: o.Entry, MinReach: 100}
			byName[o.Entry.Name] = s
			order = append(order, o.Entry.Name)
		}
		pct := o.Result.ReachPercent()
		s.Runs++
		if o.Result.Saturated {
			s.Saturated++
		}
		s.MeanReach += float64(pct)
		s.MeanFinalYear += float64(o.Result.EndYear())
		s.MinReach = min(s.MinReach, pct)
		s.MaxReach = max(s.MaxReach, pct)
	}
	out := make([]Summary, 0, len(order))
	for _, name := range order {
		s := byName[name]
		s.MeanReach /= float64(s.Runs)
		s.MeanFinalYear /= float64(s.Runs)
		out = append(out, *s)
	}
	return out
}
