package sim

import (
	"math/rand"

	"diffusion-sim/internal/timeseries"
)

// Pressure coefficients.
const (
	neighborPressure = 0.1
	strengthPressure = 0.4
)

// AdoptionChance returns the probability that a country with the given number
// of adopted neighbors adopts this year. Values outside [0,1] are returned
// unclamped; the Bernoulli draw treats them as impossible or certain.
func AdoptionChance(adoptedNeighbors int, strength, resistance float64) float64 {
	pressure := float64(adoptedNeighbors)*neighborPressure + strength*strengthPressure
	return pressure - resistance
}

// step decides one year of transitions. status is the start-of-year snapshot
// and is not modified; the returned adopters are in registry order.
func (s *Simulator) step(rng *rand.Rand, status map[string]timeseries.Status, strength float64) []string {
	var adopters []string
	for _, c := range s.countries {
		if status[c.Name] != timeseries.StatusSusceptible {
			continue
		}
		count := 0
		for _, nb := range s.graph.Neighbors(c.Name) {
			if status[nb.Name] == timeseries.StatusAdopted {
				count++
			}
		}
		if count == 0 {
			continue
		}
		if rng.Float64() < AdoptionChance(count, strength, c.Resistance) {
			adopters = append(adopters, c.Name)
		}
	}
	return adopters
}
