// Package network builds the undirected influence graph between countries.
package network

import (
	"fmt"
	"math/rand"

	"diffusion-sim/internal/country"
)

// Default edge parameters.
const (
	DefaultRegionalWeight         = 0.9
	DefaultCrossRegionWeight      = 0.3
	DefaultCrossRegionProbability = 0.15
)

// Params controls edge weights and the cross-region inclusion probability.
type Params struct {
	RegionalWeight         float64
	CrossRegionWeight      float64
	CrossRegionProbability float64
}

// DefaultParams returns the reference edge parameters.
func DefaultParams() Params {
	return Params{
		RegionalWeight:         DefaultRegionalWeight,
		CrossRegionWeight:      DefaultCrossRegionWeight,
		CrossRegionProbability: DefaultCrossRegionProbability,
	}
}

// Edge is an undirected weighted tie. A precedes B in registry order.
type Edge struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Weight   float64 `json:"weight"`
	Regional bool    `json:"regional"`
}

// Neighbor is one adjacent country and the weight of the tie.
type Neighbor struct {
	Name   string
	Weight float64
}

// Graph is a simple undirected graph keyed by country name. It is read-only
// once Build returns and may be shared between concurrent runs.
type Graph struct {
	nodes []string
	index map[string]int
	adj   map[string]map[string]float64
	edges []Edge
}

// Build enumerates every unordered pair once, in registry order. Same-region
// pairs are always joined; cross-region pairs are joined after one Bernoulli
// trial on rng. Same-region pairs never consume a trial.
func Build(countries []country.Country, rng *rand.Rand, p Params) (*Graph, error) {
	if p.CrossRegionProbability < 0 || p.CrossRegionProbability > 1 {
		return nil, fmt.Errorf("cross-region probability %.2f outside [0,1]", p.CrossRegionProbability)
	}
	g := &Graph{
		nodes: make([]string, len(countries)),
		index: make(map[string]int, len(countries)),
		adj:   make(map[string]map[string]float64, len(countries)),
	}
	for i, c := range countries {
		if _, dup := g.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate node %q", c.Name)
		}
		g.nodes[i] = c.Name
		g.index[c.Name] = i
		g.adj[c.Name] = make(map[string]float64)
	}

	for i := 0; i < len(countries); i++ {
		for j := i + 1; j < len(countries); j++ {
			a, b := countries[i], countries[j]
			if a.Region == b.Region {
				g.addEdge(a.Name, b.Name, p.RegionalWeight, true)
				continue
			}
			if rng.Float64() < p.CrossRegionProbability {
				g.addEdge(a.Name, b.Name, p.CrossRegionWeight, false)
			}
		}
	}
	return g, nil
}

func (g *Graph) addEdge(a, b string, w float64, regional bool) {
	g.adj[a][b] = w
	g.adj[b][a] = w
	g.edges = append(g.edges, Edge{A: a, B: b, Weight: w, Regional: regional})
}

// Nodes returns node names in registry order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Has reports whether name is a node.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.nodes) }

// Neighbors returns the neighbors of name in registry order.
func (g *Graph) Neighbors(name string) []Neighbor {
	links, ok := g.adj[name]
	if !ok {
		return nil
	}
	out := make([]Neighbor, 0, len(links))
	for _, n := range g.nodes {
		if w, ok := links[n]; ok {
			out = append(out, Neighbor{Name: n, Weight: w})
		}
	}
	return out
}

// Weight returns the weight of the edge between a and b.
func (g *Graph) Weight(a, b string) (float64, bool) {
	w, ok := g.adj[a][b]
	return w, ok
}

// Degree returns the number of neighbors of name.
func (g *Graph) Degree(name string) int {
	return len(g.adj[name])
}

// Edges returns every edge in build order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Summary aggregates edge counts for reporting.
type Summary struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Regional    int     `json:"regional_edges"`
	CrossRegion int     `json:"cross_region_edges"`
	MeanDegree  float64 `json:"mean_degree"`
	Isolated    int     `json:"isolated"`
}

// Summarize reports edge counts by kind and degree statistics.
func (g *Graph) Summarize() Summary {
	s := Summary{Nodes: len(g.nodes), Edges: len(g.edges)}
	for _, e := range g.edges {
		if e.Regional {
			s.Regional++
		} else {
			s.CrossRegion++
		}
	}
	for _, n := range g.nodes {
		if len(g.adj[n]) == 0 {
			s.Isolated++
		}
	}
	if s.Nodes > 0 {
		s.MeanDegree = float64(2*s.Edges) / float64(s.Nodes)
	}
	return s
}
