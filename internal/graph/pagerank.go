package graph

import "math"

// ComputePageRank runs power iteration over the current graph and caches the
// result, clearing the stale flag. Ranks sum to approximately 1. Dangling
// nodes (no outgoing edges) have their mass redistributed uniformly each
// iteration. Transition probability is uniform per outgoing edge — stored
// edge weights are deliberately not used as probability mass, because
// downstream ranking depends on that exact semantics.
func (g *Graph) ComputePageRank() map[string]float64 {
	n := len(g.nodes)
	if n == 0 {
		g.ranks = make(map[string]float64)
		g.stale = false
		if g.hooks.PageRankComputed != nil {
			g.hooks.PageRankComputed(0)
		}
		return g.ranks
	}

	fN := float64(n)
	d := g.opts.Damping

	ranks := make(map[string]float64, n)
	next := make(map[string]float64, n)
	initial := 1.0 / fN
	for id := range g.nodes {
		ranks[id] = initial
	}

	var dangling []string
	outDegree := make(map[string]int, n)
	for id := range g.nodes {
		deg := len(g.edges[id])
		outDegree[id] = deg
		if deg == 0 {
			dangling = append(dangling, id)
		}
	}

	iterations := 0
	for iter := 0; iter < g.opts.MaxIterations; iter++ {
		danglingSum := 0.0
		for _, id := range dangling {
			danglingSum += ranks[id]
		}

		maxDiff := 0.0
		for id := range g.nodes {
			incomingSum := 0.0
			for sourceID := range g.incoming[id] {
				if deg := outDegree[sourceID]; deg > 0 {
					incomingSum += ranks[sourceID] / float64(deg)
				}
			}
			newRank := (1-d)/fN + d*(incomingSum+danglingSum/fN)
			next[id] = newRank

			if diff := math.Abs(newRank - ranks[id]); diff > maxDiff {
				maxDiff = diff
			}
		}

		ranks, next = next, ranks
		iterations = iter + 1

		if maxDiff < g.opts.Convergence {
			break
		}
	}

	g.ranks = ranks
	g.stale = false
	if g.hooks.PageRankComputed != nil {
		g.hooks.PageRankComputed(iterations)
	}
	return g.ranks
}

// PageRank returns the rank for a node id from the cached table. The second
// return reports whether a cached value exists; it does not recompute.
func (g *Graph) PageRank(id string) (float64, bool) {
	rank, ok := g.ranks[id]
	return rank, ok
}
