package graph

// DetectCommunities partitions the graph by label propagation and caches the
// assignment. Every node starts as its own singleton community; each pass
// visits nodes in a fresh random order and adopts the strongest label among
// its neighbors. Outgoing edges vote with their weight, incoming sources
// vote with 1. Ties keep the first label encountered among the maximal ones,
// and an isolated node keeps its own id. Stops after a pass with no changes,
// or after a fixed cap of passes. Returns the number of distinct communities.
//
// Visit order is randomized, so results vary across runs unless the caller
// pins the random source with SetRandSource.
func (g *Graph) DetectCommunities() int {
	labels := make(map[string]string, len(g.nodes))
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		labels[id] = id
		ids = append(ids, id)
	}

	for pass := 0; pass < maxLabelPasses; pass++ {
		g.rng.Shuffle(len(ids), func(i, j int) {
			ids[i], ids[j] = ids[j], ids[i]
		})

		changed := false
		for _, id := range ids {
			// Tally neighbor labels, keeping insertion order for the
			// first-encountered tie-break below.
			tally := make(map[string]float64)
			var order []string
			vote := func(label string, w float64) {
				if _, seen := tally[label]; !seen {
					order = append(order, label)
				}
				tally[label] += w
			}

			for _, e := range g.edges[id] {
				vote(labels[e.TargetID], e.Weight)
			}
			for sourceID := range g.incoming[id] {
				vote(labels[sourceID], 1)
			}

			best := labels[id]
			bestCount := 0.0
			for _, label := range order {
				if tally[label] > bestCount {
					best = label
					bestCount = tally[label]
				}
			}

			if best != labels[id] {
				labels[id] = best
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	g.communities = labels

	count := g.CommunityCount()
	if g.hooks.CommunitiesDetected != nil {
		g.hooks.CommunitiesDetected(count)
	}
	return count
}

// Community returns the cached community label for a node id. The second
// return is false when no label has been recorded for the id.
func (g *Graph) Community(id string) (string, bool) {
	label, ok := g.communities[id]
	return label, ok
}

// CommunityCount returns the number of distinct labels currently recorded.
func (g *Graph) CommunityCount() int {
	distinct := make(map[string]bool, len(g.communities))
	for _, label := range g.communities {
		distinct[label] = true
	}
	return len(distinct)
}
