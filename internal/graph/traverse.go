package graph

// Neighbors returns every node reachable from id within depth hops along
// outgoing edges, excluding the start node itself (even when a cycle leads
// back to it). The result is the full visited set in breadth-first order,
// not layered by distance. An unknown id or depth below 1 yields nothing.
func (g *Graph) Neighbors(id string, depth int) []string {
	if _, ok := g.nodes[id]; !ok || depth < 1 {
		return nil
	}

	visited := map[string]bool{id: true}
	var result []string
	frontier := []string{id}

	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, current := range frontier {
			for _, e := range g.edges[current] {
				if visited[e.TargetID] {
					continue
				}
				visited[e.TargetID] = true
				result = append(result, e.TargetID)
				next = append(next, e.TargetID)
			}
		}
		frontier = next
	}
	return result
}

// Stats summarizes the graph's current shape and cache state.
type Stats struct {
	NodeCount        int     `json:"node_count"`
	EdgeCount        int     `json:"edge_count"`
	AvgDegree        float64 `json:"avg_degree"`
	CommunityCount   int     `json:"community_count"`
	PageRankComputed bool    `json:"page_rank_computed"`
	MaxPageRank      float64 `json:"max_page_rank"`
	MinPageRank      float64 `json:"min_page_rank"`
}

// GetStats returns descriptive statistics without mutating any cache.
func (g *Graph) GetStats() Stats {
	s := Stats{
		NodeCount:        len(g.nodes),
		EdgeCount:        g.EdgeCount(),
		CommunityCount:   g.CommunityCount(),
		PageRankComputed: !g.stale,
	}
	if s.NodeCount > 0 {
		s.AvgDegree = float64(s.EdgeCount) / float64(s.NodeCount)
	}

	first := true
	for _, rank := range g.ranks {
		if first {
			s.MaxPageRank = rank
			s.MinPageRank = rank
			first = false
			continue
		}
		if rank > s.MaxPageRank {
			s.MaxPageRank = rank
		}
		if rank < s.MinPageRank {
			s.MinPageRank = rank
		}
	}
	return s
}
