package graph

import "sort"

// DefaultAlpha is the blend weight given to the external relevance score;
// the remainder goes to rescaled PageRank.
const DefaultAlpha = 0.7

// SearchResult is an externally scored search hit to be re-ranked.
type SearchResult struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"` // external relevance in [0,1]
}

// RankedResult is one re-ranked output row.
type RankedResult struct {
	ID        string  `json:"id"`
	Score     float64 `json:"score"`
	PageRank  float64 `json:"page_rank"`
	Combined  float64 `json:"combined_score"`
	Community string  `json:"community,omitempty"`
}

// TopNode is one entry of a top-ranked node listing.
type TopNode struct {
	ID        string  `json:"id"`
	PageRank  float64 `json:"page_rank"`
	Community string  `json:"community"`
}

// RankWithGraph blends each result's external relevance score with the
// node's structural importance:
//
//	combined = alpha*score + (1-alpha)*pageRank*N
//
// PageRank is rescaled by node count so its mean becomes 1, putting it on
// the same order of magnitude as a [0,1] relevance score. Recomputes
// PageRank first if the graph is stale. Output is sorted by non-increasing
// combined score; order among exact ties is unspecified. An alpha of 0 or
// below selects the configured default.
func (g *Graph) RankWithGraph(results []SearchResult, alpha float64) []RankedResult {
	if alpha <= 0 {
		alpha = g.opts.Alpha
	}
	if g.stale {
		g.ComputePageRank()
	}

	n := float64(len(g.nodes))
	ranked := make([]RankedResult, 0, len(results))
	for _, r := range results {
		rank := g.ranks[r.ID]
		row := RankedResult{
			ID:       r.ID,
			Score:    r.Score,
			PageRank: rank,
			Combined: alpha*r.Score + (1-alpha)*rank*n,
		}
		if label, ok := g.communities[r.ID]; ok {
			row.Community = label
		}
		ranked = append(ranked, row)
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Combined > ranked[j].Combined
	})
	return ranked
}

// TopNodes returns the n highest-ranked node ids with rank and community
// label, recomputing PageRank first if the graph is stale. A node without a
// computed community reports its own id as the label.
func (g *Graph) TopNodes(n int) []TopNode {
	if n <= 0 {
		return nil
	}
	if g.stale {
		g.ComputePageRank()
	}

	nodes := make([]TopNode, 0, len(g.ranks))
	for id, rank := range g.ranks {
		label, ok := g.communities[id]
		if !ok {
			label = id
		}
		nodes = append(nodes, TopNode{ID: id, PageRank: rank, Community: label})
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].PageRank != nodes[j].PageRank {
			return nodes[i].PageRank > nodes[j].PageRank
		}
		return nodes[i].ID < nodes[j].ID
	})

	if n > len(nodes) {
		n = len(nodes)
	}
	return nodes[:n]
}
