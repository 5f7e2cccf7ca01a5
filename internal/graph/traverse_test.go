package graph

import (
	"sort"
	"testing"
)

func chain(t *testing.T, ids ...string) *Graph {
	t.Helper()
	g := New(DefaultOptions())
	for _, id := range ids {
		g.AddNode(entry(id))
	}
	for i := 0; i < len(ids)-1; i++ {
		g.AddEdge(ids[i], ids[i+1], EdgeReference, 1.0)
	}
	return g
}

func TestNeighborsDepthOne(t *testing.T) {
	g := chain(t, "a", "b", "c", "d")

	got := g.Neighbors("a", 1)
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("neighbors = %v, want [b]", got)
	}
}

func TestNeighborsDeep(t *testing.T) {
	g := chain(t, "a", "b", "c", "d")

	got := g.Neighbors("a", 3)
	sort.Strings(got)
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("neighbors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("neighbors = %v, want %v", got, want)
			break
		}
	}
}

func TestNeighborsCycleExcludesStart(t *testing.T) {
	g := chain(t, "a", "b", "c")
	g.AddEdge("c", "a", EdgeReference, 1.0)

	got := g.Neighbors("a", 5)
	for _, id := range got {
		if id == "a" {
			t.Error("start node must be excluded even when a cycle reaches it")
		}
	}
	if len(got) != 2 {
		t.Errorf("neighbors = %v, want 2 nodes", got)
	}
}

func TestNeighborsUnknownNode(t *testing.T) {
	g := chain(t, "a", "b")
	if got := g.Neighbors("nope", 1); got != nil {
		t.Errorf("neighbors = %v, want nil", got)
	}
}

func TestGetStats(t *testing.T) {
	g := chain(t, "a", "b", "c", "d")

	s := g.GetStats()
	if s.NodeCount != 4 {
		t.Errorf("node count = %d, want 4", s.NodeCount)
	}
	if s.EdgeCount != 3 {
		t.Errorf("edge count = %d, want 3", s.EdgeCount)
	}
	if s.AvgDegree != 0.75 {
		t.Errorf("avg degree = %f, want 0.75", s.AvgDegree)
	}
	if s.PageRankComputed {
		t.Error("pagerank should be stale before computation")
	}
	if s.MaxPageRank != 0 || s.MinPageRank != 0 {
		t.Error("rank extrema should be 0 with an empty rank table")
	}

	g.ComputePageRank()
	s = g.GetStats()
	if !s.PageRankComputed {
		t.Error("pagerank should be fresh after computation")
	}
	if s.MaxPageRank <= s.MinPageRank {
		t.Errorf("max = %f should exceed min = %f on a chain", s.MaxPageRank, s.MinPageRank)
	}
	if s.MinPageRank <= 0 {
		t.Errorf("min rank = %f, want > 0", s.MinPageRank)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	g := New(DefaultOptions())
	s := g.GetStats()
	if s.AvgDegree != 0 {
		t.Errorf("avg degree = %f, want 0 with no nodes", s.AvgDegree)
	}
	if s.CommunityCount != 0 {
		t.Errorf("community count = %d, want 0", s.CommunityCount)
	}
}
