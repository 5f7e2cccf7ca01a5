package graph

import (
	"math"
	"testing"
)

func ranksSum(ranks map[string]float64) float64 {
	sum := 0.0
	for _, r := range ranks {
		sum += r
	}
	return sum
}

func TestPageRankEmptyGraph(t *testing.T) {
	g := testGraph(t)
	iterations := -1
	g.SetHooks(Hooks{PageRankComputed: func(n int) { iterations = n }})

	ranks := g.ComputePageRank()
	if len(ranks) != 0 {
		t.Errorf("rank table size = %d, want 0", len(ranks))
	}
	if iterations != 0 {
		t.Errorf("iterations = %d, want 0", iterations)
	}
	if !g.GetStats().PageRankComputed {
		t.Error("stale flag should be cleared even for an empty graph")
	}
}

func TestPageRankSingleNode(t *testing.T) {
	g := testGraph(t)
	g.AddNode(entry("only"))

	ranks := g.ComputePageRank()
	if r := ranks["only"]; math.Abs(r-1.0) > 1e-9 {
		t.Errorf("rank = %f, want 1.0", r)
	}
}

func TestPageRankSumsToOne(t *testing.T) {
	g := testGraph(t)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		g.AddNode(entry(id))
	}
	g.AddEdge("a", "b", EdgeReference, 1.0)
	g.AddEdge("b", "c", EdgeReference, 1.0)
	g.AddEdge("c", "a", EdgeSimilar, 0.9)
	// d and e are dangling

	ranks := g.ComputePageRank()
	if sum := ranksSum(ranks); math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("rank sum = %f, want ~1.0", sum)
	}
}

func TestPageRankCycleConverges(t *testing.T) {
	g := testGraph(t)
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(entry(id))
	}
	g.AddEdge("a", "b", EdgeReference, 1.0)
	g.AddEdge("b", "c", EdgeReference, 1.0)
	g.AddEdge("c", "a", EdgeReference, 1.0)

	iterations := 0
	g.SetHooks(Hooks{PageRankComputed: func(n int) { iterations = n }})

	ranks := g.ComputePageRank()
	for id, r := range ranks {
		if math.Abs(r-1.0/3.0) > 1e-3 {
			t.Errorf("rank[%s] = %f, want ~0.333", id, r)
		}
	}
	if iterations <= 0 || iterations > DefaultMaxIterations {
		t.Errorf("iterations = %d, want within (0, %d]", iterations, DefaultMaxIterations)
	}
}

func TestPageRankDanglingNodeGetsMass(t *testing.T) {
	g := testGraph(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(entry(id))
	}
	g.AddEdge("a", "b", EdgeReference, 1.0)
	g.AddEdge("b", "c", EdgeReference, 1.0)
	g.AddEdge("c", "a", EdgeReference, 1.0)
	// d has no outgoing edges

	ranks := g.ComputePageRank()
	if ranks["d"] <= 0 {
		t.Errorf("dangling node rank = %f, want > 0", ranks["d"])
	}
	if sum := ranksSum(ranks); math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("rank sum = %f, want ~1.0", sum)
	}
}

func TestPageRankIgnoresEdgeWeight(t *testing.T) {
	// Two graphs, identical topology, wildly different weights: ranks must
	// match because transition probability is uniform per edge.
	build := func(w1, w2 float64) map[string]float64 {
		g := New(DefaultOptions())
		for _, id := range []string{"a", "b", "c"} {
			g.AddNode(entry(id))
		}
		g.AddEdge("a", "b", EdgeReference, w1)
		g.AddEdge("a", "c", EdgeReference, w2)
		g.AddEdge("b", "a", EdgeReference, 1.0)
		g.AddEdge("c", "a", EdgeReference, 1.0)
		return g.ComputePageRank()
	}

	light := build(0.1, 0.1)
	heavy := build(9.0, 0.1)
	for id := range light {
		if math.Abs(light[id]-heavy[id]) > 1e-9 {
			t.Errorf("rank[%s] differs with weights: %f vs %f", id, light[id], heavy[id])
		}
	}
}

func TestPageRankStaleness(t *testing.T) {
	g := testGraph(t)
	g.AddNode(entry("a"))
	g.ComputePageRank()
	if !g.GetStats().PageRankComputed {
		t.Fatal("expected pagerank computed")
	}

	g.AddNode(entry("b"))
	if g.GetStats().PageRankComputed {
		t.Error("structural mutation should mark pagerank stale")
	}
}
