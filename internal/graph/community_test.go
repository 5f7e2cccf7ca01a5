package graph

import (
	"math/rand"
	"testing"
)

func TestDetectCommunitiesSingletons(t *testing.T) {
	g := testGraph(t)
	g.SetRandSource(rand.NewSource(1))
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(entry(id))
	}

	count := g.DetectCommunities()
	if count != 3 {
		t.Errorf("community count = %d, want 3", count)
	}
	for _, id := range []string{"a", "b", "c"} {
		label, ok := g.Community(id)
		if !ok || label != id {
			t.Errorf("label[%s] = %q, want own id", id, label)
		}
	}
}

func TestDetectCommunitiesTwoClusters(t *testing.T) {
	g := testGraph(t)
	g.SetRandSource(rand.NewSource(42))

	// Two dense triangles joined by nothing.
	cluster := func(ids []string) {
		for _, id := range ids {
			g.AddNode(entry(id))
		}
		for _, s := range ids {
			for _, d := range ids {
				if s != d {
					g.AddEdge(s, d, EdgeSimilar, 2.0)
				}
			}
		}
	}
	cluster([]string{"a1", "a2", "a3"})
	cluster([]string{"b1", "b2", "b3"})

	count := g.DetectCommunities()
	if count != 2 {
		t.Fatalf("community count = %d, want 2", count)
	}

	la, _ := g.Community("a1")
	for _, id := range []string{"a2", "a3"} {
		if l, _ := g.Community(id); l != la {
			t.Errorf("label[%s] = %q, want %q", id, l, la)
		}
	}
	lb, _ := g.Community("b1")
	if la == lb {
		t.Error("disconnected clusters should not share a label")
	}
}

func TestDetectCommunitiesIsolatedKeepsOwnLabel(t *testing.T) {
	g := testGraph(t)
	g.SetRandSource(rand.NewSource(7))
	g.AddNode(entry("lonely"))
	g.AddNode(entry("x"))
	g.AddNode(entry("y"))
	g.AddEdge("x", "y", EdgeReference, 1.0)
	g.AddEdge("y", "x", EdgeReference, 1.0)

	g.DetectCommunities()
	if label, _ := g.Community("lonely"); label != "lonely" {
		t.Errorf("isolated node label = %q, want its own id", label)
	}
}

func TestDetectCommunitiesEmptyGraph(t *testing.T) {
	g := testGraph(t)
	notified := -1
	g.SetHooks(Hooks{CommunitiesDetected: func(n int) { notified = n }})

	if count := g.DetectCommunities(); count != 0 {
		t.Errorf("community count = %d, want 0", count)
	}
	if notified != 0 {
		t.Errorf("hook got %d, want 0", notified)
	}
}

func TestDetectCommunitiesWeightedPull(t *testing.T) {
	// hub links out to w (heavy) and to l (light); the heavier label wins.
	g := testGraph(t)
	g.SetRandSource(rand.NewSource(11))
	for _, id := range []string{"hub", "w", "l"} {
		g.AddNode(entry(id))
	}
	g.AddEdge("hub", "w", EdgeSimilar, 5.0)
	g.AddEdge("hub", "l", EdgeSimilar, 0.5)

	g.DetectCommunities()
	hubLabel, _ := g.Community("hub")
	wLabel, _ := g.Community("w")
	if hubLabel != wLabel {
		t.Errorf("hub label = %q, want the heavy neighbor's label %q", hubLabel, wLabel)
	}
}
