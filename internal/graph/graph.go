package graph

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// EdgeType classifies the relation an edge represents.
type EdgeType string

const (
	EdgeReference  EdgeType = "reference"
	EdgeSimilar    EdgeType = "similar"
	EdgeTemporal   EdgeType = "temporal"
	EdgeCoAccessed EdgeType = "co-accessed"
	EdgeCausal     EdgeType = "causal"
)

// Default tuning values.
const (
	DefaultMaxNodes            = 5000
	DefaultDamping             = 0.85
	DefaultMaxIterations       = 50
	DefaultConvergence         = 1e-6
	DefaultSimilarityThreshold = 0.8

	// similarityFanOut is the fixed candidate count requested from the
	// backend's neighbor search before threshold filtering.
	similarityFanOut = 20

	// maxLabelPasses caps label propagation.
	maxLabelPasses = 20
)

// Node is one memory entry in the graph.
type Node struct {
	ID          string
	Category    string
	Confidence  float64
	AccessCount int
	CreatedAt   time.Time
}

// Edge is a directed, typed, weighted relation owned by its source node's
// adjacency list. The source id is the adjacency key, not stored here.
type Edge struct {
	TargetID string
	Type     EdgeType
	Weight   float64
}

// Options tunes graph construction and ranking.
type Options struct {
	MaxNodes            int
	Damping             float64
	MaxIterations       int
	Convergence         float64
	SimilarityThreshold float64
	Alpha               float64 // blend weight for RankWithGraph
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		MaxNodes:            DefaultMaxNodes,
		Damping:             DefaultDamping,
		MaxIterations:       DefaultMaxIterations,
		Convergence:         DefaultConvergence,
		SimilarityThreshold: DefaultSimilarityThreshold,
		Alpha:               DefaultAlpha,
	}
}

func (o *Options) validate() {
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Damping <= 0 || o.Damping >= 1 {
		o.Damping = DefaultDamping
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Convergence <= 0 {
		o.Convergence = DefaultConvergence
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.Alpha <= 0 || o.Alpha > 1 {
		o.Alpha = DefaultAlpha
	}
}

// Hooks receive lifecycle notifications. All callbacks are optional and
// advisory only — they carry no ordering contract relative to other events.
type Hooks struct {
	GraphBuilt          func(nodeCount, edgeCount int)
	PageRankComputed    func(iterations int)
	CommunitiesDetected func(communityCount int)
}

// Graph is a directed, weighted knowledge graph over memory entries.
//
// It is rebuilt and maintained in working memory only and holds no locks:
// the owning component is responsible for serializing access. Structural
// mutations mark cached PageRank stale; it is recomputed lazily on the next
// ranking read.
type Graph struct {
	opts Options

	nodes    map[string]*Node
	edges    map[string][]*Edge        // forward adjacency: source id → outgoing edges
	incoming map[string]map[string]bool // reverse index: target id → source id set

	ranks       map[string]float64
	communities map[string]string // node id → representative label (a node id)
	stale       bool

	rng   *rand.Rand
	hooks Hooks
}

// New creates an empty graph with the given options.
func New(opts Options) *Graph {
	opts.validate()
	return &Graph{
		opts:        opts,
		nodes:       make(map[string]*Node),
		edges:       make(map[string][]*Edge),
		incoming:    make(map[string]map[string]bool),
		ranks:       make(map[string]float64),
		communities: make(map[string]string),
		stale:       true,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetHooks registers lifecycle callbacks.
func (g *Graph) SetHooks(h Hooks) {
	g.hooks = h
}

// SetRandSource pins the random source used by community detection,
// making label propagation deterministic for tests.
func (g *Graph) SetRandSource(src rand.Source) {
	g.rng = rand.New(src)
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges, each counted once.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, out := range g.edges {
		count += len(out)
	}
	return count
}

// GetNode returns the node for id, or nil if absent.
func (g *Graph) GetNode(id string) *Node {
	return g.nodes[id]
}

// AddNode inserts or refreshes the node for the entry. New ids are dropped
// once the graph is at capacity; existing ids can always be refreshed.
// Any successful insert or refresh marks cached PageRank stale.
func (g *Graph) AddNode(entry Entry) {
	if _, exists := g.nodes[entry.ID]; !exists && len(g.nodes) >= g.opts.MaxNodes {
		return
	}

	category := entry.Category
	if category == "" {
		category = "general"
	}
	confidence := entry.Confidence
	if confidence == 0 {
		confidence = 0.5
	}

	g.nodes[entry.ID] = &Node{
		ID:          entry.ID,
		Category:    category,
		Confidence:  confidence,
		AccessCount: entry.AccessCount,
		CreatedAt:   entry.CreatedAt,
	}
	if _, ok := g.edges[entry.ID]; !ok {
		g.edges[entry.ID] = nil
	}
	if _, ok := g.incoming[entry.ID]; !ok {
		g.incoming[entry.ID] = make(map[string]bool)
	}
	g.stale = true
}

// AddEdge inserts a directed edge. If either endpoint is missing the call is
// a silent no-op. At most one edge exists per ordered (source, target) pair:
// a second insertion keeps the original type and raises the stored weight to
// the maximum of old and new. The default weight is 1.0.
func (g *Graph) AddEdge(sourceID, targetID string, edgeType EdgeType, weight float64) {
	if _, ok := g.nodes[sourceID]; !ok {
		return
	}
	if _, ok := g.nodes[targetID]; !ok {
		return
	}
	if weight <= 0 {
		weight = 1.0
	}

	for _, e := range g.edges[sourceID] {
		if e.TargetID == targetID {
			if weight > e.Weight {
				e.Weight = weight
				g.stale = true
			}
			return
		}
	}

	g.edges[sourceID] = append(g.edges[sourceID], &Edge{
		TargetID: targetID,
		Type:     edgeType,
		Weight:   weight,
	})
	g.incoming[targetID][sourceID] = true
	g.stale = true
}

// HasEdge reports whether an edge source→target exists.
func (g *Graph) HasEdge(sourceID, targetID string) bool {
	for _, e := range g.edges[sourceID] {
		if e.TargetID == targetID {
			return true
		}
	}
	return false
}

// Edges returns the outgoing edges of a node. The slice is shared; callers
// must not mutate it.
func (g *Graph) Edges(sourceID string) []*Edge {
	return g.edges[sourceID]
}

// RemoveNode deletes a node and every edge touching it, then purges its
// cached rank and community entries. Removing an absent id is a no-op.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}

	// Outgoing edges: unlink from each target's reverse index.
	for _, e := range g.edges[id] {
		delete(g.incoming[e.TargetID], id)
	}

	// Incoming edges: filter this id out of each recorded source's list.
	for sourceID := range g.incoming[id] {
		out := g.edges[sourceID]
		kept := out[:0]
		for _, e := range out {
			if e.TargetID != id {
				kept = append(kept, e)
			}
		}
		g.edges[sourceID] = kept
	}

	delete(g.nodes, id)
	delete(g.edges, id)
	delete(g.incoming, id)
	delete(g.ranks, id)
	delete(g.communities, id)
	g.stale = true
}

// BuildFromBackend loads up to MaxNodes entries from the backend and wires
// reference edges between them. Nodes are inserted in a first pass and edges
// in a second, because edge insertion silently drops pairs whose target is
// not yet present.
func (g *Graph) BuildFromBackend(ctx context.Context, backend Backend, namespace string) error {
	entries, err := backend.QueryEntries(ctx, EntryFilter{
		Namespace: namespace,
		Limit:     g.opts.MaxNodes,
	})
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}

	for _, entry := range entries {
		g.AddNode(entry)
	}
	for _, entry := range entries {
		for _, ref := range entry.References {
			g.AddEdge(entry.ID, ref, EdgeReference, 1.0)
		}
	}

	if g.hooks.GraphBuilt != nil {
		g.hooks.GraphBuilt(g.NodeCount(), g.EdgeCount())
	}
	return nil
}

// AddSimilarityEdges asks the backend for nearest neighbors of the entry and
// inserts a similar edge per hit at or above the similarity threshold,
// weighted by the similarity score. Returns the number of edges that did not
// already exist; pre-existing pairs still get their weight raised when the
// new score is higher. An entry without a vector (or absent entirely) adds
// nothing and returns 0.
func (g *Graph) AddSimilarityEdges(ctx context.Context, backend Backend, entryID string) (int, error) {
	entry, err := backend.GetEntry(ctx, entryID)
	if err != nil {
		return 0, fmt.Errorf("get entry %s: %w", entryID, err)
	}
	if entry == nil || len(entry.Vector) == 0 {
		return 0, nil
	}

	neighbors, err := backend.SearchNeighbors(ctx, entry.Vector, SearchOptions{
		K:         similarityFanOut,
		Threshold: g.opts.SimilarityThreshold,
	})
	if err != nil {
		return 0, fmt.Errorf("search neighbors of %s: %w", entryID, err)
	}

	added := 0
	for _, n := range neighbors {
		if n.Entry.ID == entryID || n.Score < g.opts.SimilarityThreshold {
			continue
		}
		existed := g.HasEdge(entryID, n.Entry.ID)
		g.AddEdge(entryID, n.Entry.ID, EdgeSimilar, n.Score)
		if !existed && g.HasEdge(entryID, n.Entry.ID) {
			added++
		}
	}
	return added, nil
}
