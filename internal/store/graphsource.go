package store

import (
	"context"
	"fmt"
	"time"

	"github.com/engramdev/engram/internal/graph"
)

// GraphSource adapts the sqlite store to graph.Backend so the ranking
// engine can build its node/edge view straight from persisted entries.
type GraphSource struct {
	db *DB
}

// NewGraphSource wraps a store for graph consumption.
func NewGraphSource(db *DB) *GraphSource {
	return &GraphSource{db: db}
}

// QueryEntries implements graph.Backend.
func (s *GraphSource) QueryEntries(ctx context.Context, filter graph.EntryFilter) ([]graph.Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 5000
	}
	entries, err := s.db.QueryEntries(filter.Namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("graph source query: %w", err)
	}

	out := make([]graph.Entry, 0, len(entries))
	for i := range entries {
		out = append(out, toGraphEntry(&entries[i], nil))
	}
	return out, nil
}

// GetEntry implements graph.Backend. The vector is loaded alongside the
// entry so similarity fan-out can run off a single lookup.
func (s *GraphSource) GetEntry(ctx context.Context, id string) (*graph.Entry, error) {
	entry, err := s.db.GetEntry(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	var vector []float64
	rec, err := s.db.GetVector(id)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		vector = rec.Embedding
	}

	ge := toGraphEntry(entry, vector)
	return &ge, nil
}

// SearchNeighbors implements graph.Backend via brute-force cosine scan.
func (s *GraphSource) SearchNeighbors(ctx context.Context, vector []float64, opts graph.SearchOptions) ([]graph.Neighbor, error) {
	hits, err := s.db.SearchVectors(vector, opts.K, opts.Threshold)
	if err != nil {
		return nil, err
	}

	neighbors := make([]graph.Neighbor, 0, len(hits))
	for _, hit := range hits {
		entry, err := s.db.GetEntry(hit.EntryID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue // vector outlived its entry
		}
		neighbors = append(neighbors, graph.Neighbor{
			Entry: toGraphEntry(entry, nil),
			Score: hit.Score,
		})
	}
	return neighbors, nil
}

func toGraphEntry(e *MemEntry, vector []float64) graph.Entry {
	return graph.Entry{
		ID:          e.ID,
		References:  e.References,
		Category:    e.Category,
		Confidence:  e.Confidence,
		AccessCount: e.AccessCount,
		CreatedAt:   time.UnixMilli(e.CreatedAt),
		Vector:      vector,
	}
}
