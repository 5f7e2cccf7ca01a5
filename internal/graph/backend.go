package graph

import (
	"context"
	"time"
)

// Entry is a memory entry as seen by the graph. The backing store owns the
// full record; the graph only consumes the fields it ranks on.
type Entry struct {
	ID          string
	References  []string // ids of entries this one links to
	Category    string
	Confidence  float64
	AccessCount int
	CreatedAt   time.Time
	Vector      []float64 // nil when the entry has no embedding
}

// EntryFilter selects entries for bulk graph construction.
type EntryFilter struct {
	Namespace string // empty = all namespaces
	Limit     int
}

// SearchOptions controls a nearest-neighbor search against the backend.
type SearchOptions struct {
	K         int
	Threshold float64
}

// Neighbor is one nearest-neighbor search hit.
type Neighbor struct {
	Entry Entry
	Score float64
}

// Backend is the narrow slice of the memory store the graph consumes.
// Lookups that find nothing return (nil, nil); errors are reserved for
// actual retrieval failures and propagate to the caller unwrapped by
// the graph's own no-op policy.
type Backend interface {
	QueryEntries(ctx context.Context, filter EntryFilter) ([]Entry, error)
	GetEntry(ctx context.Context, id string) (*Entry, error)
	SearchNeighbors(ctx context.Context, vector []float64, opts SearchOptions) ([]Neighbor, error)
}
