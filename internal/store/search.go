package store

import (
	"fmt"
	"math"
	"sort"
)

// SearchHit pairs an entry id with its cosine similarity to a query vector.
type SearchHit struct {
	EntryID string
	Score   float64
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero-magnitude vectors.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SearchVectors returns the top-k stored vectors most similar to query,
// keeping only hits at or above threshold, sorted by score descending.
func (db *DB) SearchVectors(query []float64, k int, threshold float64) ([]SearchHit, error) {
	if k <= 0 {
		k = 10
	}
	records, err := db.AllVectors()
	if err != nil {
		return nil, fmt.Errorf("search vectors: %w", err)
	}

	var hits []SearchHit
	for _, rec := range records {
		score := CosineSimilarity(query, rec.Embedding)
		if score >= threshold {
			hits = append(hits, SearchHit{EntryID: rec.EntryID, Score: score})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
