package store

import (
	"math"
	"testing"
)

func putEntryWithVector(t *testing.T, db *DB, id string, vec []float64) {
	t.Helper()
	if err := db.PutEntry(&MemEntry{ID: id}); err != nil {
		t.Fatalf("PutEntry %s: %v", id, err)
	}
	if err := db.SaveVector(id, vec, "tfidf"); err != nil {
		t.Fatalf("SaveVector %s: %v", id, err)
	}
}

func TestEncodeDecodeEmbedding(t *testing.T) {
	vec := []float64{0.1, -2.5, 3.14159, 0}
	got := decodeEmbedding(encodeEmbedding(vec))
	if len(got) != len(vec) {
		t.Fatalf("got %d values, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("value %d = %v, want %v", i, got[i], vec[i])
		}
	}
}

func TestSaveVectorUpsert(t *testing.T) {
	db := testDB(t)
	putEntryWithVector(t, db, "e1", []float64{1, 0})

	if err := db.SaveVector("e1", []float64{0, 1, 0}, "ollama:nomic-embed-text"); err != nil {
		t.Fatalf("SaveVector update: %v", err)
	}

	rec, err := db.GetVector("e1")
	if err != nil {
		t.Fatalf("GetVector: %v", err)
	}
	if rec == nil {
		t.Fatal("vector not found")
	}
	if rec.Dimensions != 3 {
		t.Errorf("Dimensions = %d, want 3", rec.Dimensions)
	}
	if rec.Model != "ollama:nomic-embed-text" {
		t.Errorf("Model = %q", rec.Model)
	}
	if len(rec.Embedding) != 3 || rec.Embedding[1] != 1 {
		t.Errorf("Embedding = %v", rec.Embedding)
	}
}

func TestGetVectorNotFound(t *testing.T) {
	db := testDB(t)

	rec, err := db.GetVector("nope")
	if err != nil {
		t.Fatalf("GetVector: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil, got %+v", rec)
	}
}

func TestAllVectors(t *testing.T) {
	db := testDB(t)
	putEntryWithVector(t, db, "a", []float64{1, 0})
	putEntryWithVector(t, db, "b", []float64{0, 1})

	records, err := db.AllVectors()
	if err != nil {
		t.Fatalf("AllVectors: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestDeleteVector(t *testing.T) {
	db := testDB(t)
	putEntryWithVector(t, db, "a", []float64{1, 0})

	if err := db.DeleteVector("a"); err != nil {
		t.Fatalf("DeleteVector: %v", err)
	}
	rec, err := db.GetVector("a")
	if err != nil {
		t.Fatalf("GetVector: %v", err)
	}
	if rec != nil {
		t.Error("vector still present after delete")
	}

	// Entry itself survives.
	e, err := db.GetEntry("a")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if e == nil {
		t.Error("entry deleted with vector")
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0}, []float64{1, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"mismatched lengths", []float64{1, 0}, []float64{1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSearchVectors(t *testing.T) {
	db := testDB(t)
	putEntryWithVector(t, db, "exact", []float64{1, 0, 0})
	putEntryWithVector(t, db, "close", []float64{0.9, 0.1, 0})
	putEntryWithVector(t, db, "far", []float64{0, 0, 1})

	hits, err := db.SearchVectors([]float64{1, 0, 0}, 10, 0.8)
	if err != nil {
		t.Fatalf("SearchVectors: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2: %+v", len(hits), hits)
	}
	if hits[0].EntryID != "exact" {
		t.Errorf("top hit = %s, want exact", hits[0].EntryID)
	}
	if hits[1].EntryID != "close" {
		t.Errorf("second hit = %s, want close", hits[1].EntryID)
	}
}

func TestSearchVectorsTopK(t *testing.T) {
	db := testDB(t)
	putEntryWithVector(t, db, "a", []float64{1, 0})
	putEntryWithVector(t, db, "b", []float64{0.95, 0.05})
	putEntryWithVector(t, db, "c", []float64{0.9, 0.1})

	hits, err := db.SearchVectors([]float64{1, 0}, 2, 0)
	if err != nil {
		t.Fatalf("SearchVectors: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
}
