package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MemEntry represents one stored memory entry.
type MemEntry struct {
	ID          string
	Namespace   string
	Category    string
	Content     string
	References  []string // ids of entries this one links to
	Confidence  float64
	AccessCount int
	CreatedAt   int64 // unix millis
	UpdatedAt   int64
}

// PutEntry inserts or replaces an entry. An empty id gets a generated UUID;
// empty namespace/category fall back to their defaults. The (possibly
// generated) id is written back to the entry.
func (db *DB) PutEntry(entry *MemEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Namespace == "" {
		entry.Namespace = "default"
	}
	if entry.Category == "" {
		entry.Category = "general"
	}
	if entry.Confidence <= 0 {
		entry.Confidence = 0.5
	}

	refs, err := json.Marshal(entry.References)
	if err != nil {
		return fmt.Errorf("marshal refs: %w", err)
	}

	now := time.Now().UnixMilli()
	createdAt := entry.CreatedAt
	if createdAt == 0 {
		createdAt = now
	}

	_, err = db.Exec(`
		INSERT INTO mem_entries (id, namespace, category, content, refs, confidence, access_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			namespace = excluded.namespace,
			category = excluded.category,
			content = excluded.content,
			refs = excluded.refs,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at
	`, entry.ID, entry.Namespace, entry.Category, entry.Content, string(refs),
		entry.Confidence, entry.AccessCount, createdAt, now)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}

	entry.CreatedAt = createdAt
	entry.UpdatedAt = now
	return nil
}

// GetEntry returns an entry by id, or nil if not found.
func (db *DB) GetEntry(id string) (*MemEntry, error) {
	row := db.QueryRow(`
		SELECT id, namespace, category, content, refs, confidence, access_count, created_at, updated_at
		FROM mem_entries WHERE id = ?
	`, id)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// QueryEntries returns up to limit entries, optionally filtered by namespace,
// newest first.
func (db *DB) QueryEntries(namespace string, limit int) ([]MemEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows *sql.Rows
	var err error
	if namespace == "" {
		rows, err = db.Query(`
			SELECT id, namespace, category, content, refs, confidence, access_count, created_at, updated_at
			FROM mem_entries ORDER BY created_at DESC LIMIT ?
		`, limit)
	} else {
		rows, err = db.Query(`
			SELECT id, namespace, category, content, refs, confidence, access_count, created_at, updated_at
			FROM mem_entries WHERE namespace = ? ORDER BY created_at DESC LIMIT ?
		`, namespace, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []MemEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// TouchEntry increments an entry's access count (retrieval boost).
func (db *DB) TouchEntry(id string) error {
	_, err := db.Exec(`
		UPDATE mem_entries SET access_count = access_count + 1 WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("touch entry: %w", err)
	}
	return nil
}

// DeleteEntry removes an entry and its vector (via FK cascade).
func (db *DB) DeleteEntry(id string) error {
	if _, err := db.Exec("DELETE FROM mem_entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// CountEntries returns the number of stored entries.
func (db *DB) CountEntries() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM mem_entries").Scan(&count)
	return count, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*MemEntry, error) {
	var e MemEntry
	var content sql.NullString
	var refs string
	if err := s.Scan(&e.ID, &e.Namespace, &e.Category, &content, &refs,
		&e.Confidence, &e.AccessCount, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Content = content.String
	if refs != "" {
		if err := json.Unmarshal([]byte(refs), &e.References); err != nil {
			return nil, fmt.Errorf("unmarshal refs for %s: %w", e.ID, err)
		}
	}
	return &e, nil
}
