package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/engramdev/engram/internal/graph"
	"github.com/engramdev/engram/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string   `json:"id"`
		Namespace  string   `json:"namespace"`
		Category   string   `json:"category"`
		Content    string   `json:"content"`
		References []string `json:"references"`
		Confidence float64  `json:"confidence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}

	entry := &store.MemEntry{
		ID:         req.ID,
		Namespace:  req.Namespace,
		Category:   req.Category,
		Content:    req.Content,
		References: req.References,
		Confidence: req.Confidence,
	}
	if err := s.db.PutEntry(entry); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	embedded := false
	if s.embedder != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()
		vec, err := s.embedder.Embed(ctx, entry.Content)
		if err != nil {
			log.Printf("embed failed for %s: %v", entry.ID, err)
		} else if err := s.db.SaveVector(entry.ID, vec, s.embedder.Model()); err != nil {
			log.Printf("save vector failed for %s: %v", entry.ID, err)
		} else {
			embedded = true
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       entry.ID,
		"embedded": embedded,
	})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	namespace := r.URL.Query().Get("namespace")
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.db.QueryEntries(namespace, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = entryJSON(&e)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(out),
		"entries": out,
	})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "entryID")

	entry, err := s.db.GetEntry(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("entry %s not found", id))
		return
	}

	// Retrieval counts as access.
	if err := s.db.TouchEntry(id); err != nil {
		log.Printf("touch failed for %s: %v", id, err)
	}

	writeJSON(w, http.StatusOK, entryJSON(entry))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "entryID")

	if err := s.db.DeleteEntry(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.graph.RemoveNode(id)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGraphBuild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Namespace string `json:"namespace"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	s.mu.Lock()
	err := s.graph.BuildFromBackend(ctx, s.source, req.Namespace)
	nodes := s.graph.NodeCount()
	edges := s.graph.EdgeCount()
	s.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node_count": nodes,
		"edge_count": edges,
	})
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	entry, err := s.source.GetEntry(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("entry %s not found", req.ID))
		return
	}

	s.mu.Lock()
	s.graph.AddNode(*entry)
	for _, ref := range entry.References {
		s.graph.AddEdge(entry.ID, ref, graph.EdgeReference, 1.0)
	}
	added := s.graph.GetNode(req.ID) != nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    req.ID,
		"added": added, // false when the graph is at capacity
	})
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "entryID")

	s.mu.Lock()
	s.graph.RemoveNode(id)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string  `json:"source"`
		Target string  `json:"target"`
		Type   string  `json:"type"`
		Weight float64 `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Source == "" || req.Target == "" {
		writeError(w, http.StatusBadRequest, "source and target required")
		return
	}
	edgeType := graph.EdgeType(req.Type)
	if edgeType == "" {
		edgeType = graph.EdgeReference
	}

	s.mu.Lock()
	s.graph.AddEdge(req.Source, req.Target, edgeType, req.Weight)
	exists := s.graph.HasEdge(req.Source, req.Target)
	s.mu.Unlock()

	// Missing endpoints make the add a silent no-op.
	writeJSON(w, http.StatusOK, map[string]any{
		"source": req.Source,
		"target": req.Target,
		"exists": exists,
	})
}

func (s *Server) handleSimilarityEdges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "entryID")

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	s.mu.Lock()
	added, err := s.graph.AddSimilarityEdges(ctx, s.source, id)
	s.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    id,
		"added": added,
	})
}

func (s *Server) handlePageRank(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ranks := s.graph.ComputePageRank()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"node_count": len(ranks),
		"ranks":      ranks,
	})
}

func (s *Server) handleCommunities(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	count := s.graph.DetectCommunities()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"community_count": count,
	})
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Results []graph.SearchResult `json:"results"`
		Alpha   float64              `json:"alpha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	ranked := s.graph.RankWithGraph(req.Results, req.Alpha)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(ranked),
		"results": ranked,
	})
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "entryID")

	depth := 1
	if d := r.URL.Query().Get("depth"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			depth = n
		}
	}

	s.mu.Lock()
	neighbors := s.graph.Neighbors(id, depth)
	s.mu.Unlock()

	if neighbors == nil {
		neighbors = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        id,
		"depth":     depth,
		"neighbors": neighbors,
	})
}

func (s *Server) handleGraphTop(w http.ResponseWriter, r *http.Request) {
	n := 10
	if q := r.URL.Query().Get("n"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 {
			n = v
		}
	}

	s.mu.Lock()
	top := s.graph.TopNodes(n)
	s.mu.Unlock()

	if top == nil {
		top = []graph.TopNode{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(top),
		"nodes": top,
	})
}

func (s *Server) handleGraphStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.graph.GetStats()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, stats)
}

func entryJSON(e *store.MemEntry) map[string]any {
	return map[string]any{
		"id":           e.ID,
		"namespace":    e.Namespace,
		"category":     e.Category,
		"content":      e.Content,
		"references":   e.References,
		"confidence":   e.Confidence,
		"access_count": e.AccessCount,
		"created_at":   e.CreatedAt,
		"updated_at":   e.UpdatedAt,
	}
}
