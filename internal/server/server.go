package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/engramdev/engram/internal/graph"
	"github.com/engramdev/engram/internal/store"
)

// Server is the engram HTTP API server. The graph itself holds no locks;
// all graph access goes through s.mu.
type Server struct {
	db       *store.DB
	source   *store.GraphSource
	graph    *graph.Graph
	embedder store.Embedder // nil when embedding is unavailable
	mu       sync.Mutex
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a new Server wired to the given store and graph.
func New(db *store.DB, g *graph.Graph, embedder store.Embedder, version string) *Server {
	s := &Server{
		db:       db,
		source:   store.NewGraphSource(db),
		graph:    g,
		embedder: embedder,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/entries", s.handleCreateEntry)
		r.Get("/entries", s.handleListEntries)
		r.Get("/entries/{entryID}", s.handleGetEntry)
		r.Delete("/entries/{entryID}", s.handleDeleteEntry)

		r.Route("/graph", func(r chi.Router) {
			r.Post("/build", s.handleGraphBuild)
			r.Get("/stats", s.handleGraphStats)
			r.Get("/top", s.handleGraphTop)
			r.Post("/pagerank", s.handlePageRank)
			r.Post("/communities", s.handleCommunities)
			r.Post("/edges", s.handleAddEdge)
			r.Post("/nodes", s.handleAddNode)
			r.Delete("/nodes/{entryID}", s.handleRemoveNode)
			r.Post("/nodes/{entryID}/similar", s.handleSimilarityEdges)
			r.Get("/nodes/{entryID}/neighbors", s.handleNeighbors)
		})

		r.Post("/rank", s.handleRank)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	s.mu.Lock()
	nodes := s.graph.NodeCount()
	s.mu.Unlock()

	embedModel := ""
	if s.embedder != nil {
		embedModel = s.embedder.Model()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"version":     s.version,
		"uptime":      time.Since(s.started).Seconds(),
		"db":          dbOK,
		"db_path":     s.db.Path,
		"graph_nodes": nodes,
		"embedder":    embedModel,
	})
}
