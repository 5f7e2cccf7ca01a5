package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/engramdev/engram/internal/config"
	"github.com/engramdev/engram/internal/graph"
	"github.com/engramdev/engram/internal/server"
	"github.com/engramdev/engram/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Default()

	// Resolve database path
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Detect and configure embedder
	var embedder store.Embedder
	if store.ProbeOllama(cfg.Embedding.OllamaURL, cfg.Embedding.OllamaModel) {
		embedder = store.NewOllamaEmbedder(cfg.Embedding.OllamaURL, cfg.Embedding.OllamaModel, 768)
		fmt.Fprintf(os.Stderr, "  embedder: ollama (%s)\n", cfg.Embedding.OllamaModel)
	} else {
		emb, tfidfErr := store.NewTFIDFEmbedder(db, 512)
		if tfidfErr != nil {
			fmt.Fprintf(os.Stderr, "warning: tfidf embedder init failed: %v\n", tfidfErr)
		} else {
			embedder = emb
			fmt.Fprintf(os.Stderr, "  embedder: tfidf (fallback)\n")
		}
	}

	g := graph.New(graph.Options{
		MaxNodes:            cfg.Graph.MaxNodes,
		Damping:             cfg.Graph.Damping,
		SimilarityThreshold: cfg.Graph.SimilarityThreshold,
		Alpha:               cfg.Graph.Alpha,
	})
	g.SetHooks(graph.Hooks{
		GraphBuilt: func(nodes, edges int) {
			log.Printf("graph built: %d nodes, %d edges", nodes, edges)
		},
		PageRankComputed: func(iterations int) {
			log.Printf("pagerank converged in %d iterations", iterations)
		},
		CommunitiesDetected: func(count int) {
			log.Printf("detected %d communities", count)
		},
	})

	// Seed the graph from persisted entries before serving.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if err := g.BuildFromBackend(ctx, store.NewGraphSource(db), ""); err != nil {
			return fmt.Errorf("build graph: %w", err)
		}
	}

	srv := server.New(db, g, embedder, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "engram serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
