package config

import "fmt"

// Config holds all engram configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Graph     GraphConfig     `toml:"graph"`
	Embedding EmbeddingConfig `toml:"embedding"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// GraphConfig tunes the ranking engine.
type GraphConfig struct {
	MaxNodes            int     `toml:"max_nodes"`
	Damping             float64 `toml:"damping"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	Alpha               float64 `toml:"alpha"` // relevance vs. pagerank blend
}

type EmbeddingConfig struct {
	OllamaURL   string `toml:"ollama_url"`
	OllamaModel string `toml:"ollama_model"` // e.g. "nomic-embed-text"
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37710,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Graph: GraphConfig{
			MaxNodes:            5000,
			Damping:             0.85,
			SimilarityThreshold: 0.8,
			Alpha:               0.7,
		},
		Embedding: EmbeddingConfig{
			OllamaURL:   "http://localhost:11434",
			OllamaModel: "nomic-embed-text",
		},
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
