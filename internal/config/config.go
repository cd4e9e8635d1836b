package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures the chat/caption provider. The same key and
// base URL serve both the chat and the multimodal caption calls.
type LLMConfig struct {
	BaseURL      string  `yaml:"base_url"`
	Key          string  `yaml:"key"`
	ChatModel    string  `yaml:"chat_model"`
	CaptionModel string  `yaml:"caption_model"`
	Temperature  float64 `yaml:"temperature"`
	TimeoutSecs  int     `yaml:"timeout_secs"`
}

// EmbeddingConfig selects and configures the embedding provider.
// The same provider must be used at ingestion and query time.
type EmbeddingConfig struct {
	Type        string `yaml:"type"` // openai or ollama
	BaseURL     string `yaml:"base_url"`
	Key         string `yaml:"key"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// PineconeConfig contains the remote index's data-plane coordinates.
// The index name is part of the host, so only the host is needed.
type PineconeConfig struct {
	APIKey      string `yaml:"api_key"`
	Host        string `yaml:"host"`
	Namespace   string `yaml:"namespace"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChromemConfig configures the embedded local vector store backend.
type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

// PostgresConfig configures the pgvector store backend.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// IndexConfig selects the vector store backend.
type IndexConfig struct {
	Type     string          `yaml:"type"` // pinecone, chromem or pgvector
	Pinecone *PineconeConfig `yaml:"pinecone,omitempty"`
	Chromem  *ChromemConfig  `yaml:"chromem,omitempty"`
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`
}

// RAGConfig holds the pipeline parameters shared between ingestion
// and retrieval.
type RAGConfig struct {
	ChunkSize      int    `yaml:"chunk_size"`
	ChunkOverlap   int    `yaml:"chunk_overlap"`
	TopK           int    `yaml:"top_k"`
	CaptionWorkers int    `yaml:"caption_workers"`
	StagingDir     string `yaml:"staging_dir"`
}

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	RAG       RAGConfig       `yaml:"rag"`
}

// Load reads a config from path. A missing file is not an error:
// defaults plus environment overrides still form a usable config.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			ChatModel:    "gpt-4o",
			CaptionModel: "gpt-4o",
			Temperature:  0.2,
			TimeoutSecs:  60,
		},
		Embedding: EmbeddingConfig{
			Type:        "openai",
			Model:       "text-embedding-ada-002",
			Dimensions:  1536,
			TimeoutSecs: 30,
		},
		Index: IndexConfig{Type: "pinecone"},
		RAG: RAGConfig{
			ChunkSize:      1000,
			ChunkOverlap:   200,
			TopK:           5,
			CaptionWorkers: 4,
			StagingDir:     "./docs",
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.ChatModel == "" {
		cfg.LLM.ChatModel = "gpt-4o"
	}
	if cfg.LLM.CaptionModel == "" {
		cfg.LLM.CaptionModel = cfg.LLM.ChatModel
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.Embedding.Type == "" {
		cfg.Embedding.Type = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-ada-002"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "pinecone"
	}
	if cfg.Index.Type == "pinecone" && cfg.Index.Pinecone == nil {
		cfg.Index.Pinecone = &PineconeConfig{}
	}
	if cfg.Index.Pinecone != nil && cfg.Index.Pinecone.TimeoutSecs == 0 {
		cfg.Index.Pinecone.TimeoutSecs = 30
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	// zero is a valid overlap; only a negative value falls back
	if cfg.RAG.ChunkOverlap < 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.CaptionWorkers == 0 {
		cfg.RAG.CaptionWorkers = 4
	}
	if cfg.RAG.StagingDir == "" {
		cfg.RAG.StagingDir = "./docs"
	}
}

// applyEnvOverrides lets secrets come from the environment (or a .env
// file loaded by the caller) instead of the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if cfg.LLM.Key == "" {
			cfg.LLM.Key = v
		}
		if cfg.Embedding.Key == "" {
			cfg.Embedding.Key = v
		}
	}
	if cfg.Index.Pinecone != nil {
		if v := os.Getenv("PINECONE_API_KEY"); v != "" && cfg.Index.Pinecone.APIKey == "" {
			cfg.Index.Pinecone.APIKey = v
		}
		if v := os.Getenv("PINECONE_HOST"); v != "" && cfg.Index.Pinecone.Host == "" {
			cfg.Index.Pinecone.Host = v
		}
	}
}
