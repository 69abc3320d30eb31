// Package config provides the typed, hierarchical configuration for the
// ingestion pipeline. Values come from environment variables with fixed
// defaults; a .env file is loaded automatically when present. Enumeration
// values are validated at load time and fail fast.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// PDFConfig controls the PDF conversion boundary.
type PDFConfig struct {
	// ConverterURL is the base URL of the document conversion service.
	ConverterURL string
	// OCREnabled and ExtractImages are reserved; the core never enables
	// them (OCR is an explicit non-goal).
	OCREnabled    bool
	ExtractImages bool
	// PageLimit caps the pages processed. Zero means all pages.
	PageLimit int
}

// ChunkingConfig controls document segmentation.
type ChunkingConfig struct {
	// TargetChunkSize is the target chunk size in tokens.
	TargetChunkSize int
	// ChunkOverlap is the overlap carried between split chunks, in tokens.
	ChunkOverlap int
	// TableFormat is the table serialization format: "markdown" or "html".
	TableFormat string
	// KeepTablesIntact keeps table-only chunks in a single chunk.
	KeepTablesIntact bool
	// IncludeHeadingContext records the heading hierarchy on each chunk.
	IncludeHeadingContext bool
}

// EmbeddingConfig controls embedding generation.
type EmbeddingConfig struct {
	// BaseURL is the base URL of the embeddings server.
	BaseURL string
	// ModelName is the embedding model identifier.
	ModelName string
	// VectorDimensions is the fixed embedding dimension.
	VectorDimensions int
	// BatchSize is the number of texts embedded per request.
	BatchSize int
	// Device selects model inference hardware: "cpu", "cuda" or "mps".
	Device string
	// NormalizeEmbeddings applies L2 normalization to each vector.
	NormalizeEmbeddings bool
	// ShowProgress logs per-batch progress during embedding.
	ShowProgress bool
}

// QdrantConfig controls the vector store connection and collection.
type QdrantConfig struct {
	Host     string
	HTTPPort int
	GRPCPort int
	// StoragePath is the externally-owned Qdrant storage directory.
	StoragePath string
	// CollectionName is the single collection this pipeline owns.
	CollectionName string
	// DistanceMetric is "cosine", "euclid" or "dot".
	DistanceMetric string
	// OnDiskPayload stores point payloads on disk.
	OnDiskPayload bool
	// TimeoutSeconds is the request timeout.
	TimeoutSeconds int
}

// PathsConfig holds working directories, created on demand.
type PathsConfig struct {
	InputDir string
	LogsDir  string
	// CacheDir is optional; empty means the tooling default.
	CacheDir string
}

// ProcessingConfig holds run-time behavior.
type ProcessingConfig struct {
	Verbose  bool
	LogLevel slog.Level
	// MaxRetries and RetryDelaySeconds are reserved for caller retry
	// policies; the core never retries a stage.
	MaxRetries        int
	RetryDelaySeconds int
}

// Config aggregates all subsystem configuration.
type Config struct {
	PDF        PDFConfig
	Chunking   ChunkingConfig
	Embedding  EmbeddingConfig
	Qdrant     QdrantConfig
	Paths      PathsConfig
	Processing ProcessingConfig
}

// QdrantURL returns the HTTP URL of the Qdrant service, used in operator
// hints when store operations fail.
func (c *Config) QdrantURL() string {
	return fmt.Sprintf("http://%s:%d", c.Qdrant.Host, c.Qdrant.HTTPPort)
}

// Load reads configuration from environment variables, applying defaults
// for everything unset. A .env file in the current directory or an
// ancestor directory is loaded first; real environment variables take
// precedence over .env values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		PDF: PDFConfig{
			ConverterURL: getEnv("CONVERTER_URL", "http://localhost:5001"),
		},
		Chunking: ChunkingConfig{
			TargetChunkSize:       512,
			ChunkOverlap:          50,
			TableFormat:           getEnv("CHUNK_TABLE_FORMAT", "markdown"),
			KeepTablesIntact:      getEnvBool("CHUNK_KEEP_TABLES_INTACT", true),
			IncludeHeadingContext: getEnvBool("CHUNK_INCLUDE_HEADINGS", true),
		},
		Embedding: EmbeddingConfig{
			BaseURL:             getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
			ModelName:           getEnv("EMBEDDING_MODEL_NAME", "sentence-transformers/all-MiniLM-L6-v2"),
			VectorDimensions:    384,
			BatchSize:           32,
			Device:              getEnv("EMBEDDING_DEVICE", "cpu"),
			NormalizeEmbeddings: getEnvBool("EMBEDDING_NORMALIZE", true),
			ShowProgress:        getEnvBool("EMBEDDING_SHOW_PROGRESS", true),
		},
		Qdrant: QdrantConfig{
			Host:           getEnv("QDRANT_HOST", "localhost"),
			HTTPPort:       6333,
			GRPCPort:       6334,
			StoragePath:    getEnv("QDRANT_STORAGE_PATH", "./qdrant_storage"),
			CollectionName: getEnv("QDRANT_COLLECTION", "pdf_documents"),
			DistanceMetric: getEnv("QDRANT_DISTANCE_METRIC", "cosine"),
			OnDiskPayload:  getEnvBool("QDRANT_ON_DISK_PAYLOAD", true),
			TimeoutSeconds: 60,
		},
		Paths: PathsConfig{
			InputDir: getEnv("INPUT_DIR", "./data/input"),
			LogsDir:  getEnv("LOGS_DIR", "./logs"),
			CacheDir: getEnv("CACHE_DIR", ""),
		},
		Processing: ProcessingConfig{
			LogLevel:          slog.LevelInfo,
			MaxRetries:        3,
			RetryDelaySeconds: 2,
		},
	}

	var err error
	if cfg.Chunking.TargetChunkSize, err = getEnvInt("CHUNK_TARGET_SIZE", cfg.Chunking.TargetChunkSize); err != nil {
		return nil, err
	}
	if cfg.Chunking.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", cfg.Chunking.ChunkOverlap); err != nil {
		return nil, err
	}
	if cfg.Embedding.VectorDimensions, err = getEnvInt("EMBEDDING_VECTOR_DIMENSIONS", cfg.Embedding.VectorDimensions); err != nil {
		return nil, err
	}
	if cfg.Embedding.BatchSize, err = getEnvInt("EMBEDDING_BATCH_SIZE", cfg.Embedding.BatchSize); err != nil {
		return nil, err
	}
	if cfg.Qdrant.HTTPPort, err = getEnvInt("QDRANT_HTTP_PORT", cfg.Qdrant.HTTPPort); err != nil {
		return nil, err
	}
	if cfg.Qdrant.GRPCPort, err = getEnvInt("QDRANT_GRPC_PORT", cfg.Qdrant.GRPCPort); err != nil {
		return nil, err
	}
	if cfg.Qdrant.TimeoutSeconds, err = getEnvInt("QDRANT_TIMEOUT", cfg.Qdrant.TimeoutSeconds); err != nil {
		return nil, err
	}
	if cfg.PDF.PageLimit, err = getEnvInt("PDF_PAGE_LIMIT", 0); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Chunking.TableFormat {
	case "markdown", "html":
	default:
		return fmt.Errorf("CHUNK_TABLE_FORMAT must be \"markdown\" or \"html\", got %q", c.Chunking.TableFormat)
	}
	switch c.Embedding.Device {
	case "cpu", "cuda", "mps":
	default:
		return fmt.Errorf("EMBEDDING_DEVICE must be one of cpu, cuda, mps, got %q", c.Embedding.Device)
	}
	switch c.Qdrant.DistanceMetric {
	case "cosine", "euclid", "dot":
	default:
		return fmt.Errorf("QDRANT_DISTANCE_METRIC must be one of cosine, euclid, dot, got %q", c.Qdrant.DistanceMetric)
	}
	if c.Chunking.TargetChunkSize <= 0 {
		return fmt.Errorf("CHUNK_TARGET_SIZE must be greater than 0")
	}
	if c.Chunking.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP must not be negative")
	}
	if c.Embedding.VectorDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_VECTOR_DIMENSIONS must be greater than 0")
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("EMBEDDING_BATCH_SIZE must be greater than 0")
	}
	return nil
}

// EnsureDirectories creates the input, logs, cache and Qdrant storage
// directories. Safe to call repeatedly.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.InputDir, c.Paths.LogsDir, c.Qdrant.StoragePath}
	if c.Paths.CacheDir != "" {
		dirs = append(dirs, c.Paths.CacheDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// loadDotEnv loads a .env file from the current directory or the nearest
// ancestor that has one. Missing files are not an error.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}
