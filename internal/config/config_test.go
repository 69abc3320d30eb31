package config

import (
	"os"
	"path/filepath"
	"testing"
)

// configEnvVars are all variables Load consults; cleared per test.
var configEnvVars = []string{
	"CONVERTER_URL", "PDF_PAGE_LIMIT",
	"CHUNK_TARGET_SIZE", "CHUNK_OVERLAP", "CHUNK_TABLE_FORMAT",
	"CHUNK_KEEP_TABLES_INTACT", "CHUNK_INCLUDE_HEADINGS",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_VECTOR_DIMENSIONS",
	"EMBEDDING_BATCH_SIZE", "EMBEDDING_DEVICE", "EMBEDDING_NORMALIZE",
	"EMBEDDING_SHOW_PROGRESS",
	"QDRANT_HOST", "QDRANT_HTTP_PORT", "QDRANT_GRPC_PORT", "QDRANT_STORAGE_PATH",
	"QDRANT_COLLECTION", "QDRANT_DISTANCE_METRIC", "QDRANT_ON_DISK_PAYLOAD",
	"QDRANT_TIMEOUT",
	"INPUT_DIR", "LOGS_DIR", "CACHE_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Chunking.TargetChunkSize != 512 {
		t.Errorf("TargetChunkSize = %d, want 512", cfg.Chunking.TargetChunkSize)
	}
	if cfg.Chunking.ChunkOverlap != 50 {
		t.Errorf("ChunkOverlap = %d, want 50", cfg.Chunking.ChunkOverlap)
	}
	if cfg.Chunking.TableFormat != "markdown" {
		t.Errorf("TableFormat = %q, want markdown", cfg.Chunking.TableFormat)
	}
	if !cfg.Chunking.KeepTablesIntact {
		t.Error("KeepTablesIntact should default to true")
	}
	if cfg.Embedding.VectorDimensions != 384 {
		t.Errorf("VectorDimensions = %d, want 384", cfg.Embedding.VectorDimensions)
	}
	if cfg.Embedding.BatchSize != 32 {
		t.Errorf("BatchSize = %d, want 32", cfg.Embedding.BatchSize)
	}
	if cfg.Embedding.Device != "cpu" {
		t.Errorf("Device = %q, want cpu", cfg.Embedding.Device)
	}
	if !cfg.Embedding.NormalizeEmbeddings {
		t.Error("NormalizeEmbeddings should default to true")
	}
	if cfg.Qdrant.Host != "localhost" || cfg.Qdrant.HTTPPort != 6333 || cfg.Qdrant.GRPCPort != 6334 {
		t.Errorf("unexpected Qdrant defaults: %+v", cfg.Qdrant)
	}
	if cfg.Qdrant.CollectionName != "pdf_documents" {
		t.Errorf("CollectionName = %q, want pdf_documents", cfg.Qdrant.CollectionName)
	}
	if cfg.Qdrant.DistanceMetric != "cosine" {
		t.Errorf("DistanceMetric = %q, want cosine", cfg.Qdrant.DistanceMetric)
	}
	if cfg.Qdrant.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want 60", cfg.Qdrant.TimeoutSeconds)
	}
	if cfg.QdrantURL() != "http://localhost:6333" {
		t.Errorf("QdrantURL() = %q", cfg.QdrantURL())
	}
	if cfg.Processing.MaxRetries != 3 || cfg.Processing.RetryDelaySeconds != 2 {
		t.Errorf("unexpected Processing defaults: %+v", cfg.Processing)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMBEDDING_VECTOR_DIMENSIONS", "768")
	t.Setenv("EMBEDDING_BATCH_SIZE", "8")
	t.Setenv("QDRANT_COLLECTION", "papers")
	t.Setenv("QDRANT_DISTANCE_METRIC", "dot")
	t.Setenv("CHUNK_TABLE_FORMAT", "html")
	t.Setenv("EMBEDDING_NORMALIZE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Embedding.VectorDimensions != 768 {
		t.Errorf("VectorDimensions = %d, want 768", cfg.Embedding.VectorDimensions)
	}
	if cfg.Embedding.BatchSize != 8 {
		t.Errorf("BatchSize = %d, want 8", cfg.Embedding.BatchSize)
	}
	if cfg.Qdrant.CollectionName != "papers" {
		t.Errorf("CollectionName = %q, want papers", cfg.Qdrant.CollectionName)
	}
	if cfg.Qdrant.DistanceMetric != "dot" {
		t.Errorf("DistanceMetric = %q, want dot", cfg.Qdrant.DistanceMetric)
	}
	if cfg.Chunking.TableFormat != "html" {
		t.Errorf("TableFormat = %q, want html", cfg.Chunking.TableFormat)
	}
	if cfg.Embedding.NormalizeEmbeddings {
		t.Error("NormalizeEmbeddings should be overridden to false")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid table format", "CHUNK_TABLE_FORMAT", "csv"},
		{"invalid device", "EMBEDDING_DEVICE", "tpu"},
		{"invalid distance metric", "QDRANT_DISTANCE_METRIC", "manhattan"},
		{"non-integer dimensions", "EMBEDDING_VECTOR_DIMENSIONS", "many"},
		{"zero dimensions", "EMBEDDING_VECTOR_DIMENSIONS", "0"},
		{"zero batch size", "EMBEDDING_BATCH_SIZE", "0"},
		{"negative overlap", "CHUNK_OVERLAP", "-1"},
		{"zero target size", "CHUNK_TARGET_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestEnsureDirectoriesIdempotent(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()
	t.Setenv("INPUT_DIR", filepath.Join(base, "input"))
	t.Setenv("LOGS_DIR", filepath.Join(base, "logs"))
	t.Setenv("CACHE_DIR", filepath.Join(base, "cache"))
	t.Setenv("QDRANT_STORAGE_PATH", filepath.Join(base, "qdrant"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := cfg.EnsureDirectories(); err != nil {
			t.Fatalf("EnsureDirectories() call %d failed: %v", i+1, err)
		}
	}

	for _, dir := range []string{cfg.Paths.InputDir, cfg.Paths.LogsDir, cfg.Paths.CacheDir, cfg.Qdrant.StoragePath} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s was not created", dir)
		}
	}
}
