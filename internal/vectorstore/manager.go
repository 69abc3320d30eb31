// Package vectorstore owns the lifecycle of one named Qdrant collection:
// existence check, creation with the configured vector geometry, batched
// point insertion, collection statistics and k-nearest-neighbor search.
package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"pdfingest/internal/config"
	"pdfingest/internal/contextutil"
	"pdfingest/internal/ingest"
)

// Manager is the single-collection vector store manager. It holds no
// in-process locks; serialization of concurrent writers is delegated to
// the Qdrant service.
type Manager struct {
	client        *qdrant.Client
	collection    string
	vectorSize    int
	distance      qdrant.Distance
	onDiskPayload bool
	timeout       time.Duration
}

// SearchResult is one ranked hit from a similarity search.
type SearchResult struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// CollectionInfo reports current collection statistics.
type CollectionInfo struct {
	Name                string
	PointsCount         int
	IndexedVectorsCount int
	Status              string
}

// NewManager connects to Qdrant over gRPC and verifies the service is
// reachable. Connection failure surfaces immediately; there is no retry.
func NewManager(ctx context.Context, cfg *config.Config) (*Manager, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Qdrant.Host,
		Port: cfg.Qdrant.GRPCPort,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %v", ingest.ErrStoreConnection, cfg.QdrantURL(), err)
	}

	m := &Manager{
		client:        client,
		collection:    cfg.Qdrant.CollectionName,
		vectorSize:    cfg.Embedding.VectorDimensions,
		distance:      distanceFromMetric(cfg.Qdrant.DistanceMetric),
		onDiskPayload: cfg.Qdrant.OnDiskPayload,
		timeout:       time.Duration(cfg.Qdrant.TimeoutSeconds) * time.Second,
	}

	healthCtx, cancel := m.opContext(ctx)
	defer cancel()
	if _, err := client.HealthCheck(healthCtx); err != nil {
		return nil, fmt.Errorf("%w: health check against %s: %v", ingest.ErrStoreConnection, cfg.QdrantURL(), err)
	}
	return m, nil
}

// distanceFromMetric maps the configured metric name to the Qdrant
// distance enum. The config layer has already validated the name; cosine
// is the fallback.
func distanceFromMetric(metric string) qdrant.Distance {
	switch metric {
	case "euclid":
		return qdrant.Distance_Euclid
	case "dot":
		return qdrant.Distance_Dot
	default:
		return qdrant.Distance_Cosine
	}
}

func (m *Manager) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// CollectionExists reports whether the managed collection exists.
//
// Contract: any error while querying the collection listing is treated as
// "does not exist". This is a deliberate conservative default, so that
// initialization always attempts creation on ambiguity instead of
// failing the run on a listing hiccup.
func (m *Manager) CollectionExists(ctx context.Context) bool {
	opCtx, cancel := m.opContext(ctx)
	defer cancel()

	exists, err := m.client.CollectionExists(opCtx, m.collection)
	if err != nil {
		contextutil.LoggerFromContext(ctx).DebugContext(ctx,
			"collection existence check failed, assuming absent",
			"collection", m.collection, "error", err)
		return false
	}
	return exists
}

// InitializeCollection creates the collection with the configured vector
// geometry if it does not already exist. Calling it repeatedly is a
// no-op once the collection is present.
func (m *Manager) InitializeCollection(ctx context.Context) error {
	if m.CollectionExists(ctx) {
		return nil
	}

	opCtx, cancel := m.opContext(ctx)
	defer cancel()

	err := m.client.CreateCollection(opCtx, &qdrant.CreateCollection{
		CollectionName: m.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(m.vectorSize),
			Distance: m.distance,
		}),
		OnDiskPayload: &m.onDiskPayload,
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection %q: %v", ingest.ErrStoreWrite, m.collection, err)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "created collection",
		"collection", m.collection, "vector_size", m.vectorSize, "distance", m.distance.String())
	return nil
}

// UpsertPoints writes one point per (chunk, embedding) pair in a single
// batched call and returns the count written.
//
// Each point gets a freshly generated random UUID: identity has no
// relation to (source_file, chunk_index), so re-ingesting the same file
// adds a disjoint point set rather than replacing the previous one.
func (m *Manager) UpsertPoints(ctx context.Context, chunks []ingest.Chunk, embeddings [][]float32) (int, error) {
	if err := m.validatePairs(chunks, embeddings); err != nil {
		return 0, err
	}

	points := buildPoints(chunks, embeddings)

	opCtx, cancel := m.opContext(ctx)
	defer cancel()

	if _, err := m.client.Upsert(opCtx, &qdrant.UpsertPoints{
		CollectionName: m.collection,
		Points:         points,
	}); err != nil {
		return 0, fmt.Errorf("%w: upserting %d points: %v", ingest.ErrStoreWrite, len(points), err)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "upserted points",
		"collection", m.collection, "count", len(points))
	return len(points), nil
}

// buildPoints constructs one point per (chunk, embedding) pair, each
// with a freshly generated random UUID. Two builds over identical input
// therefore produce disjoint ID sets.
func buildPoints(chunks []ingest.Chunk, embeddings [][]float32) []*qdrant.PointStruct {
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(chunk.Payload()),
		}
	}
	return points
}

func (m *Manager) validatePairs(chunks []ingest.Chunk, embeddings [][]float32) error {
	if len(chunks) == 0 || len(embeddings) == 0 {
		return fmt.Errorf("%w: cannot upsert empty chunks or embeddings", ingest.ErrInvalidInput)
	}
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: chunk count (%d) must match embedding count (%d)",
			ingest.ErrInvalidInput, len(chunks), len(embeddings))
	}
	for i, embedding := range embeddings {
		if len(embedding) != m.vectorSize {
			return fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				ingest.ErrInvalidInput, i, len(embedding), m.vectorSize)
		}
	}
	return nil
}

// Search returns the limit nearest points to the query vector by the
// collection's distance metric.
func (m *Manager) Search(ctx context.Context, query []float32, limit int) ([]SearchResult, error) {
	if len(query) != m.vectorSize {
		return nil, fmt.Errorf("%w: query vector has dimension %d, expected %d",
			ingest.ErrInvalidInput, len(query), m.vectorSize)
	}
	if limit <= 0 {
		limit = 10
	}

	opCtx, cancel := m.opContext(ctx)
	defer cancel()

	limit64 := uint64(limit)
	scored, err := m.client.Query(opCtx, &qdrant.QueryPoints{
		CollectionName: m.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit64,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ingest.ErrStoreSearch, err)
	}

	results := make([]SearchResult, 0, len(scored))
	for _, point := range scored {
		id := ""
		if point.Id != nil {
			id = point.Id.GetUuid()
		}
		results = append(results, SearchResult{
			ID:      id,
			Score:   point.Score,
			Payload: payloadToMap(point.Payload),
		})
	}
	return results, nil
}

// CollectionInfo returns the current point count, indexed vector count
// and collection status.
func (m *Manager) CollectionInfo(ctx context.Context) (*CollectionInfo, error) {
	opCtx, cancel := m.opContext(ctx)
	defer cancel()

	info, err := m.client.GetCollectionInfo(opCtx, m.collection)
	if err != nil {
		return nil, fmt.Errorf("%w: reading info for %q: %v", ingest.ErrStoreRead, m.collection, err)
	}

	result := &CollectionInfo{
		Name:   m.collection,
		Status: "unknown",
	}
	if info.PointsCount != nil {
		result.PointsCount = int(*info.PointsCount)
	}
	if info.IndexedVectorsCount != nil {
		result.IndexedVectorsCount = int(*info.IndexedVectorsCount)
	}
	if info.Status != 0 {
		result.Status = info.Status.String()
	}
	return result, nil
}
