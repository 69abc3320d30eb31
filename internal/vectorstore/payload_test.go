package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
)

func TestPayloadToMap(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"text":        "chunk body",
		"chunk_index": int64(2),
		"score":       0.5,
		"table":       true,
		"tags":        []any{"a", "b"},
		"nested":      map[string]any{"page": int64(3)},
	})

	got := payloadToMap(payload)

	assert.Equal(t, "chunk body", got["text"])
	assert.Equal(t, int64(2), got["chunk_index"])
	assert.Equal(t, 0.5, got["score"])
	assert.Equal(t, true, got["table"])
	assert.Equal(t, []any{"a", "b"}, got["tags"])
	assert.Equal(t, map[string]any{"page": int64(3)}, got["nested"])
}

func TestPayloadToMapSkipsNilValues(t *testing.T) {
	got := payloadToMap(map[string]*qdrant.Value{
		"present": qdrant.NewValueString("x"),
		"missing": nil,
	})

	assert.Equal(t, map[string]any{"present": "x"}, got)
}
