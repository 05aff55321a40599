package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkFor(botID string, ordinal int64, content string, embedding []float32) *ChunkRecord {
	return &ChunkRecord{
		ID:        fmt.Sprintf("%s_%d", botID, ordinal),
		BotID:     botID,
		PageURL:   "https://example.com/page",
		Ordinal:   ordinal,
		Content:   content,
		Embedding: embedding,
	}
}

func TestMemoryIndexQueryEmptyBot(t *testing.T) {
	idx := NewMemoryIndex()

	hits, err := idx.Query(context.Background(), "nobody", []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryIndexRoundTrip(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "bot-1", []*ChunkRecord{
		chunkFor("bot-1", 0, "pumps and compressors", []float32{1, 0, 0}),
		chunkFor("bot-1", 1, "gears and bearings", []float32{0, 1, 0}),
		chunkFor("bot-1", 2, "turbines and blades", []float32{0, 0, 1}),
	}))

	// Query nearest to the first chunk's embedding.
	hits, err := idx.Query(ctx, "bot-1", []float32{0.9, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "bot-1_0", hits[0].ID)
	assert.Equal(t, "pumps and compressors", hits[0].Content)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestMemoryIndexBotScoping(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "bot-a", []*ChunkRecord{
		chunkFor("bot-a", 0, "alpha content", []float32{1, 0}),
	}))
	require.NoError(t, idx.Upsert(ctx, "bot-b", []*ChunkRecord{
		chunkFor("bot-b", 0, "beta content", []float32{1, 0}),
	}))

	hits, err := idx.Query(ctx, "bot-a", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "bot-a_0", hits[0].ID)
}

func TestMemoryIndexReset(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "bot-r", []*ChunkRecord{
		chunkFor("bot-r", 0, "stale content", []float32{1, 0}),
	}))
	require.NoError(t, idx.Reset(ctx, "bot-r"))

	n, err := idx.Count(ctx, "bot-r")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Resetting an absent index is not an error.
	assert.NoError(t, idx.Reset(ctx, "never-existed"))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Equal(t, float32(0), cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, float32(0), cosine([]float32{1}, []float32{1, 2}))
}
