package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/niyamr/legisrag/models"
)

func scoredChunk(index int, score float64) models.ScoredChunk {
	return models.ScoredChunk{
		ChunkRecord: models.ChunkRecord{
			ID:         ChunkID("act.pdf", index),
			Content:    "chunk content",
			Source:     "act.pdf",
			ChunkIndex: index,
			Timestamp:  time.Now(),
		},
		Score: score,
	}
}

func TestSearch_TextModeOrdering(t *testing.T) {
	store := newStubChunkStore()
	require.NoError(t, store.UpsertChunks(context.Background(), []models.ChunkRecord{
		{ID: "a_chunk_2", Content: "penalty", Source: "a", ChunkIndex: 2},
		{ID: "a_chunk_0", Content: "penalty penalty", Source: "a", ChunkIndex: 0},
		{ID: "a_chunk_1", Content: "penalty", Source: "a", ChunkIndex: 1},
	}))
	r := NewRetriever(&stubEmbedder{}, newStubIndex(), store)

	resp, err := r.Search(context.Background(), models.SearchRequest{Query: "penalty", Mode: "text", TopK: 10})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	// Highest score first, then equal scores by ascending chunk index.
	assert.Equal(t, 0, resp.Results[0].ChunkIndex)
	assert.Equal(t, 2.0, resp.Results[0].Score)
	assert.Equal(t, 1, resp.Results[1].ChunkIndex)
	assert.Equal(t, 2, resp.Results[2].ChunkIndex)
}

func TestSearch_VectorMode(t *testing.T) {
	index := newStubIndex()
	index.results = []models.ScoredChunk{
		scoredChunk(3, 0.9),
		scoredChunk(1, 0.9),
		scoredChunk(0, 0.4),
	}
	embedder := &stubEmbedder{}
	r := NewRetriever(embedder, index, newStubChunkStore())

	resp, err := r.Search(context.Background(), models.SearchRequest{Query: "eligibility", Mode: "vector", TopK: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.calls, "vector mode embeds the query first")
	require.Len(t, resp.Results, 3)
	assert.Equal(t, 1, resp.Results[0].ChunkIndex, "equal scores break by ascending chunk index")
	assert.Equal(t, 3, resp.Results[1].ChunkIndex)
	assert.Equal(t, 0, resp.Results[2].ChunkIndex)
}

func TestSearch_TopKTruncation(t *testing.T) {
	store := newStubChunkStore()
	require.NoError(t, store.UpsertChunks(context.Background(), []models.ChunkRecord{
		{ID: "a_chunk_0", Content: "duty", Source: "a", ChunkIndex: 0},
		{ID: "a_chunk_1", Content: "duty", Source: "a", ChunkIndex: 1},
		{ID: "a_chunk_2", Content: "duty", Source: "a", ChunkIndex: 2},
	}))
	r := NewRetriever(&stubEmbedder{}, newStubIndex(), store)

	resp, err := r.Search(context.Background(), models.SearchRequest{Query: "duty", TopK: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestSearch_DefaultsToTextMode(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, newStubIndex(), newStubChunkStore())

	resp, err := r.Search(context.Background(), models.SearchRequest{Query: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "text", resp.Mode)
	assert.Empty(t, resp.Results)
}

func TestSearch_Validation(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, newStubIndex(), newStubChunkStore())

	_, err := r.Search(context.Background(), models.SearchRequest{Query: ""})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.Search(context.Background(), models.SearchRequest{Query: "x", Mode: "hybrid"})
	assert.ErrorIs(t, err, ErrValidation)
}
