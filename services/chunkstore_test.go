package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/niyamr/legisrag/models"
)

func newTestStore(t *testing.T) *SQLiteChunkStore {
	t.Helper()
	store, err := NewSQLiteChunkStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func chunkFixture(source string, index int, content string) models.ChunkRecord {
	return models.ChunkRecord{
		ID:         ChunkID(source, index),
		Content:    content,
		Vector:     []float32{0.1, 0.2},
		Source:     source,
		ChunkIndex: index,
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteChunkStore_UpsertIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []models.ChunkRecord{
		chunkFixture("act.pdf", 0, "the secretary of state must"),
		chunkFixture("act.pdf", 1, "eligibility criteria apply"),
	}
	require.NoError(t, store.UpsertChunks(ctx, records))

	count, err := store.ChunkCount(ctx, "act.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A second run with identical chunk boundaries must not grow the store.
	require.NoError(t, store.UpsertChunks(ctx, records))
	count, err = store.ChunkCount(ctx, "act.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLiteChunkStore_UpsertOverwritesContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertChunks(ctx, []models.ChunkRecord{chunkFixture("act.pdf", 0, "old text")}))
	require.NoError(t, store.UpsertChunks(ctx, []models.ChunkRecord{chunkFixture("act.pdf", 0, "new text")}))

	chunks, err := store.Search(ctx, "new text")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new text", chunks[0].Content)

	chunks, err = store.Search(ctx, "old text")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSQLiteChunkStore_SearchScoresByOccurrences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertChunks(ctx, []models.ChunkRecord{
		chunkFixture("act.pdf", 0, "penalty for late filing"),
		chunkFixture("act.pdf", 1, "penalty on conviction: a penalty not exceeding"),
		chunkFixture("act.pdf", 2, "record keeping duties"),
	}))

	chunks, err := store.Search(ctx, "Penalty")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		if c.ChunkIndex == 1 {
			assert.Equal(t, 2.0, c.Score)
		} else {
			assert.Equal(t, 1.0, c.Score)
		}
	}
}

func TestSQLiteChunkStore_DocumentRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := models.DocumentRecord{
		Source:     "act.pdf",
		Text:       "full cleaned text",
		ChunkCount: 3,
		IndexedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.Document(ctx, "act.pdf")
	require.NoError(t, err)
	assert.Equal(t, doc.Text, got.Text)
	assert.Equal(t, doc.ChunkCount, got.ChunkCount)
	assert.True(t, doc.IndexedAt.Equal(got.IndexedAt))

	_, err = store.Document(ctx, "missing.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteChunkStore_DeleteSource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertChunks(ctx, []models.ChunkRecord{
		chunkFixture("a.pdf", 0, "first act"),
		chunkFixture("b.pdf", 0, "second act"),
	}))
	require.NoError(t, store.SaveDocument(ctx, models.DocumentRecord{Source: "a.pdf", Text: "t", ChunkCount: 1, IndexedAt: time.Now()}))

	require.NoError(t, store.DeleteSource(ctx, "a.pdf"))

	count, err := store.ChunkCount(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = store.ChunkCount(ctx, "b.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = store.Document(ctx, "a.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteChunkStore_SaveAnalysis(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SaveAnalysis(ctx, models.AnalysisRecord{
		ID:        "a1",
		Kind:      "summary",
		Source:    "act.pdf",
		Payload:   `{"bullets":["one"]}`,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	// Duplicate IDs are rejected: history records are append-only.
	err = store.SaveAnalysis(ctx, models.AnalysisRecord{ID: "a1", Kind: "summary", Source: "act.pdf", Payload: "{}", CreatedAt: time.Now()})
	require.Error(t, err)
}
