package services

import (
	"context"

	"github/niyamr/legisrag/models"
)

// Embedder turns a piece of text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the external similarity-search index. Upserts are keyed by
// chunk ID, so re-indexing the same source overwrites existing records.
type VectorIndex interface {
	Upsert(ctx context.Context, records []models.ChunkRecord) error
	Query(ctx context.Context, vector []float32, topK int) ([]models.ScoredChunk, error)
	DeleteSource(ctx context.Context, source string) error
	Count(ctx context.Context) (int, error)
}

// ChunkStore is the document database holding chunk records, extracted
// document text and analysis history.
type ChunkStore interface {
	UpsertChunks(ctx context.Context, records []models.ChunkRecord) error
	SaveDocument(ctx context.Context, doc models.DocumentRecord) error
	Document(ctx context.Context, source string) (*models.DocumentRecord, error)
	Search(ctx context.Context, query string) ([]models.ScoredChunk, error)
	DeleteSource(ctx context.Context, source string) error
	ChunkCount(ctx context.Context, source string) (int, error)
	SaveAnalysis(ctx context.Context, record models.AnalysisRecord) error
}

// Generator is the LLM backend behind the analysis operations.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, temperature float32) (string, error)
}

// BlobStore hands out raw document bytes by name.
type BlobStore interface {
	Fetch(name string) ([]byte, error)
}
