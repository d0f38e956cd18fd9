package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github/niyamr/legisrag/models"
)

const defaultTopK = 5

// Retriever answers search requests against the chunk index: keyword
// retrieval hits the chunk store, vector retrieval embeds the query and hits
// the similarity index. There is no cache; every query re-hits the backend.
type Retriever struct {
	embedder Embedder
	index    VectorIndex
	store    ChunkStore
}

// NewRetriever constructs a retriever over the given ports.
func NewRetriever(embedder Embedder, index VectorIndex, store ChunkStore) *Retriever {
	return &Retriever{embedder: embedder, index: index, store: store}
}

// Search runs one retrieval request. Results are ordered by descending
// score; equal scores are broken by ascending chunk index.
func (r *Retriever) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	mode := req.Mode
	if mode == "" {
		mode = "text"
	}
	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	var (
		chunks []models.ScoredChunk
		err    error
	)
	switch mode {
	case "text":
		chunks, err = r.store.Search(ctx, req.Query)
	case "vector":
		var vector []float32
		vector, err = r.embedder.Embed(ctx, req.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}
		chunks, err = r.index.Query(ctx, vector, topK)
	default:
		return nil, fmt.Errorf("%w: mode must be \"text\" or \"vector\", got %q", ErrValidation, req.Mode)
	}
	if err != nil {
		return nil, err
	}

	sortChunks(chunks)
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}

	results := make([]models.SearchResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, models.SearchResult{
			ID:         c.ID,
			Content:    c.Content,
			Source:     c.Source,
			ChunkIndex: c.ChunkIndex,
			Timestamp:  c.Timestamp,
			Score:      c.Score,
		})
	}

	log.Printf("SERVICE: Search %q (mode=%s) returned %d results", req.Query, mode, len(results))
	return &models.SearchResponse{Query: req.Query, Mode: mode, Results: results}, nil
}

// sortChunks orders by score descending, ties by ascending chunk index.
func sortChunks(chunks []models.ScoredChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
}
