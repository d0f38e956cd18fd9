package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github/niyamr/legisrag/models"
)

// ChromaIndex adapts a Chroma collection to the VectorIndex port. Chunk
// metadata (source, chunk_index, timestamp) travels with every record so
// query results can be rebuilt without a second lookup.
type ChromaIndex struct {
	collection chromago.Collection
}

// NewChromaIndex wraps an existing collection.
func NewChromaIndex(collection chromago.Collection) *ChromaIndex {
	return &ChromaIndex{collection: collection}
}

// GetOrCreateCollection fetches or creates the named collection.
func GetOrCreateCollection(ctx context.Context, client chromago.Client, name string) (chromago.Collection, error) {
	collection, err := client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "legislative act chunk index"),
				chromago.NewStringAttribute("created_by", "legisrag"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", name, err)
	}
	return collection, nil
}

// Upsert writes chunk records keyed by their deterministic IDs, so a
// re-index of the same source overwrites in place.
func (c *ChromaIndex) Upsert(ctx context.Context, records []models.ChunkRecord) error {
	for _, rec := range records {
		embedding := embeddings.NewEmbeddingFromFloat32(rec.Vector)
		metadata := chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", rec.Source),
			chromago.NewIntAttribute("chunk_index", int64(rec.ChunkIndex)),
			chromago.NewStringAttribute("timestamp", rec.Timestamp.UTC().Format(time.RFC3339)),
		)
		err := c.collection.Upsert(ctx,
			chromago.WithIDs(chromago.DocumentID(rec.ID)),
			chromago.WithTexts(rec.Content),
			chromago.WithEmbeddings(embedding),
			chromago.WithMetadatas(metadata),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", rec.ID, err)
		}
	}
	return nil
}

// Query runs a similarity search and maps distances to scores (1 - distance,
// cosine space), so higher is more relevant.
func (c *ChromaIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.ScoredChunk, error) {
	results, err := c.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chroma: %w", err)
	}

	idGroups := results.GetIDGroups()
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(documentGroups) == 0 {
		return nil, nil
	}

	var chunks []models.ScoredChunk
	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		chunk := models.ScoredChunk{
			ChunkRecord: models.ChunkRecord{Content: doc.ContentString()},
		}
		if len(idGroups) > 0 && i < len(idGroups[0]) {
			chunk.ID = string(idGroups[0][i])
		}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			chunk.Score = 1 - float64(distanceGroups[0][i])
		}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			applyChunkMetadata(&chunk.ChunkRecord, metadataToMap(metadataGroups[0][i]))
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// DeleteSource removes every record belonging to a source document.
func (c *ChromaIndex) DeleteSource(ctx context.Context, source string) error {
	where := chromago.EqString("source", source)
	if err := c.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete records for source %q: %w", source, err)
	}
	return nil
}

// Count returns the total number of records in the collection.
func (c *ChromaIndex) Count(ctx context.Context) (int, error) {
	count, err := c.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection records: %w", err)
	}
	return int(count), nil
}

// metadataToMap converts Chroma document metadata into a plain map. The
// metadata type exposes no accessor for its values; round-tripping through
// JSON is the supported conversion.
func metadataToMap(metadata chromago.DocumentMetadata) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal chunk metadata: %v", err)
		return nil
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		log.Printf("WARN: could not unmarshal chunk metadata: %v", err)
		return nil
	}
	return metadataMap
}

func applyChunkMetadata(rec *models.ChunkRecord, metadata map[string]interface{}) {
	if metadata == nil {
		return
	}
	if source, ok := metadata["source"].(string); ok {
		rec.Source = source
	}
	if idx, ok := metadata["chunk_index"].(float64); ok {
		rec.ChunkIndex = int(idx)
	}
	if ts, ok := metadata["timestamp"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = parsed
		}
	}
}
