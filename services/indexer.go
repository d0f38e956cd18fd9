package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github/niyamr/legisrag/models"
)

// IndexingService runs the ingestion pipeline: fetch a document, extract and
// clean its text, split it into overlapping windows, embed every window and
// upsert the records into the vector index and the chunk store.
type IndexingService struct {
	blobs    BlobStore
	embedder Embedder
	index    VectorIndex
	store    ChunkStore

	window           int
	overlap          int
	maxDocumentBytes int
}

// NewIndexingService wires the pipeline. Window/overlap validity is enforced
// on every run; the configuration layer rejects bad values at startup.
func NewIndexingService(blobs BlobStore, embedder Embedder, index VectorIndex, store ChunkStore, window, overlap, maxDocumentBytes int) *IndexingService {
	return &IndexingService{
		blobs:            blobs,
		embedder:         embedder,
		index:            index,
		store:            store,
		window:           window,
		overlap:          overlap,
		maxDocumentBytes: maxDocumentBytes,
	}
}

// ChunkID derives the deterministic record ID for (source, index). The
// source name is stripped of its extension and sanitized so the ID is a
// valid index key.
func ChunkID(source string, index int) string {
	clean := strings.TrimSuffix(source, filepath.Ext(source))
	clean = strings.ReplaceAll(clean, ".", "_")
	clean = strings.ReplaceAll(clean, " ", "_")
	return fmt.Sprintf("%s_chunk_%d", clean, index)
}

// IndexDocument ingests one document end to end and reports how many chunks
// were written. Re-running on the same source overwrites; stale chunks from
// a previous, longer extraction are removed first.
func (s *IndexingService) IndexDocument(ctx context.Context, blobName string) (*models.ExtractTextResponse, error) {
	if blobName == "" {
		return nil, fmt.Errorf("%w: blob_name is required", ErrValidation)
	}
	log.Printf("INDEXER: Processing document: %s", blobName)

	data, err := s.blobs.Fetch(blobName)
	if err != nil {
		return nil, err
	}

	text, err := ExtractText(blobName, data)
	if err != nil {
		return nil, err
	}
	text = CleanText(text)
	if text == "" {
		return nil, fmt.Errorf("%w: document %q contains no extractable text", ErrValidation, blobName)
	}
	if len(text) > s.maxDocumentBytes {
		return nil, fmt.Errorf("%w: document %q is %d bytes of text, limit is %d", ErrValidation, blobName, len(text), s.maxDocumentBytes)
	}

	chunks, err := ChunkText(text, s.window, s.overlap)
	if err != nil {
		return nil, err
	}
	log.Printf("INDEXER: Split %s into %d chunks", blobName, len(chunks))

	now := time.Now().UTC()
	records := make([]models.ChunkRecord, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("could not embed chunk %d of %s: %w", i, blobName, err)
		}
		records = append(records, models.ChunkRecord{
			ID:         ChunkID(blobName, i),
			Content:    chunk,
			Vector:     vector,
			Source:     blobName,
			ChunkIndex: i,
			Timestamp:  now,
		})
	}

	// Delete before upsert so a shorter re-extraction leaves no stale tail.
	if err := s.index.DeleteSource(ctx, blobName); err != nil {
		return nil, err
	}
	if err := s.store.DeleteSource(ctx, blobName); err != nil {
		return nil, err
	}
	if err := s.index.Upsert(ctx, records); err != nil {
		return nil, err
	}
	if err := s.store.UpsertChunks(ctx, records); err != nil {
		return nil, err
	}
	if err := s.store.SaveDocument(ctx, models.DocumentRecord{
		Source:     blobName,
		Text:       text,
		ChunkCount: len(records),
		IndexedAt:  now,
	}); err != nil {
		return nil, err
	}

	log.Printf("INDEXER: Indexed %d chunks for %s", len(records), blobName)
	return &models.ExtractTextResponse{ChunksIndexed: len(records), Source: blobName}, nil
}

// RemoveDocument drops every trace of a source from the index and the store.
func (s *IndexingService) RemoveDocument(ctx context.Context, blobName string) error {
	if err := s.index.DeleteSource(ctx, blobName); err != nil {
		return err
	}
	return s.store.DeleteSource(ctx, blobName)
}

// WatchDirectory re-indexes documents as they change on disk. It blocks
// until the context is cancelled.
func (s *IndexingService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSupportedDocument(event.Name) {
					continue
				}
				name := filepath.Base(event.Name)

				// Editors often write via create-temp-and-rename, so Create
				// and Write are handled the same way.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: Document modified/created: %s. Re-indexing...", name)
					if _, err := s.IndexDocument(ctx, name); err != nil {
						log.Printf("WATCHER ERROR: Failed to index %s: %v", name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: Document removed: %s. Dropping from index...", name)
					if err := s.RemoveDocument(ctx, name); err != nil {
						log.Printf("WATCHER ERROR: Failed to remove %s: %v", name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching documents directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to watch path: %v", err)
		return
	}
	<-ctx.Done()
	log.Println("WATCHER: Context cancelled, shutting down watcher.")
}

func isSupportedDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	default:
		return false
	}
}
