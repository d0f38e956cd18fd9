package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github/niyamr/legisrag/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	content     TEXT NOT NULL,
	embedding   TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	UNIQUE(source, chunk_index)
);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);

CREATE TABLE IF NOT EXISTS documents (
	source      TEXT PRIMARY KEY,
	text        TEXT NOT NULL,
	chunk_count INTEGER NOT NULL,
	indexed_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	source     TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// SQLiteChunkStore implements the ChunkStore port on an embedded SQLite
// database: chunk records, extracted document text and analysis history.
type SQLiteChunkStore struct {
	db *sql.DB
}

// NewSQLiteChunkStore opens (and if needed creates) the database at path.
// ":memory:" gives an ephemeral store.
func NewSQLiteChunkStore(path string) (*SQLiteChunkStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// SQLite benefits from a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteChunkStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteChunkStore) Close() error {
	return s.db.Close()
}

// UpsertChunks writes chunk records, overwriting rows with the same ID.
func (s *SQLiteChunkStore) UpsertChunks(ctx context.Context, records []models.ChunkRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO chunks (id, source, chunk_index, content, embedding, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			timestamp = excluded.timestamp
	`
	for _, rec := range records {
		embedding, err := json.Marshal(rec.Vector)
		if err != nil {
			return fmt.Errorf("failed to encode embedding for %s: %w", rec.ID, err)
		}
		_, err = tx.ExecContext(ctx, query,
			rec.ID, rec.Source, rec.ChunkIndex, rec.Content,
			string(embedding), rec.Timestamp.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// SaveDocument stores the cleaned full text of an extracted document.
func (s *SQLiteChunkStore) SaveDocument(ctx context.Context, doc models.DocumentRecord) error {
	const query = `
		INSERT INTO documents (source, text, chunk_count, indexed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			text = excluded.text,
			chunk_count = excluded.chunk_count,
			indexed_at = excluded.indexed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		doc.Source, doc.Text, doc.ChunkCount, doc.IndexedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save document %q: %w", doc.Source, err)
	}
	return nil
}

// Document returns the stored extraction for a source.
func (s *SQLiteChunkStore) Document(ctx context.Context, source string) (*models.DocumentRecord, error) {
	const query = `SELECT source, text, chunk_count, indexed_at FROM documents WHERE source = ?`
	var doc models.DocumentRecord
	var indexedAt string
	err := s.db.QueryRowContext(ctx, query, source).Scan(&doc.Source, &doc.Text, &doc.ChunkCount, &indexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: source %q is not indexed", ErrNotFound, source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %q: %w", source, err)
	}
	if parsed, err := time.Parse(time.RFC3339, indexedAt); err == nil {
		doc.IndexedAt = parsed
	}
	return &doc, nil
}

// Search performs keyword retrieval over chunk content. The score is the
// number of case-insensitive occurrences of the query in the chunk.
func (s *SQLiteChunkStore) Search(ctx context.Context, query string) ([]models.ScoredChunk, error) {
	const stmt = `
		SELECT id, source, chunk_index, content, timestamp
		FROM chunks
		WHERE content LIKE '%' || ? || '%'
	`
	rows, err := s.db.QueryContext(ctx, stmt, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	needle := strings.ToLower(query)
	var chunks []models.ScoredChunk
	for rows.Next() {
		var chunk models.ScoredChunk
		var ts string
		if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.ChunkIndex, &chunk.Content, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			chunk.Timestamp = parsed
		}
		chunk.Score = float64(strings.Count(strings.ToLower(chunk.Content), needle))
		if chunk.Score > 0 {
			chunks = append(chunks, chunk)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk rows: %w", err)
	}
	// The retriever orders and truncates.
	return chunks, nil
}

// DeleteSource removes a document and all of its chunks.
func (s *SQLiteChunkStore) DeleteSource(ctx context.Context, source string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source = ?`, source); err != nil {
		return fmt.Errorf("failed to delete chunks for %q: %w", source, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE source = ?`, source); err != nil {
		return fmt.Errorf("failed to delete document %q: %w", source, err)
	}
	return nil
}

// ChunkCount reports the number of stored chunks for a source.
func (s *SQLiteChunkStore) ChunkCount(ctx context.Context, source string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE source = ?`, source).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for %q: %w", source, err)
	}
	return count, nil
}

// SaveAnalysis appends an analysis history record.
func (s *SQLiteChunkStore) SaveAnalysis(ctx context.Context, record models.AnalysisRecord) error {
	const query = `INSERT INTO analyses (id, kind, source, payload, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.Kind, record.Source, record.Payload,
		record.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save %s analysis: %w", record.Kind, err)
	}
	return nil
}
