package models

import "time"

// ChunkRecord is one indexed window of a legislative document. Records are
// immutable once stored and identified by (Source, ChunkIndex); the ID is
// derived from that pair so re-extraction overwrites instead of duplicating.
type ChunkRecord struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Vector     []float32 `json:"vector,omitempty"`
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunk_index"`
	Timestamp  time.Time `json:"timestamp"`
}

// ScoredChunk is a chunk record paired with a relevance score.
type ScoredChunk struct {
	ChunkRecord
	Score float64 `json:"score"`
}

// DocumentRecord keeps the cleaned full text of an extracted document so
// analysis operations can run against a previously indexed source.
type DocumentRecord struct {
	Source     string    `json:"source"`
	Text       string    `json:"text"`
	ChunkCount int       `json:"chunk_count"`
	IndexedAt  time.Time `json:"indexed_at"`
}

// AnalysisRecord is the stored result of one analysis operation. History is
// kept incidentally; it is not a system of record.
type AnalysisRecord struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "summary", "sections" or "rule_check"
	Source    string    `json:"source"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
