package models

import "time"

// ExtractTextResponse reports a completed indexing run.
type ExtractTextResponse struct {
	ChunksIndexed int    `json:"chunks_indexed"`
	Source        string `json:"source"`
}

// SummarizeResponse carries the bullet-point summary of an act.
type SummarizeResponse struct {
	Bullets []string `json:"bullets"`
}

// SectionsResponse holds the structured legislative sections extracted from
// an act. Every field is present in the JSON output even when empty.
type SectionsResponse struct {
	Definitions      []string `json:"definitions"`
	Obligations      []string `json:"obligations"`
	Responsibilities []string `json:"responsibilities"`
	Eligibility      []string `json:"eligibility"`
	Payments         []string `json:"payments"`
	Penalties        []string `json:"penalties"`
	RecordKeeping    []string `json:"record_keeping"`
}

// RuleResult is the outcome of checking one compliance rule against an act.
type RuleResult struct {
	RuleID     string  `json:"rule_id"`
	Passed     bool    `json:"passed"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// SearchResult is one retrieved chunk. The embedding vector is omitted from
// search responses; it lives in the index.
type SearchResult struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunk_index"`
	Timestamp  time.Time `json:"timestamp"`
	Score      float64   `json:"score"`
}

// SearchResponse is the ordered result set for a search request.
type SearchResponse struct {
	Query   string         `json:"query"`
	Mode    string         `json:"mode"`
	Results []SearchResult `json:"results"`
}
