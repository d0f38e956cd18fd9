package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github/niyamr/legisrag/models"
)

// stubBlobStore serves documents from a map.
type stubBlobStore struct {
	docs map[string][]byte
}

func (s *stubBlobStore) Fetch(name string) ([]byte, error) {
	data, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: document %q", ErrNotFound, name)
	}
	return data, nil
}

// stubEmbedder returns a tiny deterministic vector per text.
type stubEmbedder struct {
	calls int
	fail  error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.fail != nil {
		return nil, s.fail
	}
	return []float32{float32(len(text)), 1}, nil
}

// stubIndex is an in-memory VectorIndex keyed by chunk ID.
type stubIndex struct {
	mu      sync.Mutex
	records map[string]models.ChunkRecord
	results []models.ScoredChunk // canned query results
}

func newStubIndex() *stubIndex {
	return &stubIndex{records: make(map[string]models.ChunkRecord)}
}

func (s *stubIndex) Upsert(_ context.Context, records []models.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	return nil
}

func (s *stubIndex) Query(_ context.Context, _ []float32, topK int) ([]models.ScoredChunk, error) {
	if len(s.results) > topK {
		return s.results[:topK], nil
	}
	return s.results, nil
}

func (s *stubIndex) DeleteSource(_ context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if rec.Source == source {
			delete(s.records, id)
		}
	}
	return nil
}

func (s *stubIndex) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

// stubChunkStore is an in-memory ChunkStore.
type stubChunkStore struct {
	mu       sync.Mutex
	chunks   map[string]models.ChunkRecord
	docs     map[string]models.DocumentRecord
	analyses []models.AnalysisRecord
}

func newStubChunkStore() *stubChunkStore {
	return &stubChunkStore{
		chunks: make(map[string]models.ChunkRecord),
		docs:   make(map[string]models.DocumentRecord),
	}
}

func (s *stubChunkStore) UpsertChunks(_ context.Context, records []models.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.chunks[rec.ID] = rec
	}
	return nil
}

func (s *stubChunkStore) SaveDocument(_ context.Context, doc models.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.Source] = doc
	return nil
}

func (s *stubChunkStore) Document(_ context.Context, source string) (*models.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[source]
	if !ok {
		return nil, fmt.Errorf("%w: source %q is not indexed", ErrNotFound, source)
	}
	return &doc, nil
}

func (s *stubChunkStore) Search(_ context.Context, query string) ([]models.ScoredChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ScoredChunk
	for _, rec := range s.chunks {
		score := float64(strings.Count(strings.ToLower(rec.Content), strings.ToLower(query)))
		if score > 0 {
			out = append(out, models.ScoredChunk{ChunkRecord: rec, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubChunkStore) DeleteSource(_ context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.chunks {
		if rec.Source == source {
			delete(s.chunks, id)
		}
	}
	delete(s.docs, source)
	return nil
}

func (s *stubChunkStore) ChunkCount(_ context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, rec := range s.chunks {
		if rec.Source == source {
			count++
		}
	}
	return count, nil
}

func (s *stubChunkStore) SaveAnalysis(_ context.Context, record models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses = append(s.analyses, record)
	return nil
}

// stubGenerator replays canned model responses in order.
type stubGenerator struct {
	responses []string
	prompts   []string
	systems   []string
	temps     []float32
	fail      error
}

func (s *stubGenerator) Generate(_ context.Context, system, prompt string, temperature float32) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.systems = append(s.systems, system)
	s.prompts = append(s.prompts, prompt)
	s.temps = append(s.temps, temperature)
	if len(s.responses) == 0 {
		return "", fmt.Errorf("stub generator exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}
