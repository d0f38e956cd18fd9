package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github/niyamr/legisrag/models"
)

// maxPromptChars bounds how much act text is sent to the model per call.
const maxPromptChars = 8000

// passConfidence: a model this certain about its evidence counts as a pass
// even when it answered false.
const passConfidence = 0.9

// Analyzer runs the three analysis operations against the LLM backend. Each
// operation is a stateless request/response round trip; results are parsed
// strictly and a response that does not match the expected shape fails with
// ErrParse rather than a guess.
type Analyzer struct {
	generator Generator
	store     ChunkStore
}

// NewAnalyzer constructs an analyzer over the generator and the chunk store.
func NewAnalyzer(generator Generator, store ChunkStore) *Analyzer {
	return &Analyzer{generator: generator, store: store}
}

// resolveText takes the act text from the request, or loads the stored
// extraction when only a source is named.
func (a *Analyzer) resolveText(ctx context.Context, req models.AnalyzeRequest) (text, source string, err error) {
	if req.Text != "" {
		return req.Text, req.Source, nil
	}
	if req.Source == "" {
		return "", "", fmt.Errorf("%w: either text or source is required", ErrValidation)
	}
	doc, err := a.store.Document(ctx, req.Source)
	if err != nil {
		return "", "", err
	}
	return doc.Text, req.Source, nil
}

// Summarize produces a 5-10 bullet summary of an act.
func (a *Analyzer) Summarize(ctx context.Context, req models.AnalyzeRequest) (*models.SummarizeResponse, error) {
	text, source, err := a.resolveText(ctx, req)
	if err != nil {
		return nil, err
	}

	prompt, err := summarizePrompt.Format(map[string]any{"text": truncate(text, maxPromptChars)})
	if err != nil {
		return nil, fmt.Errorf("failed to format summarize prompt: %w", err)
	}
	raw, err := a.generator.Generate(ctx, summarizeSystem, prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("summarize call failed: %w", err)
	}

	bullets := parseBullets(raw)
	if len(bullets) == 0 {
		return nil, fmt.Errorf("%w: summary contained no bullet points", ErrParse)
	}

	resp := &models.SummarizeResponse{Bullets: bullets}
	a.saveAnalysis(ctx, "summary", source, resp)
	return resp, nil
}

// ExtractSections pulls the seven structured legislative sections out of an
// act.
func (a *Analyzer) ExtractSections(ctx context.Context, req models.AnalyzeRequest) (*models.SectionsResponse, error) {
	text, source, err := a.resolveText(ctx, req)
	if err != nil {
		return nil, err
	}

	prompt, err := extractSectionsPrompt.Format(map[string]any{"text": truncate(text, maxPromptChars)})
	if err != nil {
		return nil, fmt.Errorf("failed to format sections prompt: %w", err)
	}
	raw, err := a.generator.Generate(ctx, extractSectionsSystem, prompt, 0.2)
	if err != nil {
		return nil, fmt.Errorf("extract-sections call failed: %w", err)
	}

	var sections models.SectionsResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &sections); err != nil {
		return nil, fmt.Errorf("%w: sections response is not valid JSON: %v", ErrParse, err)
	}
	normalizeSections(&sections)

	a.saveAnalysis(ctx, "sections", source, &sections)
	return &sections, nil
}

// CheckRules applies the six fixed compliance rules. The result always
// contains exactly one entry per rule, in rule order.
func (a *Analyzer) CheckRules(ctx context.Context, req models.AnalyzeRequest) ([]models.RuleResult, error) {
	text, source, err := a.resolveText(ctx, req)
	if err != nil {
		return nil, err
	}
	truncated := truncate(text, maxPromptChars)

	results := make([]models.RuleResult, 0, len(ComplianceRules))
	for _, rule := range ComplianceRules {
		prompt, err := checkRulePrompt.Format(map[string]any{"rule": rule.Description, "text": truncated})
		if err != nil {
			return nil, fmt.Errorf("failed to format rule prompt: %w", err)
		}
		raw, err := a.generator.Generate(ctx, checkRuleSystem, prompt, 0.1)
		if err != nil {
			return nil, fmt.Errorf("rule %s check failed: %w", rule.ID, err)
		}

		var verdict struct {
			Passed     bool    `json:"passed"`
			Confidence float64 `json:"confidence"`
			Evidence   string  `json:"evidence"`
		}
		if err := json.Unmarshal([]byte(stripCodeFence(raw)), &verdict); err != nil {
			return nil, fmt.Errorf("%w: rule %s response is not valid JSON: %v", ErrParse, rule.ID, err)
		}

		confidence := clamp01(verdict.Confidence)
		passed := verdict.Passed
		if confidence >= passConfidence {
			passed = true
		}
		results = append(results, models.RuleResult{
			RuleID:     rule.ID,
			Passed:     passed,
			Confidence: confidence,
			Evidence:   verdict.Evidence,
		})
	}

	a.saveAnalysis(ctx, "rule_check", source, results)
	return results, nil
}

// saveAnalysis records analysis history. Failures are logged, not surfaced:
// history is incidental, the caller already has the result.
func (a *Analyzer) saveAnalysis(ctx context.Context, kind, source string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("WARN: could not encode %s history: %v", kind, err)
		return
	}
	record := models.AnalysisRecord{
		ID:        uuid.New().String(),
		Kind:      kind,
		Source:    source,
		Payload:   string(data),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveAnalysis(ctx, record); err != nil {
		log.Printf("WARN: could not save %s history: %v", kind, err)
	}
}

// parseBullets turns the model's bullet list into clean strings, one per
// line, with leading list markers stripped.
func parseBullets(raw string) []string {
	var bullets []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"- ", "* ", "• "} {
			if strings.HasPrefix(line, marker) {
				line = strings.TrimSpace(strings.TrimPrefix(line, marker))
				break
			}
		}
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	return bullets
}

// stripCodeFence removes a surrounding markdown code fence. Gemini routinely
// wraps JSON output in one; removing it is normalization, not guessing.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:] // drop the language tag line
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// normalizeSections replaces nil slices so every key serializes as [].
func normalizeSections(s *models.SectionsResponse) {
	for _, field := range []*[]string{
		&s.Definitions, &s.Obligations, &s.Responsibilities,
		&s.Eligibility, &s.Payments, &s.Penalties, &s.RecordKeeping,
	} {
		if *field == nil {
			*field = []string{}
		}
	}
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
