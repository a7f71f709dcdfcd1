// Package scoring implements the per-asset scoring pipeline: a
// sequence of stage functions (pre-filter, triage, language detection,
// LLM/visual scoring, aggregation, persistence) composed by Pipeline.Run,
// plus a process-wide cost tracker for LLM usage accounting.
package scoring

import (
	"context"

	"github.com/allthingstrust/truststack/pkg/models"
)

// ContentScores is what an external scoring service returns for one asset:
// the five dimension scores normalised to [0,1], plus a rationale map that
// must include "detected_attributes" and may include "dimensions" detail
// and a "visual_analysis" blob.
type ContentScores struct {
	Provenance     float64
	Verification   float64
	Transparency   float64
	Coherence      float64
	Resonance      float64
	Rationale      map[string]any
	VisualAnalysis map[string]any
	Model          string
	PromptTokens   int
	CompletionTokens int
}

// Service is the injectable external scorer contract (LLM and/or visual
// analyzer). A JSON/HTTP implementation lives in httpservice.go; test
// doubles can implement this directly.
type Service interface {
	ScoreBatch(ctx context.Context, items []*models.NormalizedContent) ([]*ContentScores, error)
}
