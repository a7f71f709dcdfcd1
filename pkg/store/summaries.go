package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allthingstrust/truststack/pkg/models"
)

// SummaryRepository implements orchestrator.SummaryStore and backs the
// per-asset dimension_scores writes used by scoring.Persister.
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// SaveSummary upserts the per-run trust summary row.
func (r *SummaryRepository) SaveSummary(ctx context.Context, summary *models.TrustStackSummary) error {
	insightsJSON, err := json.Marshal(summary.Insights)
	if err != nil {
		return fmt.Errorf("store: marshal insights: %w", err)
	}
	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}

	const q = `INSERT INTO truststack_summary
		(id, run_id, provenance, verification, transparency, coherence, resonance, overall_score, authenticity_ratio, insights)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (run_id) DO UPDATE SET
			provenance = EXCLUDED.provenance,
			verification = EXCLUDED.verification,
			transparency = EXCLUDED.transparency,
			coherence = EXCLUDED.coherence,
			resonance = EXCLUDED.resonance,
			overall_score = EXCLUDED.overall_score,
			authenticity_ratio = EXCLUDED.authenticity_ratio,
			insights = EXCLUDED.insights`

	_, err = r.pool.Exec(ctx, q, summary.ID, summary.RunID, summary.Provenance, summary.Verification,
		summary.Transparency, summary.Coherence, summary.Resonance, summary.OverallScore,
		summary.AuthenticityRatio, insightsJSON)
	if err != nil {
		return fmt.Errorf("store: upsert summary: %w", err)
	}
	return nil
}

// SummaryForRun reads back the one-per-run trust summary, for report
// retrieval. Returns (nil, nil) if the run hasn't finished scoring yet.
func (r *SummaryRepository) SummaryForRun(ctx context.Context, runID string) (*models.TrustStackSummary, error) {
	const q = `SELECT id, run_id, provenance, verification, transparency, coherence, resonance,
		overall_score, authenticity_ratio, insights
		FROM truststack_summary WHERE run_id = $1`

	var s models.TrustStackSummary
	var insightsJSON []byte
	err := r.pool.QueryRow(ctx, q, runID).Scan(&s.ID, &s.RunID, &s.Provenance, &s.Verification,
		&s.Transparency, &s.Coherence, &s.Resonance, &s.OverallScore, &s.AuthenticityRatio, &insightsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: summary for run: %w", err)
	}
	if len(insightsJSON) > 0 {
		_ = json.Unmarshal(insightsJSON, &s.Insights)
	}
	return &s, nil
}

// persistDimensionScore upserts the five-dimension score row for a single
// asset; shared by AssetRepository.PersistAssetScore.
func (r *SummaryRepository) persistDimensionScore(ctx context.Context, assetID string, scores models.DimensionScores) error {
	rationaleJSON, err := json.Marshal(scores.Rationale)
	if err != nil {
		return fmt.Errorf("store: marshal rationale: %w", err)
	}
	flagsJSON, err := json.Marshal(scores.Flags)
	if err != nil {
		return fmt.Errorf("store: marshal flags: %w", err)
	}
	id := scores.ID
	if id == "" {
		id = uuid.New().String()
	}

	const q = `INSERT INTO dimension_scores
		(id, asset_id, provenance, verification, transparency, coherence, resonance, overall, classification, rationale, flags)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (asset_id) DO UPDATE SET
			provenance = EXCLUDED.provenance,
			verification = EXCLUDED.verification,
			transparency = EXCLUDED.transparency,
			coherence = EXCLUDED.coherence,
			resonance = EXCLUDED.resonance,
			overall = EXCLUDED.overall,
			classification = EXCLUDED.classification,
			rationale = EXCLUDED.rationale,
			flags = EXCLUDED.flags`

	_, err = r.pool.Exec(ctx, q, id, assetID, scores.Provenance, scores.Verification,
		scores.Transparency, scores.Coherence, scores.Resonance, scores.Overall,
		scores.Classification, rationaleJSON, flagsJSON)
	if err != nil {
		return fmt.Errorf("store: upsert dimension score: %w", err)
	}
	return nil
}
