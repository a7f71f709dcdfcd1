package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allthingstrust/truststack/pkg/models"
)

// AssetRepository implements orchestrator.AssetStore and scoring.Persister.
type AssetRepository struct {
	pool *pgxpool.Pool
}

// SaveAssets bulk-inserts every collected/reused asset for a run via one
// pgx.Batch round trip.
func (r *AssetRepository) SaveAssets(ctx context.Context, assets []models.ContentAsset) error {
	if len(assets) == 0 {
		return nil
	}

	const q = `INSERT INTO content_assets
		(id, run_id, source_type, channel, url, external_id, title, raw_content, normalized_content,
		 modality, language, screenshot_ref, visual_analysis, ownership, tier, meta_info, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO NOTHING`

	batch := &pgx.Batch{}
	for i := range assets {
		a := &assets[i]
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		visualJSON, err := json.Marshal(a.VisualAnalysis)
		if err != nil {
			return fmt.Errorf("store: marshal visual_analysis: %w", err)
		}
		metaJSON, err := json.Marshal(a.MetaInfo)
		if err != nil {
			return fmt.Errorf("store: marshal meta_info: %w", err)
		}
		batch.Queue(q, a.ID, a.RunID, string(a.SourceType), a.Channel, a.URL, a.ExternalID, a.Title,
			a.RawContent, a.NormalizedContent, string(a.Modality), a.Language, a.ScreenshotRef,
			visualJSON, string(a.Ownership), string(a.Tier), metaJSON, a.CreatedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()
	for range assets {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("store: insert content asset: %w", err)
		}
	}
	return nil
}

// RecentAssetsForBrand is the smart-reuse query: assets
// joined through runs and brands, filtered by brand, recency, non-failed
// status, and non-empty raw content.
func (r *AssetRepository) RecentAssetsForBrand(ctx context.Context, brandID string, maxAge time.Duration) ([]models.ContentAsset, error) {
	const q = `SELECT a.id, a.run_id, a.source_type, a.channel, a.url, a.external_id, a.title,
		a.raw_content, a.normalized_content, a.modality, a.language, a.screenshot_ref,
		a.visual_analysis, a.ownership, a.tier, a.meta_info, a.created_at
		FROM content_assets a
		JOIN runs r ON r.id = a.run_id
		WHERE r.brand_id = $1
		  AND r.started_at IS NOT NULL
		  AND r.started_at >= $2
		  AND r.status <> 'failed'
		  AND a.raw_content <> ''
		ORDER BY a.created_at DESC`

	cutoff := time.Now().UTC().Add(-maxAge)
	rows, err := r.pool.Query(ctx, q, brandID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("store: smart reuse query: %w", err)
	}
	defer rows.Close()

	var out []models.ContentAsset
	for rows.Next() {
		var a models.ContentAsset
		var sourceType, modality, ownership, tier string
		var visualJSON, metaJSON []byte
		if err := rows.Scan(&a.ID, &a.RunID, &sourceType, &a.Channel, &a.URL, &a.ExternalID, &a.Title,
			&a.RawContent, &a.NormalizedContent, &modality, &a.Language, &a.ScreenshotRef,
			&visualJSON, &ownership, &tier, &metaJSON, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan reused asset: %w", err)
		}
		a.SourceType = models.SourceType(sourceType)
		a.Modality = models.Modality(modality)
		a.Ownership = models.OwnershipType(ownership)
		a.Tier = models.Tier(tier)
		if len(visualJSON) > 0 {
			_ = json.Unmarshal(visualJSON, &a.VisualAnalysis)
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &a.MetaInfo)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AssetsForRun loads every content asset persisted for a run, newest first,
// for report retrieval (GET /runs/:id).
func (r *AssetRepository) AssetsForRun(ctx context.Context, runID string) ([]models.ContentAsset, error) {
	const q = `SELECT id, run_id, source_type, channel, url, external_id, title,
		raw_content, normalized_content, modality, language, screenshot_ref,
		visual_analysis, ownership, tier, meta_info, created_at
		FROM content_assets WHERE run_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("store: assets for run: %w", err)
	}
	defer rows.Close()

	var out []models.ContentAsset
	for rows.Next() {
		var a models.ContentAsset
		var sourceType, modality, ownership, tier string
		var visualJSON, metaJSON []byte
		if err := rows.Scan(&a.ID, &a.RunID, &sourceType, &a.Channel, &a.URL, &a.ExternalID, &a.Title,
			&a.RawContent, &a.NormalizedContent, &modality, &a.Language, &a.ScreenshotRef,
			&visualJSON, &ownership, &tier, &metaJSON, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan run asset: %w", err)
		}
		a.SourceType = models.SourceType(sourceType)
		a.Modality = models.Modality(modality)
		a.Ownership = models.OwnershipType(ownership)
		a.Tier = models.Tier(tier)
		if len(visualJSON) > 0 {
			_ = json.Unmarshal(visualJSON, &a.VisualAnalysis)
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &a.MetaInfo)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ScoresForAssets loads the persisted dimension-score row for each asset id,
// keyed by asset id, for report retrieval.
func (r *AssetRepository) ScoresForAssets(ctx context.Context, assetIDs []string) (map[string]models.DimensionScores, error) {
	out := map[string]models.DimensionScores{}
	if len(assetIDs) == 0 {
		return out, nil
	}

	const q = `SELECT asset_id, id, provenance, verification, transparency, coherence, resonance,
		overall, classification, rationale, flags
		FROM dimension_scores WHERE asset_id = ANY($1)`

	rows, err := r.pool.Query(ctx, q, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("store: scores for assets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var assetID string
		var s models.DimensionScores
		var rationaleJSON, flagsJSON []byte
		if err := rows.Scan(&assetID, &s.ID, &s.Provenance, &s.Verification, &s.Transparency,
			&s.Coherence, &s.Resonance, &s.Overall, &s.Classification, &rationaleJSON, &flagsJSON); err != nil {
			return nil, fmt.Errorf("store: scan dimension score: %w", err)
		}
		s.AssetID = assetID
		if len(rationaleJSON) > 0 {
			_ = json.Unmarshal(rationaleJSON, &s.Rationale)
		}
		if len(flagsJSON) > 0 {
			_ = json.Unmarshal(flagsJSON, &s.Flags)
		}
		out[assetID] = s
	}
	return out, rows.Err()
}

// PersistAssetScore implements scoring.Persister: upsert the per-asset
// dimension score row.
func (r *AssetRepository) PersistAssetScore(ctx context.Context, assetID string, scores models.DimensionScores) error {
	return (&SummaryRepository{pool: r.pool}).persistDimensionScore(ctx, assetID, scores)
}
