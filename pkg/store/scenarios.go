package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allthingstrust/truststack/pkg/models"
)

// ScenarioRepository implements orchestrator.ScenarioStore.
type ScenarioRepository struct {
	pool *pgxpool.Pool
}

// GetOrCreateScenario returns the existing Scenario for slug, or creates one.
func (r *ScenarioRepository) GetOrCreateScenario(ctx context.Context, slug, description string, config map[string]any) (*models.Scenario, error) {
	scenario, err := r.findBySlug(ctx, slug)
	if err == nil {
		return scenario, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("store: lookup scenario: %w", err)
	}

	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("store: marshal scenario config: %w", err)
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	const q = `INSERT INTO scenarios (id, slug, description, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (slug) DO UPDATE SET description = scenarios.description
		RETURNING id, slug, description, config, created_at, updated_at`

	return r.scanRow(r.pool.QueryRow(ctx, q, id, slug, description, configJSON, now))
}

func (r *ScenarioRepository) findBySlug(ctx context.Context, slug string) (*models.Scenario, error) {
	const q = `SELECT id, slug, description, config, created_at, updated_at FROM scenarios WHERE slug = $1`
	return r.scanRow(r.pool.QueryRow(ctx, q, slug))
}

func (r *ScenarioRepository) scanRow(row pgx.Row) (*models.Scenario, error) {
	var s models.Scenario
	var configJSON []byte
	if err := row.Scan(&s.ID, &s.Slug, &s.Description, &configJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &s.Config); err != nil {
			return nil, fmt.Errorf("store: unmarshal scenario config: %w", err)
		}
	}
	return &s, nil
}
