package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allthingstrust/truststack/pkg/models"
)

// RunRepository implements orchestrator.RunStore.
type RunRepository struct {
	pool *pgxpool.Pool
}

// CreateRun inserts a new Run row in its initial status.
func (r *RunRepository) CreateRun(ctx context.Context, run *models.Run) error {
	configJSON, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("store: marshal run config: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO runs (id, external_id, brand_id, scenario_id, status, config, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.pool.Exec(ctx, q, run.ID, run.ExternalID, run.BrandID, run.ScenarioID, string(run.Status), configJSON, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}
	return nil
}

// UpdateRunStatus transitions a run's status, stamping started_at/finished_at
// as appropriate.
func (r *RunRepository) UpdateRunStatus(ctx context.Context, runID string, status models.RunStatus, errMsg string) error {
	now := time.Now().UTC()
	var q string
	var err error
	switch status {
	case models.RunStatusInProgress:
		q = `UPDATE runs SET status = $2, started_at = $3 WHERE id = $1`
		_, err = r.pool.Exec(ctx, q, runID, string(status), now)
	case models.RunStatusCompleted, models.RunStatusFailed:
		q = `UPDATE runs SET status = $2, error_message = $3, finished_at = $4 WHERE id = $1`
		_, err = r.pool.Exec(ctx, q, runID, string(status), errMsg, now)
	default:
		q = `UPDATE runs SET status = $2 WHERE id = $1`
		_, err = r.pool.Exec(ctx, q, runID, string(status))
	}
	if err != nil {
		return fmt.Errorf("store: update run status: %w", err)
	}
	return nil
}

// GetRun reads back a run by its external id, used by report retrieval and
// by the round-trip testable property.
func (r *RunRepository) GetRun(ctx context.Context, externalID string) (*models.Run, error) {
	const q = `SELECT id, external_id, brand_id, scenario_id, status, config, error_message, created_at, started_at, finished_at
		FROM runs WHERE external_id = $1`
	row := r.pool.QueryRow(ctx, q, externalID)

	var run models.Run
	var status string
	var configJSON []byte
	if err := row.Scan(&run.ID, &run.ExternalID, &run.BrandID, &run.ScenarioID, &status, &configJSON,
		&run.ErrorMessage, &run.CreatedAt, &run.StartedAt, &run.FinishedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get run: %w", err)
	}
	run.Status = models.RunStatus(status)
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &run.Config); err != nil {
			return nil, fmt.Errorf("store: unmarshal run config: %w", err)
		}
	}
	return &run, nil
}

// PruneOldRuns deletes runs whose started_at predates the retention window;
// child rows cascade via foreign keys.
func (r *RunRepository) PruneOldRuns(ctx context.Context, days int) (int64, error) {
	const q = `DELETE FROM runs WHERE started_at IS NOT NULL AND started_at < $1`
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	tag, err := r.pool.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store: prune old runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
