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

// BrandRepository implements orchestrator.BrandStore.
type BrandRepository struct {
	pool *pgxpool.Pool
}

// GetOrCreateBrand returns the existing Brand for slug, or creates one.
func (r *BrandRepository) GetOrCreateBrand(ctx context.Context, slug, name string, domains []string) (*models.Brand, error) {
	brand, err := r.findBySlug(ctx, slug)
	if err == nil {
		return brand, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("store: lookup brand: %w", err)
	}

	domainsJSON, err := json.Marshal(domains)
	if err != nil {
		return nil, fmt.Errorf("store: marshal domains: %w", err)
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	const q = `INSERT INTO brands (id, slug, name, domains, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (slug) DO UPDATE SET name = brands.name
		RETURNING id, slug, name, industry, domains, created_at, updated_at`

	return r.scanRow(r.pool.QueryRow(ctx, q, id, slug, name, domainsJSON, now))
}

func (r *BrandRepository) findBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	const q = `SELECT id, slug, name, industry, domains, created_at, updated_at FROM brands WHERE slug = $1`
	return r.scanRow(r.pool.QueryRow(ctx, q, slug))
}

func (r *BrandRepository) scanRow(row pgx.Row) (*models.Brand, error) {
	var b models.Brand
	var domainsJSON []byte
	if err := row.Scan(&b.ID, &b.Slug, &b.Name, &b.Industry, &domainsJSON, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if len(domainsJSON) > 0 {
		if err := json.Unmarshal(domainsJSON, &b.Domains); err != nil {
			return nil, fmt.Errorf("store: unmarshal domains: %w", err)
		}
	}
	return &b, nil
}
