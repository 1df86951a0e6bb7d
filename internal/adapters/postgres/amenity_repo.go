package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

// AmenityRepo implements ports.AmenityRepository with pgx.
type AmenityRepo struct {
	db *DB
}

var _ ports.AmenityRepository = (*AmenityRepo)(nil)

// NewAmenityRepo creates a new AmenityRepo.
func NewAmenityRepo(db *DB) *AmenityRepo {
	return &AmenityRepo{db: db}
}

// ReplaceCategory swaps every stored feature of a category in one
// transaction.
func (r *AmenityRepo) ReplaceCategory(ctx context.Context, category domain.Category, features []domain.Feature) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM amenities WHERE category = $1`, category.Name); err != nil {
		return fmt.Errorf("delete %s: %w", category.Name, err)
	}

	batch := &pgx.Batch{}
	for i, f := range features {
		props, err := json.Marshal(f.Attributes)
		if err != nil {
			return fmt.Errorf("encode properties of %s: %w", f.ID, err)
		}
		batch.Queue(`
			INSERT INTO amenities (id, category, source_file, position, location, properties)
			VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography, $7::json)
		`, f.ID, category.Name, category.SourceFile, i, f.Location.Lon, f.Location.Lat, string(props))
	}
	br := tx.SendBatch(ctx, batch)
	for range features {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}

	return tx.Commit(ctx)
}

// ListByCategory returns the features of a category in import order.
func (r *AmenityRepo) ListByCategory(ctx context.Context, category string) ([]domain.Feature, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, category,
		       ST_Y(location::geometry) AS lat,
		       ST_X(location::geometry) AS lon,
		       properties::text
		FROM amenities
		WHERE category = $1
		ORDER BY position
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Feature
	for rows.Next() {
		var (
			f     domain.Feature
			props string
		)
		if err := rows.Scan(&f.ID, &f.Category, &f.Location.Lat, &f.Location.Lon, &props); err != nil {
			return nil, err
		}
		attrs, err := decodeAttributes([]byte(props))
		if err != nil {
			return nil, fmt.Errorf("decode properties of %s: %w", f.ID, err)
		}
		f.Attributes = attrs
		out = append(out, f)
	}
	return out, rows.Err()
}

// SaveBoundary upserts a named boundary box.
func (r *AmenityRepo) SaveBoundary(ctx context.Context, name string, b domain.Bounds) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO boundaries (name, min_lon, min_lat, max_lon, max_lat)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET min_lon = EXCLUDED.min_lon, min_lat = EXCLUDED.min_lat,
		    max_lon = EXCLUDED.max_lon, max_lat = EXCLUDED.max_lat,
		    updated_at = now()
	`, name, b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
	return err
}

// GetBoundary returns a named boundary box.
func (r *AmenityRepo) GetBoundary(ctx context.Context, name string) (domain.Bounds, error) {
	var b domain.Bounds
	err := r.db.Pool.QueryRow(ctx, `
		SELECT min_lon, min_lat, max_lon, max_lat FROM boundaries WHERE name = $1
	`, name).Scan(&b.MinLon, &b.MinLat, &b.MaxLon, &b.MaxLat)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Bounds{}, fmt.Errorf("boundary %q: %w", name, domain.ErrNotFound)
	}
	return b, err
}

// decodeAttributes reads a JSON object keeping key order.
func decodeAttributes(data []byte) (domain.Attributes, error) {
	var attrs domain.Attributes
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
