package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/poster"
)

const (
	posterColumns = `p.id, p.title, p.description, p.price, COALESCE(c.name, ''),
		p.image_thumbnail, p.image_full, p.sizes, p.active`

	listPostersSQL = `SELECT ` + posterColumns + `
		FROM posters p LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.active ORDER BY p.id`

	listPostersByCategorySQL = `SELECT ` + posterColumns + `
		FROM posters p LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.active AND c.name = $1 ORDER BY p.id`

	getPosterByIDSQL = `SELECT ` + posterColumns + `
		FROM posters p LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	getPostersByIDsSQL = `SELECT ` + posterColumns + `
		FROM posters p LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = ANY($1)`

	upsertCategorySQL = `INSERT INTO categories (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	upsertPosterSQL = `INSERT INTO posters
		(id, title, description, price, category_id, image_thumbnail, image_full, sizes, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category_id = EXCLUDED.category_id,
			image_thumbnail = EXCLUDED.image_thumbnail,
			image_full = EXCLUDED.image_full,
			sizes = EXCLUDED.sizes,
			active = TRUE`
)

var _ poster.Repository = (*PosterRepository)(nil)

// PosterRepository implements poster.Repository backed by PostgreSQL.
type PosterRepository struct {
	pool *pgxpool.Pool
}

// NewPosterRepository returns a PosterRepository that uses the given pool.
func NewPosterRepository(pool *pgxpool.Pool) *PosterRepository {
	return &PosterRepository{pool: pool}
}

// List returns active posters, optionally filtered by category name.
func (r *PosterRepository) List(ctx context.Context, category string) ([]poster.Poster, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if category == "" {
		rows, err = r.pool.Query(ctx, listPostersSQL)
	} else {
		rows, err = r.pool.Query(ctx, listPostersByCategorySQL, category)
	}
	if err != nil {
		return nil, fmt.Errorf("listing posters: %w", err)
	}
	return pgx.CollectRows(rows, scanPoster)
}

// GetByID returns a single poster by its identifier.
func (r *PosterRepository) GetByID(ctx context.Context, id string) (*poster.Poster, error) {
	rows, err := r.pool.Query(ctx, getPosterByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting poster %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPoster)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, poster.ErrNotFound
		}
		return nil, fmt.Errorf("getting poster %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns posters matching any of the given IDs.
func (r *PosterRepository) GetByIDs(ctx context.Context, ids []string) ([]poster.Poster, error) {
	rows, err := r.pool.Query(ctx, getPostersByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting posters by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanPoster)
}

// UpsertCategory stores a category record. Used by seeding and imports.
func (r *PosterRepository) UpsertCategory(ctx context.Context, id, name string) error {
	if _, err := r.pool.Exec(ctx, upsertCategorySQL, id, name); err != nil {
		return fmt.Errorf("upserting category %q: %w", id, err)
	}
	return nil
}

// Upsert stores a poster record, marking it active. The poster's Category
// field is interpreted as a category ID. Used by seeding and imports.
func (r *PosterRepository) Upsert(ctx context.Context, p poster.Poster) error {
	_, err := r.pool.Exec(ctx, upsertPosterSQL,
		p.ID, p.Title, p.Description, p.Price, p.Category,
		p.Image.Thumbnail, p.Image.Full, p.Sizes,
	)
	if err != nil {
		return fmt.Errorf("upserting poster %q: %w", p.ID, err)
	}
	return nil
}

func scanPoster(row pgx.CollectableRow) (poster.Poster, error) {
	var (
		p     poster.Poster
		price decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &price, &p.Category,
		&p.Image.Thumbnail, &p.Image.Full, &p.Sizes, &p.Active,
	)
	p.Price = price
	return p, err
}
