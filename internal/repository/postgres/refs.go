package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kupimoda/catalog-importer/pkg/database"
	apperrors "github.com/kupimoda/catalog-importer/pkg/errors"
)

// RefsRepository implements repository.Refs using PostgreSQL. Its lookups
// are executed once per batch and cached as in-memory maps by the caller.
type RefsRepository struct {
	pool database.DBTX
}

// NewRefsRepository creates a new PostgreSQL-backed reference repository.
func NewRefsRepository(pool database.DBTX) *RefsRepository {
	return &RefsRepository{pool: pool}
}

// BrandsByName returns all brands as a lowercased-name → id map.
func (r *RefsRepository) BrandsByName(ctx context.Context) (map[string]string, error) {
	query := `SELECT LOWER(name), id FROM brands`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	brands := make(map[string]string)
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("scan brand row: %w", err)
		}
		brands[strings.ToLower(name)] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand rows: %w", err)
	}

	return brands, nil
}

// CategoriesByExternalID returns all categories as an external-id → id map.
func (r *RefsRepository) CategoriesByExternalID(ctx context.Context) (map[string]string, error) {
	query := `SELECT external_id, id FROM categories`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make(map[string]string)
	for rows.Next() {
		var externalID, id string
		if err := rows.Scan(&externalID, &id); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories[externalID] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// AdminID returns the id of the admin with the given email.
func (r *RefsRepository) AdminID(ctx context.Context, email string) (string, error) {
	query := `SELECT id FROM admins WHERE email = $1`

	var id string
	err := r.pool.QueryRow(ctx, query, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NotFound("admin", email)
		}
		return "", fmt.Errorf("scan admin: %w", err)
	}

	return id, nil
}
