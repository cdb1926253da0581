package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kupimoda/catalog-importer/internal/domain"
	"github.com/kupimoda/catalog-importer/internal/repository"
	"github.com/kupimoda/catalog-importer/pkg/database"
	apperrors "github.com/kupimoda/catalog-importer/pkg/errors"
)

// CatalogRepository implements repository.Catalog using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// InTx runs fn inside a single transaction, committing on nil and rolling
// back otherwise.
func (r *CatalogRepository) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&catalogTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// catalogTx implements repository.Tx on top of one pgx transaction.
type catalogTx struct {
	tx pgx.Tx
}

var productColumns = `id, external_id, name, slug, base_price, sale_price, discount_percent, brand_id, is_active, is_featured, created_at, updated_at`

// ProductByExternalID looks a product up by its stable external id.
func (t *catalogTx) ProductByExternalID(ctx context.Context, externalID string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE external_id = $1`

	var p domain.Product
	err := t.tx.QueryRow(ctx, query, externalID).Scan(
		&p.ID,
		&p.ExternalID,
		&p.Name,
		&p.Slug,
		&p.BasePrice,
		&p.SalePrice,
		&p.DiscountPercent,
		&p.BrandID,
		&p.IsActive,
		&p.IsFeatured,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// InsertProduct inserts a new product row.
func (t *catalogTx) InsertProduct(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, external_id, name, slug, base_price, sale_price, discount_percent, brand_id, is_active, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := t.tx.Exec(ctx, query,
		p.ID,
		p.ExternalID,
		p.Name,
		p.Slug,
		p.BasePrice,
		p.SalePrice,
		p.DiscountPercent,
		p.BrandID,
		p.IsActive,
		p.IsFeatured,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "external_id", p.ExternalID)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// UpdateProductPricing updates the mutable fields of an existing product.
func (t *catalogTx) UpdateProductPricing(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET base_price = $1, sale_price = $2, discount_percent = $3, slug = $4, updated_at = $5
		WHERE id = $6`

	ct, err := t.tx.Exec(ctx, query,
		p.BasePrice,
		p.SalePrice,
		p.DiscountPercent,
		p.Slug,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// LinkCategories inserts product-category join rows.
func (t *catalogTx) LinkCategories(ctx context.Context, productID string, categoryIDs []string) error {
	query := `
		INSERT INTO product_categories (product_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	for _, categoryID := range categoryIDs {
		if _, err := t.tx.Exec(ctx, query, productID, categoryID); err != nil {
			return fmt.Errorf("link category %s: %w", categoryID, err)
		}
	}

	return nil
}

// PurgeProductGraph deletes the product's variants and attribute values in
// referential order. Attribute definitions are kept.
func (t *catalogTx) PurgeProductGraph(ctx context.Context, productID string) error {
	// Values referencing variants must go before the variants themselves.
	queries := []string{
		`DELETE FROM attribute_values WHERE variant_id IN (SELECT id FROM variants WHERE product_id = $1)`,
		`DELETE FROM attribute_values WHERE product_id = $1`,
		`DELETE FROM variants WHERE product_id = $1`,
	}

	for _, query := range queries {
		if _, err := t.tx.Exec(ctx, query, productID); err != nil {
			return fmt.Errorf("purge product graph: %w", err)
		}
	}

	return nil
}

// AttributeIDsBySlug returns the product's attribute definitions as a
// slug → id map.
func (t *catalogTx) AttributeIDsBySlug(ctx context.Context, productID string) (map[string]string, error) {
	query := `SELECT slug, id FROM attributes WHERE product_id = $1`

	rows, err := t.tx.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var slug, id string
		if err := rows.Scan(&slug, &id); err != nil {
			return nil, fmt.Errorf("scan attribute row: %w", err)
		}
		ids[slug] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attribute rows: %w", err)
	}

	return ids, nil
}

// InsertAttribute inserts a new attribute definition with its options.
func (t *catalogTx) InsertAttribute(ctx context.Context, a *domain.Attribute) error {
	optionsJSON, err := json.Marshal(a.Options)
	if err != nil {
		return fmt.Errorf("marshal attribute options: %w", err)
	}

	query := `
		INSERT INTO attributes (id, product_id, name, slug, type, options, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = t.tx.Exec(ctx, query,
		a.ID,
		a.ProductID,
		a.Name,
		a.Slug,
		a.Type,
		optionsJSON,
		a.SortOrder,
		a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("attribute", "slug", a.Slug)
		}
		return fmt.Errorf("insert attribute: %w", err)
	}

	return nil
}

// InsertVariant inserts a new variant row.
func (t *catalogTx) InsertVariant(ctx context.Context, v *domain.Variant) error {
	query := `
		INSERT INTO variants (id, product_id, sku, name, price, sale_price, stock, is_active, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := t.tx.Exec(ctx, query,
		v.ID,
		v.ProductID,
		v.SKU,
		v.Name,
		v.Price,
		v.SalePrice,
		v.Stock,
		v.IsActive,
		v.IsDefault,
		v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert variant: %w", err)
	}

	return nil
}

// InsertAttributeValue inserts one attribute value payload.
func (t *catalogTx) InsertAttributeValue(ctx context.Context, v *domain.AttributeValue) error {
	query := `
		INSERT INTO attribute_values (id, attribute_id, product_id, variant_id, value)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := t.tx.Exec(ctx, query,
		v.ID,
		v.AttributeID,
		v.ProductID,
		v.VariantID,
		v.Value,
	)
	if err != nil {
		return fmt.Errorf("insert attribute value: %w", err)
	}

	return nil
}

// ImageCount returns the number of file links attached to the product.
func (t *catalogTx) ImageCount(ctx context.Context, productID string) (int, error) {
	query := `SELECT COUNT(*) FROM product_files WHERE product_id = $1`

	var count int
	if err := t.tx.QueryRow(ctx, query, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count product files: %w", err)
	}

	return count, nil
}

// DeleteImageLinks removes all file links of the product.
func (t *catalogTx) DeleteImageLinks(ctx context.Context, productID string) error {
	query := `DELETE FROM product_files WHERE product_id = $1`

	if _, err := t.tx.Exec(ctx, query, productID); err != nil {
		return fmt.Errorf("delete product files: %w", err)
	}

	return nil
}

// InsertFile inserts a file asset row.
func (t *catalogTx) InsertFile(ctx context.Context, f *domain.FileAsset) error {
	query := `
		INSERT INTO files (id, name, content_type, size, storage_key, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := t.tx.Exec(ctx, query,
		f.ID,
		f.Name,
		f.ContentType,
		f.Size,
		f.StorageKey,
		f.UploadedBy,
		f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}

	return nil
}

// LinkFile attaches a file asset to a product.
func (t *catalogTx) LinkFile(ctx context.Context, l *domain.FileLink) error {
	query := `
		INSERT INTO product_files (file_id, product_id, type, sort_order, alt)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := t.tx.Exec(ctx, query,
		l.FileID,
		l.ProductID,
		l.Type,
		l.SortOrder,
		l.Alt,
	)
	if err != nil {
		return fmt.Errorf("link file: %w", err)
	}

	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
