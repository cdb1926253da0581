package repository

import (
	"context"

	"github.com/kupimoda/catalog-importer/internal/domain"
)

// Catalog provides transactional access to the product graph. Every product
// in a batch is processed inside its own transaction so one bad record
// cannot roll back the others.
type Catalog interface {
	// InTx runs fn inside a single database transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of catalog operations available inside one product's
// import transaction.
type Tx interface {
	// ProductByExternalID looks a product up by its stable external id.
	// Returns errors.ErrNotFound when no row exists.
	ProductByExternalID(ctx context.Context, externalID string) (*domain.Product, error)

	// InsertProduct inserts a new product row.
	InsertProduct(ctx context.Context, p *domain.Product) error

	// UpdateProductPricing updates the mutable fields of an existing
	// product: base price, sale price, discount percent and slug.
	UpdateProductPricing(ctx context.Context, p *domain.Product) error

	// LinkCategories inserts product-category join rows.
	LinkCategories(ctx context.Context, productID string, categoryIDs []string) error

	// PurgeProductGraph deletes the product's dependents in referential
	// order: attribute values referencing variants, attribute values
	// referencing the product, then the variants themselves. Attribute
	// definitions are kept.
	PurgeProductGraph(ctx context.Context, productID string) error

	// AttributeIDsBySlug returns the product's existing attribute
	// definitions as a slug → id map.
	AttributeIDsBySlug(ctx context.Context, productID string) (map[string]string, error)

	// InsertAttribute inserts a new attribute definition with its options.
	InsertAttribute(ctx context.Context, a *domain.Attribute) error

	// InsertVariant inserts a new variant row.
	InsertVariant(ctx context.Context, v *domain.Variant) error

	// InsertAttributeValue inserts one attribute value payload.
	InsertAttributeValue(ctx context.Context, v *domain.AttributeValue) error

	// ImageCount returns the number of file links attached to the product.
	ImageCount(ctx context.Context, productID string) (int, error)

	// DeleteImageLinks removes all file links of the product, used by the
	// replace image policy.
	DeleteImageLinks(ctx context.Context, productID string) error

	// InsertFile inserts a file asset row.
	InsertFile(ctx context.Context, f *domain.FileAsset) error

	// LinkFile attaches a file asset to a product as an ordered, typed
	// association.
	LinkFile(ctx context.Context, l *domain.FileLink) error
}

// Refs provides the read-only reference lookups resolved once per batch.
type Refs interface {
	// BrandsByName returns all brands as a lowercased-name → id map.
	BrandsByName(ctx context.Context) (map[string]string, error)

	// CategoriesByExternalID returns all categories as an external-id → id map.
	CategoriesByExternalID(ctx context.Context) (map[string]string, error)

	// AdminID returns the id of the admin identity used as the uploader of
	// imported assets. Returns errors.ErrNotFound when the admin does not
	// exist, which is fatal to the run.
	AdminID(ctx context.Context, email string) (string, error)
}
