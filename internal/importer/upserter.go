package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kupimoda/catalog-importer/internal/domain"
	"github.com/kupimoda/catalog-importer/internal/metrics"
	"github.com/kupimoda/catalog-importer/internal/repository"
	apperrors "github.com/kupimoda/catalog-importer/pkg/errors"
	"github.com/kupimoda/catalog-importer/pkg/slug"
)

// ImagePolicy controls what happens to a product's images on re-import
// when file links already exist.
type ImagePolicy string

const (
	// ImagePolicySkip leaves existing image links untouched. This prevents
	// duplicate uploads but also means a corrected image set in the feed
	// is not picked up.
	ImagePolicySkip ImagePolicy = "skip"

	// ImagePolicyReplace drops existing links and re-uploads the feed's
	// image list.
	ImagePolicyReplace ImagePolicy = "replace"
)

// RefMaps holds the reference lookups resolved once per batch.
type RefMaps struct {
	Brands     map[string]string // lowercased brand name → id
	Categories map[string]string // category external id → id
}

// UpsertResult reports what one product import did.
type UpsertResult struct {
	Product      *domain.Product
	VariantCount int
	Created      bool
}

// Upserter reconciles one product record against the database inside a
// single transaction: create or update the product row, regenerate its
// attribute values and variants, and link its images.
type Upserter struct {
	catalog     repository.Catalog
	linker      *Linker
	imagePolicy ImagePolicy
	logger      *slog.Logger
}

// NewUpserter creates a new product upserter.
func NewUpserter(catalog repository.Catalog, linker *Linker, imagePolicy ImagePolicy, logger *slog.Logger) *Upserter {
	return &Upserter{
		catalog:     catalog,
		linker:      linker,
		imagePolicy: imagePolicy,
		logger:      logger,
	}
}

// Upsert processes one record. Any error rolls back every change made for
// this product; the caller logs it and moves on to the next record.
func (u *Upserter) Upsert(ctx context.Context, rec *domain.ProductRecord, refs *RefMaps, adminID string) (*UpsertResult, error) {
	var result *UpsertResult

	err := u.catalog.InTx(ctx, func(tx repository.Tx) error {
		res, err := u.upsertInTx(ctx, tx, rec, refs, adminID)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (u *Upserter) upsertInTx(ctx context.Context, tx repository.Tx, rec *domain.ProductRecord, refs *RefMaps, adminID string) (*UpsertResult, error) {
	basePrice := domain.MinorUnits(rec.Price)
	var salePrice *int64
	discount := 0
	if rec.PriceDiscount > 0 {
		sp := domain.MinorUnits(rec.PriceDiscount)
		salePrice = &sp
		discount = domain.DiscountPercent(basePrice, sp)
	}

	productSlug := slug.FromLink(rec.Link)
	if productSlug == "" {
		productSlug = slug.Generate(rec.Name)
	}

	created := false

	product, err := tx.ProductByExternalID(ctx, rec.ExternalID)
	switch {
	case err == nil:
		// Existing product: purge dependents, then refresh mutable fields.
		if err := tx.PurgeProductGraph(ctx, product.ID); err != nil {
			return nil, err
		}

		product.BasePrice = basePrice
		product.SalePrice = salePrice
		product.DiscountPercent = discount
		product.Slug = productSlug

		if err := tx.UpdateProductPricing(ctx, product); err != nil {
			return nil, err
		}

	case errors.Is(err, apperrors.ErrNotFound):
		created = true
		now := time.Now().UTC()
		product = &domain.Product{
			ID:              uuid.New().String(),
			ExternalID:      rec.ExternalID,
			Name:            rec.Name,
			Slug:            productSlug,
			BasePrice:       basePrice,
			SalePrice:       salePrice,
			DiscountPercent: discount,
			BrandID:         u.resolveBrand(ctx, rec, refs),
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := tx.InsertProduct(ctx, product); err != nil {
			return nil, err
		}

		if err := u.linkCategories(ctx, tx, product, rec.Categories, refs); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("lookup product %s: %w", rec.ExternalID, err)
	}

	if err := u.processImages(ctx, tx, product, rec.Images, adminID); err != nil {
		return nil, err
	}

	variantCount, err := u.materialize(ctx, tx, product, rec)
	if err != nil {
		return nil, err
	}

	return &UpsertResult{
		Product:      product,
		VariantCount: variantCount,
		Created:      created,
	}, nil
}

// resolveBrand maps the record's brand name to a brand id, or nil when the
// brand is unknown. Unresolved brands are dropped with a warning.
func (u *Upserter) resolveBrand(ctx context.Context, rec *domain.ProductRecord, refs *RefMaps) *string {
	if rec.Brand == "" {
		return nil
	}

	id, ok := refs.Brands[strings.ToLower(rec.Brand)]
	if !ok {
		u.logger.WarnContext(ctx, "brand not found, creating product without brand",
			slog.String("external_id", rec.ExternalID),
			slog.String("brand", rec.Brand),
		)
		return nil
	}

	return &id
}

// linkCategories inserts join rows for every category external id present
// in the reference map. Unknown ids are skipped.
func (u *Upserter) linkCategories(ctx context.Context, tx repository.Tx, product *domain.Product, externalIDs []string, refs *RefMaps) error {
	var categoryIDs []string
	for _, extID := range externalIDs {
		id, ok := refs.Categories[extID]
		if !ok {
			u.logger.WarnContext(ctx, "category not found, skipping link",
				slog.String("external_id", product.ExternalID),
				slog.String("category_external_id", extID),
			)
			continue
		}
		categoryIDs = append(categoryIDs, id)
	}

	if len(categoryIDs) == 0 {
		return nil
	}

	return tx.LinkCategories(ctx, product.ID, categoryIDs)
}

// processImages applies the configured image policy: link the feed's
// images when the product has none, or when the policy is replace.
func (u *Upserter) processImages(ctx context.Context, tx repository.Tx, product *domain.Product, imagePaths []string, adminID string) error {
	if len(imagePaths) == 0 {
		return nil
	}

	count, err := tx.ImageCount(ctx, product.ID)
	if err != nil {
		return err
	}

	if count > 0 {
		if u.imagePolicy != ImagePolicyReplace {
			u.logger.DebugContext(ctx, "product already has images, skipping",
				slog.String("external_id", product.ExternalID),
				slog.Int("existing", count),
			)
			return nil
		}
		if err := tx.DeleteImageLinks(ctx, product.ID); err != nil {
			return err
		}
	}

	_, err = u.linker.Link(ctx, tx, product, imagePaths, adminID)
	return err
}

// materialize persists the record's expansion: new attribute definitions,
// product-level values and the full variant set.
func (u *Upserter) materialize(ctx context.Context, tx repository.Tx, product *domain.Product, rec *domain.ProductRecord) (int, error) {
	attrIDs, err := tx.AttributeIDsBySlug(ctx, product.ID)
	if err != nil {
		return 0, err
	}

	exp := Expand(rec, attrIDs)

	for i, spec := range exp.Attributes {
		attr := &domain.Attribute{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Name:      spec.Name,
			Slug:      spec.Slug,
			Type:      spec.Type,
			Options:   spec.Options,
			SortOrder: i,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.InsertAttribute(ctx, attr); err != nil {
			return 0, err
		}
		attrIDs[attr.Slug] = attr.ID
	}

	for _, vs := range exp.ProductValues {
		if err := u.insertValue(ctx, tx, attrIDs, product.ID, nil, vs); err != nil {
			return 0, err
		}
	}

	for _, spec := range exp.Variants {
		sku := spec.SKU
		if sku == "" {
			sku = fmt.Sprintf("%s-%s", product.ID, uuid.New().String()[:8])
		}

		variant := &domain.Variant{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			SKU:       sku,
			Name:      spec.Name,
			Price:     spec.Price,
			SalePrice: spec.SalePrice,
			Stock:     spec.Stock,
			IsActive:  spec.IsActive,
			IsDefault: spec.IsDefault,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.InsertVariant(ctx, variant); err != nil {
			return 0, err
		}
		metrics.VariantsCreated.Inc()

		for _, vs := range spec.Values {
			if err := u.insertValue(ctx, tx, attrIDs, product.ID, &variant.ID, vs); err != nil {
				return 0, err
			}
		}
	}

	return len(exp.Variants), nil
}

func (u *Upserter) insertValue(ctx context.Context, tx repository.Tx, attrIDs map[string]string, productID string, variantID *string, vs ValueSpec) error {
	attrID, ok := attrIDs[vs.AttributeSlug]
	if !ok {
		return fmt.Errorf("attribute %q not defined for product %s", vs.AttributeSlug, productID)
	}

	payload, err := json.Marshal(vs.Payload)
	if err != nil {
		return fmt.Errorf("marshal attribute value: %w", err)
	}

	return tx.InsertAttributeValue(ctx, &domain.AttributeValue{
		ID:          uuid.New().String(),
		AttributeID: attrID,
		ProductID:   productID,
		VariantID:   variantID,
		Value:       payload,
	})
}
