package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kupimoda/catalog-importer/internal/domain"
	"github.com/kupimoda/catalog-importer/internal/storage/memory"
	"github.com/kupimoda/catalog-importer/pkg/logger"
)

func newTestUpserter(t *testing.T, tx *fakeTx, policy ImagePolicy) (*Upserter, string) {
	t.Helper()
	root := t.TempDir()
	log := logger.NewWithWriter("test", "error", os.Stderr)
	uploader := NewUploader(memory.New(""), root, log)
	linker := NewLinker(uploader, log)
	return NewUpserter(&fakeCatalog{tx: tx}, linker, policy, log), root
}

func sizedRecord() *domain.ProductRecord {
	return &domain.ProductRecord{
		ExternalID:    "SKU-100",
		Name:          "Футболка",
		Link:          "https://kupimoda.ru/catalog/futbolka-bazovaya/",
		Price:         1500,
		PriceDiscount: 1200,
		Brand:         "Acme",
		Categories:    []string{"cat-ext-1", "cat-ext-unknown"},
		Sizes: []domain.SizeRecord{
			{Name: "S", Available: true, Online: true, Price: 1500, PriceDiscount: 1200},
			{Name: "M", Available: false, Online: true, Price: 1500},
		},
		Colors: []domain.ColorRecord{
			{Name: "Red", Hex: "#FF0000"},
		},
	}
}

func testRefMaps() *RefMaps {
	return &RefMaps{
		Brands:     map[string]string{"acme": "brand-1"},
		Categories: map[string]string{"cat-ext-1": "cat-1"},
	}
}

func TestUpsert_CreatesNewProduct(t *testing.T) {
	tx := newFakeTx()
	upserter, _ := newTestUpserter(t, tx, ImagePolicySkip)

	result, err := upserter.Upsert(context.Background(), sizedRecord(), testRefMaps(), "admin-1")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Created)
	assert.Equal(t, 2, result.VariantCount)

	require.Len(t, tx.inserted, 1)
	p := tx.inserted[0]
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "SKU-100", p.ExternalID)
	assert.Equal(t, "futbolka-bazovaya", p.Slug)
	assert.Equal(t, int64(150000), p.BasePrice)
	require.NotNil(t, p.SalePrice)
	assert.Equal(t, int64(120000), *p.SalePrice)
	assert.Equal(t, 20, p.DiscountPercent)
	require.NotNil(t, p.BrandID)
	assert.Equal(t, "brand-1", *p.BrandID)
	assert.True(t, p.IsActive)

	// Only the known category is linked.
	assert.Equal(t, []string{"cat-1"}, tx.categories[p.ID])

	// Size and color attribute definitions were created.
	require.Len(t, tx.attributes, 2)
	assert.Equal(t, domain.AttributeSlugSize, tx.attributes[0].Slug)
	assert.Equal(t, domain.AttributeSlugColor, tx.attributes[1].Slug)

	require.Len(t, tx.variants, 2)
	assert.Equal(t, "SKU-100-S-Red", tx.variants[0].SKU)
	assert.Equal(t, domain.AvailableStock, tx.variants[0].Stock)
	assert.Equal(t, "SKU-100-M-Red", tx.variants[1].SKU)
	assert.Zero(t, tx.variants[1].Stock)

	// Two values per variant (size and color).
	assert.Len(t, tx.values, 4)
	for _, v := range tx.values {
		require.NotNil(t, v.VariantID)
		assert.NotEmpty(t, v.AttributeID)
		assert.Contains(t, string(v.Value), "label")
	}

	// No purge on the create path.
	assert.Empty(t, tx.purged)
}

func TestUpsert_UpdatesExistingProduct(t *testing.T) {
	tx := newFakeTx()
	existing := &domain.Product{
		ID:         "prod-1",
		ExternalID: "SKU-100",
		Name:       "Футболка",
		Slug:       "old-slug",
		BasePrice:  100000,
		CreatedAt:  time.Now().UTC().Add(-24 * time.Hour),
	}
	tx.productsByExtID["SKU-100"] = existing
	tx.attrsByProduct["prod-1"] = map[string]string{
		domain.AttributeSlugSize:  "attr-size",
		domain.AttributeSlugColor: "attr-color",
	}

	upserter, _ := newTestUpserter(t, tx, ImagePolicySkip)

	result, err := upserter.Upsert(context.Background(), sizedRecord(), testRefMaps(), "admin-1")

	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, "prod-1", result.Product.ID)

	// Dependents purged, pricing and slug refreshed, no new insert.
	assert.Equal(t, []string{"prod-1"}, tx.purged)
	assert.Empty(t, tx.inserted)
	require.Len(t, tx.updated, 1)
	assert.Equal(t, int64(150000), tx.updated[0].BasePrice)
	assert.Equal(t, "futbolka-bazovaya", tx.updated[0].Slug)

	// Attribute definitions survive: nothing new created, values reuse ids.
	assert.Empty(t, tx.attributes)
	require.Len(t, tx.variants, 2)
	for _, v := range tx.values {
		assert.Contains(t, []string{"attr-size", "attr-color"}, v.AttributeID)
	}

	// Categories are only linked on create.
	assert.Empty(t, tx.categories)
}

func TestUpsert_UnknownBrandDropped(t *testing.T) {
	tx := newFakeTx()
	upserter, _ := newTestUpserter(t, tx, ImagePolicySkip)

	rec := sizedRecord()
	rec.Brand = "Nobody"

	_, err := upserter.Upsert(context.Background(), rec, testRefMaps(), "admin-1")

	require.NoError(t, err)
	require.Len(t, tx.inserted, 1)
	assert.Nil(t, tx.inserted[0].BrandID)
}

func TestUpsert_SlugFallsBackToName(t *testing.T) {
	tx := newFakeTx()
	upserter, _ := newTestUpserter(t, tx, ImagePolicySkip)

	rec := sizedRecord()
	rec.Link = ""

	_, err := upserter.Upsert(context.Background(), rec, testRefMaps(), "admin-1")

	require.NoError(t, err)
	require.Len(t, tx.inserted, 1)
	assert.Equal(t, "futbolka", tx.inserted[0].Slug)
}

func TestUpsert_ImagePolicySkip(t *testing.T) {
	tx := newFakeTx()
	existing := &domain.Product{ID: "prod-1", ExternalID: "SKU-100", Name: "Футболка"}
	tx.productsByExtID["SKU-100"] = existing
	tx.imageCounts["prod-1"] = 2

	upserter, root := newTestUpserter(t, tx, ImagePolicySkip)
	writePNG(t, root, "a.png")

	rec := sizedRecord()
	rec.Images = []string{"a.png"}

	_, err := upserter.Upsert(context.Background(), rec, testRefMaps(), "admin-1")

	require.NoError(t, err)
	assert.Empty(t, tx.files)
	assert.Empty(t, tx.unlinked)
}

func TestUpsert_ImagePolicyReplace(t *testing.T) {
	tx := newFakeTx()
	existing := &domain.Product{ID: "prod-1", ExternalID: "SKU-100", Name: "Футболка"}
	tx.productsByExtID["SKU-100"] = existing
	tx.imageCounts["prod-1"] = 2

	upserter, root := newTestUpserter(t, tx, ImagePolicyReplace)
	writePNG(t, root, "a.png")

	rec := sizedRecord()
	rec.Images = []string{"a.png"}

	_, err := upserter.Upsert(context.Background(), rec, testRefMaps(), "admin-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"prod-1"}, tx.unlinked)
	require.Len(t, tx.files, 1)
	assert.Equal(t, "admin-1", tx.files[0].UploadedBy)
	require.Len(t, tx.links, 1)
	assert.Equal(t, domain.FileLinkTypeMain, tx.links[0].Type)
	assert.Equal(t, "Футболка", tx.links[0].Alt)
}

func TestUpsert_NewProductLinksImages(t *testing.T) {
	tx := newFakeTx()
	upserter, root := newTestUpserter(t, tx, ImagePolicySkip)
	writePNG(t, root, "a.png")
	writePNG(t, root, "b.png")

	rec := sizedRecord()
	rec.Images = []string{"a.png", "missing.png", "b.png"}

	_, err := upserter.Upsert(context.Background(), rec, testRefMaps(), "admin-1")

	// The missing image is a soft failure; both real files link through.
	require.NoError(t, err)
	require.Len(t, tx.links, 2)
	assert.Equal(t, domain.FileLinkTypeMain, tx.links[0].Type)
	assert.Equal(t, 0, tx.links[0].SortOrder)
	assert.Equal(t, domain.FileLinkTypeGallery, tx.links[1].Type)
	assert.Equal(t, 2, tx.links[1].SortOrder)
}

func TestUpsert_LegacyEmptySKUFilled(t *testing.T) {
	tx := newFakeTx()
	upserter, _ := newTestUpserter(t, tx, ImagePolicySkip)

	rec := &domain.ProductRecord{
		ExternalID: "SKU-200",
		Name:       "Пальто",
		Price:      1999,
		Variants: []domain.VariantRecord{
			{SKU: "", Price: 1999, Active: true},
		},
	}

	_, err := upserter.Upsert(context.Background(), rec, testRefMaps(), "admin-1")

	require.NoError(t, err)
	require.Len(t, tx.variants, 1)
	productID := tx.inserted[0].ID
	sku := tx.variants[0].SKU
	require.NotEmpty(t, sku)
	assert.Contains(t, sku, productID+"-")
	assert.Len(t, sku, len(productID)+1+8)
}

func TestUpsert_InsertFailureAborts(t *testing.T) {
	tx := newFakeTx()
	tx.errOn["InsertVariant"] = errors.New("boom")
	upserter, _ := newTestUpserter(t, tx, ImagePolicySkip)

	result, err := upserter.Upsert(context.Background(), sizedRecord(), testRefMaps(), "admin-1")

	require.Error(t, err)
	assert.Nil(t, result)
}

func writePNG(t *testing.T, root, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), pngHeader, 0o644))
}
