package importer

import (
	"context"

	"github.com/kupimoda/catalog-importer/internal/domain"
	"github.com/kupimoda/catalog-importer/internal/repository"
	apperrors "github.com/kupimoda/catalog-importer/pkg/errors"
)

// fakeTx is a stateful in-memory stand-in for one catalog transaction.
// errOn maps a method name to an error to force failure paths.
type fakeTx struct {
	productsByExtID map[string]*domain.Product
	attrsByProduct  map[string]map[string]string
	imageCounts     map[string]int

	inserted   []*domain.Product
	updated    []*domain.Product
	categories map[string][]string
	purged     []string
	attributes []*domain.Attribute
	variants   []*domain.Variant
	values     []*domain.AttributeValue
	files      []*domain.FileAsset
	links      []*domain.FileLink
	unlinked   []string

	errOn map[string]error
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		productsByExtID: make(map[string]*domain.Product),
		attrsByProduct:  make(map[string]map[string]string),
		imageCounts:     make(map[string]int),
		categories:      make(map[string][]string),
		errOn:           make(map[string]error),
	}
}

func (f *fakeTx) err(method string) error {
	return f.errOn[method]
}

func (f *fakeTx) ProductByExternalID(_ context.Context, externalID string) (*domain.Product, error) {
	if err := f.err("ProductByExternalID"); err != nil {
		return nil, err
	}
	p, ok := f.productsByExtID[externalID]
	if !ok {
		return nil, apperrors.NotFound("product", externalID)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeTx) InsertProduct(_ context.Context, p *domain.Product) error {
	if err := f.err("InsertProduct"); err != nil {
		return err
	}
	f.inserted = append(f.inserted, p)
	f.productsByExtID[p.ExternalID] = p
	return nil
}

func (f *fakeTx) UpdateProductPricing(_ context.Context, p *domain.Product) error {
	if err := f.err("UpdateProductPricing"); err != nil {
		return err
	}
	f.updated = append(f.updated, p)
	f.productsByExtID[p.ExternalID] = p
	return nil
}

func (f *fakeTx) LinkCategories(_ context.Context, productID string, categoryIDs []string) error {
	if err := f.err("LinkCategories"); err != nil {
		return err
	}
	f.categories[productID] = append(f.categories[productID], categoryIDs...)
	return nil
}

func (f *fakeTx) PurgeProductGraph(_ context.Context, productID string) error {
	if err := f.err("PurgeProductGraph"); err != nil {
		return err
	}
	f.purged = append(f.purged, productID)
	return nil
}

func (f *fakeTx) AttributeIDsBySlug(_ context.Context, productID string) (map[string]string, error) {
	if err := f.err("AttributeIDsBySlug"); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for slug, id := range f.attrsByProduct[productID] {
		out[slug] = id
	}
	return out, nil
}

func (f *fakeTx) InsertAttribute(_ context.Context, a *domain.Attribute) error {
	if err := f.err("InsertAttribute"); err != nil {
		return err
	}
	f.attributes = append(f.attributes, a)
	if f.attrsByProduct[a.ProductID] == nil {
		f.attrsByProduct[a.ProductID] = make(map[string]string)
	}
	f.attrsByProduct[a.ProductID][a.Slug] = a.ID
	return nil
}

func (f *fakeTx) InsertVariant(_ context.Context, v *domain.Variant) error {
	if err := f.err("InsertVariant"); err != nil {
		return err
	}
	f.variants = append(f.variants, v)
	return nil
}

func (f *fakeTx) InsertAttributeValue(_ context.Context, v *domain.AttributeValue) error {
	if err := f.err("InsertAttributeValue"); err != nil {
		return err
	}
	f.values = append(f.values, v)
	return nil
}

func (f *fakeTx) ImageCount(_ context.Context, productID string) (int, error) {
	if err := f.err("ImageCount"); err != nil {
		return 0, err
	}
	return f.imageCounts[productID] + len(f.links), nil
}

func (f *fakeTx) DeleteImageLinks(_ context.Context, productID string) error {
	if err := f.err("DeleteImageLinks"); err != nil {
		return err
	}
	f.unlinked = append(f.unlinked, productID)
	f.imageCounts[productID] = 0
	f.links = nil
	return nil
}

func (f *fakeTx) InsertFile(_ context.Context, a *domain.FileAsset) error {
	if err := f.err("InsertFile"); err != nil {
		return err
	}
	f.files = append(f.files, a)
	return nil
}

func (f *fakeTx) LinkFile(_ context.Context, l *domain.FileLink) error {
	if err := f.err("LinkFile"); err != nil {
		return err
	}
	f.links = append(f.links, l)
	return nil
}

// fakeCatalog hands every transaction the same fakeTx, so tests can seed
// and inspect state across calls.
type fakeCatalog struct {
	tx      *fakeTx
	beginEr error
}

func (f *fakeCatalog) InTx(_ context.Context, fn func(tx repository.Tx) error) error {
	if f.beginEr != nil {
		return f.beginEr
	}
	return fn(f.tx)
}

// fakeRefs serves reference lookups from plain maps.
type fakeRefs struct {
	brands     map[string]string
	categories map[string]string
	adminID    string
	adminErr   error
}

func (f *fakeRefs) BrandsByName(_ context.Context) (map[string]string, error) {
	return f.brands, nil
}

func (f *fakeRefs) CategoriesByExternalID(_ context.Context) (map[string]string, error) {
	return f.categories, nil
}

func (f *fakeRefs) AdminID(_ context.Context, _ string) (string, error) {
	if f.adminErr != nil {
		return "", f.adminErr
	}
	return f.adminID, nil
}
