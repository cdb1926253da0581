package domain

// ProductRecord is one product entry from an upstream catalog JSON export.
// It exists only for the duration of one import run.
//
// The feed has two shapes: the current one carries raw Sizes/Colors lists
// that the importer expands into attributes and variants, and a legacy one
// carries explicit Variants/Attributes. Records are normalized to a single
// internal representation immediately after parsing.
type ProductRecord struct {
	ExternalID    string            `json:"xmlId" validate:"required"`
	Name          string            `json:"name" validate:"required"`
	Link          string            `json:"link"`
	Price         float64           `json:"price" validate:"gte=0"`
	PriceDiscount float64           `json:"priceDiscount" validate:"gte=0"`
	Categories    []string          `json:"categories"`
	Brand         string            `json:"brand"`
	Images        []string          `json:"images"`
	Sizes         []SizeRecord      `json:"sizes"`
	Colors        []ColorRecord     `json:"colors"`
	Variants      []VariantRecord   `json:"variants"`
	Attributes    []AttributeRecord `json:"attributes"`
}

// SizeRecord is one raw size descriptor from the feed.
type SizeRecord struct {
	Name          string  `json:"name"`
	Available     bool    `json:"available"`
	Online        bool    `json:"online"`
	Price         float64 `json:"price"`
	PriceDiscount float64 `json:"priceDiscount"`
}

// ColorRecord is one raw color descriptor from the feed. Hex may be empty.
type ColorRecord struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// VariantRecord is one entry of the legacy explicit variant list.
type VariantRecord struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	PriceDiscount float64 `json:"priceDiscount"`
	Stock         int     `json:"stock"`
	Active        bool    `json:"active"`
}

// AttributeRecord is one entry of the legacy explicit attribute list.
type AttributeRecord struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// HasSizes reports whether the record carries the current raw size shape.
func (r *ProductRecord) HasSizes() bool {
	return len(r.Sizes) > 0
}
