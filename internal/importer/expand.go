package importer

import (
	"fmt"

	"github.com/kupimoda/catalog-importer/internal/domain"
)

// Attribute display names synthesized for the raw size/color shape. The
// upstream feed is Russian, so the storefront-facing names are too.
const (
	sizeAttributeName  = "Размер"
	colorAttributeName = "Цвет"
)

// AttributeSpec describes an attribute definition to be created for a
// product, before it has an id.
type AttributeSpec struct {
	Name    string
	Slug    string
	Type    string
	Options []domain.AttributeOption
}

// ValueSpec binds an attribute slug to a serialized value payload.
type ValueSpec struct {
	AttributeSlug string
	Payload       map[string]string
}

// VariantSpec describes a variant to be created for a product. An empty
// SKU is filled in at materialization time from the product id plus a
// random suffix (legacy feed entries may omit it).
type VariantSpec struct {
	SKU       string
	Name      string
	Price     int64
	SalePrice *int64
	Stock     int
	IsActive  bool
	IsDefault bool
	Values    []ValueSpec
}

// Expansion is the normalized internal shape of one product record: the
// attribute definitions to create, product-level values, and the variants
// to materialize. Both feed shapes (raw sizes/colors and legacy explicit
// variants) normalize to it.
type Expansion struct {
	Attributes    []AttributeSpec
	ProductValues []ValueSpec
	Variants      []VariantSpec
}

// Expand turns a product record into its normalized expansion.
// existingSlugs holds the attribute slugs already defined for the product;
// size/color attributes are only synthesized when absent, since attribute
// definitions survive re-imports (values and variants do not).
func Expand(rec *domain.ProductRecord, existingSlugs map[string]string) Expansion {
	if rec.HasSizes() {
		return expandSizes(rec, existingSlugs)
	}
	return expandLegacy(rec, existingSlugs)
}

func expandSizes(rec *domain.ProductRecord, existingSlugs map[string]string) Expansion {
	var exp Expansion

	// Options with empty labels are dropped before both attribute
	// synthesis and variant expansion.
	colors := make([]domain.ColorRecord, 0, len(rec.Colors))
	for _, c := range rec.Colors {
		if c.Name != "" {
			colors = append(colors, c)
		}
	}

	if _, ok := existingSlugs[domain.AttributeSlugSize]; !ok {
		exp.Attributes = append(exp.Attributes, AttributeSpec{
			Name:    sizeAttributeName,
			Slug:    domain.AttributeSlugSize,
			Type:    domain.AttributeTypeSelect,
			Options: sizeOptions(rec.Sizes),
		})
	}

	if len(colors) > 0 {
		if _, ok := existingSlugs[domain.AttributeSlugColor]; !ok {
			exp.Attributes = append(exp.Attributes, AttributeSpec{
				Name:    colorAttributeName,
				Slug:    domain.AttributeSlugColor,
				Type:    domain.AttributeTypeColor,
				Options: colorOptions(colors),
			})
		}
	}

	for _, size := range rec.Sizes {
		active := size.Available && size.Online
		stock := 0
		if active {
			stock = domain.AvailableStock
		}

		price := domain.MinorUnits(size.Price)
		var salePrice *int64
		if size.PriceDiscount > 0 {
			sp := domain.MinorUnits(size.PriceDiscount)
			salePrice = &sp
		}

		sizeValue := ValueSpec{
			AttributeSlug: domain.AttributeSlugSize,
			Payload:       map[string]string{"label": size.Name},
		}

		if len(colors) == 0 {
			exp.Variants = append(exp.Variants, VariantSpec{
				SKU:       fmt.Sprintf("%s-%s", rec.ExternalID, size.Name),
				Name:      fmt.Sprintf("%s - %s", rec.Name, size.Name),
				Price:     price,
				SalePrice: salePrice,
				Stock:     stock,
				IsActive:  active,
				IsDefault: active,
				Values:    []ValueSpec{sizeValue},
			})
			continue
		}

		for _, color := range colors {
			colorPayload := map[string]string{"label": color.Name}
			if color.Hex != "" {
				colorPayload["hex"] = color.Hex
			}

			exp.Variants = append(exp.Variants, VariantSpec{
				SKU:       fmt.Sprintf("%s-%s-%s", rec.ExternalID, size.Name, colorPrefix(color.Name)),
				Name:      fmt.Sprintf("%s - %s - %s", rec.Name, size.Name, color.Name),
				Price:     price,
				SalePrice: salePrice,
				Stock:     stock,
				IsActive:  active,
				IsDefault: active,
				Values: []ValueSpec{
					sizeValue,
					{AttributeSlug: domain.AttributeSlugColor, Payload: colorPayload},
				},
			})
		}
	}

	return exp
}

func expandLegacy(rec *domain.ProductRecord, existingSlugs map[string]string) Expansion {
	var exp Expansion

	for _, attr := range rec.Attributes {
		if attr.Slug == "" {
			continue
		}

		attrType := attr.Type
		if !domain.IsValidAttributeType(attrType) {
			attrType = domain.AttributeTypeText
		}

		if _, ok := existingSlugs[attr.Slug]; !ok {
			exp.Attributes = append(exp.Attributes, AttributeSpec{
				Name: attr.Name,
				Slug: attr.Slug,
				Type: attrType,
				Options: []domain.AttributeOption{
					{Label: attr.Value},
				},
			})
		}

		exp.ProductValues = append(exp.ProductValues, ValueSpec{
			AttributeSlug: attr.Slug,
			Payload:       map[string]string{"label": attr.Value},
		})
	}

	for _, v := range rec.Variants {
		price := domain.MinorUnits(v.Price)
		var salePrice *int64
		if v.PriceDiscount > 0 {
			sp := domain.MinorUnits(v.PriceDiscount)
			salePrice = &sp
		}

		name := v.Name
		if name == "" {
			name = rec.Name
		}

		exp.Variants = append(exp.Variants, VariantSpec{
			SKU:       v.SKU, // may be empty; filled at materialization
			Name:      name,
			Price:     price,
			SalePrice: salePrice,
			Stock:     v.Stock,
			IsActive:  v.Active,
			IsDefault: v.Active,
		})
	}

	return exp
}

// sizeOptions returns one option per distinct size label, preserving feed order.
func sizeOptions(sizes []domain.SizeRecord) []domain.AttributeOption {
	seen := make(map[string]bool, len(sizes))
	options := make([]domain.AttributeOption, 0, len(sizes))
	for _, s := range sizes {
		if s.Name == "" || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		options = append(options, domain.AttributeOption{Label: s.Name})
	}
	return options
}

// colorOptions returns one option per distinct color, carrying the hex
// swatch in option metadata when present.
func colorOptions(colors []domain.ColorRecord) []domain.AttributeOption {
	seen := make(map[string]bool, len(colors))
	options := make([]domain.AttributeOption, 0, len(colors))
	for _, c := range colors {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true

		opt := domain.AttributeOption{Label: c.Name}
		if c.Hex != "" {
			opt.Meta = map[string]string{"hex": c.Hex}
		}
		options = append(options, opt)
	}
	return options
}

// colorPrefix returns the first three runes of a color name, used in
// deterministic SKU construction.
func colorPrefix(name string) string {
	runes := []rune(name)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}
