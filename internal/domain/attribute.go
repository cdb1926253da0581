package domain

import "time"

// Attribute type constants.
const (
	AttributeTypeSelect  = "select"
	AttributeTypeColor   = "color"
	AttributeTypeText    = "text"
	AttributeTypeNumber  = "number"
	AttributeTypeBoolean = "boolean"
)

// Well-known attribute slugs synthesized by the importer.
const (
	AttributeSlugSize  = "size"
	AttributeSlugColor = "color"
)

// Attribute is a product-scoped attribute definition with an ordered
// option list. Definitions persist across re-imports; their values and the
// variants referencing them are purged and regenerated on every run.
type Attribute struct {
	ID        string            `json:"id"`
	ProductID string            `json:"product_id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	Type      string            `json:"type"`
	Options   []AttributeOption `json:"options"`
	SortOrder int               `json:"sort_order"`
	CreatedAt time.Time         `json:"created_at"`
}

// AttributeOption is one selectable value of an attribute. Meta carries
// option-level extras such as a hex swatch for color options.
type AttributeOption struct {
	Label string            `json:"label"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// AttributeValue binds a product (or one of its variants) to a serialized
// value payload for one attribute.
type AttributeValue struct {
	ID          string  `json:"id"`
	AttributeID string  `json:"attribute_id"`
	ProductID   string  `json:"product_id"`
	VariantID   *string `json:"variant_id,omitempty"`
	Value       []byte  `json:"value"`
}

// IsValidAttributeType checks whether the given type string is a valid
// attribute type.
func IsValidAttributeType(t string) bool {
	switch t {
	case AttributeTypeSelect, AttributeTypeColor, AttributeTypeText, AttributeTypeNumber, AttributeTypeBoolean:
		return true
	}
	return false
}
