package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		name      string
		basePrice int64
		salePrice int64
		expected  int
	}{
		{
			name:      "quarter off",
			basePrice: 100000,
			salePrice: 75000,
			expected:  25,
		},
		{
			name:      "rounded up",
			basePrice: 30000,
			salePrice: 20000,
			expected:  33,
		},
		{
			name:      "no sale price",
			basePrice: 100000,
			salePrice: 0,
			expected:  0,
		},
		{
			name:      "no base price",
			basePrice: 0,
			salePrice: 50000,
			expected:  0,
		},
		{
			name:      "sale above base",
			basePrice: 10000,
			salePrice: 12000,
			expected:  -20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DiscountPercent(tt.basePrice, tt.salePrice))
		})
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(100000), MinorUnits(1000))
	assert.Equal(t, int64(99990), MinorUnits(999.9))
	assert.Equal(t, int64(1), MinorUnits(0.005))
	assert.Equal(t, int64(0), MinorUnits(0))
}

func TestLinkTypeForIndex(t *testing.T) {
	assert.Equal(t, FileLinkTypeMain, LinkTypeForIndex(0))
	assert.Equal(t, FileLinkTypeGallery, LinkTypeForIndex(1))
	assert.Equal(t, FileLinkTypeGallery, LinkTypeForIndex(5))
}

func TestIsValidAttributeType(t *testing.T) {
	for _, valid := range []string{"select", "color", "text", "number", "boolean"} {
		assert.True(t, IsValidAttributeType(valid), valid)
	}
	assert.False(t, IsValidAttributeType("dropdown"))
	assert.False(t, IsValidAttributeType(""))
}
