package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRecord struct {
	ExternalID string  `validate:"required"`
	Name       string  `validate:"required"`
	Price      float64 `validate:"gte=0"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(&sampleRecord{ExternalID: "SKU-100", Name: "Футболка", Price: 1500})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(&sampleRecord{Price: 1500})

	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := verr.Fields()
	assert.Equal(t, "is required", fields["ExternalID"])
	assert.Equal(t, "is required", fields["Name"])
	assert.Contains(t, err.Error(), "ExternalID")
}

func TestValidate_NegativePrice(t *testing.T) {
	err := Validate(&sampleRecord{ExternalID: "SKU-100", Name: "Футболка", Price: -1})

	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be greater than or equal to 0", verr.Fields()["Price"])
}
