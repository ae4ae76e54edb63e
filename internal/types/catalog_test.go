package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAvailability(t *testing.T) {
	tests := []struct {
		raw      string
		expected Availability
	}{
		{"in_stock", AvailabilityInStock},
		{"IN_STOCK", AvailabilityInStock},
		{"  inStock  ", AvailabilityInStock},
		{"low_on_stock", AvailabilityInStock},
		{"available", AvailabilityInStock},
		{"show", AvailabilityInStock},
		{"out_of_stock", AvailabilityOutOfStock},
		{"sold_out", AvailabilityOutOfStock},
		{"coming_soon", AvailabilityOutOfStock},
		{"back_soon", AvailabilityOutOfStock},
		{"backsoon", AvailabilityOutOfStock},
		{"hidden", AvailabilityOutOfStock},
		{"", AvailabilityUnknown},
		{"garbage", AvailabilityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseAvailability(tt.raw))
		})
	}
}

func TestProductValidate(t *testing.T) {
	valid := Product{
		Name:     "Puffer Jacket",
		Price:    4599,
		Currency: "EUR",
		Colors: []ColorVariant{
			{Name: "Black", Availability: AvailabilityInStock, Sizes: []Size{
				{Label: "S", Availability: AvailabilityInStock, Position: 0},
			}},
		},
	}
	assert.NoError(t, valid.Validate())

	t.Run("missing name", func(t *testing.T) {
		p := valid
		p.Name = "   "
		assert.Error(t, p.Validate())
	})

	t.Run("negative price", func(t *testing.T) {
		p := valid
		p.Price = -1
		assert.Error(t, p.Validate())
	})

	t.Run("unnamed color", func(t *testing.T) {
		p := valid
		p.Colors = []ColorVariant{{Name: ""}}
		assert.Error(t, p.Validate())
	})

	t.Run("negative color price", func(t *testing.T) {
		p := valid
		p.Colors = []ColorVariant{{Name: "Black", Price: -100}}
		assert.Error(t, p.Validate())
	})

	t.Run("negative size position", func(t *testing.T) {
		p := valid
		p.Colors = []ColorVariant{{Name: "Black", Sizes: []Size{{Label: "S", Position: -1}}}}
		assert.Error(t, p.Validate())
	})
}
