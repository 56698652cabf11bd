package pricing

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	logger := zerolog.Nop()
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		items    []Item
		expected Breakdown
	}{
		{
			name:  "Flat shipping below threshold",
			items: []Item{{Price: 100, Quantity: 2}},
			expected: Breakdown{
				ItemsPrice:  200,
				TaxPrice:    36,
				ShippingFee: 50,
				TotalPrice:  286,
			},
		},
		{
			name:  "Free shipping above threshold",
			items: []Item{{Price: 300, Quantity: 2}},
			expected: Breakdown{
				ItemsPrice:  600,
				TaxPrice:    108,
				ShippingFee: 0,
				TotalPrice:  708,
			},
		},
		{
			name:  "Exactly at threshold still pays flat fee",
			items: []Item{{Price: 500, Quantity: 1}},
			expected: Breakdown{
				ItemsPrice:  500,
				TaxPrice:    90,
				ShippingFee: 50,
				TotalPrice:  640,
			},
		},
		{
			name:     "Empty item list",
			items:    nil,
			expected: Breakdown{},
		},
		{
			name: "Invalid items skipped",
			items: []Item{
				{Price: math.NaN(), Quantity: 2},
				{Price: 100, Quantity: -1},
				{Price: 100, Quantity: 2},
			},
			expected: Breakdown{
				ItemsPrice:  200,
				TaxPrice:    36,
				ShippingFee: 50,
				TotalPrice:  286,
			},
		},
		{
			name:  "All items invalid yields zero total and free shipping",
			items: []Item{{Price: math.Inf(1), Quantity: 1}},
			expected: Breakdown{
				ItemsPrice:  0,
				TaxPrice:    0,
				ShippingFee: 0,
				TotalPrice:  0,
			},
		},
		{
			name:  "Tax rounded to two decimals",
			items: []Item{{Price: 33.33, Quantity: 1}},
			expected: Breakdown{
				ItemsPrice:  33.33,
				TaxPrice:    6.00, // 5.9994 rounds up
				ShippingFee: 50,
				TotalPrice:  89.33,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.items, cfg, logger)
			assert.InDelta(t, tt.expected.ItemsPrice, got.ItemsPrice, 0.001)
			assert.InDelta(t, tt.expected.TaxPrice, got.TaxPrice, 0.001)
			assert.InDelta(t, tt.expected.ShippingFee, got.ShippingFee, 0.001)
			assert.InDelta(t, tt.expected.TotalPrice, got.TotalPrice, 0.001)
		})
	}
}

func TestCalculate_CustomConfig(t *testing.T) {
	logger := zerolog.Nop()
	cfg := Config{TaxRate: 0.10, FreeShippingThreshold: 100, FlatShippingFee: 10}

	got := Calculate([]Item{{Price: 50, Quantity: 1}}, cfg, logger)
	assert.InDelta(t, 50.0, got.ItemsPrice, 0.001)
	assert.InDelta(t, 5.0, got.TaxPrice, 0.001)
	assert.InDelta(t, 10.0, got.ShippingFee, 0.001)
	assert.InDelta(t, 65.0, got.TotalPrice, 0.001)
}
