// Package pricing computes the authoritative order totals. Client-submitted
// totals are never trusted; every order is repriced here before persistence.
package pricing

import (
	"math"

	"github.com/rs/zerolog"
)

// Config holds the pricing constants.
type Config struct {
	// TaxRate is applied to the items subtotal.
	TaxRate float64
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold float64
	// FlatShippingFee is charged when the subtotal is positive but at or
	// below the threshold.
	FlatShippingFee float64
}

// DefaultConfig returns the standard pricing constants.
func DefaultConfig() Config {
	return Config{
		TaxRate:               0.18,
		FreeShippingThreshold: 500,
		FlatShippingFee:       50,
	}
}

// Item is a price/quantity pair taken from an order line item.
type Item struct {
	Price    float64
	Quantity int
}

// Breakdown is the computed order total.
type Breakdown struct {
	ItemsPrice  float64 `json:"itemsPrice"`
	TaxPrice    float64 `json:"taxPrice"`
	ShippingFee float64 `json:"shippingFee"`
	TotalPrice  float64 `json:"totalPrice"`
}

// Calculate prices a list of items. Items with a non-finite price or a
// negative quantity are skipped with a warning rather than aborting the
// whole computation. Shipping is free for an empty subtotal and above the
// threshold, otherwise the flat fee applies. Tax and total are rounded to
// two decimal places, half away from zero.
func Calculate(items []Item, cfg Config, logger zerolog.Logger) Breakdown {
	if len(items) == 0 {
		logger.Warn().Msg("pricing: empty item list")
		return Breakdown{}
	}

	var itemsPrice float64
	for i, item := range items {
		if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price < 0 || item.Quantity < 0 {
			logger.Warn().
				Int("item_index", i).
				Float64("price", item.Price).
				Int("quantity", item.Quantity).
				Msg("pricing: skipping invalid item")
			continue
		}
		itemsPrice += item.Price * float64(item.Quantity)
	}

	var shippingFee float64
	switch {
	case itemsPrice == 0:
		shippingFee = 0
	case itemsPrice > cfg.FreeShippingThreshold:
		shippingFee = 0
	default:
		shippingFee = cfg.FlatShippingFee
	}

	taxPrice := round2(itemsPrice * cfg.TaxRate)
	totalPrice := round2(itemsPrice + taxPrice + shippingFee)

	return Breakdown{
		ItemsPrice:  itemsPrice,
		TaxPrice:    taxPrice,
		ShippingFee: shippingFee,
		TotalPrice:  totalPrice,
	}
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
