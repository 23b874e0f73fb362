// Package pricing computes order totals. It is pure: same lines in, same
// totals out.
package pricing

import "math"

const (
	taxRate               = 0.10
	shippingFlat          = 10.0
	freeShippingThreshold = 100.0
)

type Line struct {
	UnitPrice float64
	Quantity  uint
}

type Totals struct {
	ItemsPrice    float64 `json:"items_price"`
	TaxPrice      float64 `json:"tax_price"`
	ShippingPrice float64 `json:"shipping_price"`
	TotalPrice    float64 `json:"total_price"`
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotals sums the lines, applies 10% tax and flat shipping (waived
// only when the items total strictly exceeds the free-shipping threshold;
// exactly 100.00 still ships at 10.00). Each figure is rounded once, at the
// end, not per line.
func ComputeTotals(lines []Line) Totals {
	var items float64
	for _, l := range lines {
		items += l.UnitPrice * float64(l.Quantity)
	}

	tax := items * taxRate
	shipping := shippingFlat
	if items > freeShippingThreshold {
		shipping = 0
	}
	total := items + tax + shipping

	return Totals{
		ItemsPrice:    Round2(items),
		TaxPrice:      Round2(tax),
		ShippingPrice: Round2(shipping),
		TotalPrice:    Round2(total),
	}
}
