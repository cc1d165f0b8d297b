package forms

import "github.com/shopspring/decimal"

// DefaultTaxRate is the sales tax applied to movement totals.
var DefaultTaxRate = decimal.NewFromFloat(0.18)

// Calculator derives order totals from a line-item collection. The zero value
// applies no tax; use NewCalculator for the configured rate.
type Calculator struct {
	taxRate decimal.Decimal
}

// NewCalculator builds a Calculator with the given tax rate (0.18 = 18%).
func NewCalculator(taxRate decimal.Decimal) Calculator {
	return Calculator{taxRate: taxRate}
}

// Subtotal sums quantity times unit price over all items, rounded to 2
// decimal places for display. Zero quantities or prices contribute nothing.
func (c Calculator) Subtotal(items []LineItem) decimal.Decimal {
	return c.sum(items).Round(2)
}

// Total applies the tax rate on top of the unrounded item sum and rounds
// once, at the end, to 2 decimal places. Recomputing from the same items
// always yields the same value; the result is written into the draft, never
// edited directly.
func (c Calculator) Total(items []LineItem) decimal.Decimal {
	one := decimal.NewFromInt(1)
	return c.sum(items).Mul(one.Add(c.taxRate)).Round(2)
}

func (c Calculator) sum(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromFloat(item.Quantity)
		price := decimal.NewFromFloat(item.UnitPrice)
		sum = sum.Add(qty.Mul(price))
	}
	return sum
}

// Tax returns the tax portion of the total.
func (c Calculator) Tax(items []LineItem) decimal.Decimal {
	return c.Total(items).Sub(c.Subtotal(items))
}
