package forms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestSelectionEmitsIncludedRows(t *testing.T) {
	table := NewSelectionTable([]string{"P-1", "P-2", "P-3"})

	var emitted []LineItem
	table.OnChange(func(items []LineItem) { emitted = items })

	require.NoError(t, table.Set(SelectionRow{
		ProductID: "P-2",
		Included:  true,
		Quantity:  floatPtr(4),
		UnitPrice: floatPtr(2.5),
	}))

	require.Len(t, emitted, 1)
	require.Equal(t, LineItem{ProductID: "P-2", Quantity: 4, UnitPrice: 2.5}, emitted[0])
}

func TestSelectionZeroRowsIsValid(t *testing.T) {
	table := NewSelectionTable([]string{"P-1"})
	require.Empty(t, table.Items())

	calc := NewCalculator(DefaultTaxRate)
	require.True(t, calc.Total(table.Items()).IsZero())
}

func TestSelectionMissingInputsDefaultToZero(t *testing.T) {
	table := NewSelectionTable([]string{"P-1"})
	require.NoError(t, table.Set(SelectionRow{ProductID: "P-1", Included: true, Quantity: floatPtr(3)}))

	items := table.Items()
	require.Len(t, items, 1)
	require.Zero(t, items[0].UnitPrice)
}

func TestSelectionNilPriceRowDerivesZeroTotal(t *testing.T) {
	table := NewSelectionTable([]string{"P-1"})
	calc := NewCalculator(DefaultTaxRate)

	var total decimal.Decimal
	table.OnChange(func(items []LineItem) { total = calc.Total(items) })

	// Included with a quantity but no price typed yet: the row is emitted
	// with a zero price and the derived total stays zero.
	require.NoError(t, table.Set(SelectionRow{ProductID: "P-1", Included: true, Quantity: floatPtr(3)}))
	require.True(t, total.IsZero())

	require.NoError(t, table.Set(SelectionRow{ProductID: "P-1", Included: true, Quantity: floatPtr(3), UnitPrice: floatPtr(2)}))
	require.True(t, total.Equal(decimal.NewFromFloat(7.08)))
}

func TestSelectionRejectsUnknownProduct(t *testing.T) {
	table := NewSelectionTable([]string{"P-1"})
	err := table.Set(SelectionRow{ProductID: "P-9", Included: true})
	require.ErrorIs(t, err, ErrUnknownProduct)
}

func TestSelectionKeepsCatalogOrder(t *testing.T) {
	table := NewSelectionTable([]string{"P-3", "P-1", "P-2"})
	require.NoError(t, table.Set(SelectionRow{ProductID: "P-1", Included: true, Quantity: floatPtr(1), UnitPrice: floatPtr(1)}))
	require.NoError(t, table.Set(SelectionRow{ProductID: "P-3", Included: true, Quantity: floatPtr(1), UnitPrice: floatPtr(1)}))

	items := table.Items()
	require.Len(t, items, 2)
	require.Equal(t, "P-3", items[0].ProductID)
	require.Equal(t, "P-1", items[1].ProductID)
}
