package forms

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders a derived total for display, with grouping separators
// and exactly two decimals.
func FormatMoney(amount decimal.Decimal) string {
	return moneyPrinter.Sprintf("%.2f", amount.InexactFloat64())
}
