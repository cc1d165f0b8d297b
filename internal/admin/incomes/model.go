// Package incomes implements the goods-receipt admin screen: incoming stock
// movements with supplier cross-references, a product line-item table and
// tax-inclusive derived totals.
package incomes

import "github.com/stockroom-wms/stockroom/internal/forms"

// OriginType enumerates where an incoming movement came from.
type OriginType string

const (
	OriginPurchase   OriginType = "PURCHASE"
	OriginReturn     OriginType = "CUSTOMER_RETURN"
	OriginTransfer   OriginType = "TRANSFER_IN"
	OriginAdjustment OriginType = "ADJUSTMENT"
)

// OriginTypes lists the selectable origin types in display order.
func OriginTypes() []OriginType {
	return []OriginType{OriginPurchase, OriginReturn, OriginTransfer, OriginAdjustment}
}

// OriginTypeLabel maps an origin type to its display label. It is a pure
// lookup; rendering a label never touches shared state.
func OriginTypeLabel(t OriginType) string {
	switch t {
	case OriginPurchase:
		return "Purchase"
	case OriginReturn:
		return "Customer return"
	case OriginTransfer:
		return "Transfer in"
	case OriginAdjustment:
		return "Stock adjustment"
	default:
		return "Unknown"
	}
}

// Income is one incoming stock movement. SupplierID cross-references the
// supplier collection; the SupplierName/SupplierEmail display fields and the
// money fields are derived on every edit and are never user-editable. Delete
// flips Active to false.
type Income struct {
	ID         string           `json:"id" validate:"required,max=24"`
	Date       string           `json:"date" validate:"required,datetime=2006-01-02"`
	SupplierID string           `json:"supplier_id" validate:"required"`
	OriginType string           `json:"origin_type" validate:"required,oneof=PURCHASE CUSTOMER_RETURN TRANSFER_IN ADJUSTMENT"`
	Items      []forms.LineItem `json:"items" validate:"omitempty,dive"`
	Note       string           `json:"note" validate:"max=500"`
	Active     bool             `json:"active"`

	// Derived fields.
	Subtotal     float64 `json:"subtotal"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
	TotalDisplay string  `json:"total_display"`

	SupplierName  string `json:"supplier_name"`
	SupplierEmail string `json:"supplier_email"`
	OriginLabel   string `json:"origin_label"`
}
