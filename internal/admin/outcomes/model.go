// Package outcomes implements the goods-issue admin screen: outgoing stock
// movements with a destination, a product line-item table and tax-inclusive
// derived totals.
package outcomes

import "github.com/stockroom-wms/stockroom/internal/forms"

// Outcome is one outgoing stock movement. The money fields are derived from
// the line items on every edit and are never user-editable. Delete flips
// Active to false.
type Outcome struct {
	ID          string           `json:"id" validate:"required,max=24"`
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	Destination string           `json:"destination" validate:"required,max=120"`
	Items       []forms.LineItem `json:"items" validate:"omitempty,dive"`
	Note        string           `json:"note" validate:"max=500"`
	Active      bool             `json:"active"`

	// Derived fields.
	Subtotal     float64 `json:"subtotal"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
	TotalDisplay string  `json:"total_display"`
}
