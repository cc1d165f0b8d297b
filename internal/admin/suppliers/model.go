// Package suppliers implements the supplier admin screen and the nested
// supplier-create flow reachable from the income form.
package suppliers

// Supplier is the persisted record behind the supplier form. The identifier
// is the supplier's tax id, validated for uniqueness by the collaborator.
type Supplier struct {
	ID      string `json:"id" validate:"required,max=24"`
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Active  bool   `json:"active"`
}
