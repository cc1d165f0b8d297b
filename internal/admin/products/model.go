// Package products implements the product admin screen: proxied listings and
// the product entity form.
package products

// Category enumerates the product categories offered on the form.
type Category string

const (
	CategoryGeneral    Category = "GENERAL"
	CategoryPerishable Category = "PERISHABLE"
	CategoryEquipment  Category = "EQUIPMENT"
	CategorySupplies   Category = "SUPPLIES"
)

// Categories lists the selectable categories in display order.
func Categories() []Category {
	return []Category{CategoryGeneral, CategoryPerishable, CategoryEquipment, CategorySupplies}
}

// Product is the persisted record behind the product form. The identifier is
// a user-entered code whose uniqueness the collaborator validates. Delete
// flips Active to false; records are never physically removed.
type Product struct {
	ID          string  `json:"id" validate:"required,max=24"`
	Name        string  `json:"name" validate:"required,max=120"`
	Category    string  `json:"category" validate:"required,oneof=GENERAL PERISHABLE EQUIPMENT SUPPLIES"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	Description string  `json:"description" validate:"max=500"`
	ImageFileID string  `json:"image_file_id"`
	Active      bool    `json:"active"`
}
