package forms

import "sync"

// SelectionRow is one catalog product offered on the line-item table together
// with the user's inclusion flag and quantity/price input. Quantity and
// UnitPrice stay nil until the user types something; nil counts as zero when
// the row is emitted as a line item.
type SelectionRow struct {
	ProductID string   `json:"product_id"`
	Included  bool     `json:"included"`
	Quantity  *float64 `json:"quantity,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
}

// SelectionTable presents the product catalog for line-item picking. Rows keep
// catalog order; every edit re-emits the full line-item collection through the
// onChange hook so the enclosing draft recomputes its derived total.
type SelectionTable struct {
	mu       sync.Mutex
	rows     []SelectionRow
	index    map[string]int
	onChange func([]LineItem)
}

// NewSelectionTable seeds one row per catalog product id.
func NewSelectionTable(productIDs []string) *SelectionTable {
	t := &SelectionTable{index: make(map[string]int, len(productIDs))}
	for i, id := range productIDs {
		t.rows = append(t.rows, SelectionRow{ProductID: id})
		t.index[id] = i
	}
	return t
}

// OnChange registers the hook invoked with the current line items after every
// row edit. Registering fires the hook once with the current state.
func (t *SelectionTable) OnChange(fn func([]LineItem)) {
	t.mu.Lock()
	t.onChange = fn
	items := t.itemsLocked()
	t.mu.Unlock()
	if fn != nil {
		fn(items)
	}
}

// Set updates one row's inclusion, quantity and price.
func (t *SelectionTable) Set(row SelectionRow) error {
	t.mu.Lock()
	i, ok := t.index[row.ProductID]
	if !ok {
		t.mu.Unlock()
		return ErrUnknownProduct
	}
	t.rows[i] = row
	fn := t.onChange
	items := t.itemsLocked()
	t.mu.Unlock()
	if fn != nil {
		fn(items)
	}
	return nil
}

// Rows returns a copy of the table rows in catalog order.
func (t *SelectionTable) Rows() []SelectionRow {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SelectionRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Items emits the included rows as a line-item collection. Zero rows selected
// is a valid result and yields an empty collection.
func (t *SelectionTable) Items() []LineItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.itemsLocked()
}

func (t *SelectionTable) itemsLocked() []LineItem {
	items := make([]LineItem, 0, len(t.rows))
	for _, row := range t.rows {
		if !row.Included {
			continue
		}
		item := LineItem{ProductID: row.ProductID}
		if row.Quantity != nil {
			item.Quantity = *row.Quantity
		}
		if row.UnitPrice != nil {
			item.UnitPrice = *row.UnitPrice
		}
		items = append(items, item)
	}
	return items
}
