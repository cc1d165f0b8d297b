package incomes

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockroom-wms/stockroom/internal/admin/suppliers"
	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/catalog"
	"github.com/stockroom-wms/stockroom/internal/forms"
	"github.com/stockroom-wms/stockroom/internal/shared"
)

// FormDeps groups the collaborators an income form needs.
type FormDeps struct {
	Resource  *backend.Resource[Income]
	Suppliers *backend.Resource[suppliers.Supplier]
	Guard     *shared.SubmitGuard
	Catalog   catalog.Snapshot
	TaxRate   decimal.Decimal
}

// FormInstance bundles the income form with its line-item selection table and
// the session-scoped supplier cache. The whole bundle lives in the form
// registry; dismissing it dismisses the inner form.
type FormInstance struct {
	*forms.Form[Income]

	Table     *forms.SelectionTable
	Suppliers *forms.RefCache[suppliers.Supplier]

	deps FormDeps
}

// NewFormInstance builds the income form. The supplier cache and the
// selection table are seeded from the catalog snapshot taken when the form
// opens; line items of an existing record whose product left the catalog are
// dropped from the draft.
func NewFormInstance(deps FormDeps, existing *Income) *FormInstance {
	editing := existing != nil

	supplierCache := forms.NewRefCache(
		func(s suppliers.Supplier) string { return s.ID },
		deps.Catalog.Suppliers,
	)

	productIDs := make([]string, 0, len(deps.Catalog.Products))
	for _, p := range deps.Catalog.Products {
		productIDs = append(productIDs, p.ID)
	}
	table := forms.NewSelectionTable(productIDs)
	if editing {
		for _, item := range existing.Items {
			qty, price := item.Quantity, item.UnitPrice
			_ = table.Set(forms.SelectionRow{
				ProductID: item.ProductID,
				Included:  true,
				Quantity:  &qty,
				UnitPrice: &price,
			})
		}
	}

	rules := forms.NewRuleset(forms.UniqueRule[Income]{
		Field:  "id",
		Value:  func(i Income) string { return i.ID },
		Exists: deps.Resource.IDExists,
		Skip:   func(Income) bool { return editing },
	})

	draft := Income{
		Active:     true,
		Date:       time.Now().Format("2006-01-02"),
		OriginType: string(OriginPurchase),
	}
	if editing {
		draft = *existing
	}

	calc := forms.NewCalculator(deps.TaxRate)
	form := forms.New(forms.Config[Income]{
		Draft:         draft,
		Rules:         rules,
		Derive:        deriveFunc(calc, supplierCache),
		Submit:        submitFunc(deps, editing),
		SuccessNotice: "income saved",
		FailureNotice: "could not save income, please try again",
	})

	instance := &FormInstance{
		Form:      form,
		Table:     table,
		Suppliers: supplierCache,
		deps:      deps,
	}

	// Every row edit re-emits the line items into the draft, which recomputes
	// the derived totals. Registration fires once with the current state.
	table.OnChange(func(items []forms.LineItem) {
		_ = form.Apply(func(d *Income) { d.Items = items })
	})
	return instance
}

// deriveFunc recomputes the dependent draft fields: resolved supplier display
// values (empty when nothing resolves, never stale), the origin label and the
// money totals.
func deriveFunc(calc forms.Calculator, cache *forms.RefCache[suppliers.Supplier]) func(*Income) {
	return func(d *Income) {
		if supplier, ok := cache.Resolve(d.SupplierID); ok {
			d.SupplierName = supplier.Name
			d.SupplierEmail = supplier.Email
		} else {
			d.SupplierName = ""
			d.SupplierEmail = ""
		}

		d.OriginLabel = ""
		if d.OriginType != "" {
			d.OriginLabel = OriginTypeLabel(OriginType(d.OriginType))
		}

		subtotal := calc.Subtotal(d.Items)
		total := calc.Total(d.Items)
		d.Subtotal = subtotal.InexactFloat64()
		d.Tax = total.Sub(subtotal).InexactFloat64()
		d.Total = total.InexactFloat64()
		d.TotalDisplay = forms.FormatMoney(total)
	}
}

func submitFunc(deps FormDeps, editing bool) forms.SubmitFunc[Income] {
	return func(ctx context.Context, record Income) error {
		if editing {
			_, err := deps.Resource.Update(ctx, record.ID, record)
			return err
		}

		claimed := false
		if deps.Guard != nil {
			if err := deps.Guard.CheckAndInsert(ctx, "income", record.ID); err != nil {
				if errors.Is(err, shared.ErrDuplicateSubmission) {
					return err
				}
				// Guard unavailability must not block the user.
			} else {
				claimed = true
			}
		}

		if _, err := deps.Resource.Create(ctx, record); err != nil {
			if claimed {
				_ = deps.Guard.Release(ctx, "income", record.ID)
			}
			return err
		}
		return nil
	}
}

// ReplaceRows swaps the full selection-table state: rows not mentioned are
// cleared back to excluded. Each change re-derives the draft totals.
func (f *FormInstance) ReplaceRows(rows []forms.SelectionRow) error {
	provided := make(map[string]forms.SelectionRow, len(rows))
	for _, row := range rows {
		provided[row.ProductID] = row
	}
	for _, current := range f.Table.Rows() {
		row, ok := provided[current.ProductID]
		if !ok {
			row = forms.SelectionRow{ProductID: current.ProductID}
		}
		if err := f.Table.Set(row); err != nil {
			return err
		}
		delete(provided, current.ProductID)
	}
	if len(provided) > 0 {
		return forms.ErrUnknownProduct
	}
	return nil
}

// CreateSupplier runs the nested supplier-create flow as an independent child
// form. On success the created supplier is appended to this form's supplier
// cache and auto-selected; on failure the parent draft stays untouched and the
// child's field errors are returned.
func (f *FormInstance) CreateSupplier(ctx context.Context, record suppliers.Supplier) (forms.Errors, error) {
	record.Active = true
	child := suppliers.NewForm(
		suppliers.FormDeps{Resource: f.deps.Suppliers, Guard: f.deps.Guard},
		nil,
		func(created suppliers.Supplier) {
			f.Suppliers.Append(created)
			_ = f.Apply(func(d *Income) { d.SupplierID = created.ID })
		},
	)
	if err := child.Apply(func(draft *suppliers.Supplier) { *draft = record }); err != nil {
		return nil, err
	}
	return child.Submit(ctx)
}
