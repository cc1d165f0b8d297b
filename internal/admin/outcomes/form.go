package outcomes

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/catalog"
	"github.com/stockroom-wms/stockroom/internal/forms"
	"github.com/stockroom-wms/stockroom/internal/shared"
)

// FormDeps groups the collaborators an outcome form needs.
type FormDeps struct {
	Resource *backend.Resource[Outcome]
	Guard    *shared.SubmitGuard
	Catalog  catalog.Snapshot
	TaxRate  decimal.Decimal
}

// FormInstance bundles the outcome form with its line-item selection table.
type FormInstance struct {
	*forms.Form[Outcome]

	Table *forms.SelectionTable
}

// NewFormInstance builds the outcome form, seeded from the catalog snapshot
// taken when the form opens.
func NewFormInstance(deps FormDeps, existing *Outcome) *FormInstance {
	editing := existing != nil

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

	rules := forms.NewRuleset(forms.UniqueRule[Outcome]{
		Field:  "id",
		Value:  func(o Outcome) string { return o.ID },
		Exists: deps.Resource.IDExists,
		Skip:   func(Outcome) bool { return editing },
	})

	draft := Outcome{
		Active: true,
		Date:   time.Now().Format("2006-01-02"),
	}
	if editing {
		draft = *existing
	}

	calc := forms.NewCalculator(deps.TaxRate)
	form := forms.New(forms.Config[Outcome]{
		Draft: draft,
		Rules: rules,
		Derive: func(d *Outcome) {
			subtotal := calc.Subtotal(d.Items)
			total := calc.Total(d.Items)
			d.Subtotal = subtotal.InexactFloat64()
			d.Tax = total.Sub(subtotal).InexactFloat64()
			d.Total = total.InexactFloat64()
			d.TotalDisplay = forms.FormatMoney(total)
		},
		Submit:        submitFunc(deps, editing),
		SuccessNotice: "outcome saved",
		FailureNotice: "could not save outcome, please try again",
	})

	instance := &FormInstance{Form: form, Table: table}
	table.OnChange(func(items []forms.LineItem) {
		_ = form.Apply(func(d *Outcome) { d.Items = items })
	})
	return instance
}

func submitFunc(deps FormDeps, editing bool) forms.SubmitFunc[Outcome] {
	return func(ctx context.Context, record Outcome) error {
		if editing {
			_, err := deps.Resource.Update(ctx, record.ID, record)
			return err
		}

		claimed := false
		if deps.Guard != nil {
			if err := deps.Guard.CheckAndInsert(ctx, "outcome", record.ID); err != nil {
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
				_ = deps.Guard.Release(ctx, "outcome", record.ID)
			}
			return err
		}
		return nil
	}
}

// ReplaceRows swaps the full selection-table state; rows not mentioned are
// cleared back to excluded.
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
