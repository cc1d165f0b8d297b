package products

import (
	"context"
	"errors"

	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/forms"
	"github.com/stockroom-wms/stockroom/internal/shared"
)

// FormDeps groups the collaborators a product form needs.
type FormDeps struct {
	Resource *backend.Resource[Product]
	Guard    *shared.SubmitGuard
}

// NewForm builds the product entity form. With existing set the form edits
// that record (full replacement on submit, identifier locked); otherwise it
// creates a new one.
func NewForm(deps FormDeps, existing *Product) *forms.Form[Product] {
	editing := existing != nil

	rules := forms.NewRuleset(forms.UniqueRule[Product]{
		Field:  "id",
		Value:  func(p Product) string { return p.ID },
		Exists: deps.Resource.IDExists,
		Skip:   func(Product) bool { return editing },
	})

	draft := Product{Active: true, Category: string(CategoryGeneral)}
	if editing {
		draft = *existing
	}

	return forms.New(forms.Config[Product]{
		Draft:         draft,
		Rules:         rules,
		Submit:        submitFunc(deps, editing),
		SuccessNotice: "product saved",
		FailureNotice: "could not save product, please try again",
	})
}

func submitFunc(deps FormDeps, editing bool) forms.SubmitFunc[Product] {
	return func(ctx context.Context, record Product) error {
		if editing {
			_, err := deps.Resource.Update(ctx, record.ID, record)
			return err
		}

		claimed := false
		if deps.Guard != nil {
			if err := deps.Guard.CheckAndInsert(ctx, "product", record.ID); err != nil {
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
				_ = deps.Guard.Release(ctx, "product", record.ID)
			}
			return err
		}
		return nil
	}
}
