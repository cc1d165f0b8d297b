package suppliers

import (
	"context"
	"errors"

	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/forms"
	"github.com/stockroom-wms/stockroom/internal/shared"
)

// FormDeps groups the collaborators a supplier form needs.
type FormDeps struct {
	Resource *backend.Resource[Supplier]
	Guard    *shared.SubmitGuard
}

// NewForm builds the supplier entity form. OnSuccess lets a parent form (the
// income form's nested supplier-create flow) receive the created record;
// pass nil for the standalone screen.
func NewForm(deps FormDeps, existing *Supplier, onSuccess func(Supplier)) *forms.Form[Supplier] {
	editing := existing != nil

	rules := forms.NewRuleset(forms.UniqueRule[Supplier]{
		Field:  "id",
		Value:  func(s Supplier) string { return s.ID },
		Exists: deps.Resource.IDExists,
		Skip:   func(Supplier) bool { return editing },
	})

	draft := Supplier{Active: true}
	if editing {
		draft = *existing
	}

	return forms.New(forms.Config[Supplier]{
		Draft:         draft,
		Rules:         rules,
		Submit:        submitFunc(deps, editing),
		OnSuccess:     onSuccess,
		SuccessNotice: "supplier saved",
		FailureNotice: "could not save supplier, please try again",
	})
}

func submitFunc(deps FormDeps, editing bool) forms.SubmitFunc[Supplier] {
	return func(ctx context.Context, record Supplier) error {
		if editing {
			_, err := deps.Resource.Update(ctx, record.ID, record)
			return err
		}

		claimed := false
		if deps.Guard != nil {
			if err := deps.Guard.CheckAndInsert(ctx, "supplier", record.ID); err != nil {
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
				_ = deps.Guard.Release(ctx, "supplier", record.ID)
			}
			return err
		}
		return nil
	}
}
