package outcomes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-wms/stockroom/internal/admin/products"
	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/catalog"
	"github.com/stockroom-wms/stockroom/internal/forms"
)

type fakeBackend struct {
	outcomes []Outcome
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /outcome/create_outcome", func(w http.ResponseWriter, r *http.Request) {
		var out Outcome
		_ = json.NewDecoder(r.Body).Decode(&out)
		f.outcomes = append(f.outcomes, out)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": out})
	})
	mux.HandleFunc("GET /outcome/outcome_id_exists/{id}", func(w http.ResponseWriter, r *http.Request) {
		taken := false
		for _, out := range f.outcomes {
			if out.ID == r.PathValue("id") {
				taken = true
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": taken})
	})
	return mux
}

func newTestInstance(t *testing.T, fb *fakeBackend, existing *Outcome) *FormInstance {
	t.Helper()
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)
	deps := FormDeps{
		Resource: backend.NewResource[Outcome](backend.NewClient(srv.URL), "outcome"),
		Catalog: catalog.Snapshot{Products: []products.Product{
			{ID: "P-1", Name: "Widget", Active: true},
			{ID: "P-2", Name: "Gadget", Active: true},
		}},
		TaxRate: decimal.NewFromFloat(0.18),
	}
	return NewFormInstance(deps, existing)
}

func ptr(v float64) *float64 { return &v }

func TestLineItemEditsDeriveTotal(t *testing.T) {
	instance := newTestInstance(t, &fakeBackend{}, nil)

	require.NoError(t, instance.Table.Set(forms.SelectionRow{
		ProductID: "P-1", Included: true, Quantity: ptr(2), UnitPrice: ptr(10),
	}))
	require.NoError(t, instance.Table.Set(forms.SelectionRow{
		ProductID: "P-2", Included: true, Quantity: ptr(1), UnitPrice: ptr(5),
	}))

	draft := instance.Draft()
	require.InDelta(t, 29.5, draft.Total, 0.001)
	require.Equal(t, "29.50", draft.TotalDisplay)
}

func TestSubmitRequiresDestination(t *testing.T) {
	instance := newTestInstance(t, &fakeBackend{}, nil)
	require.NoError(t, instance.Apply(func(d *Outcome) { d.ID = "OUT-1" }))

	errs, err := instance.Submit(context.Background())
	require.NoError(t, err)
	require.Contains(t, errs, "destination")
	require.Equal(t, forms.StateEditing, instance.State())
}

func TestSubmitRejectsNonPositiveLineItems(t *testing.T) {
	fb := &fakeBackend{}
	instance := newTestInstance(t, fb, nil)

	require.NoError(t, instance.Apply(func(d *Outcome) {
		d.ID = "OUT-3"
		d.Destination = "Store 14"
	}))
	require.NoError(t, instance.Table.Set(forms.SelectionRow{
		ProductID: "P-1", Included: true, Quantity: ptr(-5), UnitPrice: ptr(-10),
	}))

	errs, err := instance.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "quantity must be greater than 0", errs["quantity"])
	require.Equal(t, forms.StateEditing, instance.State())
	require.Empty(t, fb.outcomes)
}

func TestSubmitPersistsDerivedTotals(t *testing.T) {
	fb := &fakeBackend{}
	instance := newTestInstance(t, fb, nil)

	require.NoError(t, instance.Apply(func(d *Outcome) {
		d.ID = "OUT-2"
		d.Destination = "Store 14"
	}))
	require.NoError(t, instance.Table.Set(forms.SelectionRow{
		ProductID: "P-1", Included: true, Quantity: ptr(5), UnitPrice: ptr(2),
	}))

	errs, err := instance.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, fb.outcomes, 1)
	require.InDelta(t, 11.8, fb.outcomes[0].Total, 0.001)
	require.Equal(t, forms.StateSuccess, instance.State())
}
