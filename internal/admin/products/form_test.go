package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/forms"
)

type fakeBackend struct {
	products map[string]Product
	created  []Product
	updated  []Product
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{products: make(map[string]Product)}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /product/create_product", func(w http.ResponseWriter, r *http.Request) {
		var p Product
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.products[p.ID] = p
		f.created = append(f.created, p)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": p})
	})
	mux.HandleFunc("PUT /product/update_product/{id}", func(w http.ResponseWriter, r *http.Request) {
		var p Product
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.products[r.PathValue("id")] = p
		f.updated = append(f.updated, p)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": p})
	})
	mux.HandleFunc("GET /product/product_id_exists/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, taken := f.products[r.PathValue("id")]
		_ = json.NewEncoder(w).Encode(map[string]any{"data": taken})
	})
	return mux
}

func newTestResource(t *testing.T, fb *fakeBackend) *backend.Resource[Product] {
	t.Helper()
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)
	return backend.NewResource[Product](backend.NewClient(srv.URL), "product")
}

func TestCreateFormDefaults(t *testing.T) {
	fb := newFakeBackend()
	form := NewForm(FormDeps{Resource: newTestResource(t, fb)}, nil)

	draft := form.Draft()
	require.True(t, draft.Active, "new products default to active")
	require.Equal(t, string(CategoryGeneral), draft.Category)
	require.Equal(t, forms.StateEditing, form.State())
}

func TestCreateSubmitPersistsRecord(t *testing.T) {
	fb := newFakeBackend()
	form := NewForm(FormDeps{Resource: newTestResource(t, fb)}, nil)

	require.NoError(t, form.Apply(func(p *Product) {
		p.ID = "P-100"
		p.Name = "Pallet Jack"
		p.Category = string(CategoryEquipment)
		p.UnitPrice = 249.99
	}))

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, forms.StateSuccess, form.State())
	require.Len(t, fb.created, 1)
	require.Equal(t, "P-100", fb.created[0].ID)
}

func TestCreateRejectsTakenIdentifier(t *testing.T) {
	fb := newFakeBackend()
	fb.products["P-1"] = Product{ID: "P-1", Name: "Widget"}
	form := NewForm(FormDeps{Resource: newTestResource(t, fb)}, nil)

	require.NoError(t, form.Apply(func(p *Product) {
		p.ID = "P-1"
		p.Name = "Clone"
	}))

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Contains(t, errs["id"], "already exists")
	require.Equal(t, forms.StateEditing, form.State())
	require.Empty(t, fb.created, "a rejected draft must not reach the collaborator")
}

func TestCreateFailsClosedWhenUniquenessUnverifiable(t *testing.T) {
	// Server is already closed, so the exists lookup fails.
	srv := httptest.NewServer(newFakeBackend().handler())
	srv.Close()
	broken := backend.NewResource[Product](backend.NewClient(srv.URL), "product")

	form := NewForm(FormDeps{Resource: broken}, nil)
	require.NoError(t, form.Apply(func(p *Product) {
		p.ID = "P-2"
		p.Name = "Widget"
	}))

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Contains(t, errs["id"], "could not verify")
}

func TestEditSkipsUniqueCheckAndUpdates(t *testing.T) {
	fb := newFakeBackend()
	existing := Product{ID: "P-1", Name: "Widget", Category: string(CategoryGeneral), UnitPrice: 5, Active: true}
	fb.products["P-1"] = existing

	form := NewForm(FormDeps{Resource: newTestResource(t, fb)}, &existing)
	require.Equal(t, "P-1", form.Draft().ID)

	require.NoError(t, form.Apply(func(p *Product) { p.UnitPrice = 6.5 }))

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs, "identifier uniqueness does not apply when editing")
	require.Len(t, fb.updated, 1)
	require.InDelta(t, 6.5, fb.updated[0].UnitPrice, 0.001)
	require.Empty(t, fb.created)
}

func TestSubmitValidatesRequiredFields(t *testing.T) {
	fb := newFakeBackend()
	form := NewForm(FormDeps{Resource: newTestResource(t, fb)}, nil)

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Contains(t, errs, "id")
	require.Contains(t, errs, "name")
}
