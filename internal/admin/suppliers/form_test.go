package suppliers

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
	suppliers map[string]Supplier
	created   []Supplier
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{suppliers: make(map[string]Supplier)}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /supplier/create_supplier", func(w http.ResponseWriter, r *http.Request) {
		var s Supplier
		_ = json.NewDecoder(r.Body).Decode(&s)
		f.suppliers[s.ID] = s
		f.created = append(f.created, s)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": s})
	})
	mux.HandleFunc("GET /supplier/supplier_id_exists/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, taken := f.suppliers[r.PathValue("id")]
		_ = json.NewEncoder(w).Encode(map[string]any{"data": taken})
	})
	return mux
}

func newTestResource(t *testing.T, fb *fakeBackend) *backend.Resource[Supplier] {
	t.Helper()
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)
	return backend.NewResource[Supplier](backend.NewClient(srv.URL), "supplier")
}

func TestMalformedEmailReportsSingleError(t *testing.T) {
	form := NewForm(FormDeps{Resource: newTestResource(t, newFakeBackend())}, nil, nil)

	require.NoError(t, form.Apply(func(s *Supplier) {
		s.ID = "S-1"
		s.Name = "Acme"
		s.Email = "not-an-email"
	}))

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "email must be a valid email address", errs["email"])
	require.Len(t, errs, 1, "a malformed email yields exactly one field error")
}

func TestBlurReportsOnlyTheTouchedField(t *testing.T) {
	form := NewForm(FormDeps{Resource: newTestResource(t, newFakeBackend())}, nil, nil)

	require.NoError(t, form.Apply(func(s *Supplier) { s.Email = "nope" }))

	errs := form.Blur("email")
	require.Contains(t, errs["email"], "valid email")
	require.NotContains(t, errs, "name", "blur must not surface untouched fields")
}

func TestCreateSubmitPersistsRecord(t *testing.T) {
	fb := newFakeBackend()
	form := NewForm(FormDeps{Resource: newTestResource(t, fb)}, nil, nil)

	require.NoError(t, form.Apply(func(s *Supplier) {
		s.ID = "S-9"
		s.Name = "Globex"
		s.Email = "orders@globex.test"
	}))

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, forms.StateSuccess, form.State())
	require.Len(t, fb.created, 1)
	require.True(t, fb.created[0].Active, "new suppliers default to active")
}

func TestOnSuccessHandsRecordToParent(t *testing.T) {
	fb := newFakeBackend()
	var handed []Supplier
	form := NewForm(FormDeps{Resource: newTestResource(t, fb)}, nil, func(s Supplier) {
		handed = append(handed, s)
	})

	require.NoError(t, form.Apply(func(s *Supplier) {
		s.ID = "S-2"
		s.Name = "Initech"
		s.Email = "ap@initech.test"
	}))

	_, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, handed, 1)
	require.Equal(t, "S-2", handed[0].ID)
}

func TestDuplicateIdentifierRejected(t *testing.T) {
	fb := newFakeBackend()
	fb.suppliers["S-1"] = Supplier{ID: "S-1"}
	form := NewForm(FormDeps{Resource: newTestResource(t, fb)}, nil, nil)

	require.NoError(t, form.Apply(func(s *Supplier) {
		s.ID = "S-1"
		s.Name = "Clone"
		s.Email = "dup@clone.test"
	}))

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Contains(t, errs["id"], "already exists")
	require.Empty(t, fb.created)
}
