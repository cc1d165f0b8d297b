package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func TestResourceList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/supplier", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []testRecord{{ID: "S-1", Name: "Acme", Active: true}},
		})
	}))
	defer srv.Close()

	res := NewResource[testRecord](NewClient(srv.URL), "supplier")
	records, err := res.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Acme", records[0].Name)
}

func TestResourceFindPathShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/supplier/find_supplier_id/S-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": testRecord{ID: "S-1"}})
	}))
	defer srv.Close()

	res := NewResource[testRecord](NewClient(srv.URL), "supplier")
	record, err := res.Find(context.Background(), "S-1")
	require.NoError(t, err)
	require.Equal(t, "S-1", record.ID)
}

func TestResourceCreateSendsFullRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/supplier/create_supplier", r.URL.Path)

		var body testRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Acme", body.Name)

		_ = json.NewEncoder(w).Encode(map[string]any{"data": body})
	}))
	defer srv.Close()

	res := NewResource[testRecord](NewClient(srv.URL), "supplier")
	created, err := res.Create(context.Background(), testRecord{ID: "S-1", Name: "Acme", Active: true})
	require.NoError(t, err)
	require.Equal(t, "S-1", created.ID)
}

func TestResourceIDExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/supplier/supplier_id_exists/S-9", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": true})
	}))
	defer srv.Close()

	res := NewResource[testRecord](NewClient(srv.URL), "supplier")
	exists, err := res.IDExists(context.Background(), "S-9")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestResourceDeleteUsesSoftDeletePath(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res := NewResource[testRecord](NewClient(srv.URL), "supplier")
	require.NoError(t, res.Delete(context.Background(), "S-1"))
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/supplier/delete_supplier/S-1", gotPath)
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	res := NewResource[testRecord](NewClient(srv.URL), "supplier")
	_, err := res.Find(context.Background(), "S-404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	res := NewResource[testRecord](NewClient(srv.URL), "supplier")
	_, err := res.List(context.Background())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadGateway, statusErr.Status)
}

func TestFileStoreDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files/img-42", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	store := NewFileStore(srv.URL)
	blob, contentType, err := store.Download(context.Background(), "img-42")
	require.NoError(t, err)
	require.Equal(t, "image/png", contentType)
	require.Equal(t, []byte("png-bytes"), blob)
}
