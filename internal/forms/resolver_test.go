package forms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type refSupplier struct {
	ID      string
	Name    string
	Address string
}

func supplierKey(s refSupplier) string { return s.ID }

func TestResolveKnownID(t *testing.T) {
	cache := NewRefCache(supplierKey, []refSupplier{
		{ID: "S-1", Name: "Acme", Address: "First St"},
		{ID: "S-2", Name: "Globex", Address: "Second St"},
	})

	got, ok := cache.Resolve("S-2")
	require.True(t, ok)
	require.Equal(t, "Globex", got.Name)
}

func TestResolveUnknownIDYieldsSentinel(t *testing.T) {
	cache := NewRefCache(supplierKey, []refSupplier{{ID: "S-1", Name: "Acme"}})

	got, ok := cache.Resolve("S-9")
	require.False(t, ok)
	require.Equal(t, refSupplier{}, got)
}

func TestResolveEmptyCacheYieldsSentinel(t *testing.T) {
	cache := NewRefCache(supplierKey, nil)

	got, ok := cache.Resolve("S-1")
	require.False(t, ok)
	require.Equal(t, refSupplier{}, got)
}

func TestResolveAfterReplace(t *testing.T) {
	cache := NewRefCache(supplierKey, []refSupplier{{ID: "S-1", Name: "Acme"}})
	cache.Replace([]refSupplier{{ID: "S-3", Name: "Initech"}})

	_, ok := cache.Resolve("S-1")
	require.False(t, ok)

	got, ok := cache.Resolve("S-3")
	require.True(t, ok)
	require.Equal(t, "Initech", got.Name)
}

func TestAppendKeepsOrder(t *testing.T) {
	cache := NewRefCache(supplierKey, []refSupplier{{ID: "S-1"}, {ID: "S-2"}})
	cache.Append(refSupplier{ID: "S-3"})

	items := cache.Items()
	require.Len(t, items, 3)
	require.Equal(t, "S-3", items[2].ID)
}
