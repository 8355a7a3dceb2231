package reconcile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkstudio/shopsync/internal/catalog"
	"github.com/dkstudio/shopsync/internal/etsy"
	"github.com/dkstudio/shopsync/internal/shopstore"
	"github.com/dkstudio/shopsync/pkg/logging"
)

// listingsServer pages out the given listings three at a time, honoring the
// offset query parameter the way the live endpoint does.
func listingsServer(t *testing.T, listings []map[string]any) *httptest.Server {
	t.Helper()
	const pageSize = 3
	mux := http.NewServeMux()
	mux.HandleFunc("/application/shops/1/listings", func(w http.ResponseWriter, r *http.Request) {
		offset := 0
		if raw := r.URL.Query().Get("offset"); raw != "" {
			var err error
			offset, err = strconv.Atoi(raw)
			require.NoError(t, err)
		}
		end := offset + pageSize
		if end > len(listings) {
			end = len(listings)
		}
		results := make([]any, 0, pageSize)
		for _, l := range listings[offset:end] {
			results = append(results, l)
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"count":   float64(len(listings)),
			"results": results,
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func syncEngine(t *testing.T, server *httptest.Server) *Engine {
	t.Helper()
	store := shopstore.Open(filepath.Join(t.TempDir(), "shopsync.json"))
	require.NoError(t, store.SetCredentials(etsy.Provider, shopstore.Credentials{
		AccessToken:  "1.token",
		RefreshToken: "1.refresh",
		UserID:       "1",
	}))
	client := etsy.New(store, "keystring", etsy.WithBaseURL(server.URL))
	return New(catalog.Open(t.TempDir()), client, "1", &scriptedChooser{decline: true}, &scriptedConfirmer{}, logging.Nop())
}

func TestSyncCatalogPersistsAllPages(t *testing.T) {
	listings := make([]map[string]any, 0, 7)
	for i := 100; i < 107; i++ {
		listings = append(listings, map[string]any{
			"listing_id": float64(i),
			"title":      "Listing " + strconv.Itoa(i),
			"sku":        []any{"SKU-" + strconv.Itoa(i)},
		})
	}
	e := syncEngine(t, listingsServer(t, listings))

	synced, err := e.SyncCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, synced)

	keys, err := e.catalog.SelectKeys(catalog.NamespaceProducts)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "101", "102", "103", "104", "105", "106"}, keys)

	entity, found, err := e.catalog.Select(catalog.NamespaceProducts, "104")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Listing 104", entity["title"])
}

func TestSyncCatalogPrunesDeadIndexEntries(t *testing.T) {
	listings := []map[string]any{
		{"listing_id": float64(100), "title": "Alive"},
	}
	e := syncEngine(t, listingsServer(t, listings))

	// Reverse-index entries: one for a listing the sync will refresh, one
	// for a listing that no longer exists remotely.
	require.NoError(t, e.catalog.Persist(catalog.NamespaceListingIndex, "100", catalog.Entity{"product_path": "/a"}))
	require.NoError(t, e.catalog.Persist(catalog.NamespaceListingIndex, "999", catalog.Entity{"product_path": "/b"}))

	_, err := e.SyncCatalog(context.Background())
	require.NoError(t, err)

	keys, err := e.catalog.SelectKeys(catalog.NamespaceListingIndex)
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, keys)
}

func TestSyncCatalogSkipsEntitiesWithoutID(t *testing.T) {
	listings := []map[string]any{
		{"listing_id": float64(100), "title": "Good"},
		{"title": "No id on this one"},
	}
	e := syncEngine(t, listingsServer(t, listings))

	synced, err := e.SyncCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	keys, err := e.catalog.SelectKeys(catalog.NamespaceProducts)
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, keys)
}
