package etsy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkstudio/shopsync/internal/shopstore"
	"github.com/dkstudio/shopsync/pkg/errors"
)

const (
	testAPIKey       = "test-keystring"
	staleToken       = "87654321.stale"
	freshToken       = "87654321.fresh"
	testRefreshToken = "87654321.refresh"
)

func newTestStore(t *testing.T) *shopstore.Store {
	t.Helper()
	store := shopstore.Open(filepath.Join(t.TempDir(), "shopsync.json"))
	require.NoError(t, store.SetCredentials(Provider, shopstore.Credentials{
		AccessToken:  staleToken,
		RefreshToken: testRefreshToken,
		UserID:       "87654321",
	}))
	return store
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *shopstore.Store, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	store := newTestStore(t)
	client := New(store, testAPIKey,
		WithBaseURL(server.URL),
		WithTokenURL(server.URL+"/public/oauth/token"))
	return client, store, server
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func expiredTokenBody() map[string]any {
	return map[string]any{
		"error":             "invalid_token",
		"error_description": "access token is expired",
	}
}

func TestGetAttachesCredentials(t *testing.T) {
	var gotAPIKey, gotAuth string
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}))

	result, err := client.Get(context.Background(), "/application/shops/1/listings", nil)
	require.NoError(t, err)
	assert.Equal(t, true, result["ok"])
	assert.Equal(t, testAPIKey, gotAPIKey)
	assert.Equal(t, "Bearer "+staleToken, gotAuth)
}

func TestExpiredTokenSingleRefreshAndRetry(t *testing.T) {
	var resourceCalls, refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/public/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, testAPIKey, r.Form.Get("client_id"))
		assert.Equal(t, testRefreshToken, r.Form.Get("refresh_token"))
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  freshToken,
			"refresh_token": "87654321.refresh2",
		})
	})
	mux.HandleFunc("/application/shops/1/listings", func(w http.ResponseWriter, r *http.Request) {
		resourceCalls++
		if r.Header.Get("Authorization") == "Bearer "+staleToken {
			writeJSON(w, http.StatusUnauthorized, expiredTokenBody())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": float64(0)})
	})

	client, store, _ := newTestClient(t, mux)
	result, err := client.Get(context.Background(), "/application/shops/1/listings", nil)
	require.NoError(t, err)
	assert.NotNil(t, result)

	// Exactly one refresh and exactly two calls to the original endpoint.
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, 2, resourceCalls)

	// The refreshed credential record was persisted, user id derived from
	// the token text before its first dot.
	creds, ok, err := store.Credentials(Provider)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, freshToken, creds.AccessToken)
	assert.Equal(t, "87654321.refresh2", creds.RefreshToken)
	assert.Equal(t, "87654321", creds.UserID)
}

func TestNonExpiredErrorDoesNotRefresh(t *testing.T) {
	var refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/public/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		writeJSON(w, http.StatusOK, map[string]any{"access_token": freshToken})
	})
	mux.HandleFunc("/application/shops/1/receipts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":             "insufficient_scope",
			"error_description": "missing transactions_r",
		})
	})

	client, _, _ := newTestClient(t, mux)
	_, err := client.Get(context.Background(), "/application/shops/1/receipts", nil)
	require.Error(t, err)
	assert.Equal(t, 0, refreshCalls)

	var provErr *errors.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "insufficient_scope", provErr.Code)
	assert.Equal(t, "missing transactions_r", provErr.Description)
}

func TestRetryFailureIsTerminal(t *testing.T) {
	var resourceCalls, refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/public/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  freshToken,
			"refresh_token": "87654321.refresh2",
		})
	})
	mux.HandleFunc("/application/shops/1/listings", func(w http.ResponseWriter, r *http.Request) {
		resourceCalls++
		// Expired both times: the client must not loop.
		writeJSON(w, http.StatusUnauthorized, expiredTokenBody())
	})

	client, _, _ := newTestClient(t, mux)
	_, err := client.Get(context.Background(), "/application/shops/1/listings", nil)
	require.Error(t, err)
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, 2, resourceCalls)
}

func TestMissingCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued without credentials")
	}))
	t.Cleanup(server.Close)

	store := shopstore.Open(filepath.Join(t.TempDir(), "empty.json"))
	client := New(store, testAPIKey, WithBaseURL(server.URL))

	_, err := client.Get(context.Background(), "/application/shops/1/listings", nil)
	require.Error(t, err)
	var authErr *errors.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestPagination(t *testing.T) {
	// count=7, page size 3: expect 3 pages with offsets 0 (absent), 3, 6.
	listings := make([]map[string]any, 7)
	for i := range listings {
		listings[i] = map[string]any{"listing_id": float64(100 + i)}
	}

	var offsets []string
	mux := http.NewServeMux()
	mux.HandleFunc("/application/shops/1/listings", func(w http.ResponseWriter, r *http.Request) {
		offset := 0
		raw := r.URL.Query().Get("offset")
		offsets = append(offsets, raw)
		if raw != "" {
			fmt.Sscanf(raw, "%d", &offset)
		}
		end := offset + 3
		if end > len(listings) {
			end = len(listings)
		}
		results := make([]any, 0, 3)
		for _, l := range listings[offset:end] {
			results = append(results, l)
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": float64(7), "results": results})
	})

	client, _, _ := newTestClient(t, mux)
	pager := client.ShopListings("1")

	var pages []*Page
	total := 0
	for {
		page, ok, err := pager.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		pages = append(pages, page)
		total += len(page.Results)
	}

	require.Len(t, pages, 3)
	assert.Equal(t, 7, total)
	assert.Equal(t, []string{"", "3", "6"}, offsets)

	// Exhausted pager stays exhausted.
	_, ok, err := pager.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPaginationEmptyPageTerminates(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/application/shops/1/listings", func(w http.ResponseWriter, r *http.Request) {
		calls++
		results := []any{}
		if calls == 1 {
			results = []any{map[string]any{"listing_id": float64(1)}}
		}
		// The provider claims more results than it ever delivers.
		writeJSON(w, http.StatusOK, map[string]any{"count": float64(50), "results": results})
	})

	client, _, _ := newTestClient(t, mux)
	pager := client.ShopListings("1")

	pageCount := 0
	for {
		_, ok, err := pager.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		pageCount++
		require.LessOrEqual(t, pageCount, 3, "pager must terminate on an empty page")
	}
	assert.Equal(t, 2, pageCount)
	assert.Equal(t, 2, calls)
}

func TestUserIDFromToken(t *testing.T) {
	assert.Equal(t, "12345678", UserIDFromToken("12345678.abcdef.ghi"))
	assert.Equal(t, "plain", UserIDFromToken("plain"))
	assert.Equal(t, "", UserIDFromToken(".leading"))
}
