package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// symbolServer serves `total` fake symbols with limit/offset paging.
func symbolServer(t *testing.T, total int, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		var page []Symbol
		for i := offset; i < total && i < offset+limit; i++ {
			page = append(page, Symbol{
				ID:       fmt.Sprintf("sym-%d", i),
				Name:     fmt.Sprintf("symbol %d", i),
				ImageURL: fmt.Sprintf("https://symbols.test/%d.png", i),
				Source:   "test",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
}

func collect(r *Results) []Symbol {
	var out []Symbol
	for r.Next() {
		out = append(out, r.Symbol())
	}
	return out
}

func TestClient_Search_ShortKeywordShortCircuits(t *testing.T) {
	var calls int
	srv := symbolServer(t, 10, &calls)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	for _, keyword := range []string{"", "a", "  b  "} {
		results := client.Search(context.Background(), keyword)
		assert.Empty(t, collect(results))
		assert.NoError(t, results.Err())
	}
	assert.Zero(t, calls, "short keywords must not reach the network")
}

func TestClient_Search_PagesLazily(t *testing.T) {
	var calls int
	srv := symbolServer(t, 7, &calls)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, PageSize: 3})
	results := client.Search(context.Background(), "dog")

	// Nothing is fetched before the first Next
	assert.Zero(t, calls)

	hits := collect(results)
	require.NoError(t, results.Err())
	require.Len(t, hits, 7)
	assert.Equal(t, "sym-0", hits[0].ID)
	assert.Equal(t, "sym-6", hits[6].ID)
	// 3 + 3 + 1: the short page ends the stream
	assert.Equal(t, 3, calls)
}

func TestClient_Search_ExhaustedStreamStaysDone(t *testing.T) {
	srv := symbolServer(t, 2, nil)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, PageSize: 5})
	results := client.Search(context.Background(), "cat")

	assert.Len(t, collect(results), 2)
	// Non-restartable: a drained stream never yields again
	assert.False(t, results.Next())
}

func TestClient_Search_DegradesOnFailure(t *testing.T) {
	srv := symbolServer(t, 2, nil)
	srv.Close() // refuse all connections

	client := NewClient(Config{BaseURL: srv.URL})
	results := client.Search(context.Background(), "cat")

	assert.Empty(t, collect(results))
	assert.ErrorIs(t, results.Err(), ErrRemoteUnavailable)
}

func TestClient_Search_ServerErrorMidStream(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":"sym-0","name":"zero","imageUrl":"u","source":"test"},{"id":"sym-1","name":"one","imageUrl":"u","source":"test"}]`)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, PageSize: 2})
	results := client.Search(context.Background(), "dog")

	// First page is yielded, then the failure ends the stream
	hits := collect(results)
	assert.Len(t, hits, 2)
	assert.ErrorIs(t, results.Err(), ErrRemoteUnavailable)
}
