package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
)

// feedServer records the SKU chunks it receives and answers each request
// with the handler's response.
type feedServer struct {
	mu     sync.Mutex
	chunks [][]string

	handler func(w http.ResponseWriter, chunk []string, index int)
	server  *httptest.Server
}

func newFeedServer(t *testing.T, handler func(w http.ResponseWriter, chunk []string, index int)) *feedServer {
	t.Helper()
	fs := &feedServer{handler: handler}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := strings.Split(r.URL.Query().Get("sku"), ",")
		fs.mu.Lock()
		index := len(fs.chunks)
		fs.chunks = append(fs.chunks, chunk)
		fs.mu.Unlock()
		fs.handler(w, chunk, index)
	}))
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *feedServer) received() [][]string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.chunks
}

// writeItems answers with one entry per SKU at the given quantity.
func writeItems(w http.ResponseWriter, chunk []string, qty func(sku string) int) {
	items := make([]map[string]any, 0, len(chunk))
	for _, sku := range chunk {
		items = append(items, map[string]any{
			"sku":      sku,
			"quantity": map[string]any{"value": qty(sku)},
		})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

func testFeedClient(t *testing.T, url string, workers int) *FeedClient {
	t.Helper()
	client, err := NewFeedClient(Config{
		Name:    "test-feed",
		URL:     url,
		Token:   "token",
		Workers: workers,
	})
	require.NoError(t, err)
	client.chunkPause = 0 // no pacing in tests
	return client
}

func skuList(n int) []string {
	skus := make([]string, n)
	for i := range skus {
		skus[i] = fmt.Sprintf("SKU-%03d", i)
	}
	return skus
}

func TestFeedChunkPartition(t *testing.T) {
	fs := newFeedServer(t, func(w http.ResponseWriter, chunk []string, _ int) {
		writeItems(w, chunk, func(string) int { return 1 })
	})

	client := testFeedClient(t, fs.server.URL, 1)
	quantities, stats, err := client.Quantities(context.Background(), skuList(123))
	require.NoError(t, err)

	chunks := fs.received()
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 50)
	assert.Len(t, chunks[1], 50)
	assert.Len(t, chunks[2], 23)

	// Every SKU lands in exactly one chunk and in the result.
	seen := map[string]int{}
	for _, chunk := range chunks {
		for _, sku := range chunk {
			seen[sku]++
		}
	}
	for _, sku := range skuList(123) {
		assert.Equal(t, 1, seen[sku], "sku %s", sku)
	}
	assert.Len(t, quantities, 123)
	assert.Equal(t, 3, stats.Chunks)
	assert.Equal(t, 0, stats.ChunksFailed)
}

func TestFeedEmptyInputSkipsNetwork(t *testing.T) {
	fs := newFeedServer(t, func(w http.ResponseWriter, chunk []string, _ int) {
		t.Error("unexpected request for empty SKU set")
	})

	client := testFeedClient(t, fs.server.URL, 1)
	quantities, stats, err := client.Quantities(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, quantities)
	assert.Equal(t, 0, stats.Chunks)
	assert.Empty(t, fs.received())
}

func TestFeedPartialIsolation(t *testing.T) {
	// Chunk 2 of 3 returns malformed JSON; chunks 1 and 3 still land.
	fs := newFeedServer(t, func(w http.ResponseWriter, chunk []string, index int) {
		if index == 1 {
			fmt.Fprint(w, "{not json")
			return
		}
		writeItems(w, chunk, func(string) int { return 7 })
	})

	client := testFeedClient(t, fs.server.URL, 1)
	quantities, stats, err := client.Quantities(context.Background(), skuList(123))
	require.NoError(t, err)

	assert.Len(t, quantities, 100) // chunks 1 and 3 only
	assert.Equal(t, 1, stats.ChunksFailed)
	assert.Equal(t, 3, len(fs.received()), "remaining chunks must still be fetched")
}

func TestFeedPartialValidityStatusParsed(t *testing.T) {
	// The feed flags a chunk mixing valid and unknown SKUs with a 400
	// whose payload still carries the valid entries.
	fs := newFeedServer(t, func(w http.ResponseWriter, chunk []string, _ int) {
		w.WriteHeader(http.StatusBadRequest)
		writeItems(w, chunk[:1], func(string) int { return 3 })
	})

	client := testFeedClient(t, fs.server.URL, 1)
	quantities, stats, err := client.Quantities(context.Background(), []string{"A", "B"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"A": 3}, quantities)
	assert.Equal(t, 0, stats.ChunksFailed)
}

func TestFeedAuthFailureAbortsRun(t *testing.T) {
	fs := newFeedServer(t, func(w http.ResponseWriter, _ []string, _ int) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := testFeedClient(t, fs.server.URL, 1)
	_, _, err := client.Quantities(context.Background(), skuList(123))
	require.Error(t, err)
	assert.True(t, errors.IsAuthFailed(err))
	assert.Len(t, fs.received(), 1, "no further chunks after a rejected token")
}

func TestFeedItemsObjectOrList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]int
	}{
		{
			name: "list",
			body: `{"items":[{"sku":"A","quantity":{"value":2}},{"sku":"B","quantity":{"value":0}}]}`,
			want: map[string]int{"A": 2, "B": 0},
		},
		{
			name: "single object",
			body: `{"items":{"sku":"A","quantity":{"value":5}}}`,
			want: map[string]int{"A": 5},
		},
		{
			name: "null items",
			body: `{"items":null}`,
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFeedServer(t, func(w http.ResponseWriter, _ []string, _ int) {
				fmt.Fprint(w, tt.body)
			})
			client := testFeedClient(t, fs.server.URL, 1)
			quantities, _, err := client.Quantities(context.Background(), []string{"A", "B"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, quantities)
		})
	}
}

func TestFeedDropsItemsMissingSKUOrQuantity(t *testing.T) {
	body := `{"items":[
		{"sku":"  A  ","quantity":{"value":4}},
		{"sku":"","quantity":{"value":1}},
		{"sku":"B"},
		{"sku":"C","quantity":{}}
	]}`
	fs := newFeedServer(t, func(w http.ResponseWriter, _ []string, _ int) {
		fmt.Fprint(w, body)
	})

	client := testFeedClient(t, fs.server.URL, 1)
	quantities, stats, err := client.Quantities(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	// SKU is trimmed, quantity-less and SKU-less entries contribute nothing.
	assert.Equal(t, map[string]int{"A": 4}, quantities)
	assert.Equal(t, 3, stats.Dropped)
}

func TestFeedParallelWorkersMergeAllChunks(t *testing.T) {
	fs := newFeedServer(t, func(w http.ResponseWriter, chunk []string, _ int) {
		writeItems(w, chunk, func(string) int { return 9 })
	})

	client := testFeedClient(t, fs.server.URL, 4)
	quantities, stats, err := client.Quantities(context.Background(), skuList(123))
	require.NoError(t, err)

	assert.Len(t, quantities, 123)
	assert.Equal(t, 3, stats.Chunks)
	assert.Equal(t, 0, stats.ChunksFailed)
	for _, sku := range skuList(123) {
		assert.Equal(t, 9, quantities[sku])
	}
}

func TestFeedRequestShape(t *testing.T) {
	var gotAuth, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotLanguage = r.URL.Query().Get("language")
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	client := testFeedClient(t, server.URL, 1)
	_, _, err := client.Quantities(context.Background(), []string{"A"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "en", gotLanguage)
}
