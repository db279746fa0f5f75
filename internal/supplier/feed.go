package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Kirkidoo/Sync-Stock/internal/transport"
	"github.com/Kirkidoo/Sync-Stock/pkg/constants"
	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
	"github.com/Kirkidoo/Sync-Stock/pkg/logging"
)

// FeedClient fetches stock from a chunked REST feed: one GET per chunk of
// SKUs, bearer-token auth, comma-joined sku parameter.
type FeedClient struct {
	name      string
	url       string
	language  string
	chunkSize int
	workers   int
	transport *transport.Client

	chunkPause time.Duration
	pause      func(ctx context.Context, d time.Duration) error
}

// NewFeedClient creates a chunked feed client from config.
func NewFeedClient(cfg Config) (*FeedClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = "supplier"
	}

	language := cfg.Language
	if language == "" {
		language = "en"
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = constants.DefaultChunkSize
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = constants.DefaultWorkers
	}
	if workers > constants.MaxWorkers {
		workers = constants.MaxWorkers
	}

	auth := &transport.BearerAuth{Token: cfg.Token}

	return &FeedClient{
		name:       name,
		url:        cfg.URL,
		language:   language,
		chunkSize:  chunkSize,
		workers:    workers,
		transport:  transport.NewWithTimeout(auth, constants.SupplierRequestTimeout),
		chunkPause: constants.ChunkPause,
		pause:      transport.Sleep,
	}, nil
}

// Name implements the Source interface.
func (c *FeedClient) Name() string { return c.name }

// feedResponse is the feed's payload. The items field arrives as either a
// single object or a list; itemList coerces both to a list.
type feedResponse struct {
	Items itemList `json:"items"`
}

type feedItem struct {
	SKU      string `json:"sku"`
	Quantity struct {
		Value *json.Number `json:"value"`
	} `json:"quantity"`
}

// itemList coerces the feed's object-or-list items field to a list.
type itemList []feedItem

// UnmarshalJSON implements json.Unmarshaler.
func (l *itemList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	if trimmed[0] == '[' {
		var items []feedItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var single feedItem
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*l = itemList{single}
	return nil
}

// chunkFetch holds one chunk's contribution, merged after all chunks
// complete so concurrent workers never share a map.
type chunkFetch struct {
	quantities map[string]int
	dropped    int
	failed     bool
}

// Quantities implements the Source interface.
//
// SKUs are partitioned into bounded chunks and fetched one request per
// chunk. A failed chunk (bad status, malformed payload, transport error)
// is skipped and counted; the remaining chunks still run. Rejected
// credentials (HTTP 401) abort the whole fetch. An empty SKU set returns
// an empty mapping without contacting the feed.
func (c *FeedClient) Quantities(ctx context.Context, skus []string) (map[string]int, *FetchStats, error) {
	stats := &FetchStats{}
	if len(skus) == 0 {
		return map[string]int{}, stats, nil
	}

	chunks := chunkSKUs(skus, c.chunkSize)
	stats.Chunks = len(chunks)

	fetches := make([]chunkFetch, len(chunks))

	if c.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.workers)
		for i, chunk := range chunks {
			i, chunk := i, chunk
			g.Go(func() error {
				return c.fetchInto(gctx, i, chunk, &fetches[i])
			})
		}
		if err := g.Wait(); err != nil {
			return nil, stats, err
		}
	} else {
		for i, chunk := range chunks {
			if err := c.fetchInto(ctx, i, chunk, &fetches[i]); err != nil {
				return nil, stats, err
			}
			if i < len(chunks)-1 {
				if err := c.pause(ctx, c.chunkPause); err != nil {
					return nil, stats, err
				}
			}
		}
	}

	// Merge per-chunk partials in chunk order so duplicate handling stays
	// deterministic regardless of worker scheduling.
	quantities := make(map[string]int, len(skus))
	for _, fetch := range fetches {
		if fetch.failed {
			stats.ChunksFailed++
			continue
		}
		stats.Dropped += fetch.dropped
		for sku, qty := range fetch.quantities {
			if prev, ok := quantities[sku]; ok && prev != qty {
				stats.DuplicateSKUs++
				logging.Warn().
					Str("supplier", c.name).
					Str("sku", sku).
					Int("kept", qty).
					Int("replaced", prev).
					Msg("Duplicate SKU in supplier feed, last value wins")
			}
			quantities[sku] = qty
		}
	}

	logging.Debug().
		Str("supplier", c.name).
		Int("skus", len(skus)).
		Int("quantities", len(quantities)).
		Int("chunks_failed", stats.ChunksFailed).
		Msg("Supplier fetch complete")

	return quantities, stats, nil
}

// fetchInto runs one chunk request. Only fatal conditions (auth, context)
// are returned as errors; everything else marks the chunk failed.
func (c *FeedClient) fetchInto(ctx context.Context, index int, chunk []string, out *chunkFetch) error {
	quantities, dropped, err := c.fetchChunk(ctx, chunk)
	if err != nil {
		if errors.IsAuthFailed(err) || ctx.Err() != nil {
			return err
		}
		out.failed = true
		logging.Warn().
			Err(err).
			Str("supplier", c.name).
			Int("chunk", index).
			Int("size", len(chunk)).
			Msg("Chunk failed, skipping")
		return nil
	}
	out.quantities = quantities
	out.dropped = dropped
	return nil
}

// fetchChunk issues one feed request and extracts whatever valid entries
// the payload contains.
func (c *FeedClient) fetchChunk(ctx context.Context, chunk []string) (map[string]int, int, error) {
	resp, err := c.transport.Get(ctx, c.chunkURL(chunk))
	if err != nil {
		return nil, 0, &errors.APIError{Source: c.name, Message: "request failed", Err: err}
	}

	body, err := transport.ReadBody(resp)
	if err != nil {
		return nil, 0, &errors.APIError{Source: c.name, Message: "reading response", Err: err}
	}

	// 200 is full success. 400 is the feed's partial-validity signal for
	// a chunk mixing valid and unknown SKUs; its payload still carries
	// the valid entries. Anything else fails the chunk, except 401 which
	// means the token itself is bad and aborts the run.
	switch resp.StatusCode {
	case http.StatusOK, http.StatusBadRequest:
	default:
		return nil, 0, &errors.APIError{Source: c.name, StatusCode: resp.StatusCode, Message: string(body)}
	}

	var payload feedResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, 0, errors.WrapParse("json", c.name+" chunk", err)
	}

	quantities := make(map[string]int, len(payload.Items))
	dropped := 0
	for _, item := range payload.Items {
		sku := strings.TrimSpace(item.SKU)
		qty, ok := quantityValue(item.Quantity.Value)
		if sku == "" || !ok {
			dropped++
			continue
		}
		quantities[sku] = qty
	}

	return quantities, dropped, nil
}

// chunkURL builds the feed URL for one chunk.
func (c *FeedClient) chunkURL(chunk []string) string {
	query := url.Values{}
	query.Set("sku", strings.Join(chunk, ","))
	query.Set("language", c.language)
	return c.url + "?" + query.Encode()
}

// Verify implements the Source interface. The feed has no dedicated auth
// endpoint; a probe with a throwaway SKU distinguishes a valid token
// (200 or the partial-validity 400) from a rejected one (401).
func (c *FeedClient) Verify(ctx context.Context) error {
	resp, err := c.transport.Get(ctx, c.chunkURL([]string{"0"}))
	if err != nil {
		return &errors.APIError{Source: c.name, Message: "verify request failed", Err: err}
	}
	body, err := transport.ReadBody(resp)
	if err != nil {
		return &errors.APIError{Source: c.name, Message: "reading verify response", Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusBadRequest:
		return nil
	}
	return &errors.APIError{Source: c.name, StatusCode: resp.StatusCode, Message: string(body)}
}

// quantityValue extracts a non-negative integer quantity. Items with a
// missing quantity contribute nothing; a negative value is clamped to
// zero since the catalog rejects negative absolute quantities.
func quantityValue(n *json.Number) (int, bool) {
	if n == nil {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		if v < 0 {
			return 0, true
		}
		return int(v), true
	}
	if f, err := n.Float64(); err == nil {
		if f < 0 {
			return 0, true
		}
		return int(f), true
	}
	return 0, false
}
