// Package supplier provides clients for external supplier inventory
// sources. Each driver normalizes its feed's response shape into a plain
// SKU → quantity mapping and isolates failures to the unit of work (one
// chunk or one part lookup) so a single bad response never discards
// quantities already obtained.
package supplier

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
)

// Driver identifies a supplier feed shape.
type Driver string

// Supported drivers.
const (
	// DriverFeed is a chunked stock feed: one GET per SKU chunk with a
	// comma-joined sku parameter and a bearer token.
	DriverFeed Driver = "feed"

	// DriverWarehouse is a per-part feed: one GET per part number with an
	// API key, returning per-warehouse quantities that are summed.
	DriverWarehouse Driver = "warehouse"
)

// Config holds the settings for one supplier source.
type Config struct {
	// Name identifies the supplier in logs and summaries.
	Name string

	// Driver selects the feed shape. Defaults to DriverFeed.
	Driver Driver

	// URL is the stock endpoint.
	URL string

	// Token is the bearer token (feed) or API key (warehouse).
	Token string

	// Language is the feed's language tag, passed through opaquely.
	// Defaults to "en".
	Language string

	// CustomerNumber is the warehouse feed's account identifier.
	CustomerNumber string

	// ChunkSize bounds the SKUs per feed request. Defaults to
	// constants.DefaultChunkSize.
	ChunkSize int

	// Workers sets the concurrent chunk fetch limit. 1 (the default)
	// fetches sequentially with the reference pacing.
	Workers int
}

// Source retrieves supplier stock quantities for a set of SKUs.
type Source interface {
	// Name identifies the source.
	Name() string

	// Quantities returns the quantity the supplier reports for each SKU
	// it recognizes. SKUs the supplier does not know are simply absent.
	// The error return is reserved for fatal conditions (bad credentials,
	// cancelled context); per-chunk failures are reported in FetchStats.
	Quantities(ctx context.Context, skus []string) (map[string]int, *FetchStats, error)

	// Verify probes the source's credentials without fetching stock.
	Verify(ctx context.Context) error
}

// FetchStats carries observability counters from one fetch.
type FetchStats struct {
	Chunks        int // requests issued
	ChunksFailed  int // requests skipped after a bad status or payload
	Dropped       int // items missing a usable SKU or quantity
	DuplicateSKUs int // same normalized SKU reported more than once
}

// New creates the source for cfg's driver.
func New(cfg Config) (Source, error) {
	switch cfg.Driver {
	case DriverFeed, "":
		return NewFeedClient(cfg)
	case DriverWarehouse:
		return NewWarehouseClient(cfg)
	}
	return nil, &errors.ValidationError{
		Field:   "driver",
		Value:   cfg.Driver,
		Message: fmt.Sprintf("unsupported supplier driver: %s", cfg.Driver),
	}
}

// chunkSKUs partitions skus into chunks of at most size elements. Every
// SKU lands in exactly one chunk; order is preserved.
func chunkSKUs(skus []string, size int) [][]string {
	if size <= 0 || len(skus) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(skus)+size-1)/size)
	for start := 0; start < len(skus); start += size {
		end := start + size
		if end > len(skus) {
			end = len(skus)
		}
		chunks = append(chunks, skus[start:end])
	}
	return chunks
}

// validate checks the fields every driver requires.
func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.URL) == "" {
		return errors.NewConfigError("supplier", "endpoint URL is required", nil)
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return errors.NewConfigError("supplier", "credential is required", nil)
	}
	return nil
}
