// Package constants provides shared constants used throughout the stock
// sync codebase: timeouts, chunk and batch sizes, pacing delays, and retry
// bounds that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the
	// catalog and supplier APIs
	DefaultHTTPTimeout = 30 * time.Second

	// SupplierRequestTimeout bounds a single supplier chunk request. The
	// supplier feed is slower than the catalog and occasionally stalls.
	SupplierRequestTimeout = 30 * time.Second

	// SyncTimeout is the default timeout for a full sync run
	SyncTimeout = 30 * time.Minute
)

// Paging, chunking, and batching sizes
const (
	// CatalogPageSize is the number of inventory levels requested per
	// catalog page. 250 is the catalog's maximum page size.
	CatalogPageSize = 250

	// DefaultChunkSize is the number of SKUs sent to the supplier feed in
	// one request. Bounded to keep the query string within the feed's
	// limits.
	DefaultChunkSize = 50

	// DefaultBatchSize is the number of quantity changes submitted per
	// bulk write. The catalog accepts up to ~250; 100 keeps request cost
	// comfortably under the throttle budget.
	DefaultBatchSize = 100
)

// Pacing and retry bounds
const (
	// ChunkPause is the cooperative delay between sequential supplier
	// chunk requests
	ChunkPause = 500 * time.Millisecond

	// BatchPause follows every bulk write submission regardless of outcome
	BatchPause = 1 * time.Second

	// ThrottleRetryDelay is the fixed delay before retrying a throttled
	// request
	ThrottleRetryDelay = 2 * time.Second

	// MaxThrottleRetries bounds retries of a throttled chunk or batch.
	// After exhaustion the unit of work is reported failed, never retried
	// forever.
	MaxThrottleRetries = 3

	// DefaultWorkers is the number of concurrent supplier chunk fetches.
	// 1 preserves the sequential reference pacing.
	DefaultWorkers = 1

	// MaxWorkers caps the supplier fetch worker pool
	MaxWorkers = 8
)
