package sync

import (
	"fmt"
	"strings"

	"github.com/agentstation/utc"
)

// Summary reports the outcome of one reconciliation run. A run that hit
// recoverable failures (skipped chunks, rejected batches) still concludes
// with a summary; only fatal conditions abort without one.
type Summary struct {
	Supplier   string
	LocationID string

	ItemsMapped       int      // tracked catalog items with a usable SKU
	QuantitiesFetched int      // SKUs the supplier reported
	UpdatesPlanned    int      // changes in the reconciliation plan
	UpdatesSent       int      // change records submitted to the catalog
	BatchesSent       int      // bulk write batches submitted
	BatchesFailed     int      // batches rejected or failed outright
	UnmatchedSKUs     []string // supplier SKUs with no catalog entry here
	DuplicateSKUs     int      // duplicate-key anomalies on either side
	DroppedItems      int      // supplier items missing SKU or quantity
	ChunksFailed      int      // supplier chunks skipped after failure

	DryRun     bool
	StartedAt  utc.Time
	FinishedAt utc.Time
}

// Clean reports whether the run completed without recoverable failures
// or data anomalies.
func (s *Summary) Clean() bool {
	return s.BatchesFailed == 0 && s.ChunksFailed == 0 &&
		len(s.UnmatchedSKUs) == 0 && s.DuplicateSKUs == 0
}

// String returns a human-readable one-line summary.
func (s *Summary) String() string {
	var parts []string
	if s.DryRun {
		parts = append(parts, "(dry run)")
	}

	parts = append(parts, fmt.Sprintf(
		"%d items mapped, %d quantities fetched, %d updates sent",
		s.ItemsMapped, s.QuantitiesFetched, s.UpdatesSent))

	if s.BatchesFailed > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d batches failed", s.BatchesFailed, s.BatchesSent))
	}
	if s.ChunksFailed > 0 {
		parts = append(parts, fmt.Sprintf("%d chunks failed", s.ChunksFailed))
	}
	if len(s.UnmatchedSKUs) > 0 {
		parts = append(parts, fmt.Sprintf("%d unmatched SKUs", len(s.UnmatchedSKUs)))
	}

	return strings.Join(parts, ", ")
}
