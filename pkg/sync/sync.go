package sync

import (
	"context"
	"sort"

	"github.com/agentstation/utc"

	"github.com/Kirkidoo/Sync-Stock/internal/catalog"
	"github.com/Kirkidoo/Sync-Stock/internal/reconcile"
	"github.com/Kirkidoo/Sync-Stock/internal/supplier"
)

// CatalogLister pages the catalog's tracked inventory for one location.
type CatalogLister interface {
	TrackedItems(ctx context.Context, locationID string) (map[string]string, *catalog.PageStats, error)
}

// StockSource retrieves supplier quantities for a set of SKUs.
type StockSource interface {
	Name() string
	Quantities(ctx context.Context, skus []string) (map[string]int, *supplier.FetchStats, error)
}

// QuantityWriter applies quantity changes to the catalog in batches.
type QuantityWriter interface {
	SetQuantities(ctx context.Context, changes []catalog.QuantityChange) ([]catalog.BatchResult, error)
}

// Runner sequences one reconciliation pipeline. The collaborators are
// interfaces so the orchestration is testable with fakes.
type Runner struct {
	lister CatalogLister
	source StockSource
	writer QuantityWriter
}

// NewRunner creates a runner over the three pipeline collaborators.
func NewRunner(lister CatalogLister, source StockSource, writer QuantityWriter) *Runner {
	return &Runner{
		lister: lister,
		source: source,
		writer: writer,
	}
}

// Run reconciles one supplier/location pair: list tracked catalog items,
// fetch the supplier's quantities for their SKUs, join the two by SKU,
// and bulk-write the resulting absolute quantities.
//
// Recoverable failures (skipped chunks, rejected batches, unmatched SKUs)
// are reported on the summary and never abort the run. Fatal conditions
// (unresolvable location, rejected credentials, cancelled context) return
// an error instead. A catalog with no eligible items ends the run early
// with an empty summary and no supplier or write calls.
func (r *Runner) Run(ctx context.Context, locationID string, opts ...Option) (*Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	options := Defaults().Apply(opts...)
	log := options.Logger
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	summary := &Summary{
		Supplier:   r.source.Name(),
		LocationID: locationID,
		DryRun:     options.DryRun,
		StartedAt:  utc.Now(),
	}

	items, pageStats, err := r.lister.TrackedItems(ctx, locationID)
	if err != nil {
		return nil, err
	}
	summary.ItemsMapped = len(items)
	summary.DuplicateSKUs += pageStats.DuplicateSKUs

	if len(items) == 0 {
		log.Info().
			Str("supplier", summary.Supplier).
			Str("location", locationID).
			Msg("No tracked items at location, nothing to reconcile")
		summary.FinishedAt = utc.Now()
		return summary, nil
	}

	// Sorted SKUs keep chunk partitions and the update plan deterministic
	// for a given catalog state.
	skus := make([]string, 0, len(items))
	for sku := range items {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	quantities, fetchStats, err := r.source.Quantities(ctx, skus)
	if err != nil {
		return nil, err
	}
	summary.QuantitiesFetched = len(quantities)
	summary.ChunksFailed = fetchStats.ChunksFailed
	summary.DroppedItems = fetchStats.Dropped
	summary.DuplicateSKUs += fetchStats.DuplicateSKUs

	changes, unmatched := reconcile.Plan(items, quantities, locationID)
	summary.UpdatesPlanned = len(changes)
	summary.UnmatchedSKUs = unmatched
	for _, sku := range unmatched {
		log.Warn().
			Str("supplier", summary.Supplier).
			Str("sku", sku).
			Msg("Supplier SKU has no catalog entry at this location")
	}

	if options.DryRun {
		log.Info().
			Str("supplier", summary.Supplier).
			Int("updates", len(changes)).
			Msg("Dry run, skipping bulk write")
		summary.FinishedAt = utc.Now()
		return summary, nil
	}

	results, err := r.writer.SetQuantities(ctx, changes)
	if err != nil {
		return nil, err
	}
	summary.BatchesSent = len(results)
	for _, result := range results {
		summary.UpdatesSent += result.Size
		if !result.Succeeded {
			summary.BatchesFailed++
		}
	}

	summary.FinishedAt = utc.Now()
	log.Info().
		Str("supplier", summary.Supplier).
		Str("location", locationID).
		Str("summary", summary.String()).
		Msg("Run complete")

	return summary, nil
}
