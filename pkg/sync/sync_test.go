package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kirkidoo/Sync-Stock/internal/catalog"
	"github.com/Kirkidoo/Sync-Stock/internal/supplier"
	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
	"github.com/Kirkidoo/Sync-Stock/pkg/logging"
)

const locationID = "gid://location/1"

type fakeLister struct {
	items map[string]string
	stats catalog.PageStats
	err   error
	calls int
}

func (f *fakeLister) TrackedItems(_ context.Context, _ string) (map[string]string, *catalog.PageStats, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	stats := f.stats
	return f.items, &stats, nil
}

type fakeSource struct {
	quantities map[string]int
	stats      supplier.FetchStats
	err        error
	calls      int
	gotSKUs    []string
}

func (f *fakeSource) Name() string { return "fake-supplier" }

func (f *fakeSource) Quantities(_ context.Context, skus []string) (map[string]int, *supplier.FetchStats, error) {
	f.calls++
	f.gotSKUs = skus
	if f.err != nil {
		return nil, nil, f.err
	}
	stats := f.stats
	return f.quantities, &stats, nil
}

type fakeWriter struct {
	results    []catalog.BatchResult
	err        error
	calls      int
	gotChanges []catalog.QuantityChange
}

func (f *fakeWriter) SetQuantities(_ context.Context, changes []catalog.QuantityChange) ([]catalog.BatchResult, error) {
	f.calls++
	f.gotChanges = changes
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestRunEmptyCatalogEndsEarly(t *testing.T) {
	lister := &fakeLister{items: map[string]string{}}
	source := &fakeSource{}
	writer := &fakeWriter{}

	summary, err := NewRunner(lister, source, writer).Run(context.Background(), locationID)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.ItemsMapped)
	assert.Equal(t, 0, source.calls, "no supplier call for an empty catalog")
	assert.Equal(t, 0, writer.calls, "no write call for an empty catalog")
	assert.False(t, summary.FinishedAt.IsZero())
}

func TestRunFullPipeline(t *testing.T) {
	lister := &fakeLister{
		items: map[string]string{"A": "gid://item/1", "B": "gid://item/2"},
		stats: catalog.PageStats{Pages: 1, Items: 2, DuplicateSKUs: 1},
	}
	source := &fakeSource{
		quantities: map[string]int{"A": 5, "C": 9},
		stats:      supplier.FetchStats{Chunks: 1, ChunksFailed: 1, Dropped: 2, DuplicateSKUs: 1},
	}
	writer := &fakeWriter{
		results: []catalog.BatchResult{{Index: 0, Size: 1, Succeeded: true}},
	}

	summary, err := NewRunner(lister, source, writer).Run(context.Background(), locationID,
		WithLogger(logging.Nop))
	require.NoError(t, err)

	assert.Equal(t, "fake-supplier", summary.Supplier)
	assert.Equal(t, 2, summary.ItemsMapped)
	assert.Equal(t, 2, summary.QuantitiesFetched)
	assert.Equal(t, 1, summary.UpdatesPlanned)
	assert.Equal(t, 1, summary.UpdatesSent)
	assert.Equal(t, 1, summary.BatchesSent)
	assert.Equal(t, 0, summary.BatchesFailed)
	assert.Equal(t, []string{"C"}, summary.UnmatchedSKUs)
	assert.Equal(t, 2, summary.DuplicateSKUs, "catalog and supplier anomalies are summed")
	assert.Equal(t, 2, summary.DroppedItems)
	assert.Equal(t, 1, summary.ChunksFailed)

	// The supplier is asked for the catalog's SKUs in sorted order.
	assert.Equal(t, []string{"A", "B"}, source.gotSKUs)

	require.Len(t, writer.gotChanges, 1)
	assert.Equal(t, catalog.QuantityChange{
		InventoryItemID: "gid://item/1",
		LocationID:      locationID,
		Quantity:        5,
	}, writer.gotChanges[0])
}

func TestRunCountsFailedBatches(t *testing.T) {
	lister := &fakeLister{items: map[string]string{"A": "1", "B": "2"}}
	source := &fakeSource{quantities: map[string]int{"A": 1, "B": 2}}
	writer := &fakeWriter{
		results: []catalog.BatchResult{
			{Index: 0, Size: 1, Succeeded: true},
			{Index: 1, Size: 1, Succeeded: false, Errors: []catalog.BatchError{{Field: "input", Message: "rejected"}}},
		},
	}

	summary, err := NewRunner(lister, source, writer).Run(context.Background(), locationID)
	require.NoError(t, err, "rejected batches are reported, not fatal")

	assert.Equal(t, 2, summary.BatchesSent)
	assert.Equal(t, 1, summary.BatchesFailed)
	assert.Equal(t, 2, summary.UpdatesSent)
	assert.False(t, summary.Clean())
}

func TestRunDryRunSkipsWrites(t *testing.T) {
	lister := &fakeLister{items: map[string]string{"A": "1"}}
	source := &fakeSource{quantities: map[string]int{"A": 4}}
	writer := &fakeWriter{}

	summary, err := NewRunner(lister, source, writer).Run(context.Background(), locationID, WithDryRun(true))
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.UpdatesPlanned)
	assert.Equal(t, 0, summary.UpdatesSent)
	assert.Equal(t, 0, writer.calls)
}

func TestRunListerErrorIsFatal(t *testing.T) {
	lister := &fakeLister{err: errors.ErrLocationNotFound}
	source := &fakeSource{}

	summary, err := NewRunner(lister, source, &fakeWriter{}).Run(context.Background(), locationID)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.True(t, errors.IsLocationNotFound(err))
	assert.Equal(t, 0, source.calls)
}

func TestRunSourceAuthErrorIsFatal(t *testing.T) {
	lister := &fakeLister{items: map[string]string{"A": "1"}}
	source := &fakeSource{err: errors.ErrAuthFailed}
	writer := &fakeWriter{}

	_, err := NewRunner(lister, source, writer).Run(context.Background(), locationID)
	require.Error(t, err)
	assert.True(t, errors.IsAuthFailed(err))
	assert.Equal(t, 0, writer.calls)
}

func TestRunIdempotentPlans(t *testing.T) {
	build := func() (*fakeLister, *fakeSource, *fakeWriter) {
		return &fakeLister{items: map[string]string{"A": "1", "B": "2", "C": "3"}},
			&fakeSource{quantities: map[string]int{"A": 1, "B": 0, "C": 7}},
			&fakeWriter{results: []catalog.BatchResult{{Size: 3, Succeeded: true}}}
	}

	l1, s1, w1 := build()
	first, err := NewRunner(l1, s1, w1).Run(context.Background(), locationID)
	require.NoError(t, err)

	l2, s2, w2 := build()
	second, err := NewRunner(l2, s2, w2).Run(context.Background(), locationID)
	require.NoError(t, err)

	// Same inputs, same plan, record for record.
	assert.Equal(t, w1.gotChanges, w2.gotChanges)
	assert.Equal(t, first.UpdatesPlanned, second.UpdatesPlanned)
}

func TestSummaryString(t *testing.T) {
	summary := &Summary{
		ItemsMapped:       510,
		QuantitiesFetched: 480,
		UpdatesSent:       470,
		BatchesSent:       5,
		BatchesFailed:     1,
		ChunksFailed:      2,
		UnmatchedSKUs:     []string{"X", "Y"},
	}

	text := summary.String()
	assert.Contains(t, text, "510 items mapped")
	assert.Contains(t, text, "1/5 batches failed")
	assert.Contains(t, text, "2 chunks failed")
	assert.Contains(t, text, "2 unmatched SKUs")

	clean := &Summary{ItemsMapped: 1, QuantitiesFetched: 1, UpdatesSent: 1}
	assert.True(t, clean.Clean())
}
