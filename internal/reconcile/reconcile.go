// Package reconcile joins the catalog's SKU → item map with a supplier's
// SKU → quantity map into an ordered update plan.
package reconcile

import (
	"sort"

	"github.com/Kirkidoo/Sync-Stock/internal/catalog"
)

// Plan builds the updates for one supplier/location pair.
//
// A change is emitted for every SKU present in both maps, carrying the
// supplier's quantity as an absolute value; a reported quantity of zero
// is valid data and produces a change like any other. Supplier SKUs with
// no catalog entry at this location are returned as unmatched. Catalog
// SKUs the supplier did not report are left alone: absence is never
// inferred as zero stock.
//
// Both maps are expected to hold normalized (whitespace-trimmed) SKUs.
// Output is ordered by SKU so two runs over the same inputs produce
// identical plans.
func Plan(items map[string]string, quantities map[string]int, locationID string) ([]catalog.QuantityChange, []string) {
	skus := make([]string, 0, len(quantities))
	for sku := range quantities {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	changes := make([]catalog.QuantityChange, 0, len(skus))
	var unmatched []string

	for _, sku := range skus {
		itemID, ok := items[sku]
		if !ok {
			unmatched = append(unmatched, sku)
			continue
		}
		changes = append(changes, catalog.QuantityChange{
			InventoryItemID: itemID,
			LocationID:      locationID,
			Quantity:        quantities[sku],
		})
	}

	return changes, unmatched
}
