package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kirkidoo/Sync-Stock/internal/catalog"
)

const locationID = "gid://location/1"

func TestPlanMatchesAndUnmatched(t *testing.T) {
	items := map[string]string{"A": "gid://item/1", "B": "gid://item/2"}
	quantities := map[string]int{"A": 5, "C": 9}

	changes, unmatched := Plan(items, quantities, locationID)

	// A matches, C is unmatched, B gets no update because the supplier
	// did not report it.
	require.Len(t, changes, 1)
	assert.Equal(t, catalog.QuantityChange{
		InventoryItemID: "gid://item/1",
		LocationID:      locationID,
		Quantity:        5,
	}, changes[0])
	assert.Equal(t, []string{"C"}, unmatched)
}

func TestPlanZeroQuantityIsEmitted(t *testing.T) {
	items := map[string]string{"A": "gid://item/1"}
	quantities := map[string]int{"A": 0}

	changes, unmatched := Plan(items, quantities, locationID)

	require.Len(t, changes, 1, "zero stock is valid data, not absence")
	assert.Equal(t, 0, changes[0].Quantity)
	assert.Empty(t, unmatched)
}

func TestPlanNeverInfersZeroForUnreported(t *testing.T) {
	items := map[string]string{"A": "gid://item/1", "B": "gid://item/2"}
	quantities := map[string]int{"A": 3}

	changes, _ := Plan(items, quantities, locationID)

	require.Len(t, changes, 1)
	assert.Equal(t, "gid://item/1", changes[0].InventoryItemID)
}

func TestPlanDeterministicOrder(t *testing.T) {
	items := map[string]string{}
	quantities := map[string]int{}
	for _, sku := range []string{"Z", "M", "A", "Q", "B"} {
		items[sku] = "gid://item/" + sku
		quantities[sku] = len(sku)
	}

	first, _ := Plan(items, quantities, locationID)
	second, _ := Plan(items, quantities, locationID)

	// Same inputs, identical plan: ordered by SKU on every run.
	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].InventoryItemID, first[i].InventoryItemID)
	}
}

func TestPlanNormalizedKeysMatch(t *testing.T) {
	// Both sides trim before Plan sees the maps; a catalog " ABC-1 " and
	// a supplier "ABC-1" therefore share a key.
	rawCatalogSKU := " ABC-1 "
	items := map[string]string{strings.TrimSpace(rawCatalogSKU): "gid://item/1"}
	quantities := map[string]int{"ABC-1": 4}

	changes, unmatched := Plan(items, quantities, locationID)

	require.Len(t, changes, 1)
	assert.Empty(t, unmatched)
}

func TestPlanEmptyInputs(t *testing.T) {
	changes, unmatched := Plan(nil, nil, locationID)
	assert.Empty(t, changes)
	assert.Empty(t, unmatched)

	changes, unmatched = Plan(nil, map[string]int{"A": 1}, locationID)
	assert.Empty(t, changes)
	assert.Equal(t, []string{"A"}, unmatched)
}
