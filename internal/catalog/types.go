package catalog

// QuantityChange sets the absolute available quantity for one inventory
// item at one location. Field names follow the catalog's mutation input.
type QuantityChange struct {
	InventoryItemID string `json:"inventoryItemId"`
	LocationID      string `json:"locationId"`
	Quantity        int    `json:"quantity"`
}

// BatchError is a field-level user error returned by the bulk write
// endpoint for a record it rejected.
type BatchError struct {
	Field   string
	Message string
}

// BatchResult reports the outcome of one submitted bulk write batch.
// A batch with user errors was partially or fully rejected; the caller
// must not assume every record in it was applied.
type BatchResult struct {
	Index     int
	Size      int
	Succeeded bool
	Errors    []BatchError
	Err       error // transport or query failure, nil when the batch reached the endpoint
}

// PageStats carries observability counters from a paginated catalog listing.
type PageStats struct {
	Pages         int
	Items         int // eligible tracked items with a usable SKU
	Skipped       int // untracked or SKU-less records
	DuplicateSKUs int // same normalized SKU seen more than once
}

// Location describes a fulfillment location known to the catalog.
type Location struct {
	ID       string
	Name     string
	IsActive bool
}
