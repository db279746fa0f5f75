package supplier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Kirkidoo/Sync-Stock/internal/transport"
	"github.com/Kirkidoo/Sync-Stock/pkg/constants"
	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
	"github.com/Kirkidoo/Sync-Stock/pkg/logging"
)

// apiKeyHeader carries the warehouse feed's API key.
const apiKeyHeader = "X-Api-Key"

// paceEvery inserts a brief pause after this many part lookups.
const paceEvery = 20

// WarehouseClient fetches stock from a per-part feed: one GET per part
// number, API-key auth, quantities reported per warehouse and summed.
type WarehouseClient struct {
	name           string
	url            string
	customerNumber string
	transport      *transport.Client

	pacePause time.Duration
	pause     func(ctx context.Context, d time.Duration) error
}

// NewWarehouseClient creates a per-part feed client from config.
func NewWarehouseClient(cfg Config) (*WarehouseClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.CustomerNumber) == "" {
		return nil, errors.NewConfigError("supplier", "customer number is required for the warehouse driver", nil)
	}

	name := cfg.Name
	if name == "" {
		name = "supplier"
	}

	auth := &transport.HeaderAuth{Header: apiKeyHeader, Value: cfg.Token}

	return &WarehouseClient{
		name:           name,
		url:            cfg.URL,
		customerNumber: cfg.CustomerNumber,
		transport:      transport.NewWithTimeout(auth, constants.SupplierRequestTimeout),
		pacePause:      100 * time.Millisecond,
		pause:          transport.Sleep,
	}, nil
}

// Name implements the Source interface.
func (c *WarehouseClient) Name() string { return c.name }

// warehouseResponse lists per-warehouse stock for one part.
type warehouseResponse struct {
	InventoryLvl []struct {
		Quantity *json.Number `json:"quantity"`
	} `json:"inventoryLvl"`
}

// Quantities implements the Source interface. One lookup per SKU; the
// feed's 400 means "unknown part" and reports zero stock, a transport
// failure or unexpected status skips the part, and a 401 aborts the run.
func (c *WarehouseClient) Quantities(ctx context.Context, skus []string) (map[string]int, *FetchStats, error) {
	stats := &FetchStats{}
	if len(skus) == 0 {
		return map[string]int{}, stats, nil
	}

	quantities := make(map[string]int, len(skus))

	for i, sku := range skus {
		stats.Chunks++
		qty, known, err := c.fetchPart(ctx, sku)
		if err != nil {
			if errors.IsAuthFailed(err) || ctx.Err() != nil {
				return nil, stats, err
			}
			stats.ChunksFailed++
			logging.Warn().Err(err).Str("supplier", c.name).Str("sku", sku).Msg("Part lookup failed, skipping")
			continue
		}
		if !known {
			// Unknown part: the feed answers 400 and the part carries
			// zero stock at this supplier.
			quantities[sku] = 0
			continue
		}
		quantities[sku] = qty

		if i%paceEvery == paceEvery-1 {
			if err := c.pause(ctx, c.pacePause); err != nil {
				return nil, stats, err
			}
		}
	}

	return quantities, stats, nil
}

// fetchPart looks up one part number. known is false when the feed does
// not recognize the part.
func (c *WarehouseClient) fetchPart(ctx context.Context, sku string) (qty int, known bool, err error) {
	resp, err := c.transport.Get(ctx, c.partURL(sku))
	if err != nil {
		return 0, false, &errors.APIError{Source: c.name, Message: "request failed", Err: err}
	}

	body, err := transport.ReadBody(resp)
	if err != nil {
		return 0, false, &errors.APIError{Source: c.name, Message: "reading response", Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return 0, false, nil
	default:
		return 0, false, &errors.APIError{Source: c.name, StatusCode: resp.StatusCode, Message: string(body)}
	}

	var payload warehouseResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, false, errors.WrapParse("json", c.name+" part", err)
	}

	total := 0
	for _, warehouse := range payload.InventoryLvl {
		if v, ok := quantityValue(warehouse.Quantity); ok {
			total += v
		}
	}
	return total, true, nil
}

// partURL builds the lookup URL for one part number.
func (c *WarehouseClient) partURL(sku string) string {
	query := url.Values{}
	query.Set("customerNumber", c.customerNumber)
	query.Set("partNumber", sku)
	return c.url + "?" + query.Encode()
}

// Verify implements the Source interface.
func (c *WarehouseClient) Verify(ctx context.Context) error {
	resp, err := c.transport.Get(ctx, c.partURL("0"))
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
