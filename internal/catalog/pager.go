package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
	"github.com/Kirkidoo/Sync-Stock/pkg/logging"
)

// trackedItemsQuery pages the inventory levels assigned to one location.
// Updates key off the inventory item ID, not the SKU, so the variant SKU
// and item ID are fetched together.
const trackedItemsQuery = `
query ($locationId: ID!, $pageSize: Int!, $cursor: String) {
  location(id: $locationId) {
    inventoryLevels(first: $pageSize, after: $cursor) {
      pageInfo { hasNextPage endCursor }
      edges {
        node {
          item {
            id
            tracked
            variant { sku }
          }
        }
      }
    }
  }
}`

type trackedItemsPayload struct {
	Location *struct {
		InventoryLevels struct {
			PageInfo struct {
				HasNextPage bool    `json:"hasNextPage"`
				EndCursor   *string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node struct {
					Item struct {
						ID      string `json:"id"`
						Tracked bool   `json:"tracked"`
						Variant *struct {
							SKU string `json:"sku"`
						} `json:"variant"`
					} `json:"item"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"inventoryLevels"`
	} `json:"location"`
}

// TrackedItems builds the SKU → inventory item ID map for one location.
// Only tracked items with a non-empty SKU are included; SKUs are trimmed
// before use so catalog and supplier keys compare equal.
//
// A response with a null location means the ID does not resolve and is
// fatal for the run (ErrLocationNotFound). Duplicate SKUs within the
// location are last-write-wins and counted as anomalies.
func (c *Client) TrackedItems(ctx context.Context, locationID string) (map[string]string, *PageStats, error) {
	items := make(map[string]string)
	stats := &PageStats{}

	var cursor *string
	for {
		variables := map[string]any{
			"locationId": locationID,
			"pageSize":   c.pageSize,
		}
		if cursor != nil {
			variables["cursor"] = *cursor
		}

		var payload trackedItemsPayload
		if err := c.execute(ctx, trackedItemsQuery, variables, &payload); err != nil {
			return nil, nil, err
		}

		if payload.Location == nil {
			return nil, nil, fmt.Errorf("%w: %s", errors.ErrLocationNotFound, locationID)
		}

		stats.Pages++
		levels := payload.Location.InventoryLevels

		for _, edge := range levels.Edges {
			item := edge.Node.Item
			if !item.Tracked || item.Variant == nil {
				stats.Skipped++
				continue
			}
			sku := strings.TrimSpace(item.Variant.SKU)
			if sku == "" {
				stats.Skipped++
				continue
			}
			if prev, ok := items[sku]; ok && prev != item.ID {
				stats.DuplicateSKUs++
				logging.Warn().
					Str("sku", sku).
					Str("kept", item.ID).
					Str("replaced", prev).
					Msg("Duplicate SKU in catalog listing, last value wins")
			}
			items[sku] = item.ID
			stats.Items = len(items)
		}

		if !levels.PageInfo.HasNextPage {
			break
		}
		cursor = levels.PageInfo.EndCursor
	}

	logging.Debug().
		Int("items", stats.Items).
		Int("pages", stats.Pages).
		Str("location", locationID).
		Msg("Catalog map built")

	return items, stats, nil
}

// locationsQuery lists fulfillment locations for operator discovery.
const locationsQuery = `
query {
  locations(first: 25) {
    edges {
      node {
        id
        name
        isActive
      }
    }
  }
}`

type locationsPayload struct {
	Locations struct {
		Edges []struct {
			Node struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				IsActive bool   `json:"isActive"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"locations"`
}

// Locations lists the catalog's fulfillment locations. Used by the CLI to
// help operators find the location ID a supplier pair should target.
func (c *Client) Locations(ctx context.Context) ([]Location, error) {
	var payload locationsPayload
	if err := c.execute(ctx, locationsQuery, nil, &payload); err != nil {
		return nil, err
	}

	locations := make([]Location, 0, len(payload.Locations.Edges))
	for _, edge := range payload.Locations.Edges {
		locations = append(locations, Location{
			ID:       edge.Node.ID,
			Name:     edge.Node.Name,
			IsActive: edge.Node.IsActive,
		})
	}
	return locations, nil
}
