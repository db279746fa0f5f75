package catalog

import (
	"context"
	"strings"

	"github.com/Kirkidoo/Sync-Stock/pkg/logging"
)

// setQuantitiesMutation overwrites available quantities in bulk.
// ignoreCompareQuantity makes the write absolute: the catalog must not
// reject records because its cached compare quantity went stale between
// the read and the write.
const setQuantitiesMutation = `
mutation inventorySetQuantities($input: InventorySetQuantitiesInput!) {
  inventorySetQuantities(input: $input) {
    userErrors { field message }
    inventoryAdjustmentGroup {
      reason
      changes { name delta }
    }
  }
}`

type setQuantitiesPayload struct {
	InventorySetQuantities struct {
		UserErrors []struct {
			Field   []string `json:"field"`
			Message string   `json:"message"`
		} `json:"userErrors"`
		InventoryAdjustmentGroup *struct {
			Reason  string `json:"reason"`
			Changes []struct {
				Name  string `json:"name"`
				Delta int    `json:"delta"`
			} `json:"changes"`
		} `json:"inventoryAdjustmentGroup"`
	} `json:"inventorySetQuantities"`
}

// SetQuantities submits quantity changes in bounded batches. Each batch is
// an absolute overwrite of the "available" state with reason "correction".
//
// Failures are isolated per batch: field-level user errors and transport
// failures are captured in that batch's result and the remaining batches
// still run. Throttling is retried inside execute with a bounded loop. An
// empty input performs no network call.
func (c *Client) SetQuantities(ctx context.Context, changes []QuantityChange) ([]BatchResult, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	batches := (len(changes) + c.batchSize - 1) / c.batchSize
	results := make([]BatchResult, 0, batches)

	for i := 0; i < len(changes); i += c.batchSize {
		end := i + c.batchSize
		if end > len(changes) {
			end = len(changes)
		}
		batch := changes[i:end]

		result := BatchResult{Index: len(results), Size: len(batch)}

		variables := map[string]any{
			"input": map[string]any{
				"reason":                "correction",
				"name":                  "available",
				"ignoreCompareQuantity": true,
				"quantities":            batch,
			},
		}

		var payload setQuantitiesPayload
		if err := c.execute(ctx, setQuantitiesMutation, variables, &payload); err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			result.Err = err
			logging.Error().Err(err).Int("batch", result.Index).Msg("Bulk write failed")
		} else {
			for _, ue := range payload.InventorySetQuantities.UserErrors {
				result.Errors = append(result.Errors, BatchError{
					Field:   strings.Join(ue.Field, "."),
					Message: ue.Message,
				})
			}
			result.Succeeded = len(result.Errors) == 0
			if !result.Succeeded {
				logging.Warn().
					Int("batch", result.Index).
					Int("errors", len(result.Errors)).
					Msg("Bulk write rejected records")
			} else {
				logging.Debug().
					Int("batch", result.Index).
					Int("size", result.Size).
					Msg("Batch applied")
			}
		}

		results = append(results, result)

		// Pace every submission, success or not, to stay inside the
		// write-rate budget.
		if err := c.pause(ctx, c.batchPause); err != nil {
			return results, err
		}
	}

	return results, nil
}
