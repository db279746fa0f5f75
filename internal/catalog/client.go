// Package catalog provides a client for the commerce catalog's Admin
// GraphQL API: location-scoped inventory listing and idempotent bulk
// quantity writes.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Kirkidoo/Sync-Stock/internal/transport"
	"github.com/Kirkidoo/Sync-Stock/pkg/constants"
	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
	"github.com/Kirkidoo/Sync-Stock/pkg/logging"
)

// DefaultAPIVersion is the Admin API version the queries are written against.
const DefaultAPIVersion = "2024-01"

// accessTokenHeader carries the catalog access token.
const accessTokenHeader = "X-Shopify-Access-Token"

// Config holds the settings needed to talk to the catalog.
type Config struct {
	// ShopDomain is the shop's domain, e.g. "example.myshopify.com".
	ShopDomain string

	// AccessToken is the Admin API access token.
	AccessToken string

	// APIVersion overrides DefaultAPIVersion when set.
	APIVersion string

	// PageSize overrides the inventory listing page size (max 250).
	PageSize int

	// BatchSize overrides the bulk write batch size.
	BatchSize int
}

// Client talks to the catalog's GraphQL endpoint.
type Client struct {
	endpoint   string
	transport  *transport.Client
	pageSize   int
	batchSize  int
	batchPause time.Duration
	retryDelay time.Duration
	maxRetries int

	// pause is swappable so tests do not sleep for real.
	pause func(ctx context.Context, d time.Duration) error
}

// NewClient creates a catalog client from config. Missing credentials are
// a ConfigError: fatal before any network call.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ShopDomain) == "" {
		return nil, errors.NewConfigError("catalog", "shop domain is required", nil)
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.NewConfigError("catalog", "access token is required", nil)
	}

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > constants.CatalogPageSize {
		pageSize = constants.CatalogPageSize
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = constants.DefaultBatchSize
	}

	auth := &transport.HeaderAuth{Header: accessTokenHeader, Value: cfg.AccessToken}

	return &Client{
		endpoint:   fmt.Sprintf("https://%s/admin/api/%s/graphql.json", cfg.ShopDomain, version),
		transport:  transport.New(auth),
		pageSize:   pageSize,
		batchSize:  batchSize,
		batchPause: constants.BatchPause,
		retryDelay: constants.ThrottleRetryDelay,
		maxRetries: constants.MaxThrottleRetries,
		pause:      transport.Sleep,
	}, nil
}

// graphQLRequest is the POST envelope for a query or mutation.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the response envelope. Data is deferred so each call
// site can decode its own payload shape.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string `json:"message"`
		Extensions struct {
			Code string `json:"code"`
		} `json:"extensions"`
	} `json:"errors"`
}

// execute runs one GraphQL document and decodes its data payload into out.
// Throttle signals (HTTP 429 or a THROTTLED error code) are retried with a
// fixed delay up to maxRetries; the loop is iterative, never recursive, so
// worst-case latency is bounded.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug().Int("attempt", attempt).Msg("Retrying throttled catalog request")
			if err := c.pause(ctx, c.retryDelay); err != nil {
				return err
			}
		}

		err := c.post(ctx, query, variables, out)
		if err == nil {
			return nil
		}
		if !errors.IsRateLimited(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("throttle retries exhausted: %w", lastErr)
}

// post performs a single request/decode round trip.
func (c *Client) post(ctx context.Context, query string, variables map[string]any, out any) error {
	resp, err := c.transport.PostJSON(ctx, c.endpoint, graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return &errors.APIError{Source: "catalog", Endpoint: c.endpoint, Message: "request failed", Err: err}
	}

	body, err := transport.ReadBody(resp)
	if err != nil {
		return &errors.APIError{Source: "catalog", Endpoint: c.endpoint, Message: "reading response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &errors.APIError{Source: "catalog", StatusCode: resp.StatusCode, Message: string(body)}
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errors.WrapParse("json", "catalog response", err)
	}

	if len(envelope.Errors) > 0 {
		gqlErr := &errors.GraphQLError{}
		for _, e := range envelope.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
			gqlErr.Codes = append(gqlErr.Codes, e.Extensions.Code)
		}
		return gqlErr
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.WrapParse("json", "catalog data payload", err)
		}
	}

	return nil
}
