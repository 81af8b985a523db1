package opensearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mstgnz/paybridge/infra/config"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

const indexPrefix = "paybridge"

// SystemLogIndex holds application log entries shipped by the system logger
const SystemLogIndex = indexPrefix + "-system-logs"

// Client wraps the OpenSearch client
type Client struct {
	client *opensearch.Client
	config *config.AppConfig
}

// NewClient creates a new OpenSearch client and makes sure the log indices
// exist for the given providers. Index setup failures are returned together
// with a usable client so that callers may decide to continue without them.
func NewClient(cfg *config.AppConfig, providers ...string) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses:     []string{cfg.OpenSearchURL},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	osClient := &Client{
		client: client,
		config: cfg,
	}

	if !cfg.EnableLogging {
		return osClient, nil
	}

	indices := []string{SystemLogIndex}
	for _, provider := range providers {
		indices = append(indices, osClient.GetLogIndexName(provider))
	}
	if err := osClient.setupIndices(context.Background(), indices); err != nil {
		return osClient, err
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

// IsEnabled returns whether OpenSearch logging is enabled
func (c *Client) IsEnabled() bool {
	return c.config.EnableLogging
}

// GetLogIndexName returns the index name for a provider's payment logs
func (c *Client) GetLogIndexName(provider string) string {
	return indexPrefix + "-" + strings.ToLower(provider) + "-logs"
}

func (c *Client) setupIndices(ctx context.Context, indices []string) error {
	for _, indexName := range indices {
		exists, err := c.indexExists(ctx, indexName)
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", indexName, err)
		}
		if exists {
			continue
		}
		if err := c.createIndex(ctx, indexName); err != nil {
			return fmt.Errorf("failed to create index %s: %w", indexName, err)
		}
	}
	return nil
}

func (c *Client) indexExists(ctx context.Context, indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

// createIndex creates an index whose mapping covers both payment and system log entries
func (c *Client) createIndex(ctx context.Context, indexName string) error {
	mapping := `{
		"mappings": {
			"properties": {
				"timestamp":      {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"level":          {"type": "keyword"},
				"message":        {"type": "text"},
				"component":      {"type": "keyword"},
				"provider":       {"type": "keyword"},
				"request_id":     {"type": "keyword"},
				"phase":          {"type": "keyword"},
				"transaction_id": {"type": "keyword"},
				"amount":         {"type": "keyword"},
				"currency":       {"type": "keyword"},
				"card_bin":       {"type": "keyword"},
				"success":        {"type": "boolean"},
				"status_code":    {"type": "integer"},
				"duration_ms":    {"type": "long"},
				"error":          {"type": "text"}
			}
		},
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		}
	}`

	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index creation error: %s", res.String())
	}

	return nil
}
