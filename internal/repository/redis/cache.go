package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clauseease/clauseease/internal/domain"
)

const (
	analysisCachePrefix = "analysis:"
	analysisCacheTTL    = 5 * time.Minute
)

// AnalysisCache memoizes gateway results keyed by the submitted text, so the
// debounce-driven resubmission of identical text does not re-hit the analyzer.
type AnalysisCache struct {
	client *Client
}

// NewAnalysisCache creates a new analysis cache
func NewAnalysisCache(client *Client) *AnalysisCache {
	return &AnalysisCache{client: client}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return analysisCachePrefix + hex.EncodeToString(sum[:])
}

// Get retrieves a cached result for the exact text. A miss returns (nil, nil).
func (c *AnalysisCache) Get(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	data, err := c.client.rdb.Get(ctx, cacheKey(text)).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached analysis: %w", err)
	}

	return &result, nil
}

// Set caches a result for the exact text.
func (c *AnalysisCache) Set(ctx context.Context, text string, result *domain.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	return c.client.rdb.Set(ctx, cacheKey(text), data, analysisCacheTTL).Err()
}

// Invalidate removes the cached result for the exact text.
func (c *AnalysisCache) Invalidate(ctx context.Context, text string) error {
	return c.client.rdb.Del(ctx, cacheKey(text)).Err()
}
