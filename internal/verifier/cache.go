package verifier

import (
	"context"
	"encoding/json"
	"time"

	platformredis "custodia/internal/platform/redis"
)

// outcomeLabel maps a result to its metrics label.
func outcomeLabel(r VerificationResult) string {
	switch {
	case r.Verified:
		return "verified"
	case r.Tampered():
		return "mismatch"
	default:
		return "error"
	}
}

// Cache memoizes settled verification results in Redis so repeated audits of
// the same entry don't re-read the ledger. Nil-safe: a nil *Cache disables
// caching entirely.
type Cache struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewCache(client *platformredis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(entryID string) string {
	return "custodia:verify:" + entryID
}

// Get returns a cached result, if any. Cache errors are treated as misses;
// verification must never fail because the cache did.
func (c *Cache) Get(ctx context.Context, entryID string) (VerificationResult, bool) {
	if c == nil {
		return VerificationResult{}, false
	}
	raw, err := c.client.Get(ctx, c.key(entryID)).Bytes()
	if err != nil {
		return VerificationResult{}, false
	}
	var result VerificationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return VerificationResult{}, false
	}
	return result, true
}

// Set stores a settled result with the configured TTL.
func (c *Cache) Set(ctx context.Context, result VerificationResult) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(result.EntryID), raw, c.ttl)
}
