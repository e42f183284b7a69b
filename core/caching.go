package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
)

// cacheMaxAge is how long a scored batch stays valid in the result store.
const cacheMaxAge = 7 * 24 * time.Hour

// checkCacheHit attempts to retrieve and validate a cached scored batch
func checkCacheHit(store contract.CacheStore, key string) *schema.ScoredBatch {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != contract.CacheVersion {
		return nil
	}
	if time.Since(time.Unix(ts, 0)) > cacheMaxAge {
		return nil
	}

	var result schema.ScoredBatch
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// storeResult writes the scored batch to the result store.
// Failures are logged and otherwise ignored since the result is already computed.
func storeResult(store contract.CacheStore, key string, scored *schema.ScoredBatch) {
	data, err := json.Marshal(scored)
	if err != nil {
		contract.LogWarn("Failed to encode scored batch for cache", err)
		return
	}
	if err := store.Set(key, data, contract.CacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to store scored batch in cache", err)
	}
}

// generateCacheKey creates a unique key from the raw upload, the model identity and the cost policy.
// The compliance threshold only affects presentation so it is left out.
func generateCacheKey(data []byte, fingerprint string, costs CostModel) string {
	high, low := costs.Costs()
	h := sha256.New()
	h.Write(data)
	fmt.Fprintf(h, "\x00%s\x00%s\x00%s",
		fingerprint,
		schema.FormatNumber(high),
		schema.FormatNumber(low),
	)
	return fmt.Sprintf("%x", h.Sum(nil))
}
