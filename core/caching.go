package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/sedwarp/core/warp"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/schema"
)

// currentCacheVersion defines the version of the cached result encoding
const currentCacheVersion = 1

// maxCacheAge bounds how long a cached alignment is trusted
const maxCacheAge = 30 * 24 * time.Hour

// cacheKeyInput is everything an alignment result depends on.
// Workers is left out since the result does not depend on the pool size.
type cacheKeyInput struct {
	Version        int          `json:"version"`
	DataHash       string       `json:"data_hash"`
	ReferenceHash  string       `json:"reference_hash"`
	ReferenceAxis  string       `json:"reference_axis"`
	ReferenceValue string       `json:"reference_value"`
	DataAxis       string       `json:"data_axis"`
	DataValue      string       `json:"data_value"`
	Options        warp.Options `json:"options"`
	Start          float64      `json:"start"`
	End            float64      `json:"end"`
	Step           float64      `json:"step"`
}

// hashContent returns the hex sha256 of b
func hashContent(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// generateCacheKey creates a unique key based on input contents and alignment parameters
func generateCacheKey(cfg *contract.Config, dataHash, refHash string) string {
	in := cacheKeyInput{
		Version:        currentCacheVersion,
		DataHash:       dataHash,
		ReferenceHash:  refHash,
		ReferenceAxis:  cfg.ReferenceAxis,
		ReferenceValue: cfg.ReferenceValue,
		DataAxis:       cfg.DataAxis,
		DataValue:      cfg.DataValue,
		Options:        cfg.Options,
		Start:          cfg.Search.Start,
		End:            cfg.Search.End,
		Step:           cfg.Search.Step,
	}
	// Marshaling a flat struct of strings, numbers and bools cannot fail
	b, _ := json.Marshal(in)
	return hashContent(b)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string, now time.Time) (schema.AlignmentResult, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return schema.AlignmentResult{}, false // Cache miss
	}
	if version != currentCacheVersion || now.Sub(time.Unix(ts, 0)) > maxCacheAge {
		return schema.AlignmentResult{}, false // Stale or version mismatch
	}
	var result schema.AlignmentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return schema.AlignmentResult{}, false
	}
	return result, true
}

// storeResult stores the result in cache
func storeResult(store contract.CacheStore, key string, result schema.AlignmentResult, now time.Time) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding cached result: %w", err)
	}
	return store.Set(key, data, currentCacheVersion, now.Unix())
}
