package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/sedwarp/core/warp"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/internal/iocache"
	"github.com/huangsam/sedwarp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestGenerateCacheKey tests which settings change the cache key.
func TestGenerateCacheKey(t *testing.T) {
	base := &contract.Config{
		ReferenceAxis:  "Time_ka",
		ReferenceValue: "d18O",
		Options:        warp.DefaultOptions(),
		Search:         warp.SearchParams{Start: 0, End: 600, Step: 10, Workers: 4},
	}
	key := generateCacheKey(base, "data", "ref")
	assert.Len(t, key, 64)
	assert.Equal(t, key, generateCacheKey(base.Clone(), "data", "ref"))

	tests := []struct {
		name    string
		mutate  func(c *contract.Config)
		data    string
		changed bool
	}{
		{"workers are ignored", func(c *contract.Config) { c.Search.Workers = 1 }, "data", false},
		{"data content", func(*contract.Config) {}, "other", true},
		{"step", func(c *contract.Config) { c.Search.Step = 5 }, "data", true},
		{"smoothing", func(c *contract.Config) { c.Options.SmoothTarget = true }, "data", true},
		{"value column", func(c *contract.Config) { c.DataValue = "aragonite" }, "data", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base.Clone()
			tt.mutate(cfg)
			got := generateCacheKey(cfg, tt.data, "ref")
			if tt.changed {
				assert.NotEqual(t, key, got)
			} else {
				assert.Equal(t, key, got)
			}
		})
	}
}

// TestCheckCacheHit tests version, age and decoding checks.
func TestCheckCacheHit(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	result := schema.AlignmentResult{Core: "1100", BestDistance: 1.5, BestTimes: []float64{30}}
	payload, err := json.Marshal(result)
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
		hit     bool
	}{
		{"fresh", payload, currentCacheVersion, now.Add(-time.Hour).Unix(), nil, true},
		{"miss", nil, 0, int64(0), errors.New("not found"), false},
		{"old version", payload, currentCacheVersion + 1, now.Unix(), nil, false},
		{"expired", payload, currentCacheVersion, now.Add(-maxCacheAge - time.Hour).Unix(), nil, false},
		{"corrupt", []byte("{"), currentCacheVersion, now.Unix(), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "key").Return(tt.data, tt.version, tt.ts, tt.err)

			got, hit := checkCacheHit(store, "key", now)
			assert.Equal(t, tt.hit, hit)
			if tt.hit {
				assert.Equal(t, 1.5, got.BestDistance)
				assert.Equal(t, []float64{30}, got.BestTimes)
			}
		})
	}
}

// TestStoreResult tests the cache write.
func TestStoreResult(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := &iocache.MockCacheStore{}
	store.On("Set", "key", mock.AnythingOfType("[]uint8"), currentCacheVersion, now.Unix()).Return(nil).Once()

	require.NoError(t, storeResult(store, "key", schema.AlignmentResult{Core: "1100"}, now))
	store.AssertExpectations(t)
}
