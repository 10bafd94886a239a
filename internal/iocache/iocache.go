// Package iocache persists alignment results and run history.
package iocache

import (
	"sync"

	"github.com/huangsam/sedwarp/internal/contract"
)

// StoreManager holds the result cache and the run history store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	results      contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &StoreManager{} // Compile-time check

// GetResultStore returns the result cache, or nil when caching is disabled.
func (mgr *StoreManager) GetResultStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}

// GetAnalysisStore returns the run history store, or nil when tracking is disabled.
func (mgr *StoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
