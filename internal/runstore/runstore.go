// Package runstore keeps a history of scan runs and the pairs they flagged.
package runstore

import (
	"fmt"
	"sync"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
)

// StoreManager holds the process-wide analysis store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	analysis     contract.AnalysisStore
}

// GetAnalysisStore returns the analysis store, or nil when tracking is off.
func (mgr *StoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitRunStore initializes the global manager. An empty or none backend
// leaves tracking disabled.
func InitRunStore(backend schema.DatabaseBackend, connStr string) error {
	var initErr error
	initOnce.Do(func() {
		if backend == "" || backend == schema.NoneBackend {
			return
		}
		store, err := NewAnalysisStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize analysis store: %w", err)
			return
		}
		Manager.Lock()
		Manager.analysis = store
		Manager.Unlock()
	})
	return initErr
}

// CloseRunStore should be called on application shutdown.
func CloseRunStore() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.analysis != nil {
			_ = Manager.analysis.Close()
		}
	})
}
