package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetCacheDBFilePath returns the default SQLite file for the result cache.
func GetCacheDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetAnalysisDBFilePath returns the default SQLite file for run history.
func GetAnalysisDBFilePath() string {
	return contract.GetAnalysisDBFilePath()
}

// InitStores opens the result cache and the run history store.
// An empty backend leaves the corresponding store unset.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, analysisBackend schema.DatabaseBackend, analysisConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var (
			results  contract.CacheStore
			analysis contract.AnalysisStore
			err      error
		)

		if cacheBackend != "" {
			results, err = NewCacheStore(resultsTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize result cache: %w", err)
				return
			}
		}

		if analysisBackend != "" {
			analysis, err = NewAnalysisStore(analysisBackend, analysisConnStr)
			if err != nil {
				if results != nil {
					_ = results.Close()
				}
				initErr = fmt.Errorf("failed to initialize analysis store: %w", err)
				return
			}
		}

		Manager.Lock()
		Manager.results = results
		Manager.analysis = analysis
		Manager.Unlock()
	})

	return initErr
}

// CloseStores closes both stores. It is safe to call more than once.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.results != nil {
			_ = Manager.results.Close()
		}
		if Manager.analysis != nil {
			_ = Manager.analysis.Close()
		}
	})
}

// ClearCache removes every cached result for backend.
// SQLite deletes the file, the other SQL backends drop the table and Redis
// deletes the namespaced keys.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, resultsTable)
	case schema.RedisBackend:
		store, err := NewRedisCacheStore(resultsTable, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		_, err = store.Clear(context.Background())
		return err
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearAnalysis removes all run history for backend, including the
// migration bookkeeping table.
func ClearAnalysis(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		tables := []string{candidateDistancesTable, alignmentsTable, analysisRunsTable, migrationsTable}
		return dropSQLTables(backend, connStr, tables...)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported analysis backend for clearing: %s", backend)
	}
}

// removeSQLiteFile deletes a SQLite database file; a missing file is fine.
func removeSQLiteFile(path string) error {
	if path == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", path, err)
	}
	return nil
}

// dropSQLTables connects to a SQL database and drops each table if it exists.
func dropSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return dropTables(db, backend, tables...)
}

func dropTables(db *sql.DB, backend schema.DatabaseBackend, tables ...string) error {
	for _, table := range tables {
		if err := validateTableName(table); err != nil {
			return err
		}
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
