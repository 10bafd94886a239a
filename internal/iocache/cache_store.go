package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/schema"
)

// resultsTable is the name of the table holding cached alignment results.
const resultsTable = "sedwarp_results"

// SQLCacheStore keeps serialized alignment results in a SQL table.
type SQLCacheStore struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = &SQLCacheStore{} // Compile-time check

// NewCacheStore returns the result cache for backend. The none backend yields
// a store that never hits; redis is served by RedisCacheStore.
func NewCacheStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	switch backend {
	case schema.NoneBackend:
		return &SQLCacheStore{tableName: tableName, backend: backend}, nil
	case schema.RedisBackend:
		store, err := NewRedisCacheStore(tableName, connStr)
		if err != nil {
			return nil, err
		}
		return store, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, redis, or none", backend)
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}

	store := &SQLCacheStore{db: db, tableName: tableName, backend: backend, connStr: connStr}
	if _, err := db.Exec(store.createTableQuery()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return store, nil
}

func (s *SQLCacheStore) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

// createTableQuery returns the CREATE TABLE statement for the backend.
func (s *SQLCacheStore) createTableQuery() string {
	keyType, blobType, intType := "TEXT", "BLOB", "INTEGER"
	switch s.backend {
	case schema.MySQLBackend:
		keyType, intType = "VARCHAR(64)", "BIGINT"
		blobType = "LONGBLOB"
	case schema.PostgreSQLBackend:
		blobType, intType = "BYTEA", "BIGINT"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		result_key %s PRIMARY KEY,
		payload %s NOT NULL,
		format_version INTEGER NOT NULL,
		computed_at %s NOT NULL
	)`, quoteTableName(s.tableName, s.backend), keyType, blobType, intType)
}

// upsertQuery returns the insert-or-replace statement for the backend.
func (s *SQLCacheStore) upsertQuery() string {
	table := quoteTableName(s.tableName, s.backend)
	const cols = "(result_key, payload, format_version, computed_at)"
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s %s VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE payload = new.payload, format_version = new.format_version, computed_at = new.computed_at`, table, cols)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s %s VALUES ($1, $2, $3, $4)
			ON CONFLICT (result_key) DO UPDATE SET payload = EXCLUDED.payload, format_version = EXCLUDED.format_version, computed_at = EXCLUDED.computed_at`, table, cols)
	default:
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s %s VALUES (?, ?, ?, ?)`, table, cols)
	}
}

// Get returns the payload, format version and unix timestamp stored under key.
// A miss is reported as sql.ErrNoRows.
func (s *SQLCacheStore) Get(key string) ([]byte, int, int64, error) {
	if s.disabled() {
		return nil, 0, 0, sql.ErrNoRows
	}

	query := rebind(fmt.Sprintf(`SELECT payload, format_version, computed_at FROM %s WHERE result_key = ?`,
		quoteTableName(s.tableName, s.backend)), s.backend)

	var (
		value   []byte
		version int
		ts      int64
	)
	if err := s.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces the payload stored under key.
func (s *SQLCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	if s.disabled() {
		return nil
	}
	_, err := s.db.Exec(s.upsertQuery(), key, value, version, timestamp)
	return err
}

// Close closes the underlying DB connection.
func (s *SQLCacheStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStatus returns entry counts, timestamps and an approximate table size.
func (s *SQLCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(s.backend), Connected: s.db != nil}
	if s.disabled() {
		return status, nil
	}

	table := quoteTableName(s.tableName, s.backend)
	row := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var newest, oldest int64
	row = s.db.QueryRow(fmt.Sprintf("SELECT MAX(computed_at), MIN(computed_at) FROM %s", table))
	if err := row.Scan(&newest, &oldest); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(newest, 0)
	status.OldestEntryTime = time.Unix(oldest, 0)
	status.TableSizeBytes = s.tableSize(status.TotalEntries)

	return status, nil
}

// tableSize asks the backend for the storage used by the table, falling back
// to a per-row estimate.
func (s *SQLCacheStore) tableSize(entries int) int64 {
	estimate := int64(entries) * 4096
	var size int64

	switch s.backend {
	case schema.SQLiteBackend:
		if err := s.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size); err != nil {
			return 0
		}
		return size
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		query := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := s.db.QueryRow(query, cfg.DBName, s.tableName).Scan(&size); err != nil {
			return estimate
		}
		return size
	case schema.PostgreSQLBackend:
		if err := s.db.QueryRow("SELECT pg_total_relation_size($1)", s.tableName).Scan(&size); err != nil {
			return estimate
		}
		return size
	}
	return estimate
}
