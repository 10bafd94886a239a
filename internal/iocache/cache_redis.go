package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/schema"
	"github.com/redis/go-redis/v9"
)

// redisTimeout bounds every round trip to the server.
const redisTimeout = 5 * time.Second

// RedisCacheStore keeps alignment results in Redis hashes. A sorted set indexed
// by computation time backs the status report.
type RedisCacheStore struct {
	rdb    *redis.Client
	prefix string
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to the redis:// URL in connStr and verifies it with a PING.
func NewRedisCacheStore(namespace, connStr string) (*RedisCacheStore, error) {
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis connection string: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return newRedisCacheStore(rdb, namespace), nil
}

func newRedisCacheStore(rdb *redis.Client, namespace string) *RedisCacheStore {
	return &RedisCacheStore{rdb: rdb, prefix: namespace + ":"}
}

func (s *RedisCacheStore) entryKey(key string) string { return s.prefix + "entry:" + key }
func (s *RedisCacheStore) indexKey() string           { return s.prefix + "index" }

// Get returns the payload, format version and unix timestamp stored under key.
// A miss is reported as sql.ErrNoRows, like the SQL stores.
func (s *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	fields, err := s.rdb.HMGet(ctx, s.entryKey(key), "payload", "version", "ts").Result()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(fields) != 3 || fields[0] == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	payload, _ := fields[0].(string)
	version, err := strconv.Atoi(fmt.Sprint(fields[1]))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt version for %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fmt.Sprint(fields[2]), 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt timestamp for %s: %w", key, err)
	}
	return []byte(payload), version, ts, nil
}

// Set stores the payload under key and records it in the time index.
func (s *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.entryKey(key), "payload", value, "version", version, "ts", timestamp)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(timestamp), Member: key})
		return nil
	})
	return err
}

// GetStatus reports entry count and time range from the index.
func (s *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	count, err := s.rdb.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	status.TotalEntries = int(count)
	if count == 0 {
		return status, nil
	}

	oldest, err := s.rdb.ZRangeWithScores(ctx, s.indexKey(), 0, 0).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get oldest entry: %w", err)
	}
	newest, err := s.rdb.ZRangeWithScores(ctx, s.indexKey(), -1, -1).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get last entry: %w", err)
	}
	if len(oldest) == 1 && len(newest) == 1 {
		status.OldestEntryTime = time.Unix(int64(oldest[0].Score), 0)
		status.LastEntryTime = time.Unix(int64(newest[0].Score), 0)
	}

	if size, err := s.rdb.MemoryUsage(ctx, s.indexKey()).Result(); err == nil {
		status.TableSizeBytes = size
	}
	return status, nil
}

// Clear deletes every key in the store's namespace and returns how many were removed.
func (s *RedisCacheStore) Clear(ctx context.Context) (int64, error) {
	var deleted int64
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("deleting key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return deleted, fmt.Errorf("scanning %s*: %w", s.prefix, err)
	}
	return deleted, nil
}

// Close closes the underlying Redis connection.
func (s *RedisCacheStore) Close() error {
	return s.rdb.Close()
}
