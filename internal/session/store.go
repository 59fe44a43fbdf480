package session

import (
	"accounts_portal/internal/metrics" // Session write counters
	"accounts_portal/internal/utils"   // Redis JSON helpers
	"context"                          // Context for Redis operations
	"fmt"                              // Error wrapping
	"strings"                          // Key prefix handling
	"time"                             // Expiry

	"github.com/redis/go-redis/v9" // Redis client
)

// keyPrefix namespaces session entries in Redis
const keyPrefix = "session:"

// Store keeps session data in Redis as JSON with a TTL
type Store struct {
	rdb *redis.Client
}

// NewStore returns a Store backed by rdb
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Load returns the data stored under key; found is false for unknown or expired keys
func (s *Store) Load(ctx context.Context, key string) (map[string]any, bool, error) {
	var data map[string]any
	found, err := utils.GetCache(ctx, s.rdb, keyPrefix+key, &data)
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	return data, found, nil
}

// Save stores data under key for ttl
func (s *Store) Save(ctx context.Context, key string, data map[string]any, ttl time.Duration) error {
	if err := utils.SetCache(ctx, s.rdb, keyPrefix+key, data, ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	metrics.SessionWritesTotal.WithLabelValues("save").Inc()
	return nil
}

// Delete removes key from the store
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := utils.DeleteCache(ctx, s.rdb, keyPrefix+key); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	metrics.SessionWritesTotal.WithLabelValues("delete").Inc()
	return nil
}

// Entry is a stored session as listed for administrators
type Entry struct {
	Key       string         `json:"session_key"` // Session key
	Data      map[string]any `json:"data"`        // Decoded values
	ExpiresIn int64          `json:"expires_in"`  // Seconds until expiry
}

// List returns every live session
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	keys, err := utils.ScanKeys(ctx, s.rdb, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	entries := make([]Entry, 0, len(keys))
	for _, full := range keys {
		key := strings.TrimPrefix(full, keyPrefix)
		data, found, err := s.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			continue // Expired between SCAN and GET
		}
		ttl, err := s.rdb.TTL(ctx, full).Result()
		if err != nil {
			return nil, fmt.Errorf("session ttl: %w", err)
		}
		entries = append(entries, Entry{Key: key, Data: data, ExpiresIn: int64(ttl.Seconds())})
	}
	return entries, nil
}
