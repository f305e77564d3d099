// Package cache puts a Redis result cache in front of the host store.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

const (
	// DefaultPrefix namespaces every cache key.
	DefaultPrefix = "spotlight:query"
	// DefaultTTL bounds how long a cached page is served.
	DefaultTTL = 5 * time.Minute
	// indexGrace keeps the index set alive a little longer than its entries.
	indexGrace = time.Minute
)

// Store caches FindItems pages. Every write that can change a query result
// drops the whole cache.
type Store struct {
	spotlight.Store

	client *redis.Client
	prefix string
	ttl    time.Duration
	logger infralogger.Logger
}

// NewStore wraps inner. A nil client disables caching.
func NewStore(inner spotlight.Store, client *redis.Client, ttl time.Duration, log infralogger.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		Store:  inner,
		client: client,
		prefix: DefaultPrefix,
		ttl:    ttl,
		logger: log,
	}
}

// FindItems serves q from the cache when possible. Queries marked NoCache
// always reach the inner store.
func (s *Store) FindItems(ctx context.Context, q models.ItemQuery) (models.ItemPage, error) {
	if s.client == nil || q.NoCache {
		return s.Store.FindItems(ctx, q)
	}

	key, err := s.dataKey(q)
	if err != nil {
		return s.Store.FindItems(ctx, q)
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var page models.ItemPage
		if decodeErr := json.Unmarshal(raw, &page); decodeErr == nil {
			return page, nil
		}
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("Query cache read failed", infralogger.Error(err))
	}

	page, err := s.Store.FindItems(ctx, q)
	if err != nil {
		return page, err
	}

	if setErr := s.set(ctx, key, page); setErr != nil {
		s.logger.Warn("Query cache write failed", infralogger.Error(setErr))
	}
	return page, nil
}

func (s *Store) set(ctx context.Context, key string, page models.ItemPage) error {
	encoded, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, encoded, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), key)
	pipe.Expire(ctx, s.indexKey(), s.ttl+indexGrace)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateAll drops every cached page.
func (s *Store) InvalidateAll(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read cache index: %w", err)
	}

	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, s.indexKey())
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) invalidate(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if invErr := s.InvalidateAll(ctx); invErr != nil {
		s.logger.Warn("Query cache invalidation failed", infralogger.Error(invErr))
	}
	return nil
}

func (s *Store) DeleteMeta(ctx context.Context, itemID int64, key string) error {
	return s.invalidate(ctx, s.Store.DeleteMeta(ctx, itemID, key))
}

func (s *Store) AddItemTerm(ctx context.Context, itemID int64, group, slug string) error {
	return s.invalidate(ctx, s.Store.AddItemTerm(ctx, itemID, group, slug))
}

func (s *Store) RemoveItemTerm(ctx context.Context, itemID int64, group, slug string) error {
	return s.invalidate(ctx, s.Store.RemoveItemTerm(ctx, itemID, group, slug))
}

func (s *Store) RegisterGroup(ctx context.Context, group models.TermGroup) error {
	return s.invalidate(ctx, s.Store.RegisterGroup(ctx, group))
}

func (s *Store) SetOption(ctx context.Context, name, value string) error {
	return s.invalidate(ctx, s.Store.SetOption(ctx, name, value))
}

func (s *Store) dataKey(q models.ItemQuery) (string, error) {
	encoded, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return fmt.Sprintf("%s:data:%s", s.prefix, hex.EncodeToString(sum[:])), nil
}

func (s *Store) indexKey() string {
	return s.prefix + ":index"
}
