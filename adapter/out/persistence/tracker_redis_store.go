package persistence

import (
	"context"
	"fmt"
	"time"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/out"
	"jobtracker_server/pkg/cache"
)

const suggestionCacheTTL = 30 * 24 * time.Hour

// RedisSuggestionStore keeps the suggestion list server-side, keyed by client id.
type RedisSuggestionStore struct {
	cache    *cache.RedisCache
	clientID string
}

func NewRedisSuggestionStore(c *cache.RedisCache, clientID string) *RedisSuggestionStore {
	if clientID == "" {
		clientID = "default"
	}
	return &RedisSuggestionStore{cache: c, clientID: clientID}
}

func (s *RedisSuggestionStore) key() string {
	return "suggestions:" + s.clientID
}

func (s *RedisSuggestionStore) Load(ctx context.Context) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	ok, err := s.cache.GetJSON(ctx, s.key(), &entry)
	if err != nil {
		return nil, fmt.Errorf("load suggestions: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *RedisSuggestionStore) Save(ctx context.Context, entry *domain.CacheEntry) error {
	if err := s.cache.SetJSON(ctx, s.key(), entry, suggestionCacheTTL); err != nil {
		return fmt.Errorf("save suggestions: %w", err)
	}
	return nil
}

func (s *RedisSuggestionStore) Clear(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key())
}

var _ out.SuggestionCacheStore = (*RedisSuggestionStore)(nil)
