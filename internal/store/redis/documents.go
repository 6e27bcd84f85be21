package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheDocument stores a proxied document body keyed by its URL
func (s *Store) CacheDocument(ctx context.Context, rawURL, body string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultDocumentTTL
	}
	if err := s.client.Set(ctx, DocumentKey(rawURL), body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache document: %w", err)
	}
	return nil
}

// GetCachedDocument retrieves a cached document. ok is false on a cache miss.
func (s *Store) GetCachedDocument(ctx context.Context, rawURL string) (string, bool, error) {
	body, err := s.client.Get(ctx, DocumentKey(rawURL)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached document: %w", err)
	}
	return body, true, nil
}

// FlushDocuments removes all cached documents and returns how many were deleted
func (s *Store) FlushDocuments(ctx context.Context) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixDocument+"*", 0).Iterator()
	for iter.Next(ctx) {
		if _, err := ExtractDocumentID(iter.Val()); err != nil {
			continue
		}
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete document key: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to flush documents: %w", err)
	}
	return deleted, nil
}
