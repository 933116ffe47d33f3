package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"skolapp-quizsync/internal/domain"
)

const defaultPrefix = "skolapp:doc:"

// DocumentStore keeps each document as a plain string value:
//
//	SET skolapp:doc:{key} {json}
//
// Documents never expire. A write larger than maxBytes, or one rejected by a
// Redis server at its memory limit, fails with domain.ErrQuotaExceeded.
type DocumentStore struct {
	client   *redis.Client
	prefix   string
	maxBytes int
}

// NewDocumentStore uses prefix for every key (defaults to "skolapp:doc:").
// maxBytes <= 0 disables the per-document size limit.
func NewDocumentStore(client *redis.Client, prefix string, maxBytes int) *DocumentStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &DocumentStore{client: client, prefix: prefix, maxBytes: maxBytes}
}

func (s *DocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *DocumentStore) Set(ctx context.Context, key string, value []byte) error {
	if s.maxBytes > 0 && len(value) > s.maxBytes {
		return fmt.Errorf("document %s is %d bytes: %w", key, len(value), domain.ErrQuotaExceeded)
	}
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		if strings.HasPrefix(err.Error(), "OOM") {
			return fmt.Errorf("redis set %s: %w", key, domain.ErrQuotaExceeded)
		}
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *DocumentStore) key(key string) string {
	return s.prefix + key
}
