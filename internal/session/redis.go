package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

// appendScript appends only to an existing key so a deleted session is never
// resurrected by a late append.
var appendScript = redisv9.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("APPEND", KEYS[1], ARGV[1])
`)

// RedisStore keeps transcripts in redis strings without a TTL.
type RedisStore struct {
	client    redisv9.UniversalClient
	keyPrefix string
}

func NewRedisStore(client redisv9.UniversalClient, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "qa:session:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Create(ctx context.Context) (string, error) {
	for i := 0; i < maxCreateAttempts; i++ {
		id := uuid.NewString()
		ok, err := s.client.SetNX(ctx, s.key(id), "", 0).Result()
		if err != nil {
			return "", fmt.Errorf("redis create session failed: %w", err)
		}
		if ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocate session id failed after %d attempts", maxCreateAttempts)
}

func (s *RedisStore) Transcript(ctx context.Context, id string) (string, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redisv9.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get transcript failed: %w", err)
	}
	return raw, nil
}

func (s *RedisStore) Append(ctx context.Context, id, text string) error {
	n, err := appendScript.Run(ctx, s.client, []string{s.key(id)}, text).Int64()
	if err != nil {
		return fmt.Errorf("redis append transcript failed: %w", err)
	}
	if n < 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}
