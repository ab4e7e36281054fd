package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps each session as one JSON object under session:<id>.
// Every save pushes the expiry forward by ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// NewID returns a fresh, unguessable session id.
func NewID() string {
	return uuid.NewString()
}

func (s *RedisStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is empty")
	}

	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewSession(id, nil), nil
		}
		return nil, fmt.Errorf("client.Get: %w", err)
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return domain.NewSession(id, values), nil
}

func (s *RedisStore) Save(ctx context.Context, sess *domain.Session) error {
	if !sess.Modified() {
		return nil
	}

	data, err := json.Marshal(sess.Values())
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	sess.MarkClean()

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}
