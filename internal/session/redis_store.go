package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

const sessionKeyPrefix = "session:"

// RedisStore keeps sessions as JSON values whose key TTL matches the
// session expiry, so Redis drops them on its own.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type redisRecord struct {
	UserID    uint64    `json:"user_id"`
	Expiry    time.Time `json:"expiry"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	ttl := sess.Expiry.Sub(sess.CreatedAt)
	if sess.CreatedAt.IsZero() {
		ttl = time.Until(sess.Expiry)
	}
	if ttl <= 0 {
		return fmt.Errorf("session expires before it is stored")
	}

	payload, err := json.Marshal(redisRecord{
		UserID:    sess.UserID,
		Expiry:    sess.Expiry,
		Data:      sess.Data,
		CreatedAt: sess.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, sessionKeyPrefix+sess.Token, payload, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session token collision")
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, token string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &models.Session{
		Token:     token,
		UserID:    rec.UserID,
		Expiry:    rec.Expiry,
		Data:      rec.Data,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}

// DeleteExpired is a no-op: key TTLs already evict expired sessions.
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
