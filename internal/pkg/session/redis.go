package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

// RedisStore persists sessions in redis so they survive restarts and are
// shared between replicas. Keys follow <service>:session:<token>.
type RedisStore struct {
	client      *redis.Client
	serviceName string
	ttl         time.Duration
	now         func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to redis at addr. A ttl of zero keeps sessions
// until explicitly invalidated.
func NewRedisStore(addr, serviceName string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (s *RedisStore) key(token string) string {
	return fmt.Sprintf("%s:session:%s", s.serviceName, token)
}

func (s *RedisStore) Create(ctx context.Context, userID, token string) error {
	now := s.now()
	sess := Session{
		Token:        token,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
	}
	return s.write(ctx, sess)
}

func (s *RedisStore) Lookup(ctx context.Context, token string) (Session, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, fault.NotFound("session not found")
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: redis get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, fmt.Errorf("session: decode %q: %w", token, err)
	}
	return sess, nil
}

func (s *RedisStore) Touch(ctx context.Context, token string) error {
	sess, err := s.Lookup(ctx, token)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return nil
		}
		return err
	}
	sess.LastActivity = s.now()
	return s.write(ctx, sess)
}

func (s *RedisStore) Invalidate(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) ActiveCount(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	pattern := fmt.Sprintf("%s:session:*", s.serviceName)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return 0, fmt.Errorf("session: redis scan: %w", err)
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

func (s *RedisStore) write(ctx context.Context, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode %q: %w", sess.Token, err)
	}
	if err := s.client.Set(ctx, s.key(sess.Token), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}
