package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "supplydesk"

// RedisStore keeps each session as a JSON string under its own key with the
// session TTL. A per-subject set indexes the ids so all of a subject's
// sessions can be revoked at once.
type RedisStore struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: defaultKeyPrefix, now: time.Now}
}

func (s *RedisStore) sessionKey(id string) string {
	return s.prefix + ":session:" + id
}

func (s *RedisStore) indexKey(subject string) string {
	return s.prefix + ":subject:" + subject + ":sessions"
}

func (s *RedisStore) Create(ctx context.Context, id, subject string) (*Session, error) {
	now := s.now()
	sess := &Session{
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	// The index lives as long as the newest session in it.
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(id), payload, s.ttl)
		pipe.SAdd(ctx, s.indexKey(subject), id)
		pipe.Expire(ctx, s.indexKey(subject), s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.rdb.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return decodeSession(payload)
}

// Delete removes the session and its index entry. Unknown ids are ignored.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	payload, err := s.rdb.GetDel(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	sess, err := decodeSession(payload)
	if err != nil {
		return err
	}
	if err := s.rdb.SRem(ctx, s.indexKey(sess.Subject), id).Err(); err != nil {
		return fmt.Errorf("failed to unindex session: %w", err)
	}
	return nil
}

func (s *RedisStore) RevokeAll(ctx context.Context, subject string) (int, error) {
	ids, err := s.rdb.SMembers(ctx, s.indexKey(subject)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.sessionKey(id)
	}

	var removed *redis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, keys...)
		pipe.Del(ctx, s.indexKey(subject))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	// Ids whose keys already expired are not counted.
	return int(removed.Val()), nil
}

func decodeSession(payload []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}
