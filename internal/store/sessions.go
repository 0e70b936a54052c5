package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hostelportal/internal/session"
)

// Sessions keeps portal sessions in Redis as JSON strings with a sliding TTL.
type Sessions struct {
	redis  *Redis
	prefix string
	ttl    time.Duration
}

// NewSessions builds a session store under keys "<prefix><id>".
func NewSessions(r *Redis, prefix string, ttl time.Duration) *Sessions {
	if prefix == "" {
		prefix = "portal:session:"
	}
	return &Sessions{redis: r, prefix: prefix, ttl: ttl}
}

func (s *Sessions) key(id string) string { return s.prefix + id }

func (s *Sessions) Get(ctx context.Context, id string) (*session.Session, error) {
	raw, err := s.redis.Client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *Sessions) Save(ctx context.Context, sess *session.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.redis.Client.Set(ctx, s.key(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	if err := s.redis.Client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Sessions) Healthy(ctx context.Context) bool { return s.redis.Healthy(ctx) }
