package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizmaster/internal/domain"
)

// SessionStore keeps session records in Redis so any server instance can
// resume or verify them.
// Records are stored as:  SET quiz:session:{id} {json}
// The active index as:    SET quiz:active:{player}:{category} {id}
// Both expire after ttl of inactivity.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, rec domain.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	activeKey := s.activeKey(rec.Player, rec.Category)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(rec.ID), data, s.ttl)
		if rec.Finished {
			pipe.Del(ctx, activeKey)
		} else {
			pipe.Set(ctx, activeKey, rec.ID, s.ttl)
		}
		return nil
	})
	return err
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.SessionRecord, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.SessionRecord{}, err
	}
	var rec domain.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return rec, nil
}

func (s *SessionStore) Active(ctx context.Context, player, category string) (domain.SessionRecord, bool, error) {
	activeKey := s.activeKey(player, category)
	id, err := s.client.Get(ctx, activeKey).Result()
	if errors.Is(err, redis.Nil) {
		return domain.SessionRecord{}, false, nil
	}
	if err != nil {
		return domain.SessionRecord{}, false, err
	}
	rec, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// record expired before its index
		_ = s.client.Del(ctx, activeKey).Err()
		return domain.SessionRecord{}, false, nil
	}
	if err != nil {
		return domain.SessionRecord{}, false, err
	}
	if rec.Finished {
		return domain.SessionRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}

func (s *SessionStore) activeKey(player, category string) string {
	return "quiz:active:" + player + ":" + category
}
