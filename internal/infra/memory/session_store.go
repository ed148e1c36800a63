package memory

import (
	"context"
	"sync"

	"quizmaster/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu      sync.RWMutex
	records map[string]domain.SessionRecord
	active  map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		records: make(map[string]domain.SessionRecord),
		active:  make(map[string]string),
	}
}

func (s *SessionStore) Save(_ context.Context, rec domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	key := activeKey(rec.Player, rec.Category)
	if !rec.Finished {
		s.active[key] = rec.ID
	} else if s.active[key] == rec.ID {
		delete(s.active, key)
	}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	return rec, nil
}

func (s *SessionStore) Active(_ context.Context, player, category string) (domain.SessionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.active[activeKey(player, category)]
	if !ok {
		return domain.SessionRecord{}, false, nil
	}
	rec, ok := s.records[id]
	return rec, ok, nil
}

func activeKey(player, category string) string {
	return player + "/" + category
}
