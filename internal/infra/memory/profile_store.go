package memory

import (
	"context"
	"sync"

	"quizmaster/internal/domain"
)

// ProfileStore keeps player profiles in memory. Unknown players start with
// zero of every default rarity.
type ProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]*domain.Profile)}
}

// Grant adds cheat sheets outside of play, e.g. for demos and tests.
func (s *ProfileStore) Grant(player string, inv domain.Inventory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profileLocked(player)
	for r, q := range inv {
		p.Inventory[r] += q
	}
}

func (s *ProfileStore) Inventory(_ context.Context, player string) (domain.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileLocked(player).Inventory.Clone(), nil
}

func (s *ProfileStore) ApplyInventory(_ context.Context, player string, delta domain.InventoryDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profileLocked(player)
	if p.Inventory[delta.Rarity]+delta.Delta < 0 {
		return domain.ErrInsufficientCheatSheets
	}
	p.Inventory[delta.Rarity] += delta.Delta
	return nil
}

func (s *ProfileStore) ApplyStats(_ context.Context, player string, delta domain.StatsDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profileLocked(player)
	p.Stats = p.Stats.Apply(delta)
	return nil
}

func (s *ProfileStore) Stats(_ context.Context, player string) (domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileLocked(player).Stats, nil
}

func (s *ProfileStore) profileLocked(player string) *domain.Profile {
	p, ok := s.profiles[player]
	if !ok {
		p = &domain.Profile{Player: player, Inventory: make(domain.Inventory)}
		for _, r := range domain.DefaultRarities {
			p.Inventory[r] = 0
		}
		s.profiles[player] = p
	}
	return p
}
