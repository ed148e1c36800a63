package game

import (
	"context"
	"log"
	"sort"
	"sync"

	"quizmaster/internal/domain"
)

// DefaultAssistThreshold is the lowest tier that unlocks the assist channel
// instead of revealing distractors.
const DefaultAssistThreshold = domain.RarityEpic

// Ledger meters the player's cheat sheets for one session. The per-question
// "hint used" flag lives in the session's question state; the ledger owns
// quantities and the session's hint count.
type Ledger struct {
	profiles  Profiles
	threshold domain.Rarity

	mu        sync.Mutex
	inventory domain.Inventory
	used      int
}

func NewLedger(profiles Profiles, threshold domain.Rarity) *Ledger {
	if threshold == 0 {
		threshold = DefaultAssistThreshold
	}
	return &Ledger{
		profiles:  profiles,
		threshold: threshold,
		inventory: make(domain.Inventory),
	}
}

// Load replaces the local inventory with the profile's.
func (l *Ledger) Load(ctx context.Context, player string) error {
	inv, err := l.profiles.Inventory(ctx, player)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inventory = make(domain.Inventory, len(inv))
	for r, q := range inv {
		if q < 0 {
			q = 0
		}
		l.inventory[r] = q
	}
	return nil
}

// Available returns the remaining quantity for a tier.
func (l *Ledger) Available(r domain.Rarity) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inventory[r]
}

// UnlocksAssist reports whether using tier r opens the assist channel.
func (l *Ledger) UnlocksAssist(r domain.Rarity) bool {
	return r >= l.threshold
}

// Spend takes one unit of tier r locally. It refuses empty tiers.
func (l *Ledger) Spend(r domain.Rarity) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inventory[r] < 1 {
		return domain.ErrNoCheatSheets
	}
	l.inventory[r]--
	l.used++
	return nil
}

// Persist forwards one spent unit of tier r to the profile collaborator.
// Failures are logged; the local decrement stands.
func (l *Ledger) Persist(ctx context.Context, player string, r domain.Rarity) {
	delta := domain.InventoryDelta{Rarity: r, Delta: -1}
	if err := l.profiles.ApplyInventory(ctx, player, delta); err != nil {
		log.Printf("persist cheat sheet use for %s (rarity %d): %v", player, r, err)
	}
}

// Used returns the number of hints spent through this ledger.
func (l *Ledger) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Inventory returns a copy of the local quantities.
func (l *Ledger) Inventory() domain.Inventory {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inventory.Clone()
}

// Tiers lists every tier the ledger knows about, ascending.
func (l *Ledger) Tiers() []domain.Rarity {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen := make(map[domain.Rarity]bool, len(l.inventory)+len(domain.DefaultRarities))
	tiers := make([]domain.Rarity, 0, len(seen))
	for _, r := range domain.DefaultRarities {
		seen[r] = true
		tiers = append(tiers, r)
	}
	for r := range l.inventory {
		if !seen[r] {
			seen[r] = true
			tiers = append(tiers, r)
		}
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers
}
